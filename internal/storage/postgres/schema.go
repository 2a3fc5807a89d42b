package postgres

import (
	"fmt"
	"strings"
)

// Table is one of the WordPress content tables. The configured prefix is
// prepended when the table is rendered into SQL.
type Table string

const (
	Posts             Table = "posts"
	PostMeta          Table = "postmeta"
	Comments          Table = "comments"
	Terms             Table = "terms"
	TermTaxonomy      Table = "term_taxonomy"
	TermRelationships Table = "term_relationships"
	Users             Table = "users"
)

const DefaultTablePrefix = "wp_"

// Column is a column of a known table. The zero Column means "not set".
type Column struct {
	table Table
	name  string
}

func (c Column) Table() Table { return c.table }
func (c Column) Name() string { return c.name }
func (c Column) IsZero() bool { return c.name == "" }

func (c Column) String() string {
	return string(c.table) + "." + c.name
}

func (c Column) qualified(prefix string) string {
	return prefix + string(c.table) + "." + c.name
}

var (
	PostID      = Column{Posts, "id"}
	PostGUID    = Column{Posts, "guid"}
	PostTitle   = Column{Posts, "post_title"}
	PostContent = Column{Posts, "post_content"}
	PostExcerpt = Column{Posts, "post_excerpt"}
	PostDate    = Column{Posts, "post_date"}
	PostAuthor  = Column{Posts, "post_author"}
	PostType    = Column{Posts, "post_type"}
	PostStatus  = Column{Posts, "post_status"}

	MetaID     = Column{PostMeta, "meta_id"}
	MetaPostID = Column{PostMeta, "post_id"}
	MetaKey    = Column{PostMeta, "meta_key"}
	MetaValue  = Column{PostMeta, "meta_value"}

	CommentID     = Column{Comments, "comment_id"}
	CommentPostID = Column{Comments, "comment_post_id"}

	TermID   = Column{Terms, "term_id"}
	TermName = Column{Terms, "name"}
	TermSlug = Column{Terms, "slug"}

	TaxonomyID     = Column{TermTaxonomy, "term_taxonomy_id"}
	TaxonomyTermID = Column{TermTaxonomy, "term_id"}
	TaxonomyKind   = Column{TermTaxonomy, "taxonomy"}

	RelationshipObjectID   = Column{TermRelationships, "object_id"}
	RelationshipTaxonomyID = Column{TermRelationships, "term_taxonomy_id"}

	UserID          = Column{Users, "id"}
	UserLogin       = Column{Users, "user_login"}
	UserNicename    = Column{Users, "user_nicename"}
	UserEmail       = Column{Users, "user_email"}
	UserDisplayName = Column{Users, "display_name"}
	UserURL         = Column{Users, "user_url"}
)

var columnsByTable = map[Table][]Column{
	Posts:             {PostID, PostGUID, PostTitle, PostContent, PostExcerpt, PostDate, PostAuthor, PostType, PostStatus},
	PostMeta:          {MetaID, MetaPostID, MetaKey, MetaValue},
	Comments:          {CommentID, CommentPostID},
	Terms:             {TermID, TermName, TermSlug},
	TermTaxonomy:      {TaxonomyID, TaxonomyTermID, TaxonomyKind},
	TermRelationships: {RelationshipObjectID, RelationshipTaxonomyID},
	Users:             {UserID, UserLogin, UserNicename, UserEmail, UserDisplayName, UserURL},
}

// ParseColumn resolves a column name of the given table. Names are matched
// case-insensitively so WordPress spellings such as "ID" are accepted.
func ParseColumn(table Table, name string) (Column, error) {
	name = strings.TrimSpace(name)
	for _, c := range columnsByTable[table] {
		if strings.EqualFold(c.name, name) {
			return c, nil
		}
	}
	return Column{}, fmt.Errorf("%w: unknown column %q in table %s", ErrInvalidQuery, name, table)
}

func ParseColumns(table Table, names []string) ([]Column, error) {
	cols := make([]Column, 0, len(names))
	for _, name := range names {
		c, err := ParseColumn(table, name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, nil
}

// Projections holds the default column sets used when a call site does not
// pass its own.
type Projections struct {
	Posts []Column
	Users []Column
}

func DefaultProjections() Projections {
	return Projections{
		Posts: []Column{PostID, PostGUID, PostTitle, PostContent, PostExcerpt, PostDate},
		Users: []Column{UserLogin, UserNicename, UserEmail, UserDisplayName, UserURL},
	}
}

// ProjectionsFromNames builds projections from configured column names.
// An empty list keeps the default for that entity.
func ProjectionsFromNames(posts, users []string) (Projections, error) {
	p := DefaultProjections()
	if len(posts) > 0 {
		cols, err := ParseColumns(Posts, posts)
		if err != nil {
			return Projections{}, fmt.Errorf("post columns: %w", err)
		}
		p.Posts = cols
	}
	if len(users) > 0 {
		cols, err := ParseColumns(Users, users)
		if err != nil {
			return Projections{}, fmt.Errorf("user columns: %w", err)
		}
		p.Users = cols
	}
	return p, nil
}

// withColumns returns base extended by extra columns it does not contain yet.
func withColumns(base []Column, extra ...Column) []Column {
	out := make([]Column, len(base), len(base)+len(extra))
	copy(out, base)
	for _, c := range extra {
		found := false
		for _, b := range out {
			if b == c {
				found = true
				break
			}
		}
		if !found {
			out = append(out, c)
		}
	}
	return out
}
