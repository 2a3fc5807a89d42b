package postgres

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"wpfeed/internal/domain"
)

// ContentRepository reads the WordPress content tables. Builder methods
// (Posts, Meta, Taxonomy, Categories, Tags, From) return a Query to refine
// and run; CountComments, ListCategories and User execute immediately.
type ContentRepository struct {
	db          *sqlx.DB
	prefix      string
	projections Projections
}

type Option func(*ContentRepository)

func WithTablePrefix(prefix string) Option {
	return func(r *ContentRepository) {
		r.prefix = prefix
	}
}

// WithProjections overrides the default column sets. Empty sets keep the
// built-in default.
func WithProjections(p Projections) Option {
	return func(r *ContentRepository) {
		if len(p.Posts) > 0 {
			r.projections.Posts = p.Posts
		}
		if len(p.Users) > 0 {
			r.projections.Users = p.Users
		}
	}
}

func NewContentRepository(db *sqlx.DB, opts ...Option) *ContentRepository {
	r := &ContentRepository{
		db:          db,
		prefix:      DefaultTablePrefix,
		projections: DefaultProjections(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *ContentRepository) Projections() Projections {
	return r.projections
}

func (r *ContentRepository) selectFrom(table Table, exprs ...string) Query {
	return Query{
		db:     r.db,
		prefix: r.prefix,
		tables: []Table{table},
		builder: sq.StatementBuilder.
			PlaceholderFormat(sq.Dollar).
			Select(exprs...).
			From(r.prefix + string(table)),
	}
}

// From starts a query on table projecting cols, which must all belong to
// that table.
func (r *ContentRepository) From(table Table, cols ...Column) Query {
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.qualified(r.prefix))
	}

	q := r.selectFrom(table, names...)
	if len(cols) == 0 {
		return q.fail("empty projection for %s", table)
	}
	for _, c := range cols {
		if c.table != table {
			return q.fail("column %s does not belong to %s", c, table)
		}
	}
	return q
}

type PostFilter struct {
	// ID restricts the query to one post. 0 matches every post.
	ID int64
	// Columns overrides the default post projection.
	Columns []Column
}

// Posts selects published posts of type "post".
func (r *ContentRepository) Posts(f PostFilter) Query {
	cols := f.Columns
	if len(cols) == 0 {
		cols = r.projections.Posts
	}

	q := r.From(Posts, cols...).
		Where(PostType, domain.PostTypePost).
		Where(PostStatus, domain.PostStatusPublish)
	if f.ID != 0 {
		q = q.Where(PostID, f.ID)
	}
	return q
}

// Meta selects the value stored under key for a post. The schema allows
// duplicate keys per post; the row with the lowest meta_id is returned.
func (r *ContentRepository) Meta(key string, postID int64) Query {
	return r.From(PostMeta, MetaValue).
		Where(MetaKey, key).
		Where(MetaPostID, postID).
		OrderBy(MetaID, Asc).
		Limit(1, 0)
}

// Taxonomy selects the names of every term attached to a post, whatever
// its taxonomy.
func (r *ContentRepository) Taxonomy(postID int64) Query {
	return r.From(Terms, TermName).
		join(TermTaxonomy, TaxonomyTermID, TermID).
		join(TermRelationships, RelationshipTaxonomyID, TaxonomyID).
		join(Posts, PostID, RelationshipObjectID).
		Where(PostID, postID)
}

func (r *ContentRepository) Categories(postID int64) Query {
	return r.Taxonomy(postID).Where(TaxonomyKind, domain.TaxonomyCategory)
}

func (r *ContentRepository) Tags(postID int64) Query {
	return r.Taxonomy(postID).Where(TaxonomyKind, domain.TaxonomyTag)
}

// CountComments returns the number of comments attached to a post.
func (r *ContentRepository) CountComments(ctx context.Context, postID int64) (int64, error) {
	var n int64
	_, err := r.selectFrom(Comments, "COUNT(*)").
		Where(CommentPostID, postID).
		One(ctx, &n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ListCategories returns every category ordered by the given column, or by
// term_id when order is the zero Column. order must belong to the terms or
// term_taxonomy table. found is false when the site has no category.
func (r *ContentRepository) ListCategories(ctx context.Context, order Column) ([]domain.Term, bool, error) {
	if order.IsZero() {
		order = TermID
	}

	var terms []domain.Term
	found, err := r.From(Terms, TermName, TermSlug).
		join(TermTaxonomy, TaxonomyTermID, TermID).
		Where(TaxonomyKind, domain.TaxonomyCategory).
		OrderBy(order, Asc).
		All(ctx, &terms)
	if err != nil || !found {
		return nil, false, err
	}
	return terms, true, nil
}

// User fetches one user's profile. Without cols the default user projection
// is used.
func (r *ContentRepository) User(ctx context.Context, id int64, cols ...Column) (domain.User, bool, error) {
	if len(cols) == 0 {
		cols = r.projections.Users
	}

	var u domain.User
	found, err := r.From(Users, cols...).Where(UserID, id).One(ctx, &u)
	if err != nil || !found {
		return domain.User{}, false, err
	}
	return u, true, nil
}

// MetaValue reads the value stored under key for a post. A NULL meta_value
// reads as an empty string; found is false when the post has no such key.
func (r *ContentRepository) MetaValue(ctx context.Context, key string, postID int64) (string, bool, error) {
	var v sql.NullString
	found, err := r.Meta(key, postID).One(ctx, &v)
	if err != nil {
		return "", false, err
	}
	return v.String, found, nil
}
