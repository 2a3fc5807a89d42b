package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultPostSelect = "SELECT wp_posts.id, wp_posts.guid, wp_posts.post_title, wp_posts.post_content, " +
	"wp_posts.post_excerpt, wp_posts.post_date FROM wp_posts " +
	"WHERE wp_posts.post_type = $1 AND wp_posts.post_status = $2"

func TestPosts_ByID(t *testing.T) {
	repo := NewContentRepository(nil)

	query, args, err := repo.Posts(PostFilter{ID: 5}).ToSQL()
	require.NoError(t, err)

	assert.Equal(t, defaultPostSelect+" AND wp_posts.id = $3", query)
	assert.Equal(t, []any{"post", "publish", int64(5)}, args)
}

func TestPosts_CustomColumns(t *testing.T) {
	repo := NewContentRepository(nil)

	query, _, err := repo.Posts(PostFilter{Columns: []Column{PostID, PostTitle}}).ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "SELECT wp_posts.id, wp_posts.post_title FROM wp_posts "+
		"WHERE wp_posts.post_type = $1 AND wp_posts.post_status = $2", query)
}

func TestPosts_LatestDefaultsToPostDate(t *testing.T) {
	repo := NewContentRepository(nil)

	query, _, err := repo.Posts(PostFilter{}).Latest(3, Column{}).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, defaultPostSelect+" ORDER BY wp_posts.post_date DESC LIMIT 3", query)

	query, _, err = repo.Posts(PostFilter{}).Latest(3, PostID).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, defaultPostSelect+" ORDER BY wp_posts.id DESC LIMIT 3", query)
}

func TestQuery_LimitOffset(t *testing.T) {
	repo := NewContentRepository(nil)

	query, _, err := repo.Posts(PostFilter{}).Limit(10, 20).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, defaultPostSelect+" LIMIT 10 OFFSET 20", query)

	query, _, err = repo.Posts(PostFilter{}).Limit(10, 0).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, defaultPostSelect+" LIMIT 10", query)
}

func TestQuery_IsImmutable(t *testing.T) {
	repo := NewContentRepository(nil)

	base := repo.Posts(PostFilter{})
	_ = base.Where(PostID, int64(1)).Limit(1, 0)
	_ = base.Limit(0, 0)

	query, args, err := base.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, defaultPostSelect, query)
	assert.Len(t, args, 2)
}

func TestQuery_WhereOrderDoesNotMatter(t *testing.T) {
	repo := NewContentRepository(nil)

	_, argsA, err := repo.From(Posts, PostID).Where(PostType, "post").Where(PostStatus, "publish").ToSQL()
	require.NoError(t, err)
	_, argsB, err := repo.From(Posts, PostID).Where(PostStatus, "publish").Where(PostType, "post").ToSQL()
	require.NoError(t, err)

	assert.ElementsMatch(t, argsA, argsB)
}

func TestMeta(t *testing.T) {
	repo := NewContentRepository(nil)

	query, args, err := repo.Meta("thumbnail", 5).ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "SELECT wp_postmeta.meta_value FROM wp_postmeta "+
		"WHERE wp_postmeta.meta_key = $1 AND wp_postmeta.post_id = $2 "+
		"ORDER BY wp_postmeta.meta_id ASC LIMIT 1", query)
	assert.Equal(t, []any{"thumbnail", int64(5)}, args)
}

func TestTaxonomy(t *testing.T) {
	repo := NewContentRepository(nil)
	const joins = "SELECT wp_terms.name FROM wp_terms " +
		"JOIN wp_term_taxonomy ON wp_term_taxonomy.term_id = wp_terms.term_id " +
		"JOIN wp_term_relationships ON wp_term_relationships.term_taxonomy_id = wp_term_taxonomy.term_taxonomy_id " +
		"JOIN wp_posts ON wp_posts.id = wp_term_relationships.object_id " +
		"WHERE wp_posts.id = $1"

	query, args, err := repo.Taxonomy(5).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, joins, query)
	assert.Equal(t, []any{int64(5)}, args)

	query, args, err = repo.Categories(5).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, joins+" AND wp_term_taxonomy.taxonomy = $2", query)
	assert.Equal(t, []any{int64(5), "category"}, args)

	_, args, err = repo.Tags(5).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, []any{int64(5), "post_tag"}, args)
}

func TestQuery_Seek(t *testing.T) {
	repo := NewContentRepository(nil)
	since := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	query, args, err := repo.Posts(PostFilter{Columns: []Column{PostID}}).
		Seek(PostDate, PostID, since, 7).
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "SELECT wp_posts.id FROM wp_posts "+
		"WHERE wp_posts.post_type = $1 AND wp_posts.post_status = $2 "+
		"AND (wp_posts.post_date, wp_posts.id) > ($3, $4)", query)
	assert.Equal(t, []any{"post", "publish", since, int64(7)}, args)
}

func TestQuery_TablePrefix(t *testing.T) {
	repo := NewContentRepository(nil, WithTablePrefix("blog_"))

	query, _, err := repo.From(Users, UserLogin).Where(UserID, int64(1)).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT blog_users.user_login FROM blog_users WHERE blog_users.id = $1", query)
}

func TestQuery_ConstructionErrors(t *testing.T) {
	repo := NewContentRepository(nil)

	tests := []struct {
		name  string
		query Query
	}{
		{"zero limit", repo.Posts(PostFilter{}).Limit(0, 5)},
		{"zero latest", repo.Posts(PostFilter{}).Latest(0, PostDate)},
		{"empty projection", repo.From(Posts)},
		{"foreign column", repo.From(Users, PostTitle)},
		{"foreign post column", repo.Posts(PostFilter{Columns: []Column{UserEmail}})},
		{"empty filter column", repo.Posts(PostFilter{}).Where(Column{}, 1)},
		{"bad direction", repo.Posts(PostFilter{}).OrderBy(PostDate, Direction("sideways"))},
		{"filter on unjoined table", repo.From(Users, UserLogin).Where(PostID, int64(1))},
		{"order on unjoined table", repo.Taxonomy(1).OrderBy(UserLogin, Asc)},
		{"seek on unjoined table", repo.From(Terms, TermName).Seek(PostDate, PostID, time.Time{}, 0)},
		{"after on unjoined table", repo.Meta("k", 1).After(PostDate, time.Time{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.query.ToSQL()
			assert.ErrorIs(t, err, ErrInvalidQuery)

			// No connection is configured: the error must come before any SQL runs.
			var dest []string
			found, err := tt.query.All(context.Background(), &dest)
			assert.ErrorIs(t, err, ErrInvalidQuery)
			assert.False(t, found)
		})
	}
}

func TestParseColumn(t *testing.T) {
	c, err := ParseColumn(Posts, "ID")
	require.NoError(t, err)
	assert.Equal(t, PostID, c)

	c, err = ParseColumn(Users, " display_name ")
	require.NoError(t, err)
	assert.Equal(t, UserDisplayName, c)

	_, err = ParseColumn(Posts, "user_login")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestProjectionsFromNames(t *testing.T) {
	p, err := ProjectionsFromNames(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultProjections(), p)

	p, err = ProjectionsFromNames([]string{"ID", "post_title"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []Column{PostID, PostTitle}, p.Posts)
	assert.Equal(t, DefaultProjections().Users, p.Users)

	_, err = ProjectionsFromNames(nil, []string{"password"})
	assert.ErrorContains(t, err, "user columns")
}

func TestWithColumns(t *testing.T) {
	base := []Column{PostID, PostTitle}

	out := withColumns(base, PostID, PostDate)

	assert.Equal(t, []Column{PostID, PostTitle, PostDate}, out)
	assert.Equal(t, []Column{PostID, PostTitle}, base)
}

func TestListCategories_RejectsForeignOrder(t *testing.T) {
	repo := NewContentRepository(nil)

	terms, found, err := repo.ListCategories(context.Background(), PostDate)

	assert.ErrorIs(t, err, ErrInvalidQuery)
	assert.False(t, found)
	assert.Nil(t, terms)
}

func TestQuery_JoinedColumnsAreAccepted(t *testing.T) {
	repo := NewContentRepository(nil)

	_, _, err := repo.Taxonomy(1).OrderBy(TaxonomyKind, Asc).Where(PostTitle, "x").ToSQL()
	require.NoError(t, err)

	// A join extends its own copy of the table list.
	base := repo.From(Terms, TermName)
	_ = base.join(TermTaxonomy, TaxonomyTermID, TermID)
	_, _, err = base.Where(TaxonomyKind, "category").ToSQL()
	assert.ErrorIs(t, err, ErrInvalidQuery)
}
