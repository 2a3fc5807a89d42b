package domain

import "time"

// Post is a row of the posts table. Fields outside the selected projection
// stay at their zero value.
type Post struct {
	ID       int64     `db:"id" json:"id"`
	GUID     string    `db:"guid" json:"guid,omitempty"`
	Title    string    `db:"post_title" json:"title,omitempty"`
	Content  string    `db:"post_content" json:"content,omitempty"`
	Excerpt  string    `db:"post_excerpt" json:"excerpt,omitempty"`
	Date     time.Time `db:"post_date" json:"date,omitempty"`
	AuthorID int64     `db:"post_author" json:"author_id,omitempty"`
	Type     string    `db:"post_type" json:"type,omitempty"`
	Status   string    `db:"post_status" json:"status,omitempty"`
}

type Term struct {
	Name string `db:"name" json:"name"`
	Slug string `db:"slug" json:"slug"`
}

type User struct {
	ID          int64  `db:"id" json:"id,omitempty"`
	Login       string `db:"user_login" json:"login,omitempty"`
	Nicename    string `db:"user_nicename" json:"nicename,omitempty"`
	Email       string `db:"user_email" json:"email,omitempty"`
	DisplayName string `db:"display_name" json:"display_name,omitempty"`
	URL         string `db:"user_url" json:"url,omitempty"`
}

const (
	PostTypePost      = "post"
	PostStatusPublish = "publish"

	TaxonomyCategory = "category"
	TaxonomyTag      = "post_tag"
)
