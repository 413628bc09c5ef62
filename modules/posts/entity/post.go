package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Post is a blog entry. Markdown is the source of truth; the rendered HTML
// and the plain-text summary are derived on save.
type Post struct {
	ID              bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string        `bson:"title" json:"title"`
	Slug            string        `bson:"slug" json:"slug"`
	MarkdownContent string        `bson:"markdown_content" json:"markdown_content"`
	RenderedContent string        `bson:"rendered_content" json:"rendered_content"`
	Summary         string        `bson:"summary" json:"summary"`
	Published       bool          `bson:"published" json:"published"`
	DatePublished   *time.Time    `bson:"date_published,omitempty" json:"date_published,omitempty"`
	AuthorID        bson.ObjectID `bson:"author" json:"author_id"`
	CreatedAt       time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `bson:"updated_at" json:"updated_at"`
}
