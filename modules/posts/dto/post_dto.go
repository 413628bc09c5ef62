package dto

import (
	"time"

	"go-event-cms/modules/posts/entity"
)

type PostRequest struct {
	Title           string `json:"title"`
	MarkdownContent string `json:"markdown_content"`
	Published       bool   `json:"published"`
}

type PostResponse struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	MarkdownContent string     `json:"markdown_content"`
	RenderedContent string     `json:"rendered_content"`
	Summary         string     `json:"summary"`
	Published       bool       `json:"published"`
	DatePublished   *time.Time `json:"date_published,omitempty"`
	AuthorID        string     `json:"author_id"`
	CreatedAt       time.Time  `json:"created_at"`
}

type PostListResponse struct {
	Posts      []PostResponse `json:"posts"`
	PageNumber int            `json:"page_number"`
	PageSize   int            `json:"page_size"`
	Total      int64          `json:"total"`
}

func ToPostResponse(post *entity.Post) *PostResponse {
	return &PostResponse{
		ID:              post.ID.Hex(),
		Title:           post.Title,
		Slug:            post.Slug,
		MarkdownContent: post.MarkdownContent,
		RenderedContent: post.RenderedContent,
		Summary:         post.Summary,
		Published:       post.Published,
		DatePublished:   post.DatePublished,
		AuthorID:        post.AuthorID.Hex(),
		CreatedAt:       post.CreatedAt,
	}
}

func ToPostResponses(posts []*entity.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		out = append(out, *ToPostResponse(post))
	}
	return out
}
