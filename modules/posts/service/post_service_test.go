package service

import (
	"context"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"

	"go-event-cms/core/errors"
	"go-event-cms/core/params"
	"go-event-cms/modules/posts/dto"
	"go-event-cms/modules/posts/entity"
)

type fakePostRepo struct {
	posts map[bson.ObjectID]*entity.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[bson.ObjectID]*entity.Post)}
}

func (f *fakePostRepo) Insert(_ context.Context, post *entity.Post) error {
	if post.ID.IsZero() {
		post.ID = bson.NewObjectID()
	}
	f.posts[post.ID] = post
	return nil
}

func (f *fakePostRepo) GetByID(_ context.Context, id bson.ObjectID) (*entity.Post, error) {
	return f.posts[id], nil
}

func (f *fakePostRepo) GetBySlug(_ context.Context, slug string) (*entity.Post, error) {
	for _, post := range f.posts {
		if post.Slug == slug {
			return post, nil
		}
	}
	return nil, nil
}

func (f *fakePostRepo) Update(_ context.Context, post *entity.Post) error {
	f.posts[post.ID] = post
	return nil
}

func (f *fakePostRepo) Delete(_ context.Context, id bson.ObjectID) error {
	delete(f.posts, id)
	return nil
}

func (f *fakePostRepo) ListPublished(_ context.Context, _ params.QueryParams) ([]*entity.Post, int64, error) {
	var out []*entity.Post
	for _, post := range f.posts {
		if post.Published {
			out = append(out, post)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakePostRepo) ListAll(_ context.Context, _ params.QueryParams) ([]*entity.Post, int64, error) {
	var out []*entity.Post
	for _, post := range f.posts {
		out = append(out, post)
	}
	return out, int64(len(out)), nil
}

type allowAll struct{}

func (allowAll) Can(_ context.Context, _, _ string) (bool, error) { return true, nil }

type editOnly struct{}

func (editOnly) Can(_ context.Context, _, privilege string) (bool, error) {
	return privilege == "edit", nil
}

func TestCreatePostDerivesContent(t *testing.T) {
	repo := newFakePostRepo()
	svc := NewPostService(repo, allowAll{})

	resp, appErr := svc.CreatePost(context.Background(), bson.NewObjectID().Hex(), &dto.PostRequest{
		Title:           "Spring Update",
		MarkdownContent: "We have **news** for you.",
		Published:       true,
	})
	if appErr != nil {
		t.Fatalf("CreatePost: %v", appErr)
	}
	if resp.Slug != "spring-update" {
		t.Errorf("slug = %q", resp.Slug)
	}
	if !strings.Contains(resp.RenderedContent, "<strong>news</strong>") {
		t.Errorf("rendered content = %q", resp.RenderedContent)
	}
	if strings.Contains(resp.Summary, "*") || !strings.Contains(resp.Summary, "news") {
		t.Errorf("summary = %q", resp.Summary)
	}
	if resp.DatePublished == nil {
		t.Error("published post missing publish date")
	}
}

func TestCreatePostDisambiguatesSlug(t *testing.T) {
	repo := newFakePostRepo()
	svc := NewPostService(repo, allowAll{})

	userID := bson.NewObjectID().Hex()
	req := &dto.PostRequest{Title: "Spring Update", MarkdownContent: "first"}
	if _, appErr := svc.CreatePost(context.Background(), userID, req); appErr != nil {
		t.Fatalf("CreatePost: %v", appErr)
	}
	second, appErr := svc.CreatePost(context.Background(), userID, req)
	if appErr != nil {
		t.Fatalf("CreatePost: %v", appErr)
	}
	if second.Slug == "spring-update" || !strings.HasPrefix(second.Slug, "spring-update-") {
		t.Errorf("second slug = %q", second.Slug)
	}
}

func TestCreatePublishedPostRequiresPublishPrivilege(t *testing.T) {
	svc := NewPostService(newFakePostRepo(), editOnly{})

	_, appErr := svc.CreatePost(context.Background(), bson.NewObjectID().Hex(), &dto.PostRequest{
		Title:           "Draft Only",
		MarkdownContent: "text",
		Published:       true,
	})
	if appErr == nil || appErr.Code != errors.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", appErr)
	}
}

func TestListPublishedFiltersDrafts(t *testing.T) {
	repo := newFakePostRepo()
	svc := NewPostService(repo, allowAll{})
	userID := bson.NewObjectID().Hex()

	if _, appErr := svc.CreatePost(context.Background(), userID, &dto.PostRequest{Title: "Live", MarkdownContent: "x", Published: true}); appErr != nil {
		t.Fatalf("CreatePost: %v", appErr)
	}
	if _, appErr := svc.CreatePost(context.Background(), userID, &dto.PostRequest{Title: "Draft", MarkdownContent: "x"}); appErr != nil {
		t.Fatalf("CreatePost: %v", appErr)
	}

	list, appErr := svc.ListPublished(context.Background(), params.QueryParams{PageNumber: 1, PageSize: 10})
	if appErr != nil {
		t.Fatalf("ListPublished: %v", appErr)
	}
	if list.Total != 1 || len(list.Posts) != 1 || list.Posts[0].Title != "Live" {
		t.Fatalf("published list = %+v", list)
	}
}

func TestSummarizeTruncatesAtWordBoundary(t *testing.T) {
	long := strings.Repeat("lorem ipsum ", 60)
	got := summarize(long)
	if len(got) > summaryLength+len("…") {
		t.Errorf("summary too long: %d", len(got))
	}
	if strings.HasSuffix(strings.TrimSuffix(got, "…"), " ") {
		t.Error("summary ends mid whitespace")
	}
	if !strings.HasSuffix(got, "…") {
		t.Error("truncated summary missing ellipsis")
	}
}
