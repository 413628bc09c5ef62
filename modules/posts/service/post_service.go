package service

import (
	"context"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/v2/bson"

	"go-event-cms/core/constants"
	"go-event-cms/core/errors"
	"go-event-cms/core/params"
	"go-event-cms/core/utils"
	"go-event-cms/modules/posts/dto"
	"go-event-cms/modules/posts/entity"
	"go-event-cms/modules/posts/repository"
)

const summaryLength = 280

// Authorizer answers capability checks. The auth module implements it.
type Authorizer interface {
	Can(ctx context.Context, userID, privilege string) (bool, error)
}

type PostServiceInterface interface {
	CreatePost(ctx context.Context, userID string, req *dto.PostRequest) (*dto.PostResponse, *errors.AppError)
	UpdatePost(ctx context.Context, userID, postID string, req *dto.PostRequest) (*dto.PostResponse, *errors.AppError)
	DeletePost(ctx context.Context, userID, postID string) *errors.AppError
	GetPostBySlug(ctx context.Context, slugValue string) (*dto.PostResponse, *errors.AppError)
	ListPublished(ctx context.Context, p params.QueryParams) (*dto.PostListResponse, *errors.AppError)
	ListAll(ctx context.Context, p params.QueryParams) (*dto.PostListResponse, *errors.AppError)
}

type PostService struct {
	repo       repository.PostRepositoryInterface
	authorizer Authorizer
}

func NewPostService(repo repository.PostRepositoryInterface, authorizer Authorizer) *PostService {
	return &PostService{repo: repo, authorizer: authorizer}
}

func (s *PostService) CreatePost(ctx context.Context, userID string, req *dto.PostRequest) (*dto.PostResponse, *errors.AppError) {
	if appErr := s.requirePrivilege(ctx, userID, constants.PrivilegeEdit); appErr != nil {
		return nil, appErr
	}
	if req.Published {
		if appErr := s.requirePrivilege(ctx, userID, constants.PrivilegePublish); appErr != nil {
			return nil, appErr
		}
	}

	authorID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid user id", err)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Title is required", nil)
	}

	post := &entity.Post{
		Title:    title,
		Slug:     s.uniqueSlug(ctx, title),
		AuthorID: authorID,
	}
	applyContent(post, req, time.Now())

	if err := s.repo.Insert(ctx, post); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create post", err)
	}
	return dto.ToPostResponse(post), nil
}

func (s *PostService) UpdatePost(ctx context.Context, userID, postID string, req *dto.PostRequest) (*dto.PostResponse, *errors.AppError) {
	post, appErr := s.loadPost(ctx, postID)
	if appErr != nil {
		return nil, appErr
	}
	if appErr := s.requirePrivilege(ctx, userID, constants.PrivilegeEdit); appErr != nil {
		return nil, appErr
	}
	if post.Published != req.Published {
		if appErr := s.requirePrivilege(ctx, userID, constants.PrivilegePublish); appErr != nil {
			return nil, appErr
		}
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Title is required", nil)
	}
	post.Title = title
	applyContent(post, req, time.Now())

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to update post", err)
	}
	return dto.ToPostResponse(post), nil
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID string) *errors.AppError {
	post, appErr := s.loadPost(ctx, postID)
	if appErr != nil {
		return appErr
	}
	if appErr := s.requirePrivilege(ctx, userID, constants.PrivilegeEdit); appErr != nil {
		return appErr
	}
	if err := s.repo.Delete(ctx, post.ID); err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "Failed to delete post", err)
	}
	return nil
}

func (s *PostService) GetPostBySlug(ctx context.Context, slugValue string) (*dto.PostResponse, *errors.AppError) {
	post, err := s.repo.GetBySlug(ctx, slugValue)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load post", err)
	}
	if post == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Post not found", nil)
	}
	return dto.ToPostResponse(post), nil
}

func (s *PostService) ListPublished(ctx context.Context, p params.QueryParams) (*dto.PostListResponse, *errors.AppError) {
	posts, total, err := s.repo.ListPublished(ctx, p)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list posts", err)
	}
	return listResponse(posts, total, p), nil
}

func (s *PostService) ListAll(ctx context.Context, p params.QueryParams) (*dto.PostListResponse, *errors.AppError) {
	posts, total, err := s.repo.ListAll(ctx, p)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list posts", err)
	}
	return listResponse(posts, total, p), nil
}

func listResponse(posts []*entity.Post, total int64, p params.QueryParams) *dto.PostListResponse {
	return &dto.PostListResponse{
		Posts:      dto.ToPostResponses(posts),
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
		Total:      total,
	}
}

func (s *PostService) loadPost(ctx context.Context, postID string) (*entity.Post, *errors.AppError) {
	id, err := bson.ObjectIDFromHex(postID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid post id", err)
	}
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load post", err)
	}
	if post == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Post not found", nil)
	}
	return post, nil
}

func (s *PostService) requirePrivilege(ctx context.Context, userID, privilege string) *errors.AppError {
	ok, err := s.authorizer.Can(ctx, userID, privilege)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Privilege check failed", err)
	}
	if !ok {
		return errors.NewAppError(errors.ErrForbidden, "Missing '"+privilege+"' privilege", nil)
	}
	return nil
}

func (s *PostService) uniqueSlug(ctx context.Context, title string) string {
	base := slug.Make(title)
	if existing, err := s.repo.GetBySlug(ctx, base); err == nil && existing == nil {
		return base
	}
	return base + "-" + utils.GenerateID()
}

// applyContent re-derives the rendered HTML and summary from the markdown
// source and tracks the publish timestamp.
func applyContent(post *entity.Post, req *dto.PostRequest, now time.Time) {
	post.MarkdownContent = req.MarkdownContent
	post.RenderedContent = utils.RenderMarkdown(req.MarkdownContent)
	post.Summary = summarize(req.MarkdownContent)
	if req.Published && !post.Published {
		post.DatePublished = &now
	}
	post.Published = req.Published
	post.UpdatedAt = now
}

// summarize strips the markup and cuts at a word boundary.
func summarize(markdown string) string {
	text := utils.StripMarkup(markdown)
	if len(text) <= summaryLength {
		return text
	}
	cut := text[:summaryLength]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}
