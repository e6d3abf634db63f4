package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/conexahub/conexa/internal/models"
	apperrors "github.com/conexahub/conexa/pkg/errors"
)

// ErrPostNotFound indicates the requested post does not exist.
var ErrPostNotFound = apperrors.New("POST_NOT_FOUND", "Post not found", http.StatusNotFound)

// PostService manages the community feed.
type PostService struct {
	db *gorm.DB
}

// NewPostService constructs a PostService.
func NewPostService(db *gorm.DB) (*PostService, error) {
	if db == nil {
		return nil, errors.New("post service: db is required")
	}
	return &PostService{db: db}, nil
}

// CreatePostInput captures a new feed post.
type CreatePostInput struct {
	AuthorID string
	Content  string
	ImageURL string
}

// Create publishes a feed post. AuthorID is optional; when set the member
// must exist.
func (s *PostService) Create(ctx context.Context, input CreatePostInput) (*models.Post, error) {
	ctx = ensureContext(ctx)

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, apperrors.NewBadRequest("content is required")
	}

	post := &models.Post{
		Content:  content,
		ImageURL: strings.TrimSpace(input.ImageURL),
	}
	if authorID := strings.TrimSpace(input.AuthorID); authorID != "" {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Member{}).Where("id = ?", authorID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("post service: check author: %w", err)
		}
		if count == 0 {
			return nil, ErrMemberNotFound
		}
		post.AuthorID = &authorID
	}

	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("post service: create post: %w", err)
	}

	return s.GetByID(ctx, post.ID)
}

// List returns the feed, newest first.
func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	ctx = ensureContext(ctx)

	var posts []models.Post
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Author.Intention").
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("post service: list posts: %w", err)
	}

	return posts, nil
}

// GetByID loads a single post with its author.
func (s *PostService) GetByID(ctx context.Context, id string) (*models.Post, error) {
	ctx = ensureContext(ctx)

	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Author.Intention").
		First(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("post service: load post: %w", err)
	}

	return &post, nil
}

// Delete removes a post. When requesterID is non-empty the post must belong
// to that member.
func (s *PostService) Delete(ctx context.Context, id, requesterID string) error {
	ctx = ensureContext(ctx)

	post, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if requesterID != "" {
		if post.AuthorID == nil || *post.AuthorID != requesterID {
			return apperrors.ErrForbidden
		}
	}

	if err := s.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", post.ID).Error; err != nil {
		return fmt.Errorf("post service: delete post: %w", err)
	}

	return nil
}
