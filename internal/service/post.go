package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"mediafeed/internal/model"
	"mediafeed/internal/repository"
	"mediafeed/internal/storage"
)

var (
	ErrIDRequired = errors.New("post id is required")
	ErrNotFound   = errors.New("post not found")
	ErrForbidden  = errors.New("post is not owned by caller")
	ErrReaderNil  = errors.New("reader is nil")
)

// defaultPutTimeout bounds the external store call when no timeout is configured.
const defaultPutTimeout = 30 * time.Second

// PostService defines the use cases for publishing, listing and deleting posts.
type PostService interface {
	// Publish buffers the inbound stream, uploads it to object storage and
	// persists the post record. No record is persisted if the upload fails;
	// a record that fails to persist leaves the stored object behind
	// (orphaned objects are an accepted cleanup concern, never rolled back).
	Publish(ctx context.Context, caller model.Identity, r io.Reader, originalFilename, contentType, caption string) (*model.Post, error)

	// Feed returns all posts joined with their author, newest first, each
	// annotated with is_owner relative to the viewer.
	Feed(ctx context.Context, viewer model.Identity) ([]model.FeedEntry, error)

	// Delete removes a post if and only if the caller owns it.
	// Returns ErrNotFound for an absent post and ErrForbidden for an
	// ownership mismatch. The stored object is deliberately kept.
	Delete(ctx context.Context, caller model.Identity, postID string) error
}

// postService is a concrete implementation of PostService.
type postService struct {
	store      storage.Storage
	posts      repository.PostRepository
	putTimeout time.Duration
}

// NewPostService constructs a new PostService. putTimeout bounds the object
// store call during publish; zero selects the default.
func NewPostService(store storage.Storage, posts repository.PostRepository, putTimeout time.Duration) PostService {
	if putTimeout <= 0 {
		putTimeout = defaultPutTimeout
	}
	return &postService{store: store, posts: posts, putTimeout: putTimeout}
}

func (s *postService) Publish(ctx context.Context, caller model.Identity, r io.Reader, originalFilename, contentType, caption string) (*model.Post, error) {
	if r == nil {
		return nil, ErrReaderNil
	}

	sp, err := newSpool(r)
	if err != nil {
		logEvent("upload_failed", "error", map[string]any{
			"stage": "buffer",
			"error": err.Error(),
		})
		return nil, err
	}
	defer sp.Close()

	fileType := model.FileTypeFromContentType(contentType)
	if originalFilename == "" {
		originalFilename = "upload"
	}

	logEvent("upload_buffered", "info", map[string]any{
		"size":      sp.Size(),
		"file_type": fileType,
	})

	// Generate a collision-free stored name using UUID + original extension.
	ext := filepath.Ext(originalFilename)
	key := filepath.ToSlash(filepath.Join("posts", uuid.New().String()+ext))

	putCtx, cancel := context.WithTimeout(ctx, s.putTimeout)
	defer cancel()

	objInfo, err := s.store.Put(putCtx, key, sp.Reader(), storage.PutObjectOptions{
		Size:        sp.Size(),
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
			"uploaded-by":       caller.ID,
		},
	})
	if err != nil {
		logEvent("upload_failed", "error", map[string]any{
			"stage": "store",
			"key":   key,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	logEvent("upload_stored", "info", map[string]any{
		"key":  objInfo.Key,
		"etag": objInfo.ETag,
	})

	post := &model.Post{
		ID:        uuid.New().String(),
		UserID:    caller.ID,
		Caption:   caption,
		URL:       s.store.PublicURL(objInfo.Key),
		FileType:  fileType,
		FileName:  objInfo.Key,
		CreatedAt: time.Now().UTC(),
	}
	stored, err := s.posts.Create(ctx, post)
	if err != nil {
		// The stored object is left behind: failed publishes leak an
		// unreferenced object rather than risk deleting over a flaky
		// connection. The key is logged for offline cleanup.
		logEvent("upload_failed", "error", map[string]any{
			"stage":      "persist",
			"orphan_key": objInfo.Key,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("persist post: %w", err)
	}

	logEvent("upload_persisted", "info", map[string]any{
		"post_id": stored.ID,
		"user_id": stored.UserID,
	})
	return stored, nil
}

func (s *postService) Feed(ctx context.Context, viewer model.Identity) ([]model.FeedEntry, error) {
	rows, err := s.posts.ListWithAuthors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feed: %w", err)
	}

	entries := make([]model.FeedEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, model.FeedEntry{
			Post:        row.Post,
			AuthorEmail: row.AuthorEmail,
			IsOwner:     row.Post.UserID == viewer.ID,
		})
	}
	return entries, nil
}

func (s *postService) Delete(ctx context.Context, caller model.Identity, postID string) error {
	if postID == "" {
		return ErrIDRequired
	}

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("find post: %w", err)
	}
	if post.UserID != caller.ID {
		return ErrForbidden
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}
