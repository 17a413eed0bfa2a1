package history

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxImageBytes bounds an uploaded image.
const MaxImageBytes = 10 << 20

var allowedExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// UseCase manages a user's saved analyses.
type UseCase interface {
	Add(ctx context.Context, in AddInput) (Entry, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Entry, error)
	Get(ctx context.Context, userID, id uuid.UUID) (Entry, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type AddInput struct {
	UserID     uuid.UUID
	Image      Image
	SkinTone   string
	FaceShape  string
	Colors     []string
	ColorNames []string
}

type service struct {
	repo   Repository
	images ImageStore
	log    *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, images ImageStore, logger *slog.Logger) UseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{repo: repo, images: images, log: logger.With("component", "history"), now: time.Now}
}

func (s *service) Add(ctx context.Context, in AddInput) (Entry, error) {
	if in.UserID == uuid.Nil {
		return Entry{}, fmt.Errorf("%w: missing user", ErrInvalidInput)
	}
	ext := strings.ToLower(filepath.Ext(in.Image.Filename))
	contentType, ok := allowedExt[ext]
	if !ok {
		return Entry{}, fmt.Errorf("%w: image must be jpg, jpeg or png", ErrInvalidInput)
	}
	if len(in.Image.Data) == 0 {
		return Entry{}, fmt.Errorf("%w: image is empty", ErrInvalidInput)
	}
	if len(in.Image.Data) > MaxImageBytes {
		return Entry{}, fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidInput, MaxImageBytes)
	}
	if sniffed := http.DetectContentType(in.Image.Data); sniffed != contentType {
		return Entry{}, fmt.Errorf("%w: image content is %s", ErrInvalidInput, sniffed)
	}

	id := uuid.New()
	key := fmt.Sprintf("user_histories/%s/%s%s", in.UserID, id, ext)
	url, err := s.images.Put(ctx, key, contentType, in.Image.Data)
	if err != nil {
		return Entry{}, fmt.Errorf("store image: %w", err)
	}

	e := Entry{
		ID:         id,
		UserID:     in.UserID,
		ImageURL:   url,
		ImageKey:   key,
		SkinTone:   strings.TrimSpace(in.SkinTone),
		FaceShape:  strings.TrimSpace(in.FaceShape),
		Colors:     nonNil(in.Colors),
		ColorNames: nonNil(in.ColorNames),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, e); err != nil {
		if delErr := s.images.Delete(ctx, key); delErr != nil {
			s.log.WarnContext(ctx, "remove orphaned image failed", "key", key, "error", delErr)
		}
		return Entry{}, fmt.Errorf("save history entry: %w", err)
	}
	return e, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Entry, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (Entry, error) {
	return s.repo.GetForUser(ctx, userID, id)
}

// Delete removes the stored image first; a failure there is logged and does
// not keep the entry alive.
func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	e, err := s.repo.GetForUser(ctx, userID, id)
	if err != nil {
		return err
	}
	if e.ImageKey != "" {
		if err := s.images.Delete(ctx, e.ImageKey); err != nil {
			s.log.WarnContext(ctx, "delete image failed", "key", e.ImageKey, "error", err)
		}
	}
	return s.repo.DeleteForUser(ctx, userID, id)
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
