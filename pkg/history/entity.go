package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Entry is one saved analysis result of a user.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"userId"`
	ImageURL   string    `json:"imageUrl"`
	ImageKey   string    `json:"-"`
	SkinTone   string    `json:"skinTone"`
	FaceShape  string    `json:"faceShape"`
	Colors     []string  `json:"colors"`
	ColorNames []string  `json:"colorsName"`
	CreatedAt  time.Time `json:"date"`
}

// Image is an uploaded photo.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

var (
	ErrNotFound     = errors.New("history entry not found")
	ErrInvalidInput = errors.New("invalid history entry")
)

// Repository is the persistence port for history entries. Every method is
// scoped to the owning user.
type Repository interface {
	Create(ctx context.Context, e Entry) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Entry, error)
	GetForUser(ctx context.Context, userID, id uuid.UUID) (Entry, error)
	DeleteForUser(ctx context.Context, userID, id uuid.UUID) error
}

// ImageStore keeps uploaded images and returns a URL they can be fetched from.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}
