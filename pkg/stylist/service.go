// Package stylist answers free-form fashion questions through a chat model.
package stylist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/artem13815/colorfit/pkg/llm"
)

// MaxMessageRunes bounds a single user message.
const MaxMessageRunes = 2000

const systemPrompt = `You are a friendly personal fashion stylist. Give concise, practical advice on outfits, colour combinations, skin-tone and face-shape friendly choices. Answer in Markdown. If a question is unrelated to fashion, style or grooming, politely steer back to those topics.`

var (
	ErrEmptyMessage = errors.New("message is required")
	ErrTooLong      = errors.New("message is too long")
	ErrUnavailable  = errors.New("stylist is not configured")
	ErrUpstream     = errors.New("stylist model failed")
)

type UseCase interface {
	Reply(ctx context.Context, message string) (string, error)
}

type service struct {
	model     llm.ChatModel
	available bool
	log       *slog.Logger
}

// NewService returns a UseCase backed by model. When available is false every
// Reply fails with ErrUnavailable without calling the model.
func NewService(model llm.ChatModel, available bool, logger *slog.Logger) UseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{model: model, available: available, log: logger.With("component", "stylist")}
}

func (s *service) Reply(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(message) > MaxMessageRunes {
		return "", ErrTooLong
	}
	if !s.available || s.model == nil {
		return "", ErrUnavailable
	}
	reply, err := s.model.Ask(ctx, systemPrompt, message)
	if err != nil {
		s.log.WarnContext(ctx, "chat model failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return reply, nil
}
