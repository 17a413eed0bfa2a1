package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/colorfit/pkg/stylist"
)

type mockStylist struct{ mock.Mock }

func (m *mockStylist) Reply(ctx context.Context, message string) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

func newChatApp(uc stylist.UseCase) *fiber.App {
	app := fiber.New()
	app.Post("/chat", NewChatHandler(uc).Chat)
	return app
}

func TestChat(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		err      error
		status   int
		wantType string
	}{
		{"ok", "Try olive.", nil, http.StatusOK, "text"},
		{"empty", "", stylist.ErrEmptyMessage, http.StatusBadRequest, "error"},
		{"no key", "", stylist.ErrUnavailable, http.StatusServiceUnavailable, "error"},
		{"upstream", "", errors.Join(stylist.ErrUpstream, errors.New("openrouter http 500")), http.StatusBadGateway, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(mockStylist)
			uc.On("Reply", mock.Anything, "what suits me?").Return(tt.reply, tt.err).Once()

			resp, body := postJSON(t, newChatApp(uc), "/chat", `{"message":"what suits me?"}`)
			assert.Equal(t, tt.status, resp.StatusCode)
			var got chatResponse
			require.NoError(t, json.Unmarshal(body, &got))
			assert.Equal(t, tt.wantType, got.Type)
			if tt.err == nil {
				assert.Equal(t, tt.reply, got.Data)
			} else {
				assert.NotContains(t, got.Data, "openrouter")
			}
		})
	}
}
