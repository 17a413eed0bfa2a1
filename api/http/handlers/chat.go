package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/colorfit/pkg/stylist"
)

type ChatHandler struct {
	useCase stylist.UseCase
}

func NewChatHandler(useCase stylist.UseCase) *ChatHandler {
	return &ChatHandler{useCase: useCase}
}

type chatRequest struct {
	Message string `json:"message"`
}

// chatResponse has Type "text" with the reply in Data, or "error" with a
// short reason.
type chatResponse struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// Chat asks the stylist a question.
// @Summary Ask the stylist
// @Tags    chat
// @Accept  json
// @Produce json
// @Param   input body chatRequest true "question"
// @Success 200 {object} chatResponse
// @Failure 400 {object} chatResponse
// @Failure 502 {object} chatResponse
// @Failure 503 {object} chatResponse
// @Router  /chat [post]
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(chatResponse{Type: "error", Data: "invalid JSON payload"})
	}
	reply, err := h.useCase.Reply(c.UserContext(), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, stylist.ErrEmptyMessage), errors.Is(err, stylist.ErrTooLong):
			return c.Status(http.StatusBadRequest).JSON(chatResponse{Type: "error", Data: err.Error()})
		case errors.Is(err, stylist.ErrUnavailable):
			return c.Status(http.StatusServiceUnavailable).JSON(chatResponse{Type: "error", Data: err.Error()})
		default:
			return c.Status(http.StatusBadGateway).JSON(chatResponse{Type: "error", Data: "stylist is unavailable, try again later"})
		}
	}
	return c.Status(http.StatusOK).JSON(chatResponse{Type: "text", Data: reply})
}
