package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/colorfit/api/http/presenter"
	"github.com/artem13815/colorfit/pkg/history"
	"github.com/artem13815/colorfit/pkg/security/jwt"
)

type HistoryHandler struct {
	useCase history.UseCase
}

func NewHistoryHandler(useCase history.UseCase) *HistoryHandler {
	return &HistoryHandler{useCase: useCase}
}

// Add stores an analysis result with its photo.
// @Summary     Save analysis
// @Tags        history
// @Accept      multipart/form-data
// @Produce     json
// @Param       image      formData file   true  "Photo (jpg, jpeg, png)"
// @Param       skinTone   formData string false "Detected skin tone"
// @Param       faceShape  formData string false "Detected face shape"
// @Param       colors     formData string false "JSON array of hex colours"
// @Param       colorsName formData string false "JSON array of colour names"
// @Security    BearerAuth
// @Success     201 {object} history.Entry
// @Failure     400 {object} presenter.ErrorResponse
// @Failure     401 {object} presenter.ErrorResponse
// @Failure     500 {object} presenter.ErrorResponse
// @Router      /history/add [post]
func (h *HistoryHandler) Add(c *fiber.Ctx) error {
	uid, ok := currentUser(c)
	if !ok {
		return presenter.ErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token subject")
	}
	fh, err := c.FormFile("image")
	if err != nil || fh == nil {
		return presenter.ErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "image is required (jpg, jpeg or png)")
	}
	file, err := fh.Open()
	if err != nil {
		return presenter.ErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "failed to open uploaded file")
	}
	defer file.Close()
	data, err := readAtMost(file, history.MaxImageBytes)
	if err != nil {
		return presenter.ErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	}

	colors, err := parseStringList(c.FormValue("colors"))
	if err != nil {
		return presenter.ErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "colors must be a JSON array of strings")
	}
	names, err := parseStringList(c.FormValue("colorsName"))
	if err != nil {
		return presenter.ErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "colorsName must be a JSON array of strings")
	}

	entry, err := h.useCase.Add(c.UserContext(), history.AddInput{
		UserID:     uid,
		Image:      history.Image{Filename: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data},
		SkinTone:   c.FormValue("skinTone"),
		FaceShape:  c.FormValue("faceShape"),
		Colors:     colors,
		ColorNames: names,
	})
	if err != nil {
		return writeHistoryError(c, err, "failed to save history")
	}
	return presenter.JSON(c, http.StatusCreated, entry)
}

// List returns the caller's saved analyses, newest first.
// @Summary  List saved analyses
// @Tags     history
// @Produce  json
// @Param    limit  query int false "page size (max 200)"
// @Param    offset query int false "offset"
// @Security BearerAuth
// @Success  200 {array} history.Entry
// @Failure  401 {object} presenter.ErrorResponse
// @Failure  500 {object} presenter.ErrorResponse
// @Router   /history/all [get]
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	uid, ok := currentUser(c)
	if !ok {
		return presenter.ErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token subject")
	}
	limit, offset := parseLimitOffset(c, 50)
	items, err := h.useCase.List(c.UserContext(), uid, limit, offset)
	if err != nil {
		return writeHistoryError(c, err, "failed to list history")
	}
	if items == nil {
		items = []history.Entry{}
	}
	return presenter.JSON(c, http.StatusOK, items)
}

// Get returns one saved analysis.
// @Summary  Get saved analysis
// @Tags     history
// @Produce  json
// @Param    id path string true "entry id (UUID)"
// @Security BearerAuth
// @Success  200 {object} history.Entry
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  401 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /history/{id} [get]
func (h *HistoryHandler) Get(c *fiber.Ctx) error {
	uid, ok := currentUser(c)
	if !ok {
		return presenter.ErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token subject")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.ErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "invalid id")
	}
	entry, err := h.useCase.Get(c.UserContext(), uid, id)
	if err != nil {
		return writeHistoryError(c, err, "failed to load history")
	}
	return presenter.JSON(c, http.StatusOK, entry)
}

// Delete removes a saved analysis and its photo.
// @Summary  Delete saved analysis
// @Tags     history
// @Produce  json
// @Param    id path string true "entry id (UUID)"
// @Security BearerAuth
// @Success  200 {object} messageResponse
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  401 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /history/delete/{id} [delete]
func (h *HistoryHandler) Delete(c *fiber.Ctx) error {
	uid, ok := currentUser(c)
	if !ok {
		return presenter.ErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token subject")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.ErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "invalid id")
	}
	if err := h.useCase.Delete(c.UserContext(), uid, id); err != nil {
		return writeHistoryError(c, err, "failed to delete history")
	}
	return presenter.JSON(c, http.StatusOK, messageResponse{Message: "History deleted"})
}

func currentUser(c *fiber.Ctx) (uuid.UUID, bool) {
	sub, _ := c.Locals(jwt.LocalUserID).(string)
	id, err := uuid.Parse(sub)
	return id, err == nil
}

func writeHistoryError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, history.ErrInvalidInput):
		return presenter.ErrorCode(c, http.StatusBadRequest, "INVALID_INPUT",
			strings.TrimPrefix(err.Error(), history.ErrInvalidInput.Error()+": "))
	case errors.Is(err, history.ErrNotFound):
		return presenter.ErrorCode(c, http.StatusNotFound, "NOT_FOUND", "history entry not found")
	default:
		return presenter.ErrorCode(c, http.StatusInternalServerError, "INTERNAL", fallback)
	}
}

// parseStringList accepts an empty field or a JSON array of strings.
func parseStringList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func readAtMost(f multipart.File, max int64) ([]byte, error) {
	limited := io.LimitReader(f, max+1)
	b, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(b)) > max {
		return nil, fmt.Errorf("file too large: limit is %d bytes", max)
	}
	return b, nil
}
