package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/colorfit/api/http/presenter"
	"github.com/artem13815/colorfit/pkg/auth"
)

type AuthHandler struct {
	useCase auth.AuthUseCase
}

func NewAuthHandler(useCase auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{useCase: useCase}
}

type sendCodeRequest struct {
	Email string `json:"email" validate:"required,max=254"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required"`
	OTP      string `json:"otp" validate:"required,max=18"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func newAuthResponse(r auth.AuthResult) authResponse {
	return authResponse{
		Token: r.Token,
		User:  userResponse{ID: r.User.ID.String(), Email: r.User.Email, Name: r.User.Name},
	}
}

// SendCode emails a one-time code to an address that has no account yet.
// @Summary Request signup code
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body sendCodeRequest true "email to verify"
// @Success 200 {object} messageResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Failure 429 {object} presenter.ErrorResponse
// @Failure 502 {object} presenter.ErrorResponse
// @Failure 503 {object} presenter.ErrorResponse
// @Router  /auth/send-otp [post]
func (h *AuthHandler) SendCode(c *fiber.Ctx) error {
	var req sendCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.ErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "invalid JSON payload")
	}
	if err := validate.Struct(req); err != nil {
		return presenter.ErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", validationMessage(err))
	}
	if err := h.useCase.RequestCode(c.UserContext(), req.Email); err != nil {
		return writeAuthError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, messageResponse{Message: "OTP sent successfully"})
}

// Register creates an account once the emailed code checks out.
// @Summary Register user
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body registerRequest true "registration payload"
// @Success 201 {object} authResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Failure 429 {object} presenter.ErrorResponse
// @Failure 500 {object} presenter.ErrorResponse
// @Failure 503 {object} presenter.ErrorResponse
// @Router  /auth/signup [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.ErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "invalid JSON payload")
	}
	if err := validate.Struct(req); err != nil {
		return presenter.ErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", validationMessage(err))
	}

	result, err := h.useCase.Register(c.UserContext(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Code:     req.OTP,
	})
	if err != nil {
		return writeAuthError(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, newAuthResponse(result))
}

// Login handles user login.
// @Summary Login
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "login payload"
// @Success 200 {object} authResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 429 {object} presenter.ErrorResponse
// @Router  /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.ErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "invalid JSON payload")
	}
	if err := validate.Struct(req); err != nil {
		return presenter.ErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", validationMessage(err))
	}

	result, err := h.useCase.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return writeAuthError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, newAuthResponse(result))
}

// writeAuthError maps use case errors to responses. Provider text never
// reaches the client except the delivery failure reason.
func writeAuthError(c *fiber.Ctx, err error) error {
	var de *auth.DeliveryError
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		return presenter.ErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", inputMessage(err))
	case errors.Is(err, auth.ErrUserAlreadyExists):
		return presenter.ErrorCode(c, http.StatusConflict, "USER_EXISTS", "User already exists")
	case errors.Is(err, auth.ErrNoPendingRequest):
		return presenter.ErrorCode(c, http.StatusBadRequest, "OTP_NOT_SENT", "OTP not sent")
	case errors.Is(err, auth.ErrInvalidCode):
		return presenter.ErrorCode(c, http.StatusBadRequest, "INVALID_OTP", "Invalid OTP")
	case errors.Is(err, auth.ErrCodeExpired):
		return presenter.ErrorCode(c, http.StatusBadRequest, "OTP_EXPIRED", "OTP expired")
	case errors.Is(err, auth.ErrUserNotFound):
		return presenter.ErrorCode(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, auth.ErrInvalidCredentials):
		return presenter.ErrorCode(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
	case errors.As(err, &de):
		return presenter.ErrorDetail(c, http.StatusBadGateway, "DELIVERY_FAILED", "Failed to send OTP", de.Reason())
	case errors.Is(err, auth.ErrDeliveryFailed):
		return presenter.ErrorCode(c, http.StatusBadGateway, "DELIVERY_FAILED", "Failed to send OTP")
	case errors.Is(err, auth.ErrStoreUnavailable):
		return presenter.ErrorCode(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Service temporarily unavailable")
	case errors.Is(err, auth.ErrPostVerificationWriteFailed):
		return presenter.ErrorCode(c, http.StatusInternalServerError, "SIGNUP_INCOMPLETE", "Email verified but account was not created, request a new code")
	default:
		return presenter.ErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

// inputMessage strips the sentinel prefix, the rest is written by the use
// case for callers.
func inputMessage(err error) string {
	return strings.TrimPrefix(err.Error(), auth.ErrInvalidInput.Error()+": ")
}
