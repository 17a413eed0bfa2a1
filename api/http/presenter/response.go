package presenter

import "github.com/gofiber/fiber/v2"

// ErrorResponse is the body of every failed request. Code is a stable
// machine-readable kind; Detail carries an optional non-secret reason.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Message: message})
}

func ErrorCode(c *fiber.Ctx, status int, code, message string) error {
	return JSON(c, status, ErrorResponse{Message: message, Code: code})
}

func ErrorDetail(c *fiber.Ctx, status int, code, message, detail string) error {
	return JSON(c, status, ErrorResponse{Message: message, Code: code, Detail: detail})
}
