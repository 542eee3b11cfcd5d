package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SuccessResponse wraps data in a 200 envelope.
func SuccessResponse(message string, data interface{}) Response {
	return Response{Success: true, Code: fiber.StatusOK, Message: message, Data: data}
}

// ErrorResponse builds a failure envelope.
func ErrorResponse(code int, message string) Response {
	return Response{Success: false, Code: code, Message: message}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError lists the fields a request failed on.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + strings.Join(e.Fields, ", ")
}

// ValidateRequest runs struct tag validation on req.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return &ValidationError{Fields: fields}
}

// errorHandler maps errors to envelopes: validation and body parse errors
// are 400, fiber errors keep their code, everything else is 500.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := err.Error()

	var verr *ValidationError
	var ferr *fiber.Error
	switch {
	case errors.As(err, &verr):
		code = fiber.StatusBadRequest
	case errors.As(err, &ferr):
		code = ferr.Code
		msg = ferr.Message
	}
	return c.Status(code).JSON(ErrorResponse(code, msg))
}
