// Package response contains the types and helpers for building the
// uniform JSON envelopes returned by HTTP handlers: successes, plain
// errors and structured validation failures.
package response

import (
	"github.com/go-playground/validator"

	"github.com/thermopolio/thermopolio/internal/lib/validate"
)

// Response is the standard JSON envelope of the server.
// Status is "OK" or "Error". Error carries the message on failure,
// Fields the per-field validation messages, Data the payload on
// success. Stack is only set by the recovery middleware outside prod.
type Response struct {
	Status string              `json:"status"`
	Error  string              `json:"error,omitempty"`
	Fields map[string][]string `json:"fields,omitempty"`
	Data   any                 `json:"data,omitempty"`
	Stack  string              `json:"stack,omitempty"`
}

// ErrorResponse is the error shape referenced by the Swagger annotations.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK is the status value of a successful response.
	StatusOK = "OK"
	// StatusError is the status value of a failed response.
	StatusError = "Error"
)

// OKWithData returns a successful Response carrying data.
func OKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error returns a Response with the given error message.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// ErrorWithStack returns an error Response carrying a stack trace.
// Only the recovery middleware uses it, and only outside prod.
func ErrorWithStack(msg, stack string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
		Stack:  stack,
	}
}

// ValidationError builds an error Response with the violated rules
// flattened into a field -> messages map.
func ValidationError(errs validator.ValidationErrors) Response {
	return Response{
		Status: StatusError,
		Error:  "validation failed",
		Fields: validate.FlattenErrors(errs),
	}
}
