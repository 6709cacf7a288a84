package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/nao1215/worklog"
	"github.com/nao1215/worklog/domain/model"
)

// Error codes sent to clients.
const (
	CodeBadRequest        = "BAD_REQUEST"
	CodeInvalidFilter     = "INVALID_FILTER"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeParseFailure      = "PARSE_FAILURE"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeNoData            = "NO_DATA"
	CodeInternal          = "INTERNAL_ERROR"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer
func (e *APIError) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.Status)
	return nil
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// errorFor maps an error of the pipeline or of request handling to an APIError.
func errorFor(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
		}
		return &APIError{
			Status:  http.StatusUnprocessableEntity,
			Code:    CodeValidationFailed,
			Message: "request validation failed",
			Details: fields,
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return &APIError{Status: http.StatusBadRequest, Code: CodeBadRequest, Message: "malformed JSON body"}
	case errors.Is(err, worklog.ErrInvalidFilterBound):
		return &APIError{Status: http.StatusBadRequest, Code: CodeInvalidFilter, Message: err.Error()}
	case errors.Is(err, model.ErrUnknownDimension),
		errors.Is(err, worklog.ErrUnknownColumn),
		errors.Is(err, model.ErrUnknownFormat),
		errors.Is(err, worklog.ErrInvalidConfig):
		return &APIError{Status: http.StatusBadRequest, Code: CodeBadRequest, Message: err.Error()}
	case errors.Is(err, worklog.ErrParseFailure):
		return &APIError{Status: http.StatusUnprocessableEntity, Code: CodeParseFailure, Message: err.Error()}
	case errors.Is(err, worklog.ErrUnsupportedFormat):
		return &APIError{Status: http.StatusUnsupportedMediaType, Code: CodeUnsupportedFormat, Message: err.Error()}
	case errors.Is(err, worklog.ErrEmptyData):
		return &APIError{Status: http.StatusNotFound, Code: CodeNoData, Message: err.Error()}
	default:
		return &APIError{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "internal server error"}
	}
}
