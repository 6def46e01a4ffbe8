package errors

import (
	stderrors "errors"
	"net/http"

	"sensevoice-asr/internal/app/api/provider"
	"sensevoice-asr/internal/app/asr"
)

// ErrorKind classifies API errors for logs and metrics. It never reaches the
// client.
type ErrorKind string

const (
	KindInvalidInput  ErrorKind = "invalid_input"
	KindUpload        ErrorKind = "upload"
	KindTranscription ErrorKind = "transcription"
	KindNotReady      ErrorKind = "not_ready"
	KindNotFound      ErrorKind = "not_found"
	KindInternal      ErrorKind = "internal"
)

// APIError represents a structured API error
type APIError struct {
	Kind      ErrorKind
	Message   string
	RequestID string
	Code      string
}

// Response is the wire form of every error: a single "error" field.
type Response struct {
	Error string `json:"error"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the status code for the error. Failures of the
// transcription endpoint are all reported as 500.
func (e *APIError) HTTPStatus() int {
	if e.Kind == KindNotFound {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Response returns the JSON body for the error.
func (e *APIError) Response() Response {
	msg := e.Message
	if msg == "" {
		msg = "internal server error"
	}
	return Response{Error: msg}
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(message string) *APIError {
	return &APIError{Kind: KindInvalidInput, Message: message}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *APIError {
	return &APIError{Kind: KindNotFound, Message: message}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *APIError {
	return &APIError{Kind: KindInternal, Message: message}
}

// FromError classifies err. The message is the error text so clients see
// what failed.
func FromError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	e := &APIError{Kind: KindInternal, Message: err.Error()}

	var tErr *provider.TranscriptionError
	switch {
	case stderrors.Is(err, asr.ErrUnsupportedLanguage):
		e.Kind = KindInvalidInput
	case stderrors.Is(err, asr.ErrEmptyUpload), stderrors.Is(err, asr.ErrUploadTooLarge):
		e.Kind = KindUpload
	case stderrors.Is(err, asr.ErrModelNotLoaded):
		e.Kind = KindNotReady
	case stderrors.Is(err, asr.ErrEmptyTranscription):
		e.Kind = KindTranscription
	case stderrors.As(err, &tErr):
		e.Kind = KindTranscription
		e.Code = tErr.Code
	}
	return e
}
