package dto

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse documents the error body shared by every endpoint.
type ErrorResponse struct {
	Error string `json:"error" example:"uploaded audio is empty"`
}
