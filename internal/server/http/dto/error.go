package dto

// ErrorResponse is the structured error body for non-2xx API responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
