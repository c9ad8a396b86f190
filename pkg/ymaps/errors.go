package ymaps

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound is returned when a query succeeds but yields no results.
var ErrNotFound = errors.New("no results found")

// APIError represents an error that occurred while communicating with
// an external API service, with information to help users recover.
type APIError struct {
	Service     string // The API service name (e.g., "geocoder", "search")
	StatusCode  int    // HTTP status code, 0 for transport failures
	Message     string // Error message
	Recoverable bool   // Whether the error can be recovered from
	Guidance    string // Guidance for users on how to recover
}

// Error implements the error interface and provides a formatted error message.
func (e *APIError) Error() string {
	if e.Guidance != "" {
		return fmt.Sprintf("%s API error (%d): %s. %s", e.Service, e.StatusCode, e.Message, e.Guidance)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Service, e.StatusCode, e.Message)
}

// Common error guidance messages
const (
	GuidanceGeocoderAddressFormat = "Try a more complete address, including the city."
	GuidanceSearchNoResults       = "Try a different search text or a location in a populated area."
	GuidanceInvalidKey            = "Check that the API key for this service is set and valid."
	GuidanceRateLimit             = "Rate limit exceeded. Please try again in a few moments."

	GuidanceGeneral      = "Please try again later or modify your request parameters."
	GuidanceNetworkError = "Check your internet connection and try again."
	GuidanceDataError    = "The data received was incomplete or malformed."
)

// NewAPIError creates a new APIError with appropriate guidance based on status code.
func NewAPIError(service string, statusCode int, message, guidance string) *APIError {
	if guidance == "" {
		switch statusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			guidance = GuidanceInvalidKey
		case http.StatusTooManyRequests:
			guidance = GuidanceRateLimit
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			guidance = "The request timed out. Please try again."
		case http.StatusBadRequest:
			guidance = "The request was invalid. Check your parameters and try again."
		case http.StatusInternalServerError:
			guidance = "The server encountered an error. This is likely temporary, please try again later."
		case http.StatusServiceUnavailable:
			guidance = "The service is temporarily unavailable. Please try again later."
		default:
			guidance = GuidanceGeneral
		}
	}

	return &APIError{
		Service:    service,
		StatusCode: statusCode,
		Message:    message,
		// Bad requests and key problems will fail again unchanged.
		Recoverable: statusCode != http.StatusBadRequest &&
			statusCode != http.StatusUnauthorized &&
			statusCode != http.StatusForbidden,
		Guidance: guidance,
	}
}

// errorMessage extracts the "message" field that the APIs put in their JSON
// error bodies, falling back to the HTTP status text.
func errorMessage(body []byte, status string) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 {
		return text
	}
	return status
}
