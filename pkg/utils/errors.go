package utils

const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUpstream      = "UPSTREAM_ERROR"
	ErrCodeUnavailable   = "SERVICE_UNAVAILABLE"
	ErrCodeInternal      = "INTERNAL_ERROR"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeConfiguration = "CONFIGURATION_ERROR"
)

type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func NewAppError(code, message string, details ...string) *AppError {
	err := &AppError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

func (e *AppError) Error() string {
	return e.Message
}
