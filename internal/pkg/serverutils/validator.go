package serverutils

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError wraps request validation failures so the error handler can
// map them to a 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return nil
}
