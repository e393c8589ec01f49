package session

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var errValidation = errors.New("validation")

func isValidationErrors(err error) bool {
	_, ok := errors.Cause(err).(validator.ValidationErrors)
	return ok
}

func causeIs(err, target error) bool {
	return errors.Cause(err) == target
}
