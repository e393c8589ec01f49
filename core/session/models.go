package session

import (
	"github.com/go-playground/validator/v10"

	"github.com/ecoquest/ecoquest/core"
)

// SignupRequest is the payload sent to the auth service on signup.
type SignupRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	Role      Role   `json:"role" validate:"required,signuprole"`
}

func (req *SignupRequest) Validate(validate *validator.Validate) error {
	req.FirstName = core.CleanString(req.FirstName)
	req.LastName = core.CleanString(req.LastName)
	req.Email = core.CleanString(req.Email, true /* lower */)
	req.Role = ParseRole(string(req.Role))
	return validate.Struct(req)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (req *LoginRequest) Validate(validate *validator.Validate) error {
	req.Email = core.CleanString(req.Email, true /* lower */)
	return validate.Struct(req)
}

type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (req AdminLoginRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(req)
}
