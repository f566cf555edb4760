package validators

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
}

type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

// Message renders the error the way it is shown to users.
func (e ValidationError) Message() string {
	switch e.Field {
	case "Username":
		if e.Tag == "max" {
			return "Username must be at most 50 characters"
		}
		return "Username must be at least 3 characters"
	case "Email":
		if e.Tag == "max" {
			return "Email must be at most 255 characters"
		}
		return "Invalid email"
	case "Password":
		if e.Tag == "required" {
			return "Password is required"
		}
		return "Password must be at least 8 characters"
	case "ConfirmPassword":
		return "Passwords do not match"
	default:
		return fmt.Sprintf("%s is invalid", e.Field)
	}
}

// ValidationErrors is returned when a request fails validation before any
// storage access.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	return strings.Join(v.Messages(), ". ")
}

// Messages returns one user-facing message per failed field.
func (v ValidationErrors) Messages() []string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Message())
	}
	return msgs
}

func Validate(data interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(data)
	if err != nil {
		if errors, ok := err.(validator.ValidationErrors); ok {
			for _, e := range errors {
				validationErrors = append(validationErrors, ValidationError{
					Field: e.Field(),
					Tag:   e.Tag(),
					Value: e.Param(),
				})
			}
		}
	}

	return validationErrors
}

type RegisterRequest struct {
	Username        string `form:"username" validate:"required,min=3,max=50"`
	Email           string `form:"email" validate:"required,max=255,email"`
	Password        string `form:"password" validate:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" validate:"eqfield=Password"`
}

type LoginRequest struct {
	Email    string `form:"email" validate:"required,max=255,email"`
	Password string `form:"password" validate:"required"`
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Normalize trims the username and normalizes the email in place.
func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = NormalizeEmail(r.Email)
}

// ValidateRegisterRequest normalizes req and checks it.
func ValidateRegisterRequest(req *RegisterRequest) ValidationErrors {
	req.Normalize()
	return Validate(req)
}

// ValidateLoginRequest normalizes req and checks it.
func ValidateLoginRequest(req *LoginRequest) ValidationErrors {
	req.Email = NormalizeEmail(req.Email)
	return Validate(req)
}
