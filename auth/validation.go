// Package auth validates credentials and sign-up details before they are sent
// to the portal API.
package auth

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	perrors "github.com/jrsteele09/go-affiliate-portal/internal/errors"
)

// Validator provides centralized validation logic for the sign-in and sign-up forms.
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return strings.ReplaceAll(name, "_", " ")
	})
	_ = v.RegisterValidation("referral_code", func(fl validator.FieldLevel) bool {
		return ValidateReferralCode(fl.Field().String()) == nil
	})
	return &Validator{v: v}
}

// Registration is the subset of the sign-up form that is checked locally.
type Registration struct {
	Email        string `json:"email"         validate:"required,email"`
	Password     string `json:"password"      validate:"required"`
	FirstName    string `json:"first_name"    validate:"required,max=100"`
	LastName     string `json:"last_name"     validate:"required,max=100"`
	ReferralCode string `json:"referral_code" validate:"omitempty,referral_code"`
}

// ValidateUserCredentials validates login credentials
func (v *Validator) ValidateUserCredentials(email, password string) error {
	if err := v.ValidateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return invalid("password is required")
	}
	return nil
}

// ValidateEmail performs a basic format check. The API remains the authority.
func (v *Validator) ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("email is required")
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return invalid("invalid email format")
	}
	if strings.ContainsAny(email, " \t\r\n") {
		return invalid("email must not contain whitespace")
	}
	return nil
}

// ValidateRegistration checks the sign-up form.
func (v *Validator) ValidateRegistration(reg Registration) error {
	if err := v.ValidateUserCredentials(reg.Email, reg.Password); err != nil {
		return err
	}
	reg.Email = strings.TrimSpace(reg.Email)
	reg.FirstName = strings.TrimSpace(reg.FirstName)
	reg.LastName = strings.TrimSpace(reg.LastName)

	if err := v.v.Struct(reg); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
			}
			return invalid(strings.Join(msgs, "; "))
		}
		return fmt.Errorf("[Validator.ValidateRegistration] %w", err)
	}
	return nil
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "referral_code":
		return field + " may only contain letters, digits, '-' and '_'"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// ValidateReferralCode validates a sponsor's affiliate id. Empty is allowed.
func ValidateReferralCode(code string) error {
	if code == "" {
		return nil
	}
	if len(code) > 64 {
		return invalid("referral code is too long")
	}
	for _, r := range code {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return invalid(fmt.Sprintf("referral code contains invalid character %q", r))
		}
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", perrors.ErrInvalidRequest, msg)
}
