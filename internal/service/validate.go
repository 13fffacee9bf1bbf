package service

import (
	"errors"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"store-ratings/internal/apperr"

	"github.com/go-playground/validator/v10"
)

const passwordSpecials = `!@#$%^&*()-_=+[]{};':"\|,.<>/?`

var fieldMessages = map[string]string{
	"name":        "Name must be between 20 and 60 characters",
	"email":       "Must be a valid email address",
	"address":     "Address must be at most 400 characters",
	"password":    "Password must be 8-16 characters and contain at least one uppercase letter and one special character",
	"newPassword": "Password must be 8-16 characters and contain at least one uppercase letter and one special character",
	"role":        "Role must be one of: admin, user, store_owner",
	"ownerId":     "Invalid owner ID",
	"storeId":     "Valid store ID required",
	"value":       "Rating must be an integer between 1 and 5",
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return validPassword(fl.Field().String())
	})
	return v
}

// validPassword: 8-16 characters, at least one uppercase letter and one special character.
func validPassword(pw string) bool {
	n := utf8.RuneCountInString(pw)
	if n < 8 || n > 16 {
		return false
	}
	var upper, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return upper && special
}

// check runs struct validation and converts failures into a ValidationError.
func (s *Service) check(in interface{}) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("Validation failed")
	}

	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		fields = append(fields, apperr.FieldError{Field: fe.Field(), Message: msg})
	}
	return apperr.Validation("Validation failed", fields...)
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
