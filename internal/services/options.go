package services

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vytor/conceptpulse/internal/errors"
)

type options struct {
	now      func() time.Time
	validate *validator.Validate
}

// Option customizes a service.
type Option func(*options)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithValidator shares a validator instance between services.
func WithValidator(v *validator.Validate) Option {
	return func(o *options) { o.validate = v }
}

func applyOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.validate == nil {
		o.validate = validator.New(validator.WithRequiredStructEnabled())
	}
	return o
}

// validationError maps the first failed validator rule to a VALIDATION_ERROR.
func validationError(err error) *errors.AppError {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.NewBadRequestError(err.Error())
	}
	fe := verrs[0]
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required":
		return errors.NewValidationError(field, "is required")
	case "max":
		return errors.NewValidationError(field, fmt.Sprintf("must be at most %s characters", fe.Param()))
	default:
		return errors.NewValidationError(field, fmt.Sprintf("failed %q rule", fe.Tag()))
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
