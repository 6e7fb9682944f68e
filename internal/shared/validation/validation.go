package validation

import (
	"fmt"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/seats"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators adds the domain tags used in request DTOs to gin's
// validator.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}

func Register(v *validator.Validate) error {
	return v.RegisterValidation("ticket_type", func(fl validator.FieldLevel) bool {
		return seats.TicketType(fl.Field().String()).IsValid()
	})
}
