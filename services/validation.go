package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"littlelemon/pkg/apperr"
	"littlelemon/pkg/money"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	// money.Amount is validated through its decimal string
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if a, ok := f.Interface().(money.Amount); ok {
			return a.String()
		}
		return nil
	}, money.Amount{})
	if err := v.RegisterValidation("money", validMoney); err != nil {
		panic(err)
	}
	return v
}

func validMoney(fl validator.FieldLevel) bool {
	a, err := money.Parse(fl.Field().String())
	return err == nil && a.Validate() == nil
}

// check validates in and reports the first broken rule as a
// ConstraintViolation.
func check(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", apperr.ErrConstraintViolation, err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", apperr.ErrConstraintViolation, fe.Field())
	case "money":
		return fmt.Errorf("%w: %s must be between 0.00 and 9999.99 with at most two decimals", apperr.ErrConstraintViolation, fe.Field())
	case "min", "max":
		return fmt.Errorf("%w: %s must satisfy %s=%s", apperr.ErrConstraintViolation, fe.Field(), fe.Tag(), fe.Param())
	default:
		return fmt.Errorf("%w: %s is invalid (%s)", apperr.ErrConstraintViolation, fe.Field(), fe.Tag())
	}
}
