package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

// Message renders the failure the way it is shown to API clients.
func (e *ErrorResponse) Message() string {
	switch e.Tag {
	case "required":
		return "This field is required."
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", e.Value)
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", e.Value)
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", e.Value)
	case "lte":
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", e.Value)
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.ReplaceAll(e.Value, " ", ", "))
	case "email":
		return "Enter a valid email address."
	case "money":
		return "Ensure this is a non-negative amount with at most 8 digits before and 2 digits after the decimal point."
	default:
		return fmt.Sprintf("Failed on '%s'.", e.Tag)
	}
}

// Largest amount a decimal(10,2) column can hold.
var maxMoney = decimal.RequireFromString("99999999.99")

var validate = validator.New()

func init() {
	// Report json names so errors line up with request bodies
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Decimals are validated through their canonical string form
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	validate.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		return IsMoney(d)
	})
}

// IsMoney reports whether d fits a non-negative amount with two decimal places.
func IsMoney(d decimal.Decimal) bool {
	if d.IsNegative() || d.GreaterThan(maxMoney) {
		return false
	}
	return d.Equal(d.Truncate(2))
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "", Tag: "invalid", Value: err.Error()}}
		}
		for _, err := range verrs {
			var element ErrorResponse
			element.FailedField = err.Field()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}
