package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Form is the shipping/contact form a customer submits at checkout.
// Field names in error messages follow the json tags.
type Form struct {
	FirstName     string `json:"first_name" validate:"required,personname"`
	LastName      string `json:"last_name" validate:"required,personname"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,intlphone"`
	Address       string `json:"address" validate:"required,min=10"`
	City          string `json:"city" validate:"required,min=2"`
	Country       string `json:"country" validate:"required,country"`
	PostalCode    string `json:"postal_code" validate:"omitempty,postalcode"`
	PaymentMethod string `json:"payment_method" validate:"omitempty,oneof=cod"`
}

// ValidationError carries one message per failed field. It is the only
// submission error the storefront renders inline.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "invalid form fields: " + strings.Join(keys, ", ")
}

var (
	// Latin or Arabic letters, with spaces, hyphens and apostrophes inside.
	reName  = regexp.MustCompile(`^[A-Za-z\x{0600}-\x{06FF}][A-Za-z\x{0600}-\x{06FF} '\-]*$`)
	rePhone = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	rePost  = regexp.MustCompile(`^[A-Za-z0-9]{3,10}$`)
)

// Countries the store ships to.
var knownCountries = map[string]bool{
	"Egypt": true, "Saudi Arabia": true, "United Arab Emirates": true,
	"Kuwait": true, "Qatar": true, "Bahrain": true, "Oman": true,
	"Jordan": true, "Libya": true, "Sudan": true,
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	must(v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return reName.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("intlphone", func(fl validator.FieldLevel) bool {
		s := strings.NewReplacer(" ", "", "-", "").Replace(fl.Field().String())
		return rePhone.MatchString(s)
	}))
	must(v.RegisterValidation("postalcode", func(fl validator.FieldLevel) bool {
		return rePost.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("country", func(fl validator.FieldLevel) bool {
		return knownCountries[fl.Field().String()]
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

var messages = map[string]string{
	"required":   "this field is required",
	"personname": "must contain only letters, spaces, hyphens or apostrophes",
	"email":      "must be a valid email address",
	"intlphone":  "must be a valid phone number",
	"min":        "too short",
	"country":    "country is not in the supported list",
	"postalcode": "must be 3-10 letters or digits",
	"oneof":      "unsupported value",
}

// ValidateForm returns nil or a *ValidationError; it never reaches any store.
func ValidateForm(v *validator.Validate, f Form) error {
	err := v.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate form: %w", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg, ok := messages[fe.Tag()]
		if !ok {
			msg = "invalid value"
		}
		fields[fe.Field()] = msg
	}
	return &ValidationError{Fields: fields}
}
