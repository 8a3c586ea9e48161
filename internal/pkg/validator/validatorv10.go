package validator

import (
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/shandysiswandi/safestreet/internal/pkg/strcase"
)

// reMobile accepts an optional leading "+" and 10 to 15 digits.
var reMobile = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// ErrTranslatorNotFound is returned when the English translator cannot be built.
var ErrTranslatorNotFound = errors.New("validator: translator not found")

// V10Validator validates structs with go-playground/validator.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError maps field names to human messages.
type V10ValidationError map[string]string

func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}
	b, _ := json.Marshal(map[string]string(vs))
	return string(b)
}

// Values returns the field messages.
func (vs V10ValidationError) Values() map[string]string { return vs }

// NewV10Validator builds a validator with English messages and the custom
// "mobile" rule registered.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(fieldName)

	enLang := en.New()
	trans, ok := ut.New(enLang, enLang).GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	if err := registerMobile(validate, trans); err != nil {
		return nil, err
	}

	return &V10Validator{validate: validate, translator: trans}, nil
}

// Validate returns nil or a V10ValidationError.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return err
	}

	out := make(V10ValidationError, len(fes))
	for _, fe := range fes {
		out[fe.Field()] = fe.Translate(v.translator)
	}
	return out
}

// fieldName reports the JSON (or form) name of a struct field so messages
// read "email is a required field" instead of "Email is ...".
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return strcase.ToLowerSnake(f.Name)
}

func registerMobile(validate *validator.Validate, trans ut.Translator) error {
	err := validate.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && reMobile.MatchString(s)
	})
	if err != nil {
		return err
	}

	return validate.RegisterTranslation("mobile", trans,
		func(t ut.Translator) error {
			return t.Add("mobile", "{0} must be a mobile number of 10 to 15 digits", false)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(fe.Tag(), fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}
