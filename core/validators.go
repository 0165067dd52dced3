package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	objectiveCodeTag   = "objective_code"
	objectiveCodeText  = "must be a curriculum objective code, e.g. 9Ni.01"
	objectiveCodeRegex = regexp.MustCompile(`^\d+[A-Za-z]{2}\.\d{2}$`)

	isoDateTag  = "iso_date"
	isoDateText = "must be an ISO date (YYYY-MM-DD)"

	requiredTag  = "required"
	requiredText = "this field is required"
)

// NewValidator instantiates a translated validator for use.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	locale := en.New()
	uni := ut.New(locale, locale)
	translator, _ := uni.GetTranslator("en")
	InitValidators(validate, translator)
	return validate, translator
}

// InitValidators registers custom validations and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(objectiveCodeTag, objectiveCodeValidation)
	RegisterCustomTranslation(validate, translator, objectiveCodeTag, objectiveCodeText)

	_ = validate.RegisterValidation(isoDateTag, isoDateValidation)
	RegisterCustomTranslation(validate, translator, isoDateTag, isoDateText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

func objectiveCodeValidation(fl validator.FieldLevel) bool {
	return objectiveCodeRegex.MatchString(fl.Field().String())
}

func isoDateValidation(fl validator.FieldLevel) bool {
	return IsISODate(fl.Field().String())
}
