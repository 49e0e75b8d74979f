package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/SAP-F-2025/gradebook-service/internal/models"
)

const (
	maxNumeric52 = 999.99

	usernameTag  = "username"
	usernameText = "{0} must be 3 to 50 characters of letters, digits, '.', '_' or '-'"

	roleNameTag  = "role_name"
	roleNameText = "{0} must be one of ROLE_USER, ROLE_ADMIN"

	dateTag  = "date_ymd"
	dateText = "{0} must be a date in YYYY-MM-DD format"

	gradeValueTag  = "grade_value"
	gradeValueText = "{0} must be between 0 and 999.99"

	gradeWeightTag  = "grade_weight"
	gradeWeightText = "{0} must be greater than 0 and at most 999.99"

	requiredText = "{0} is required"
)

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9._-]{3,50}$`)

// Validator validates request DTOs and renders English messages keyed by JSON field names
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New creates a validator with the business rules registered
func New() *Validator {
	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New(validator.WithRequiredStructEnabled())
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v := &Validator{validate: validate, translator: translator}
	v.registerBusinessRules()

	return v
}

// Validate validates a struct and returns ValidationErrors, or nil when it is valid
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	out := make(ValidationErrors, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: fe.Translate(v.translator),
			Value:   redactValue(fe.Field(), fe.Value()),
			Rule:    fe.Tag(),
		})
	}
	return out
}

// registerBusinessRules registers custom business rule validators
func (v *Validator) registerBusinessRules() {
	v.register(usernameTag, usernameText, func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})

	v.register(roleNameTag, roleNameText, func(fl validator.FieldLevel) bool {
		return models.IsKnownRole(fl.Field().String())
	})

	v.register(dateTag, dateText, func(fl validator.FieldLevel) bool {
		_, err := time.Parse(models.DateLayout, fl.Field().String())
		return err == nil
	})

	// numeric(5,2)
	v.register(gradeValueTag, gradeValueText, func(fl validator.FieldLevel) bool {
		value := fl.Field().Float()
		return value >= 0 && value <= maxNumeric52
	})

	v.register(gradeWeightTag, gradeWeightText, func(fl validator.FieldLevel) bool {
		weight := fl.Field().Float()
		return weight > 0 && weight <= maxNumeric52
	})

	v.translate("required", requiredText, true)
}

func (v *Validator) register(tag, text string, fn validator.Func) {
	_ = v.validate.RegisterValidation(tag, fn)
	v.translate(tag, text, false)
}

func (v *Validator) translate(tag, text string, override bool) {
	_ = v.validate.RegisterTranslation(
		tag, v.translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}
