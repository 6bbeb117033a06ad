package app

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"team_attendance_bot/internal/domain/session"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var ErrInvalidInput = fmt.Errorf("invalid input")

var (
	validate   *validator.Validate
	translator ut.Translator

	// custom validation tags
	notBlankTag  = "notblank"
	timeRangeTag = "time_range"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Nullable columns are validated by their value, NULL counts as empty.
	validate.RegisterCustomTypeFunc(nullableValue, sql.NullString{}, sql.NullTime{})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	validate.RegisterStructValidation(sessionStructValidation, session.Session{})

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, timeRangeTag} {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateCustomValidationErrs)
	}
}

func translateCustomValidationErrs(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case timeRangeTag:
		return "EndTime must be after StartTime"
	default:
		return ""
	}
}

func nullableValue(field reflect.Value) any {
	if valuer, ok := field.Interface().(driver.Valuer); ok {
		if v, err := valuer.Value(); err == nil {
			return v
		}
	}
	return nil
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// sessionStructValidation rejects sessions that end before they start.
// Times are HH:MM so string order is time order.
func sessionStructValidation(sl validator.StructLevel) {
	if s, ok := sl.Current().Interface().(session.Session); ok {
		if s.StartTime != "" && s.EndTime != "" && s.EndTime <= s.StartTime {
			sl.ReportError(s.EndTime, "EndTime", "EndTime", timeRangeTag, "")
		}
	}
}

// validateStruct runs the validator and wraps failures in ErrInvalidInput
// with one readable message per field.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(translator))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}
