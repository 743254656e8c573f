package employee

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

type inputValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

var sharedValidator = sync.OnceValue(func() *inputValidator {
	v, err := newInputValidator()
	if err != nil {
		panic(err)
	}
	return v
})

func newInputValidator() (*inputValidator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	locale := en.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, errors.Wrap(err, "register validation translations")
	}

	return &inputValidator{validate: validate, translator: trans}, nil
}

// ValidateInput は EmployeeInput のフィールド制約を検証します。
// 違反がある場合は *ValidationError を返します。
func ValidateInput(in EmployeeInput) error {
	v := sharedValidator()

	err := v.validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return NewValidationError("input", err.Error())
	}

	violations := make([]FieldViolation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, FieldViolation{
			Field:  fe.Field(),
			Reason: fe.Translate(v.translator),
		})
	}

	return &ValidationError{
		Field:      violations[0].Field,
		Reason:     violations[0].Reason,
		Violations: violations,
	}
}

func normalizeInput(in EmployeeInput) EmployeeInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.DateOfJoining = normalizeDate(in.DateOfJoining)
	return in
}

func normalizeDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
