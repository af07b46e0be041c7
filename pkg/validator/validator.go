package validator

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/labstack/echo/v4"

	"github.com/onurcolak/messaging-gateway/internal/domain"
	"github.com/onurcolak/messaging-gateway/pkg/response"
)

// ForceErrorCodes are the status codes a caller may ask a mock provider to fail with.
var ForceErrorCodes = map[int]bool{400: true, 429: true, 500: true, 503: true}

// CustomValidator wraps the validator instance for Echo.
type CustomValidator struct {
	validator  *validator.Validate
	translator ut.Translator
}

func New() *CustomValidator {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		tag := field.Tag.Get("json")
		if tag == "" {
			return field.Name
		}

		name := strings.SplitN(tag, ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}

		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic("failed to register validator default translations: " + err.Error())
	}

	registerCustom(validate, trans, "isodate", isISODate, "{0} must be an ISO 8601 timestamp")
	registerCustom(validate, trans, "forcecode", isForceCode, "{0} must be one of 400, 429, 500, 503")

	return &CustomValidator{
		validator:  validate,
		translator: trans,
	}
}

func registerCustom(validate *validator.Validate, trans ut.Translator, tag string, fn validator.Func, text string) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic("failed to register validation " + tag + ": " + err.Error())
	}

	err := validate.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		},
	)
	if err != nil {
		panic("failed to register translation " + tag + ": " + err.Error())
	}
}

func isISODate(fl validator.FieldLevel) bool {
	_, err := ParseTimestamp(fl.Field().String())
	return err == nil
}

func isForceCode(fl validator.FieldLevel) bool {
	return ForceErrorCodes[int(fl.Field().Int())]
}

// ParseTimestamp accepts RFC 3339 timestamps with or without fractional seconds.
func ParseTimestamp(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return domain.NewValidationError("Validation failed", cv.translateErrors(validationErrors))
		}
		return err
	}
	return nil
}

func (cv *CustomValidator) translateErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string)
	for _, err := range errs {
		details[fieldPath(err.Namespace())] = err.Translate(cv.translator)
	}
	return details
}

// fieldPath drops the top-level struct name from a validator namespace, so
// "SendSMSRequest._forceError.code" becomes "_forceError.code".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// HandleValidationError renders a bind or validation failure.
func HandleValidationError(c echo.Context, err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return response.Error(c, ve)
	}
	return response.Error(c, domain.NewValidationError(err.Error(), nil))
}
