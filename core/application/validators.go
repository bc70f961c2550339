package application

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/unipath/unipath/core"
)

var (
	appStatusTag  = "appstatus"
	appStatusText = "unknown application status"

	appPriorityTag  = "apppriority"
	appPriorityText = "priority must be PRIMARY or BACKUP"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(appStatusTag, appStatusValidation)
	core.RegisterCustomTranslation(validate, translator, appStatusTag, appStatusText)

	_ = validate.RegisterValidation(appPriorityTag, appPriorityValidation)
	core.RegisterCustomTranslation(validate, translator, appPriorityTag, appPriorityText)
}

func appStatusValidation(fl validator.FieldLevel) bool {
	return Status(fl.Field().String()).IsValid()
}

func appPriorityValidation(fl validator.FieldLevel) bool {
	return Priority(fl.Field().String()).IsValid()
}
