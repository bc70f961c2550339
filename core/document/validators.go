package document

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/unipath/unipath/core"
)

var (
	docTypeTag  = "doctype"
	docTypeText = "unknown document type"

	docStatusTag  = "docstatus"
	docStatusText = "unknown document status"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(docTypeTag, docTypeValidation)
	core.RegisterCustomTranslation(validate, translator, docTypeTag, docTypeText)

	_ = validate.RegisterValidation(docStatusTag, docStatusValidation)
	core.RegisterCustomTranslation(validate, translator, docStatusTag, docStatusText)
}

// docTypeValidation checks that the value is a catalog document Type.
func docTypeValidation(fl validator.FieldLevel) bool {
	return Type(fl.Field().String()).IsValid()
}

// docStatusValidation checks that the value is a known review Status.
func docStatusValidation(fl validator.FieldLevel) bool {
	return Status(fl.Field().String()).IsValid()
}
