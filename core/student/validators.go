package student

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/unipath/unipath/core"
)

var (
	phaseTag  = "phase"
	phaseText = "unknown phase"

	visaStatusTag  = "visastatus"
	visaStatusText = "unknown visa status"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(phaseTag, phaseValidation)
	core.RegisterCustomTranslation(validate, translator, phaseTag, phaseText)

	_ = validate.RegisterValidation(visaStatusTag, visaStatusValidation)
	core.RegisterCustomTranslation(validate, translator, visaStatusTag, visaStatusText)
}

// phaseValidation checks that the value is a Sequence member.
func phaseValidation(fl validator.FieldLevel) bool {
	return Phase(fl.Field().String()).IsValid()
}

func visaStatusValidation(fl validator.FieldLevel) bool {
	switch VisaStatus(fl.Field().String()) {
	case VisaNotStarted, VisaInProgress, VisaApproved, VisaRejected:
		return true
	}
	return false
}
