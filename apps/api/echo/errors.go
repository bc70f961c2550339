package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/unipath/unipath/core"
	"github.com/unipath/unipath/core/application"
	"github.com/unipath/unipath/core/document"
	"github.com/unipath/unipath/core/student"
)

var errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

// phaseChangeRejection is the contract consumers rely on to build remediation
// guidance: the missing document list, not just a message.
type phaseChangeRejection struct {
	Accepted         bool            `json:"accepted"`
	TargetPhase      student.Phase   `json:"target_phase"`
	PhaseDescription string          `json:"phase_description"`
	MissingDocuments []document.Type `json:"missing_documents"`
	Remediation      []string        `json:"remediation,omitempty"`
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *student.PhaseChangeError:
			code = http.StatusConflict
			message = phaseChangeRejection{
				TargetPhase:      origErr.TargetPhase,
				PhaseDescription: origErr.PhaseDescription,
				MissingDocuments: origErr.MissingDocuments,
				Remediation:      origErr.Remediation(),
			}
		default:
			switch origErr {
			case student.ErrNotFound, student.ErrProfileNotFound, document.ErrNotFound, application.ErrNotFound:
				code = http.StatusNotFound
				message = origErr.Error()
			case student.ErrInvalidPhase, student.ErrNoChangeRequested:
				code = http.StatusBadRequest
				message = err.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				logger.Error(msg, errors.Wrap(err, msg))

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
