package campus

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/campuscopilot/core"
)

var (
	endAfterStartTag  = "afterstart"
	endAfterStartText = "end date must be after start date"
)

// InitValidators registers the campus validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(eventStructValidation, NewEvent{})
	core.RegisterCustomTranslation(validate, translator, endAfterStartTag, endAfterStartText)
}

// eventStructValidation checks that a NewEvent ends after it starts.
func eventStructValidation(sl validator.StructLevel) {
	ne := sl.Current().Interface().(NewEvent)
	if ne.StartDate.IsZero() || ne.EndDate.IsZero() {
		return
	}
	if !ne.EndDate.After(ne.StartDate) {
		sl.ReportError(ne.EndDate, "endDate", "EndDate", endAfterStartTag, "")
	}
}
