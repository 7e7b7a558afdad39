package booking

import (
	"strings"
	"time"

	"github.com/jwalitptl/ayusutra-api/internal/model"
	"github.com/jwalitptl/ayusutra-api/pkg/validator"
)

// DateTimeLayout is the single date-and-time input format.
const DateTimeLayout = "2006-01-02T15:04"

var formValidator = validator.New()

// ValidateForm runs the input-control checks: every field is required, the
// phone uses the permissive pattern, and the appointment is not earlier than
// the current minute. Times are read in loc.
func ValidateForm(form model.BookingForm, now time.Time, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	form.PatientName = strings.TrimSpace(form.PatientName)
	fields := map[string]string{}
	if err := formValidator.Validate(&form); err != nil {
		fields = formValidator.FormatValidationErrors(err)
	}

	if _, bad := fields["appointment_datetime"]; !bad && form.AppointmentDateTime != "" {
		at, err := time.ParseInLocation(DateTimeLayout, form.AppointmentDateTime, loc)
		if err != nil {
			fields["appointment_datetime"] = "appointment_datetime must use the format " + DateTimeLayout
		} else if at.Before(now.In(loc).Truncate(time.Minute)) {
			fields["appointment_datetime"] = "appointment_datetime cannot be in the past"
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// SplitDateTime splits the combined value on "T". A value without a time
// part yields an empty time.
func SplitDateTime(v string) (date, clock string) {
	date, clock, _ = strings.Cut(v, "T")
	return date, clock
}

// DisplayTime renders the appointment time for the confirmation message,
// falling back to the raw value when it cannot be parsed.
func DisplayTime(v string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	at, err := time.ParseInLocation(DateTimeLayout, v, loc)
	if err != nil {
		return v
	}
	return at.Format("Jan 2, 2006, 3:04 PM")
}
