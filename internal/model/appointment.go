package model

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "Scheduled"
)

// AppointmentRequest is built from the booking form. It is handed to the
// appointment store and then discarded.
type AppointmentRequest struct {
	DoctorID        string            `json:"doctor_id"`
	PatientName     string            `json:"patient_name"`
	PatientPhone    string            `json:"patient_phone"`
	AppointmentDate string            `json:"appointment_date"`
	AppointmentTime string            `json:"appointment_time"`
	Status          AppointmentStatus `json:"status"`
}

// BookingForm holds the raw intake fields.
type BookingForm struct {
	PatientName         string `json:"patient_name" validate:"required"`
	PatientPhone        string `json:"patient_phone" validate:"required,phone"`
	AppointmentDateTime string `json:"appointment_datetime" validate:"required,datetime=2006-01-02T15:04"`
}

// IsEmpty reports whether every field is blank.
func (f BookingForm) IsEmpty() bool {
	return f == BookingForm{}
}
