package appointment

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ayusutra-api/internal/directory"
	"github.com/jwalitptl/ayusutra-api/internal/model"
	"github.com/jwalitptl/ayusutra-api/internal/service/booking"
	apperrors "github.com/jwalitptl/ayusutra-api/pkg/errors"
	"github.com/jwalitptl/ayusutra-api/pkg/httputil"
)

type Handler struct {
	directory *directory.Directory
	service   *booking.Service
	now       func() time.Time
}

func NewHandler(dir *directory.Directory, service *booking.Service, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{directory: dir, service: service, now: now}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/appointments", h.CreateAppointment)
}

type createAppointmentRequest struct {
	DoctorID string `json:"doctor_id"`
	model.BookingForm
}

// IntakeState mirrors the booking surface after a submission.
type IntakeState struct {
	Open bool              `json:"open"`
	Form model.BookingForm `json:"form"`
}

type createAppointmentResponse struct {
	*booking.Confirmation
	Intake IntakeState `json:"intake"`
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	if err := booking.ValidateForm(req.BookingForm, h.now(), h.service.Location()); err != nil {
		var verr *booking.ValidationError
		if errors.As(err, &verr) {
			httputil.RespondWithError(c, apperrors.NewValidation(verr.Fields, err))
			return
		}
		httputil.RespondWithError(c, apperrors.BadRequest("invalid booking form", err))
		return
	}

	// An unknown doctor means nothing is selected: the submission is a no-op.
	var doctor *model.Doctor
	if req.DoctorID != "" {
		if doc, err := h.directory.Get(req.DoctorID); err == nil {
			doctor = doc
		}
	}

	session := booking.NewSession(h.service)
	if doctor != nil {
		session.Open(doctor)
	}
	session.Fill(req.BookingForm)

	conf, err := session.Submit(c.Request.Context())
	if err != nil {
		var perr *booking.PersistenceError
		if errors.As(err, &perr) {
			_ = c.Error(err)
			httputil.RespondWithErrorData(c,
				apperrors.NewUpstream("There was an error booking your appointment. Please try again.", err),
				IntakeState{Open: session.IsOpen(), Form: session.Form()},
			)
			return
		}
		httputil.RespondWithError(c, apperrors.Internal(err))
		return
	}
	if conf == nil {
		c.Status(http.StatusNoContent)
		return
	}

	httputil.RespondWithStatus(c, http.StatusCreated, createAppointmentResponse{
		Confirmation: conf,
		Intake:       IntakeState{Open: session.IsOpen(), Form: session.Form()},
	})
}
