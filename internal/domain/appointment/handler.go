package appointment

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinic/internal/domain/doctor"
	"github.com/clinicdesk/clinic/internal/domain/patient"
	"github.com/clinicdesk/clinic/internal/platform/apperr"
	"github.com/clinicdesk/clinic/internal/platform/auth"
)

// PatientResolver maps a token subject to the acting patient.
type PatientResolver interface {
	GetByEmail(ctx context.Context, email string) (*patient.Patient, error)
}

// DoctorResolver maps a token subject to the acting doctor.
type DoctorResolver interface {
	GetByEmail(ctx context.Context, email string) (*doctor.Doctor, error)
}

type Handler struct {
	svc      *Service
	patients PatientResolver
	doctors  DoctorResolver
}

func NewHandler(svc *Service, patients PatientResolver, doctors DoctorResolver) *Handler {
	return &Handler{svc: svc, patients: patients, doctors: doctors}
}

func (h *Handler) RegisterRoutes(g *echo.Group, ts *auth.TokenService) {
	g.GET("/doctors/:id/availability", h.Availability)

	asPatient := auth.Require(ts, auth.RolePatient)
	g.POST("/appointments", h.Book, asPatient)
	g.PUT("/appointments/:id", h.Update, asPatient)
	g.DELETE("/appointments/:id", h.Cancel, asPatient)
	g.GET("/patients/:id/appointments", h.ListForPatient, asPatient)

	asDoctor := auth.Require(ts, auth.RoleDoctor)
	g.POST("/appointments/:id/complete", h.Complete, asDoctor)
	g.GET("/appointments", h.ListForDoctor, asDoctor)
}

const dateLayout = "2006-01-02"

// queryDate parses the date query param, defaulting to today.
func queryDate(c echo.Context) (time.Time, error) {
	v := c.QueryParam("date")
	if v == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	}
	return time.Parse(dateLayout, v)
}

func (h *Handler) actingPatient(c echo.Context) (*patient.Patient, error) {
	email := auth.SubjectFromContext(c.Request().Context())
	if email == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing token subject")
	}
	p, err := h.patients.GetByEmail(c.Request().Context(), email)
	if err != nil {
		return nil, apperr.ToHTTP(err)
	}
	return p, nil
}

func (h *Handler) actingDoctor(c echo.Context) (*doctor.Doctor, error) {
	email := auth.SubjectFromContext(c.Request().Context())
	if email == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing token subject")
	}
	d, err := h.doctors.GetByEmail(c.Request().Context(), email)
	if err != nil {
		return nil, apperr.ToHTTP(err)
	}
	return d, nil
}

type availabilityResponse struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	Date     string    `json:"date"`
	Slots    []string  `json:"slots"`
}

func (h *Handler) Availability(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	day, err := queryDate(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	slots, err := h.svc.Availability(c.Request().Context(), id, day)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if slots == nil {
		slots = []string{}
	}
	return c.JSON(http.StatusOK, availabilityResponse{
		DoctorID: id,
		Date:     day.Format(dateLayout),
		Slots:    slots,
	})
}

type bookRequest struct {
	DoctorID        uuid.UUID `json:"doctor_id"`
	AppointmentTime time.Time `json:"appointment_time"`
}

func (h *Handler) Book(c echo.Context) error {
	p, err := h.actingPatient(c)
	if err != nil {
		return err
	}
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.Book(c.Request().Context(), p.ID, req.DoctorID, req.AppointmentTime)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, a)
}

type updateRequest struct {
	AppointmentTime time.Time `json:"appointment_time"`
}

func (h *Handler) Update(c echo.Context) error {
	p, err := h.actingPatient(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.Update(c.Request().Context(), id, p.ID, req.AppointmentTime)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Cancel(c echo.Context) error {
	p, err := h.actingPatient(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	if err := h.svc.Cancel(c.Request().Context(), id, p.ID); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Complete(c echo.Context) error {
	d, err := h.actingDoctor(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	a, err := h.svc.Complete(c.Request().Context(), id, d.ID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListForDoctor(c echo.Context) error {
	d, err := h.actingDoctor(c)
	if err != nil {
		return err
	}
	day, err := queryDate(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	appts, err := h.svc.QueryForDoctor(c.Request().Context(), d.ID, day, c.QueryParam("patient_name"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if appts == nil {
		appts = []*Appointment{}
	}
	return c.JSON(http.StatusOK, appts)
}

// ListForPatient serves a patient's own history; requesting another
// patient's list is Unauthorized regardless of its existence.
func (h *Handler) ListForPatient(c echo.Context) error {
	p, err := h.actingPatient(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	if id != p.ID {
		return echo.NewHTTPError(http.StatusUnauthorized, "appointments belong to another patient")
	}
	q := PatientQuery{PatientID: p.ID, DoctorName: c.QueryParam("doctor_name")}
	if v := c.QueryParam("status"); v != "" {
		st, err := ParseStatus(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		q.Status = &st
	}
	appts, err := h.svc.QueryForPatient(c.Request().Context(), q)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if appts == nil {
		appts = []*Appointment{}
	}
	return c.JSON(http.StatusOK, appts)
}
