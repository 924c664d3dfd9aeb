package prescription

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinic/internal/domain/doctor"
	"github.com/clinicdesk/clinic/internal/platform/apperr"
	"github.com/clinicdesk/clinic/internal/platform/auth"
)

// DoctorResolver maps a token subject to the acting doctor.
type DoctorResolver interface {
	GetByEmail(ctx context.Context, email string) (*doctor.Doctor, error)
}

type Handler struct {
	svc     *Service
	doctors DoctorResolver
}

func NewHandler(svc *Service, doctors DoctorResolver) *Handler {
	return &Handler{svc: svc, doctors: doctors}
}

func (h *Handler) RegisterRoutes(g *echo.Group, ts *auth.TokenService) {
	asDoctor := auth.Require(ts, auth.RoleDoctor)
	g.POST("/prescriptions", h.Save, asDoctor)
	g.GET("/appointments/:id/prescription", h.GetByAppointment, asDoctor)
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

func (h *Handler) Save(c echo.Context) error {
	d, err := h.actingDoctor(c)
	if err != nil {
		return err
	}
	var in SaveInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.svc.Save(c.Request().Context(), d.ID, in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetByAppointment(c echo.Context) error {
	d, err := h.actingDoctor(c)
	if err != nil {
		return err
	}
	apptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	p, err := h.svc.GetByAppointment(c.Request().Context(), d.ID, apptID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}
