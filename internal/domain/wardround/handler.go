package wardround

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/wardtrack/wardtrack/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/patient/:id/ward-round/", h.GetForm)
	e.POST("/patient/:id/ward-round/", h.Add)
}

// GetForm returns the state needed to render the general ward round form:
// the patient's recent rounds.
func (h *Handler) GetForm(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	rounds, err := h.svc.ListByPatient(c.Request().Context(), id, 10)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"patient_id":  id,
		"ward_rounds": rounds,
	})
}

func (h *Handler) Add(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var in AddInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if _, err := h.svc.Add(c.Request().Context(), id, in); err != nil {
		return apperr.JSON(c, err)
	}
	return c.Redirect(http.StatusSeeOther, "/patient/"+id.String()+"/")
}
