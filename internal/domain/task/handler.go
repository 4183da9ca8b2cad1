package task

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
	e.GET("/patient/:id/task/", h.GetAddForm)
	e.POST("/patient/:id/task/", h.Add)
	e.GET("/task/:id/edit/", h.GetEditForm)
	e.POST("/task/:id/edit/", h.Edit)
}

func (h *Handler) GetAddForm(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	tasks, err := h.svc.ListByPatient(c.Request().Context(), id)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"patient_id": id,
		"tasks":      tasks,
		"choices": map[string]interface{}{
			"priority": PriorityChoices(),
		},
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

func (h *Handler) GetEditForm(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid task id")
	}
	t, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"task": t,
		"choices": map[string]interface{}{
			"priority": PriorityChoices(),
			"status":   StatusChoices(),
			"action":   []string{ActionUpdate, ActionComplete, ActionDelete},
		},
	})
}

func (h *Handler) Edit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid task id")
	}
	// Load first so the patient redirect target survives a delete.
	existing, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.JSON(c, err)
	}

	var in EditInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if _, err := h.svc.Edit(c.Request().Context(), id, in); err != nil {
		return apperr.JSON(c, err)
	}
	return c.Redirect(http.StatusSeeOther, "/patient/"+existing.PatientID.String()+"/")
}
