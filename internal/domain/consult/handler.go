package consult

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/wardtrack/wardtrack/internal/platform/apperr"
	"github.com/wardtrack/wardtrack/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/consults/", h.ListConsults)
	e.GET("/patient/:id/consult/", h.GetRequestForm)
	e.POST("/patient/:id/consult/", h.Request)
	e.GET("/consult/:id/update/", h.GetReviewForm)
	e.POST("/consult/:id/update/", h.Review)
}

// ListConsults serves the consults dashboard: filtered rows plus tallies
// over the same filtered set.
func (h *Handler) ListConsults(c echo.Context) error {
	f := Filter{
		Status:    Status(c.QueryParam("status")),
		Specialty: Specialty(c.QueryParam("specialty")),
	}
	list, err := h.svc.ListWithStats(c.Request().Context(), f)
	if err != nil {
		return apperr.JSON(c, err)
	}

	pg := pagination.FromContext(c)
	start, end := pg.Window(len(list.Consults))
	return c.JSON(http.StatusOK, map[string]interface{}{
		"consults": pagination.NewResponse(list.Consults[start:end], len(list.Consults), pg.Limit, pg.Offset),
		"stats":    list.Stats,
		"choices": map[string]interface{}{
			"status":    StatusChoices(),
			"specialty": SpecialtyChoices(),
		},
	})
}

func (h *Handler) GetRequestForm(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	consults, err := h.svc.ListByPatient(c.Request().Context(), id)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"patient_id": id,
		"consults":   consults,
		"choices": map[string]interface{}{
			"specialty": SpecialtyChoices(),
		},
	})
}

func (h *Handler) Request(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var in RequestInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if _, err := h.svc.Request(c.Request().Context(), id, in); err != nil {
		return apperr.JSON(c, err)
	}
	return c.Redirect(http.StatusSeeOther, "/patient/"+id.String()+"/")
}

func (h *Handler) GetReviewForm(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid consult id")
	}
	cr, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"consult": cr,
		"choices": map[string]interface{}{
			"status": StatusChoices(),
		},
	})
}

func (h *Handler) Review(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid consult id")
	}
	var in ReviewInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if _, err := h.svc.Review(c.Request().Context(), id, in); err != nil {
		return apperr.JSON(c, err)
	}
	return c.Redirect(http.StatusSeeOther, "/consults/")
}
