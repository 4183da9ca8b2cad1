package patient

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/wardtrack/wardtrack/internal/domain/consult"
	"github.com/wardtrack/wardtrack/internal/domain/task"
	"github.com/wardtrack/wardtrack/internal/domain/wardround"
	"github.com/wardtrack/wardtrack/internal/platform/apperr"
	"github.com/wardtrack/wardtrack/pkg/pagination"
)

// detailRoundLimit caps the ward round history shown on the detail view.
const detailRoundLimit = 10

// DetailSources feeds the patient detail view with the child records
// owned by the other domain packages.
type DetailSources struct {
	Consults  func(ctx context.Context, patientID uuid.UUID) ([]*consult.ConsultRequest, error)
	Rounds    func(ctx context.Context, patientID uuid.UUID, limit int) ([]*wardround.WardRound, error)
	OpenTasks func(ctx context.Context, patientID uuid.UUID) ([]*task.Task, error)
}

type Handler struct {
	svc    *Service
	detail DetailSources
}

func NewHandler(svc *Service, detail DetailSources) *Handler {
	return &Handler{svc: svc, detail: detail}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.ListPatients)
	e.GET("/take-list/", h.TakeList)
	e.GET("/weekend-review/", h.WeekendReview)

	e.GET("/patient/new/", h.GetRegisterForm)
	e.POST("/patient/new/", h.Register)

	e.GET("/patient/:id/", h.Detail)
	e.GET("/patient/:id/edit/", h.GetEditForm)
	e.POST("/patient/:id/edit/", h.Edit)
	e.GET("/patient/:id/referral/", h.GetReferralForm)
	e.POST("/patient/:id/referral/", h.Refer)
	e.GET("/patient/:id/change-specialty/", h.GetChangeSpecialtyForm)
	e.POST("/patient/:id/change-specialty/", h.ChangeSpecialty)
	e.GET("/patient/:id/clerking/", h.GetClerkingForm)
	e.POST("/patient/:id/clerking/", h.UpdateClerking)
	e.GET("/patient/:id/ptwr/", h.GetPTWRForm)
	e.POST("/patient/:id/ptwr/", h.UpdatePTWR)
	e.GET("/patient/:id/update-team/", h.GetUpdateTeamForm)
	e.POST("/patient/:id/update-team/", h.UpdateTeam)

	e.POST("/patient/:id/complete-admission/", h.CompleteAdmission)
	e.POST("/patient/:id/toggle-priority/", h.TogglePriority)
	e.POST("/patient/:id/toggle-weekend-review/", h.ToggleWeekendReview)
}

func patientID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	return id, nil
}

func redirectToDetail(c echo.Context, id uuid.UUID) error {
	return c.Redirect(http.StatusSeeOther, "/patient/"+id.String()+"/")
}

func bindListFilter(c echo.Context) (ListFilter, error) {
	var f ListFilter
	if err := c.Bind(&f); err != nil {
		return f, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return f, nil
}

func (h *Handler) ListPatients(c echo.Context) error {
	f, err := bindListFilter(c)
	if err != nil {
		return err
	}
	patients, err := h.svc.List(c.Request().Context(), f)
	if err != nil {
		return apperr.JSON(c, err)
	}
	page := pagination.FromContext(c)
	start, end := page.Window(len(patients))
	return c.JSON(http.StatusOK, pagination.NewResponse(patients[start:end], len(patients), page.Limit, page.Offset))
}

func (h *Handler) TakeList(c echo.Context) error {
	f, err := bindListFilter(c)
	if err != nil {
		return err
	}
	sortKey := c.QueryParam("sort")
	sortDesc := c.QueryParam("order") == "desc"

	patients, stats, err := h.svc.TakeList(c.Request().Context(), f, sortKey, sortDesc)
	if err != nil {
		return apperr.JSON(c, err)
	}
	page := pagination.FromContext(c)
	start, end := page.Window(len(patients))
	return c.JSON(http.StatusOK, map[string]interface{}{
		"patients": pagination.NewResponse(patients[start:end], len(patients), page.Limit, page.Offset),
		"stats":    stats,
	})
}

func (h *Handler) WeekendReview(c echo.Context) error {
	f, err := bindListFilter(c)
	if err != nil {
		return err
	}
	patients, err := h.svc.WeekendReviewList(c.Request().Context(), f)
	if err != nil {
		return apperr.JSON(c, err)
	}
	page := pagination.FromContext(c)
	start, end := page.Window(len(patients))
	return c.JSON(http.StatusOK, pagination.NewResponse(patients[start:end], len(patients), page.Limit, page.Offset))
}

func (h *Handler) GetRegisterForm(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"choices": map[string]interface{}{
			"specialty":       SpecialtyChoices(),
			"team":            TeamChoices(),
			"admission_type":  AdmissionTypeChoices(),
			"referral_source": ReferralSourceChoices(),
			"location":        LocationChoices(),
		},
	})
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return redirectToDetail(c, p.ID)
}

func (h *Handler) Detail(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	p, err := h.svc.Get(ctx, id)
	if err != nil {
		return apperr.JSON(c, err)
	}
	consults, err := h.detail.Consults(ctx, id)
	if err != nil {
		return apperr.JSON(c, err)
	}
	rounds, err := h.detail.Rounds(ctx, id, detailRoundLimit)
	if err != nil {
		return apperr.JSON(c, err)
	}
	openTasks, err := h.detail.OpenTasks(ctx, id)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"patient":                p,
		"consults":               consults,
		"ward_rounds":            rounds,
		"open_tasks":             openTasks,
		"can_complete_admission": p.CanCompleteAdmission(),
	})
}

func (h *Handler) GetEditForm(c echo.Context) error {
	return h.stateForm(c, func(p *Patient) map[string]interface{} {
		return map[string]interface{}{
			"location": LocationChoices(),
		}
	})
}

func (h *Handler) Edit(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	var in EditInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if _, err := h.svc.Edit(c.Request().Context(), id, in); err != nil {
		return apperr.JSON(c, err)
	}
	return redirectToDetail(c, id)
}

func (h *Handler) GetReferralForm(c echo.Context) error {
	return h.stateForm(c, func(p *Patient) map[string]interface{} {
		return map[string]interface{}{
			"specialty": []Specialty{SpecialtyMedicine, SpecialtySurgery, SpecialtyOrthopaedics},
			"team":      TeamChoices(),
		}
	})
}

func (h *Handler) Refer(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	var in ReferInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if _, err := h.svc.Refer(c.Request().Context(), id, in); err != nil {
		return apperr.JSON(c, err)
	}
	return redirectToDetail(c, id)
}

func (h *Handler) GetChangeSpecialtyForm(c echo.Context) error {
	return h.stateForm(c, func(p *Patient) map[string]interface{} {
		return map[string]interface{}{
			"specialty": []Specialty{SpecialtyMedicine, SpecialtySurgery, SpecialtyOrthopaedics},
		}
	})
}

func (h *Handler) ChangeSpecialty(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	var in ChangeSpecialtyInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if _, err := h.svc.ChangeSpecialty(c.Request().Context(), id, in); err != nil {
		return apperr.JSON(c, err)
	}
	return redirectToDetail(c, id)
}

func (h *Handler) GetClerkingForm(c echo.Context) error {
	return h.stateForm(c, func(p *Patient) map[string]interface{} {
		return map[string]interface{}{
			"status": WorkflowStatusChoices(),
		}
	})
}

func (h *Handler) UpdateClerking(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	var in ClerkingInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if _, err := h.svc.UpdateClerking(c.Request().Context(), id, in); err != nil {
		return apperr.JSON(c, err)
	}
	return redirectToDetail(c, id)
}

func (h *Handler) GetPTWRForm(c echo.Context) error {
	return h.stateForm(c, func(p *Patient) map[string]interface{} {
		return map[string]interface{}{
			"status": WorkflowStatusChoices(),
		}
	})
}

func (h *Handler) UpdatePTWR(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	var in PTWRInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if _, err := h.svc.UpdatePTWR(c.Request().Context(), id, in); err != nil {
		return apperr.JSON(c, err)
	}
	return redirectToDetail(c, id)
}

func (h *Handler) GetUpdateTeamForm(c echo.Context) error {
	return h.stateForm(c, func(p *Patient) map[string]interface{} {
		return map[string]interface{}{
			"team": TeamsForSpecialty[p.Specialty],
		}
	})
}

func (h *Handler) UpdateTeam(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	var in UpdateTeamInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if _, err := h.svc.UpdateTeam(c.Request().Context(), id, in); err != nil {
		return apperr.JSON(c, err)
	}
	return redirectToDetail(c, id)
}

func (h *Handler) CompleteAdmission(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	if _, err := h.svc.CompleteAdmission(c.Request().Context(), id); err != nil {
		return apperr.JSON(c, err)
	}
	return redirectToDetail(c, id)
}

func (h *Handler) TogglePriority(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	if _, err := h.svc.TogglePriority(c.Request().Context(), id); err != nil {
		return apperr.JSON(c, err)
	}
	return redirectToDetail(c, id)
}

func (h *Handler) ToggleWeekendReview(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	if _, err := h.svc.ToggleWeekendReview(c.Request().Context(), id); err != nil {
		return apperr.JSON(c, err)
	}
	return redirectToDetail(c, id)
}

// stateForm renders a transition form: current patient state plus the
// choice sets the form needs.
func (h *Handler) stateForm(c echo.Context, choices func(p *Patient) map[string]interface{}) error {
	id, err := patientID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"patient": p,
		"choices": choices(p),
	})
}
