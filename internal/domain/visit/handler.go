package visit

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careflow/careflow/internal/platform/auth"
	"github.com/careflow/careflow/pkg/pagination"
)

// Handler exposes the visit workflow over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts visit routes on the given group. Each department's
// save endpoint is guarded by that department's role.
func (h *Handler) Register(g *echo.Group) {
	g.POST("/visits", h.createVisit, auth.RequireRole("triage"))
	g.GET("/visits", h.listQueue)
	g.GET("/visits/today/:patientId", h.currentSnapshot)
	g.GET("/visits/:id", h.snapshot)
	g.GET("/visits/:id/transitions", h.transitions)
	g.PATCH("/visits/:id/state", h.advanceState)
	g.POST("/visits/:id/triage", h.saveTriage, auth.RequireRole("triage"))
	g.PUT("/visits/:id/consultation", h.saveNote, auth.RequireRole("physician"))
	g.POST("/visits/:id/lab-results", h.saveLabResult, auth.RequireRole("lab"))
	g.POST("/visits/:id/dispense", h.saveDispense, auth.RequireRole("pharmacy"))
	g.POST("/visits/:id/billing", h.saveBilling, auth.RequireRole("billing"))
}

func (h *Handler) createVisit(c echo.Context) error {
	var req CreateVisitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.PatientID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}

	ctx := c.Request().Context()
	v, err := h.service.CreateVisit(ctx, req, auth.UserIDFromContext(ctx))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) currentSnapshot(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	snap, err := h.service.CurrentVisitSnapshot(c.Request().Context(), patientID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, snap)
}

func (h *Handler) snapshot(c echo.Context) error {
	id, err := visitID(c)
	if err != nil {
		return err
	}

	snap, err := h.service.SnapshotByVisit(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, snap)
}

func (h *Handler) transitions(c echo.Context) error {
	id, err := visitID(c)
	if err != nil {
		return err
	}

	history, err := h.service.Transitions(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	if history == nil {
		history = []*StateTransition{}
	}
	return c.JSON(http.StatusOK, history)
}

func (h *Handler) listQueue(c echo.Context) error {
	state := State(c.QueryParam("state"))
	if state == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "state query parameter is required")
	}
	params := pagination.FromContext(c)

	visits, total, err := h.service.ListQueue(c.Request().Context(), state, params.Limit(), params.Offset())
	if err != nil {
		return mapError(err)
	}
	if visits == nil {
		visits = []*Visit{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(visits, params, total))
}

type advanceRequest struct {
	CurrentState State `json:"current_state"`
	NextState    State `json:"next_state"`
}

func (h *Handler) advanceState(c echo.Context) error {
	id, err := visitID(c)
	if err != nil {
		return err
	}

	var req advanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	v, err := h.service.AdvanceState(ctx, id, req.CurrentState, req.NextState, auth.UserIDFromContext(ctx))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, v)
}

type triageRequest struct {
	VitalSigns VitalSigns `json:"vital_signs"`
}

func (h *Handler) saveTriage(c echo.Context) error {
	id, err := visitID(c)
	if err != nil {
		return err
	}

	var req triageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	rec, err := h.service.SaveTriage(ctx, id, req.VitalSigns, auth.UserIDFromContext(ctx))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) saveNote(c echo.Context) error {
	id, err := visitID(c)
	if err != nil {
		return err
	}

	var req NoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	note, err := h.service.SaveConsultationNote(ctx, id, req, auth.UserIDFromContext(ctx))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, note)
}

func (h *Handler) saveLabResult(c echo.Context) error {
	id, err := visitID(c)
	if err != nil {
		return err
	}

	var req LabResultRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	rec, err := h.service.SaveLabResult(ctx, id, req, auth.UserIDFromContext(ctx))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) saveDispense(c echo.Context) error {
	id, err := visitID(c)
	if err != nil {
		return err
	}

	var req DispenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	d, err := h.service.SaveDispense(ctx, id, req, auth.UserIDFromContext(ctx))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) saveBilling(c echo.Context) error {
	id, err := visitID(c)
	if err != nil {
		return err
	}

	var req BillingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	b, err := h.service.SaveBilling(ctx, id, req, auth.UserIDFromContext(ctx))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

func visitID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid visit id")
	}
	return id, nil
}

// mapError translates domain sentinels to HTTP status codes. Conflict
// and not-found stay distinct so screens can prompt a refresh instead
// of reporting a missing record.
func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNoOpenVisit),
		errors.Is(err, ErrVisitNotFound),
		errors.Is(err, ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrStateConflict),
		errors.Is(err, ErrOpenVisitExists),
		errors.Is(err, ErrMultipleOpenVisits),
		errors.Is(err, ErrDuplicateRecord):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrNoteMissing),
		errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
