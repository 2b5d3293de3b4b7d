package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/event-planner/gateway/internal/auth"
	"example.com/event-planner/gateway/internal/cart"
	"example.com/event-planner/gateway/internal/models"
	"example.com/event-planner/gateway/internal/planner"
)

// CartFactory возвращает клиент корзины, действующий от имени владельца токена.
type CartFactory func(token string) planner.CartAPI

type PlannerHandler struct {
	Sessions *planner.Registry
	Carts    CartFactory
	Local    planner.LocalStore
	Notifier planner.Notifier
	Logger   *slog.Logger
}

// NewPlannerHandler создает обработчик сессий планировщика.
func NewPlannerHandler(sessions *planner.Registry, carts CartFactory, local planner.LocalStore, notifier planner.Notifier, logger *slog.Logger) *PlannerHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &PlannerHandler{
		Sessions: sessions,
		Carts:    carts,
		Local:    local,
		Notifier: notifier,
		Logger:   logger,
	}
}

type OpenSessionRequest struct {
	EventID          string `json:"event_id" validate:"required,max=128"`
	EventBudgetCents int64  `json:"event_budget_cents" validate:"gte=0"`
}

type AddServiceRequest struct {
	StepID string        `json:"step_id" validate:"required,max=64"`
	Vendor models.Vendor `json:"vendor"`
}

type ProgressRequest struct {
	CurrentStep    *int  `json:"current_step" validate:"required,gte=0"`
	CompletedSteps []int `json:"completed_steps" validate:"omitempty,dive,gte=0"`
}

type SessionResponse struct {
	ID               uuid.UUID             `json:"id"`
	EventID          string                `json:"event_id"`
	EventBudgetCents int64                 `json:"event_budget_cents"`
	CurrentStep      int                   `json:"current_step"`
	CompletedSteps   []int                 `json:"completed_steps"`
	SelectedServices map[string]string     `json:"selected_services"`
	Cart             []models.CartItem     `json:"cart"`
	Budget           models.BudgetSnapshot `json:"budget"`
	BudgetStatus     models.BudgetStatus   `json:"budget_status"`
	State            models.SessionState   `json:"state"`
	Degraded         bool                  `json:"degraded"`
}

type OpenSessionResponse struct {
	Session  SessionResponse `json:"session"`
	Restored bool            `json:"restored"`
}

type MutationResponse struct {
	Session      SessionResponse     `json:"session"`
	BudgetStatus models.BudgetStatus `json:"budget_status"`
	OverBudget   bool                `json:"over_budget"`
}

type SaveResponse struct {
	Session     SessionResponse `json:"session"`
	SavedRemote bool            `json:"saved_remote"`
	Warning     string          `json:"warning,omitempty"`
}

type FinalizeResponse struct {
	Bookings       []models.Booking `json:"bookings"`
	TotalCostCents int64            `json:"total_cost_cents"`
	Session        SessionResponse  `json:"session"`
}

// Open открывает сессию планировщика для события и загружает корзину.
func (h *PlannerHandler) Open(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	token, _ := auth.TokenFromContext(c)

	var req OpenSessionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	session := models.NewPlannerSession(userID, req.EventID, req.EventBudgetCents)
	controller := planner.NewController(session, h.Carts(token), h.Local, h.Notifier, h.Logger)

	outcome, err := controller.Open(c.Request().Context())
	if err != nil {
		return h.plannerError(c, err)
	}

	h.Sessions.Add(controller)

	return c.JSON(http.StatusCreated, OpenSessionResponse{
		Session:  toSessionResponse(outcome.Session),
		Restored: outcome.Restored,
	})
}

// Get возвращает текущее состояние сессии.
func (h *PlannerHandler) Get(c echo.Context) error {
	controller, err := h.controller(c)
	if err != nil {
		return h.plannerError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]SessionResponse{"session": toSessionResponse(controller.Session())})
}

// Close закрывает сессию без финализации.
func (h *PlannerHandler) Close(c echo.Context) error {
	userID, sessionID, err := sessionParams(c)
	if err != nil {
		return h.plannerError(c, err)
	}

	if err := h.Sessions.Remove(userID, sessionID); err != nil {
		return h.plannerError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// AddService добавляет услугу поставщика в корзину.
func (h *PlannerHandler) AddService(c echo.Context) error {
	controller, err := h.controller(c)
	if err != nil {
		return h.plannerError(c, err)
	}

	var req AddServiceRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	result, err := controller.AddService(c.Request().Context(), req.StepID, req.Vendor)
	if err != nil {
		return h.plannerError(c, err)
	}

	return c.JSON(http.StatusOK, toMutationResponse(result))
}

// RemoveItem удаляет позицию корзины.
func (h *PlannerHandler) RemoveItem(c echo.Context) error {
	controller, err := h.controller(c)
	if err != nil {
		return h.plannerError(c, err)
	}

	itemID := c.Param("itemId")
	if itemID == "" {
		return badRequest(c, "invalid item id")
	}

	result, err := controller.RemoveItem(c.Request().Context(), itemID)
	if err != nil {
		return h.plannerError(c, err)
	}

	return c.JSON(http.StatusOK, toMutationResponse(result))
}

// ClearCart очищает корзину события.
func (h *PlannerHandler) ClearCart(c echo.Context) error {
	controller, err := h.controller(c)
	if err != nil {
		return h.plannerError(c, err)
	}

	result, err := controller.ClearCart(c.Request().Context())
	if err != nil {
		return h.plannerError(c, err)
	}

	return c.JSON(http.StatusOK, toMutationResponse(result))
}

// UpdateProgress обновляет шаг мастера и завершенные шаги.
func (h *PlannerHandler) UpdateProgress(c echo.Context) error {
	controller, err := h.controller(c)
	if err != nil {
		return h.plannerError(c, err)
	}

	var req ProgressRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	session, err := controller.SetProgress(*req.CurrentStep, req.CompletedSteps)
	if err != nil {
		return h.plannerError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]SessionResponse{"session": toSessionResponse(session)})
}

// Save сохраняет прогресс; сбой сервера возвращается как предупреждение.
func (h *PlannerHandler) Save(c echo.Context) error {
	controller, err := h.controller(c)
	if err != nil {
		return h.plannerError(c, err)
	}

	outcome, err := controller.Save(c.Request().Context())
	if err != nil {
		return h.plannerError(c, err)
	}

	response := SaveResponse{
		Session:     toSessionResponse(outcome.Session),
		SavedRemote: outcome.SavedRemote,
	}
	if outcome.RemoteErr != nil {
		response.Warning = "progress saved locally only"
	}

	return c.JSON(http.StatusOK, response)
}

// Finalize создает бронирования по корзине.
func (h *PlannerHandler) Finalize(c echo.Context) error {
	controller, err := h.controller(c)
	if err != nil {
		return h.plannerError(c, err)
	}

	result, err := controller.Finalize(c.Request().Context())
	if err != nil {
		return h.plannerError(c, err)
	}

	session := controller.Session()
	if err := h.Sessions.Remove(session.UserID, session.ID); err != nil {
		h.Logger.Warn("failed to drop finalized session",
			slog.String("session_id", session.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	return c.JSON(http.StatusOK, FinalizeResponse{
		Bookings:       result.Bookings,
		TotalCostCents: result.TotalCostCents,
		Session:        toSessionResponse(session),
	})
}

var errInvalidSessionID = errors.New("invalid session id")

func (h *PlannerHandler) controller(c echo.Context) (*planner.Controller, error) {
	userID, sessionID, err := sessionParams(c)
	if err != nil {
		return nil, err
	}

	return h.Sessions.Get(userID, sessionID)
}

func sessionParams(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return uuid.Nil, uuid.Nil, echo.ErrUnauthorized
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, errInvalidSessionID
	}

	return userID, sessionID, nil
}

func (h *PlannerHandler) plannerError(c echo.Context, err error) error {
	var (
		reqErr *cart.RequestError
		valErr *cart.ValidationError
	)

	switch {
	case errors.Is(err, echo.ErrUnauthorized):
		return unauthorized(c)
	case errors.Is(err, errInvalidSessionID):
		return badRequest(c, "invalid session id")
	case errors.Is(err, planner.ErrSessionNotFound):
		return notFound(c, "session not found")
	case errors.Is(err, planner.ErrBusy):
		return conflict(c, "another planner operation is in progress")
	case errors.Is(err, planner.ErrSessionClosed):
		return gone(c, "session is closed")
	case errors.As(err, &valErr):
		return badRequest(c, valErr.Error())
	case errors.As(err, &reqErr):
		return badGateway(c, reqErr.Error(), reqErr.Status)
	case cart.IsNetwork(err):
		return unavailable(c, "event service is unavailable")
	}

	h.Logger.LogAttrs(c.Request().Context(), slog.LevelError, "planner request failed",
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return serverError(c)
}

func toSessionResponse(session models.PlannerSession) SessionResponse {
	cartItems := session.Cart
	if cartItems == nil {
		cartItems = []models.CartItem{}
	}

	return SessionResponse{
		ID:               session.ID,
		EventID:          session.EventID,
		EventBudgetCents: session.EventBudgetCents,
		CurrentStep:      session.CurrentStep,
		CompletedSteps:   session.CompletedStepList(),
		SelectedServices: session.SelectedServices,
		Cart:             cartItems,
		Budget:           session.Budget,
		BudgetStatus:     session.Budget.Status(),
		State:            session.State,
		Degraded:         session.Degraded,
	}
}

func toMutationResponse(result planner.MutationResult) MutationResponse {
	return MutationResponse{
		Session:      toSessionResponse(result.Session),
		BudgetStatus: result.BudgetStatus,
		OverBudget:   result.OverBudget,
	}
}
