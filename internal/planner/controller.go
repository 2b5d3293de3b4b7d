package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"example.com/event-planner/gateway/internal/cart"
	"example.com/event-planner/gateway/internal/models"
	"example.com/event-planner/gateway/internal/notifications"
)

var (
	ErrBusy            = errors.New("planner session has an operation in flight")
	ErrSessionClosed   = errors.New("planner session is closed")
	ErrSessionNotFound = errors.New("planner session not found")
)

// CartAPI is the authoritative remote cart the controller reconciles against.
type CartAPI interface {
	AddItem(ctx context.Context, eventID, stepID string, vendor models.Vendor) (cart.AddResult, error)
	RemoveItem(ctx context.Context, eventID, itemID string) error
	ClearCart(ctx context.Context, eventID string) error
	GetCart(ctx context.Context, eventID string) (cart.CartView, error)
	Finalize(ctx context.Context, eventID string) (models.FinalizeResult, error)
	SaveProgress(ctx context.Context, eventID string, currentStep int, completedSteps []int, stepData map[string]interface{}) error
}

// LocalStore is the best-effort snapshot backup; implementations never fail.
type LocalStore interface {
	SaveLocalSnapshot(ctx context.Context, eventID string, snapshot models.LocalPlanSnapshot)
	LoadLocalSnapshot(ctx context.Context, eventID string) (models.LocalPlanSnapshot, bool)
	DeleteLocalSnapshot(ctx context.Context, eventID string)
}

type Notifier interface {
	Publish(userID uuid.UUID, event notifications.Event)
}

type MutationResult struct {
	Session      models.PlannerSession
	BudgetStatus models.BudgetStatus
	OverBudget   bool
}

type SaveOutcome struct {
	Session     models.PlannerSession
	SavedRemote bool
	RemoteErr   error
}

type OpenOutcome struct {
	Session  models.PlannerSession
	Restored bool
}

// Controller владеет одной сессией планировщика: все изменения проходят через
// него по одному, сверка всегда идет от корзины сервера к локальному состоянию.
type Controller struct {
	mu       sync.Mutex
	session  models.PlannerSession
	inFlight *semaphore.Weighted

	cart     CartAPI
	local    LocalStore
	notifier Notifier
	logger   *slog.Logger
}

// NewController создает контроллер для сессии.
func NewController(session models.PlannerSession, cartAPI CartAPI, local LocalStore, notifier Notifier, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		session:  session.Clone(),
		inFlight: semaphore.NewWeighted(1),
		cart:     cartAPI,
		local:    local,
		notifier: notifier,
		logger:   logger.With(slog.String("session_id", session.ID.String()), slog.String("event_id", session.EventID)),
	}
}

// Session возвращает копию текущего состояния сессии.
func (c *Controller) Session() models.PlannerSession {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.session.Clone()
}

// Open загружает корзину с сервера. Если backend недоступен, восстанавливает
// прогресс из локального снапшота и помечает сессию как деградированную.
func (c *Controller) Open(ctx context.Context) (OpenOutcome, error) {
	release, err := c.begin("")
	if err != nil {
		return OpenOutcome{}, err
	}
	defer release()
	ctx = detach(ctx)

	current := c.Session()

	view, err := c.cart.GetCart(ctx, current.EventID)
	if err != nil {
		if !cart.IsNetwork(err) {
			c.logFailure(ctx, "open", err)
			return OpenOutcome{}, err
		}

		snapshot, ok := c.local.LoadLocalSnapshot(ctx, current.EventID)
		next := current.Clone()
		next.Degraded = true
		if ok {
			next = ApplyLocalSnapshot(current, snapshot)
		}
		c.commit(next)

		c.logger.LogAttrs(ctx, slog.LevelWarn, "backend unreachable, using local snapshot",
			slog.Bool("restored", ok),
			slog.String("error", err.Error()),
		)
		c.publish(notifications.PlannerDegraded(next, "backend unreachable"))

		return OpenOutcome{Session: next.Clone(), Restored: ok}, nil
	}

	next := ReconcileAfterMutation(current, view)
	c.commit(next)
	return OpenOutcome{Session: next.Clone()}, nil
}

// AddService добавляет услугу поставщика для шага и сверяет состояние с сервером.
func (c *Controller) AddService(ctx context.Context, stepID string, vendor models.Vendor) (MutationResult, error) {
	release, err := c.begin("")
	if err != nil {
		return MutationResult{}, err
	}
	defer release()
	ctx = detach(ctx)

	current := c.Session()

	added, err := c.cart.AddItem(ctx, current.EventID, stepID, vendor)
	if err != nil {
		c.logFailure(ctx, "add", err, slog.String("step_id", stepID), slog.String("vendor_id", vendor.ID))
		return MutationResult{}, err
	}

	view, err := c.cart.GetCart(ctx, current.EventID)
	if err != nil {
		c.logFailure(ctx, "refresh after add", err)
		return MutationResult{}, err
	}

	next := ApplyAdd(current, view, stepID, vendor.ID)
	result := c.finishMutation(ctx, next)

	if added.BudgetStatus == models.BudgetStatusOverBudget && !result.OverBudget {
		result.BudgetStatus = models.BudgetStatusOverBudget
		result.OverBudget = true
	}

	return result, nil
}

// RemoveItem удаляет позицию корзины. Позиция, которой уже нет на сервере,
// считается удаленной.
func (c *Controller) RemoveItem(ctx context.Context, itemID string) (MutationResult, error) {
	release, err := c.begin("")
	if err != nil {
		return MutationResult{}, err
	}
	defer release()
	ctx = detach(ctx)

	current := c.Session()
	preRemoval := current.Cart

	if err := c.cart.RemoveItem(ctx, current.EventID, itemID); err != nil {
		if !cart.IsNotFound(err) {
			c.logFailure(ctx, "remove", err, slog.String("item_id", itemID))
			return MutationResult{}, err
		}
		c.logger.LogAttrs(ctx, slog.LevelDebug, "cart item already removed", slog.String("item_id", itemID))
	}

	view, err := c.cart.GetCart(ctx, current.EventID)
	if err != nil {
		c.logFailure(ctx, "refresh after remove", err)
		return MutationResult{}, err
	}

	next := ApplyRemove(current, preRemoval, view, itemID)
	return c.finishMutation(ctx, next), nil
}

// ClearCart очищает корзину и сбрасывает бюджет к бюджету события.
func (c *Controller) ClearCart(ctx context.Context) (MutationResult, error) {
	release, err := c.begin("")
	if err != nil {
		return MutationResult{}, err
	}
	defer release()
	ctx = detach(ctx)

	current := c.Session()

	if err := c.cart.ClearCart(ctx, current.EventID); err != nil {
		c.logFailure(ctx, "clear", err)
		return MutationResult{}, err
	}

	view, err := c.cart.GetCart(ctx, current.EventID)
	if err != nil {
		c.logFailure(ctx, "refresh after clear", err)
		return MutationResult{}, err
	}

	next := ApplyClear(current, view)
	return c.finishMutation(ctx, next), nil
}

// SetProgress обновляет текущий шаг и список завершенных шагов.
func (c *Controller) SetProgress(currentStep int, completedSteps []int) (models.PlannerSession, error) {
	release, err := c.begin("")
	if err != nil {
		return models.PlannerSession{}, err
	}
	defer release()

	if currentStep < 0 {
		return models.PlannerSession{}, fmt.Errorf("current step must not be negative: %d", currentStep)
	}

	next := ApplyProgress(c.Session(), currentStep, completedSteps)
	c.commit(next)
	return next.Clone(), nil
}

// Save сохраняет прогресс на сервере и всегда пишет локальный снапшот.
// Сбой сервера не блокирует: он логируется и отражается в SaveOutcome.
func (c *Controller) Save(ctx context.Context) (SaveOutcome, error) {
	release, err := c.begin(models.SessionStateSaving)
	if err != nil {
		return SaveOutcome{}, err
	}
	defer release()
	ctx = detach(ctx)

	current := c.Session()

	remoteErr := c.cart.SaveProgress(ctx, current.EventID, current.CurrentStep, current.CompletedStepList(), stepData(current))

	c.local.SaveLocalSnapshot(ctx, current.EventID, LocalSnapshotOf(current))

	next := current.Clone()
	next.State = models.SessionStateEditing
	next.Degraded = remoteErr != nil
	c.commit(next)

	if remoteErr != nil {
		c.logFailure(ctx, "save", remoteErr)
		c.publish(notifications.PlannerDegraded(next, "progress saved locally only"))
	}

	return SaveOutcome{Session: next.Clone(), SavedRemote: remoteErr == nil, RemoteErr: remoteErr}, nil
}

// Finalize превращает корзину в бронирования. При ошибке состояние сессии не меняется.
func (c *Controller) Finalize(ctx context.Context) (models.FinalizeResult, error) {
	release, err := c.begin(models.SessionStateFinalizing)
	if err != nil {
		return models.FinalizeResult{}, err
	}
	defer release()
	ctx = detach(ctx)

	current := c.Session()

	result, err := c.cart.Finalize(ctx, current.EventID)
	if err != nil {
		c.setState(models.SessionStateEditing)
		c.logFailure(ctx, "finalize", err)
		return models.FinalizeResult{}, err
	}

	if result.Bookings == nil {
		result.Bookings = []models.Booking{}
	}

	next := ApplyFinalize(current)
	c.commit(next)
	c.local.DeleteLocalSnapshot(ctx, current.EventID)

	c.logger.LogAttrs(ctx, slog.LevelInfo, "planner finalized",
		slog.Int("bookings", len(result.Bookings)),
		slog.Int64("total_cost_cents", result.TotalCostCents),
	)
	c.publish(notifications.PlannerFinalized(next, result))

	return result, nil
}

// Close закрывает сессию без финализации.
func (c *Controller) Close() error {
	if !c.inFlight.TryAcquire(1) {
		return ErrBusy
	}
	defer c.inFlight.Release(1)

	c.setState(models.SessionStateClosed)
	return nil
}

// begin захватывает единственный слот операции; transitional задает состояние
// сессии на время операции.
func (c *Controller) begin(transitional models.SessionState) (func(), error) {
	if !c.inFlight.TryAcquire(1) {
		return nil, ErrBusy
	}

	c.mu.Lock()
	if c.session.State == models.SessionStateClosed {
		c.mu.Unlock()
		c.inFlight.Release(1)
		return nil, ErrSessionClosed
	}
	if transitional != "" {
		c.session.State = transitional
	}
	c.mu.Unlock()

	return func() { c.inFlight.Release(1) }, nil
}

// detach отвязывает начатую операцию от отмены вызывающего: запрос к серверу
// завершается успехом, ошибкой или таймаутом клиента корзины.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

func (c *Controller) finishMutation(ctx context.Context, next models.PlannerSession) MutationResult {
	c.commit(next)

	if next.Budget.OverBudget() {
		c.logger.LogAttrs(ctx, slog.LevelInfo, "cart is over budget",
			slog.Int64("budget_set_cents", next.Budget.BudgetSetCents),
			slog.Int64("selected_total_cents", next.Budget.SelectedTotalCents),
		)
	}
	c.publish(notifications.BudgetUpdated(next))

	return MutationResult{
		Session:      next.Clone(),
		BudgetStatus: next.Budget.Status(),
		OverBudget:   next.Budget.OverBudget(),
	}
}

func (c *Controller) commit(next models.PlannerSession) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = next
}

func (c *Controller) setState(state models.SessionState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session.State = state
}

func (c *Controller) publish(event notifications.Event) {
	if c.notifier == nil {
		return
	}

	c.mu.Lock()
	userID := c.session.UserID
	c.mu.Unlock()

	c.notifier.Publish(userID, event)
}

func (c *Controller) logFailure(ctx context.Context, op string, err error, attrs ...slog.Attr) {
	attrs = append(attrs, slog.String("op", op), slog.String("error", err.Error()))
	c.logger.LogAttrs(ctx, slog.LevelWarn, "planner operation failed", attrs...)
}

func stepData(session models.PlannerSession) map[string]interface{} {
	selected := make(map[string]string, len(session.SelectedServices))
	for stepID, vendorID := range session.SelectedServices {
		selected[stepID] = vendorID
	}

	return map[string]interface{}{
		"selected_services": selected,
	}
}
