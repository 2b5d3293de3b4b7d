package planner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"example.com/event-planner/gateway/internal/cart"
	"example.com/event-planner/gateway/internal/models"
)

func item(id, serviceType, vendorID string, priceCents int64, quantity int) models.CartItem {
	return models.CartItem{ID: id, VendorID: vendorID, ServiceType: serviceType, ServiceName: serviceType, PriceCents: priceCents, Quantity: quantity}
}

// TestComputeBudget проверяет сумму price*quantity и отрицательный остаток.
func TestComputeBudget(t *testing.T) {
	budget := ComputeBudget(500000, []models.CartItem{
		item("i1", "venue", "v1", 300000, 1),
		item("i2", "catering", "v2", 150000, 2),
	})

	assert.Equal(t, int64(600000), budget.SelectedTotalCents)
	assert.Equal(t, int64(-100000), budget.RemainingCents)
	assert.True(t, budget.OverBudget())
	assert.Equal(t, models.BudgetStatusOverBudget, budget.Status())
}

// TestReconcileDropsStaleKeys проверяет, что выбор строится только из корзины сервера.
func TestReconcileDropsStaleKeys(t *testing.T) {
	session := models.NewPlannerSession(uuid.New(), "E1", 500000)
	session.SelectedServices = map[string]string{"photo": "stale"}

	out := ReconcileAfterMutation(session, cart.CartView{Items: []models.CartItem{item("i1", "venue", "v1", 100000, 1)}})

	assert.Equal(t, map[string]string{"venue": "v1"}, out.SelectedServices)
	assert.Equal(t, map[string]string{"photo": "stale"}, session.SelectedServices, "input must not be mutated")
}

// TestReconcileUsesServerBudget проверяет выбор бюджета из ответа сервера.
func TestReconcileUsesServerBudget(t *testing.T) {
	session := models.NewPlannerSession(uuid.New(), "E1", 100000)

	out := ReconcileAfterMutation(session, cart.CartView{BudgetSetCents: 700000, HasBudget: true})
	assert.Equal(t, int64(700000), out.Budget.BudgetSetCents)
	assert.Equal(t, int64(700000), out.Budget.RemainingCents)

	out = ReconcileAfterMutation(out, cart.CartView{})
	assert.Equal(t, int64(700000), out.Budget.BudgetSetCents)
}

// TestApplyRemoveUnknownItem проверяет, что неизвестная позиция ничего не снимает.
func TestApplyRemoveUnknownItem(t *testing.T) {
	session := models.NewPlannerSession(uuid.New(), "E1", 0)
	items := []models.CartItem{item("i1", "venue", "v1", 100000, 1)}
	session = ReconcileAfterMutation(session, cart.CartView{Items: items})

	out := ApplyRemove(session, session.Cart, cart.CartView{Items: items}, "missing-id")
	assert.Equal(t, map[string]string{"venue": "v1"}, out.SelectedServices)
}

// TestApplyRemoveKeepsTypeWithRemainingItem проверяет, что ключ остается при другой позиции того же типа.
func TestApplyRemoveKeepsTypeWithRemainingItem(t *testing.T) {
	session := models.NewPlannerSession(uuid.New(), "E1", 0)
	before := []models.CartItem{item("i1", "catering", "v1", 100000, 1), item("i2", "catering", "v2", 50000, 1)}
	session = ReconcileAfterMutation(session, cart.CartView{Items: before})

	out := ApplyRemove(session, before, cart.CartView{Items: before[1:]}, "i1")
	assert.Equal(t, map[string]string{"catering": "v2"}, out.SelectedServices)

	out = ApplyRemove(out, before[1:], cart.CartView{}, "i2")
	assert.Empty(t, out.SelectedServices)
}

// TestApplyClear проверяет сброс к бюджету события.
func TestApplyClear(t *testing.T) {
	session := models.NewPlannerSession(uuid.New(), "E1", 400000)
	session = ReconcileAfterMutation(session, cart.CartView{
		Items:          []models.CartItem{item("i1", "venue", "v1", 300000, 1)},
		BudgetSetCents: 900000,
		HasBudget:      true,
	})

	out := ApplyClear(session, cart.CartView{BudgetSetCents: 900000, HasBudget: true})

	assert.Empty(t, out.Cart)
	assert.Empty(t, out.SelectedServices)
	assert.Equal(t, models.BudgetSnapshot{BudgetSetCents: 400000, RemainingCents: 400000}, out.Budget)
}

// TestApplyFinalize проверяет полную очистку и закрытие сессии.
func TestApplyFinalize(t *testing.T) {
	session := models.NewPlannerSession(uuid.New(), "E1", 500000)
	session = ApplyAdd(session, cart.CartView{Items: []models.CartItem{item("i1", "venue", "v1", 300000, 1)}}, "venue", "v1")

	out := ApplyFinalize(session)

	assert.Empty(t, out.Cart)
	assert.Empty(t, out.SelectedServices)
	assert.Equal(t, int64(0), out.Budget.SelectedTotalCents)
	assert.Equal(t, int64(500000), out.Budget.RemainingCents)
	assert.Equal(t, models.SessionStateClosed, out.State)
}

// TestLocalSnapshotRoundTrip проверяет восстановление сессии из снапшота.
func TestLocalSnapshotRoundTrip(t *testing.T) {
	session := models.NewPlannerSession(uuid.New(), "E1", 0)
	session = ApplyProgress(session, 2, []int{1, 0, -3})
	session.SelectedServices = map[string]string{"venue": "v1"}

	snapshot := LocalSnapshotOf(session)
	assert.Equal(t, []int{0, 1}, snapshot.CompletedSteps)

	restored := ApplyLocalSnapshot(models.NewPlannerSession(session.UserID, "E1", 0), snapshot)
	assert.Equal(t, 2, restored.CurrentStep)
	assert.Equal(t, []int{0, 1}, restored.CompletedStepList())
	assert.Equal(t, map[string]string{"venue": "v1"}, restored.SelectedServices)
	assert.True(t, restored.Degraded)
}

// TestApplyAddWithoutServerItem проверяет, что выбор не появляется без позиции в корзине сервера.
func TestApplyAddWithoutServerItem(t *testing.T) {
	session := models.NewPlannerSession(uuid.New(), "E1", 500000)

	out := ApplyAdd(session, cart.CartView{Items: []models.CartItem{item("i1", "catering", "v2", 100000, 1)}}, "venue", "v1")

	assert.Equal(t, map[string]string{"catering": "v2"}, out.SelectedServices)
	assert.Equal(t, int64(100000), out.Budget.SelectedTotalCents)
}
