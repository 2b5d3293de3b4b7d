package planner

import (
	"example.com/event-planner/gateway/internal/cart"
	"example.com/event-planner/gateway/internal/models"
)

// ProjectSelections строит соответствие шаг → поставщик по активным позициям корзины.
func ProjectSelections(items []models.CartItem) map[string]string {
	selections := make(map[string]string, len(items))
	for _, item := range items {
		if item.ServiceType == "" || item.VendorID == "" {
			continue
		}
		selections[item.ServiceType] = item.VendorID
	}
	return selections
}

// ComputeBudget пересчитывает выбранную сумму и остаток по корзине сервера.
func ComputeBudget(budgetSetCents int64, items []models.CartItem) models.BudgetSnapshot {
	var total int64
	for _, item := range items {
		total += item.LineTotalCents()
	}

	return models.BudgetSnapshot{
		BudgetSetCents:     budgetSetCents,
		SelectedTotalCents: total,
		RemainingCents:     budgetSetCents - total,
	}
}

// ReconcileAfterMutation заменяет локальное состояние проекцией корзины сервера.
func ReconcileAfterMutation(session models.PlannerSession, view cart.CartView) models.PlannerSession {
	out := session.Clone()

	budgetSet := out.Budget.BudgetSetCents
	if view.HasBudget {
		budgetSet = view.BudgetSetCents
	}

	out.Cart = append([]models.CartItem{}, view.Items...)
	out.SelectedServices = ProjectSelections(view.Items)
	out.Budget = ComputeBudget(budgetSet, view.Items)
	out.Degraded = false

	return out
}

// ApplyAdd сверяет состояние после добавления и фиксирует выбор шага, если
// сервер вернул позицию этого типа.
func ApplyAdd(session models.PlannerSession, view cart.CartView, stepID, vendorID string) models.PlannerSession {
	out := ReconcileAfterMutation(session, view)
	if hasServiceType(view.Items, stepID) {
		out.SelectedServices[stepID] = vendorID
	}
	return out
}

// ApplyRemove сверяет состояние после удаления. Тип услуги берется из корзины
// до удаления; неизвестная позиция ничего не снимает.
func ApplyRemove(session models.PlannerSession, preRemoval []models.CartItem, view cart.CartView, itemID string) models.PlannerSession {
	out := ReconcileAfterMutation(session, view)

	removed, ok := findItem(preRemoval, itemID)
	if !ok {
		return out
	}

	if !hasServiceType(view.Items, removed.ServiceType) {
		delete(out.SelectedServices, removed.ServiceType)
	}

	return out
}

// ApplyClear сбрасывает корзину, выбор и бюджет к бюджету события.
func ApplyClear(session models.PlannerSession, view cart.CartView) models.PlannerSession {
	reset := session.Clone()
	reset.Cart = []models.CartItem{}
	reset.SelectedServices = map[string]string{}
	reset.Budget = models.BudgetSnapshot{
		BudgetSetCents: session.EventBudgetCents,
		RemainingCents: session.EventBudgetCents,
	}

	return ReconcileAfterMutation(reset, cart.CartView{Items: view.Items})
}

// ApplyFinalize очищает корзину и выбор после подтвержденного финала.
func ApplyFinalize(session models.PlannerSession) models.PlannerSession {
	out := session.Clone()
	out.Cart = []models.CartItem{}
	out.SelectedServices = map[string]string{}
	out.Budget = ComputeBudget(out.Budget.BudgetSetCents, nil)
	out.State = models.SessionStateClosed
	out.Degraded = false
	return out
}

// ApplyProgress обновляет текущий и завершенные шаги.
func ApplyProgress(session models.PlannerSession, currentStep int, completedSteps []int) models.PlannerSession {
	out := session.Clone()
	if currentStep >= 0 {
		out.CurrentStep = currentStep
	}
	if completedSteps != nil {
		out.CompletedSteps = models.StepSet(completedSteps)
	}
	return out
}

// ApplyLocalSnapshot восстанавливает прогресс и выбор из резервного снапшота.
func ApplyLocalSnapshot(session models.PlannerSession, snapshot models.LocalPlanSnapshot) models.PlannerSession {
	out := session.Clone()
	out.CurrentStep = snapshot.CurrentStep
	out.CompletedSteps = models.StepSet(snapshot.CompletedSteps)
	out.SelectedServices = make(map[string]string, len(snapshot.SelectedServices))
	for stepID, vendorID := range snapshot.SelectedServices {
		out.SelectedServices[stepID] = vendorID
	}
	out.Degraded = true
	return out
}

// LocalSnapshotOf формирует снапшот для локального хранилища.
func LocalSnapshotOf(session models.PlannerSession) models.LocalPlanSnapshot {
	selected := make(map[string]string, len(session.SelectedServices))
	for stepID, vendorID := range session.SelectedServices {
		selected[stepID] = vendorID
	}

	return models.LocalPlanSnapshot{
		EventID:          session.EventID,
		CurrentStep:      session.CurrentStep,
		CompletedSteps:   session.CompletedStepList(),
		SelectedServices: selected,
	}
}

func findItem(items []models.CartItem, itemID string) (models.CartItem, bool) {
	for _, item := range items {
		if item.ID == itemID {
			return item, true
		}
	}
	return models.CartItem{}, false
}

func hasServiceType(items []models.CartItem, serviceType string) bool {
	for _, item := range items {
		if item.ServiceType == serviceType {
			return true
		}
	}
	return false
}
