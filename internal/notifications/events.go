package notifications

import (
	"github.com/google/uuid"

	"example.com/event-planner/gateway/internal/models"
)

type BudgetPayload struct {
	SessionID          uuid.UUID           `json:"session_id"`
	EventID            string              `json:"event_id"`
	BudgetSetCents     int64               `json:"budget_set_cents"`
	SelectedTotalCents int64               `json:"selected_total_cents"`
	RemainingCents     int64               `json:"remaining_cents"`
	BudgetStatus       models.BudgetStatus `json:"budget_status"`
	SelectedServices   map[string]string   `json:"selected_services"`
}

type FinalizedPayload struct {
	SessionID      uuid.UUID        `json:"session_id"`
	EventID        string           `json:"event_id"`
	Bookings       []models.Booking `json:"bookings"`
	TotalCostCents int64            `json:"total_cost_cents"`
}

type DegradedPayload struct {
	SessionID uuid.UUID `json:"session_id"`
	EventID   string    `json:"event_id"`
	Reason    string    `json:"reason"`
}

// BudgetUpdated собирает событие об изменении корзины и бюджета.
func BudgetUpdated(session models.PlannerSession) Event {
	return Event{
		Type: EventBudgetUpdated,
		Data: BudgetPayload{
			SessionID:          session.ID,
			EventID:            session.EventID,
			BudgetSetCents:     session.Budget.BudgetSetCents,
			SelectedTotalCents: session.Budget.SelectedTotalCents,
			RemainingCents:     session.Budget.RemainingCents,
			BudgetStatus:       session.Budget.Status(),
			SelectedServices:   session.SelectedServices,
		},
	}
}

// PlannerFinalized собирает событие о созданных бронированиях.
func PlannerFinalized(session models.PlannerSession, result models.FinalizeResult) Event {
	bookings := result.Bookings
	if bookings == nil {
		bookings = []models.Booking{}
	}

	return Event{
		Type: EventPlannerFinalized,
		Data: FinalizedPayload{
			SessionID:      session.ID,
			EventID:        session.EventID,
			Bookings:       bookings,
			TotalCostCents: result.TotalCostCents,
		},
	}
}

// PlannerDegraded сообщает, что сессия работает только с локальной копией.
func PlannerDegraded(session models.PlannerSession, reason string) Event {
	return Event{
		Type: EventPlannerDegraded,
		Data: DegradedPayload{
			SessionID: session.ID,
			EventID:   session.EventID,
			Reason:    reason,
		},
	}
}
