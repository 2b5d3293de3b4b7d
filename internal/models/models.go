package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type SessionState string

type BudgetStatus string

const (
	SessionStateEditing    SessionState = "editing"
	SessionStateSaving     SessionState = "saving"
	SessionStateFinalizing SessionState = "finalizing"
	SessionStateClosed     SessionState = "closed"

	BudgetStatusOK         BudgetStatus = "ok"
	BudgetStatusOverBudget BudgetStatus = "over_budget"
)

type CartItem struct {
	ID          string `json:"id"`
	VendorID    string `json:"vendor_id"`
	ServiceType string `json:"service_type"`
	ServiceName string `json:"service_name"`
	PriceCents  int64  `json:"price_cents"`
	Quantity    int    `json:"quantity"`
	Notes       string `json:"notes,omitempty"`
}

// LineTotalCents возвращает стоимость позиции с учетом количества.
func (i CartItem) LineTotalCents() int64 {
	return i.PriceCents * int64(i.Quantity)
}

type BudgetSnapshot struct {
	BudgetSetCents     int64 `json:"budget_set_cents"`
	SelectedTotalCents int64 `json:"selected_total_cents"`
	RemainingCents     int64 `json:"remaining_cents"`
}

// OverBudget сообщает, превышает ли выбранная сумма заданный бюджет.
func (b BudgetSnapshot) OverBudget() bool {
	return b.SelectedTotalCents > b.BudgetSetCents
}

// Status возвращает статус бюджета в формате backend.
func (b BudgetSnapshot) Status() BudgetStatus {
	if b.OverBudget() {
		return BudgetStatusOverBudget
	}
	return BudgetStatusOK
}

type PlannerSession struct {
	ID               uuid.UUID         `json:"id"`
	UserID           uuid.UUID         `json:"user_id"`
	EventID          string            `json:"event_id"`
	EventBudgetCents int64             `json:"event_budget_cents"`
	CurrentStep      int               `json:"current_step"`
	CompletedSteps   map[int]struct{}  `json:"-"`
	SelectedServices map[string]string `json:"selected_services"`
	Cart             []CartItem        `json:"cart"`
	Budget           BudgetSnapshot    `json:"budget"`
	State            SessionState      `json:"state"`
	Degraded         bool              `json:"degraded"`
}

// NewPlannerSession создает пустую сессию планировщика для события.
func NewPlannerSession(userID uuid.UUID, eventID string, eventBudgetCents int64) PlannerSession {
	return PlannerSession{
		ID:               uuid.New(),
		UserID:           userID,
		EventID:          eventID,
		EventBudgetCents: eventBudgetCents,
		CompletedSteps:   map[int]struct{}{},
		SelectedServices: map[string]string{},
		Cart:             []CartItem{},
		Budget: BudgetSnapshot{
			BudgetSetCents: eventBudgetCents,
			RemainingCents: eventBudgetCents,
		},
		State: SessionStateEditing,
	}
}

// Clone возвращает независимую копию сессии.
func (s PlannerSession) Clone() PlannerSession {
	out := s

	out.CompletedSteps = make(map[int]struct{}, len(s.CompletedSteps))
	for step := range s.CompletedSteps {
		out.CompletedSteps[step] = struct{}{}
	}

	out.SelectedServices = make(map[string]string, len(s.SelectedServices))
	for stepID, vendorID := range s.SelectedServices {
		out.SelectedServices[stepID] = vendorID
	}

	out.Cart = append([]CartItem(nil), s.Cart...)
	if out.Cart == nil {
		out.Cart = []CartItem{}
	}

	return out
}

// CompletedStepList возвращает завершенные шаги в порядке возрастания.
func (s PlannerSession) CompletedStepList() []int {
	return SortedSteps(s.CompletedSteps)
}

// SortedSteps превращает множество шагов в отсортированный срез.
func SortedSteps(steps map[int]struct{}) []int {
	out := make([]int, 0, len(steps))
	for step := range steps {
		out = append(out, step)
	}
	sort.Ints(out)
	return out
}

// StepSet превращает список шагов в множество, отбрасывая отрицательные значения.
func StepSet(steps []int) map[int]struct{} {
	out := make(map[int]struct{}, len(steps))
	for _, step := range steps {
		if step < 0 {
			continue
		}
		out[step] = struct{}{}
	}
	return out
}

type LocalPlanSnapshot struct {
	EventID          string            `json:"event_id"`
	CurrentStep      int               `json:"current_step"`
	CompletedSteps   []int             `json:"completed_steps"`
	SelectedServices map[string]string `json:"selected_services"`
	Timestamp        time.Time         `json:"timestamp"`
}

type Vendor struct {
	ID               string   `json:"id" validate:"required"`
	Name             string   `json:"name" validate:"required,max=200"`
	RecommendedPrice *float64 `json:"recommended_price,omitempty" validate:"omitempty,gte=0"`
	PriceRangeMin    *float64 `json:"price_range_min,omitempty" validate:"omitempty,gte=0"`
	BasePrice        *float64 `json:"base_price,omitempty" validate:"omitempty,gte=0"`
}

type Booking struct {
	ID          string `json:"id"`
	VendorID    string `json:"vendor_id"`
	ServiceType string `json:"service_type"`
	AmountCents int64  `json:"amount_cents"`
	Status      string `json:"status"`
}

type FinalizeResult struct {
	Bookings       []Booking `json:"bookings"`
	TotalCostCents int64     `json:"total_cost_cents"`
}
