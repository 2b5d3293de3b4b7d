package cart

import (
	"math"

	"example.com/event-planner/gateway/internal/models"
)

type CartView struct {
	Items          []models.CartItem
	BudgetSetCents int64
	HasBudget      bool
}

type AddResult struct {
	Item         *models.CartItem
	BudgetStatus models.BudgetStatus
}

type addItemRequest struct {
	VendorID    string  `json:"vendor_id" validate:"required"`
	ServiceType string  `json:"service_type" validate:"required,max=100"`
	ServiceName string  `json:"service_name" validate:"required,max=200"`
	Price       float64 `json:"price" validate:"gte=0"`
	Quantity    int     `json:"quantity" validate:"gte=1"`
	Notes       string  `json:"notes"`
}

type progressRequest struct {
	CurrentStep    int                    `json:"current_step" validate:"gte=0"`
	CompletedSteps []int                  `json:"completed_steps" validate:"dive,gte=0"`
	StepData       map[string]interface{} `json:"step_data"`
}

type itemPayload struct {
	ID          string  `json:"id"`
	VendorID    string  `json:"vendor_id"`
	ServiceType string  `json:"service_type"`
	ServiceName string  `json:"service_name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Notes       string  `json:"notes"`
}

type cartResponse struct {
	Items     []itemPayload `json:"items"`
	BudgetSet *float64      `json:"budget_set"`
}

type addItemResponse struct {
	Item         *itemPayload `json:"item"`
	BudgetStatus string       `json:"budget_status"`
}

type bookingPayload struct {
	ID          string  `json:"id"`
	VendorID    string  `json:"vendor_id"`
	ServiceType string  `json:"service_type"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
}

type finalizeResponse struct {
	BookingsCreated []bookingPayload `json:"bookings_created"`
	TotalCost       float64          `json:"total_cost"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// ToCents переводит сумму в денежных единицах в центы с округлением.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromCents переводит центы в денежные единицы.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

func (p itemPayload) toModel() models.CartItem {
	item := models.CartItem{
		ID:          p.ID,
		VendorID:    p.VendorID,
		ServiceType: p.ServiceType,
		ServiceName: p.ServiceName,
		PriceCents:  ToCents(p.Price),
		Quantity:    p.Quantity,
		Notes:       p.Notes,
	}

	if item.PriceCents < 0 {
		item.PriceCents = 0
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	return item
}

func (r cartResponse) toView() CartView {
	view := CartView{Items: make([]models.CartItem, 0, len(r.Items))}
	for _, item := range r.Items {
		view.Items = append(view.Items, item.toModel())
	}

	if r.BudgetSet != nil && *r.BudgetSet >= 0 {
		view.BudgetSetCents = ToCents(*r.BudgetSet)
		view.HasBudget = true
	}

	return view
}

func (r finalizeResponse) toResult() models.FinalizeResult {
	result := models.FinalizeResult{
		Bookings:       make([]models.Booking, 0, len(r.BookingsCreated)),
		TotalCostCents: ToCents(r.TotalCost),
	}

	for _, booking := range r.BookingsCreated {
		result.Bookings = append(result.Bookings, models.Booking{
			ID:          booking.ID,
			VendorID:    booking.VendorID,
			ServiceType: booking.ServiceType,
			AmountCents: ToCents(booking.Amount),
			Status:      booking.Status,
		})
	}

	return result
}
