package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"example.com/event-planner/gateway/internal/cart"
	"example.com/event-planner/gateway/internal/models"
)

var (
	headerColor  = color.New(color.FgBlue, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	overColor    = color.New(color.FgRed, color.Bold)
)

type tableWriter interface {
	writeTable(w io.Writer) error
}

// render печатает значение в формате, выбранном флагом --output.
func render(w io.Writer, v tableWriter) error {
	switch outputFormat {
	case outputJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case outputYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return v.writeTable(w)
	}
}

func printWarning(w io.Writer, msg string) {
	_, _ = warningColor.Fprintf(w, "! %s\n", msg)
}

func printSuccess(w io.Writer, msg string) {
	_, _ = successColor.Fprintf(w, "%s\n", msg)
}

type itemView struct {
	ID          string  `json:"id" yaml:"id"`
	ServiceType string  `json:"service_type" yaml:"service_type"`
	VendorID    string  `json:"vendor_id" yaml:"vendor_id"`
	ServiceName string  `json:"service_name" yaml:"service_name"`
	Price       float64 `json:"price" yaml:"price"`
	Quantity    int     `json:"quantity" yaml:"quantity"`
}

type sessionView struct {
	EventID          string            `json:"event_id" yaml:"event_id"`
	CurrentStep      int               `json:"current_step" yaml:"current_step"`
	CompletedSteps   []int             `json:"completed_steps" yaml:"completed_steps"`
	SelectedServices map[string]string `json:"selected_services" yaml:"selected_services"`
	Items            []itemView        `json:"items" yaml:"items"`
	BudgetSet        float64           `json:"budget_set" yaml:"budget_set"`
	SelectedTotal    float64           `json:"selected_total" yaml:"selected_total"`
	Remaining        float64           `json:"remaining" yaml:"remaining"`
	BudgetStatus     string            `json:"budget_status" yaml:"budget_status"`
	Degraded         bool              `json:"degraded" yaml:"degraded"`
}

func newSessionView(session models.PlannerSession) sessionView {
	items := make([]itemView, 0, len(session.Cart))
	for _, item := range session.Cart {
		items = append(items, itemView{
			ID:          item.ID,
			ServiceType: item.ServiceType,
			VendorID:    item.VendorID,
			ServiceName: item.ServiceName,
			Price:       cart.FromCents(item.PriceCents),
			Quantity:    item.Quantity,
		})
	}

	return sessionView{
		EventID:          session.EventID,
		CurrentStep:      session.CurrentStep,
		CompletedSteps:   session.CompletedStepList(),
		SelectedServices: session.SelectedServices,
		Items:            items,
		BudgetSet:        cart.FromCents(session.Budget.BudgetSetCents),
		SelectedTotal:    cart.FromCents(session.Budget.SelectedTotalCents),
		Remaining:        cart.FromCents(session.Budget.RemainingCents),
		BudgetStatus:     string(session.Budget.Status()),
		Degraded:         session.Degraded,
	}
}

func (v sessionView) writeTable(w io.Writer) error {
	_, _ = headerColor.Fprintf(w, "Event %s (step %d)\n", v.EventID, v.CurrentStep)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ITEM\tSTEP\tVENDOR\tSERVICE\tPRICE\tQTY")
	for _, item := range v.Items {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%d\n", item.ID, item.ServiceType, item.VendorID, item.ServiceName, item.Price, item.Quantity)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	steps := make([]string, 0, len(v.SelectedServices))
	for step := range v.SelectedServices {
		steps = append(steps, step)
	}
	sort.Strings(steps)
	for _, step := range steps {
		_, _ = fmt.Fprintf(w, "selected %s: %s\n", step, v.SelectedServices[step])
	}

	_, _ = fmt.Fprintf(w, "budget %.2f, selected %.2f, remaining ", v.BudgetSet, v.SelectedTotal)
	if v.BudgetStatus == string(models.BudgetStatusOverBudget) {
		_, _ = overColor.Fprintf(w, "%.2f (over budget)\n", v.Remaining)
	} else {
		_, _ = fmt.Fprintf(w, "%.2f\n", v.Remaining)
	}

	return nil
}

type saveView struct {
	Session     sessionView `json:"session" yaml:"session"`
	SavedRemote bool        `json:"saved_remote" yaml:"saved_remote"`
}

func (v saveView) writeTable(w io.Writer) error {
	if v.SavedRemote {
		printSuccess(w, "progress saved")
	}
	return v.Session.writeTable(w)
}

type bookingView struct {
	ID          string  `json:"id" yaml:"id"`
	VendorID    string  `json:"vendor_id" yaml:"vendor_id"`
	ServiceType string  `json:"service_type" yaml:"service_type"`
	Amount      float64 `json:"amount" yaml:"amount"`
	Status      string  `json:"status" yaml:"status"`
}

type finalizeView struct {
	Bookings  []bookingView `json:"bookings" yaml:"bookings"`
	TotalCost float64       `json:"total_cost" yaml:"total_cost"`
}

func newFinalizeView(result models.FinalizeResult) finalizeView {
	bookings := make([]bookingView, 0, len(result.Bookings))
	for _, booking := range result.Bookings {
		bookings = append(bookings, bookingView{
			ID:          booking.ID,
			VendorID:    booking.VendorID,
			ServiceType: booking.ServiceType,
			Amount:      cart.FromCents(booking.AmountCents),
			Status:      booking.Status,
		})
	}

	return finalizeView{Bookings: bookings, TotalCost: cart.FromCents(result.TotalCostCents)}
}

func (v finalizeView) writeTable(w io.Writer) error {
	printSuccess(w, fmt.Sprintf("%d bookings created", len(v.Bookings)))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "BOOKING\tSTEP\tVENDOR\tAMOUNT\tSTATUS")
	for _, booking := range v.Bookings {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\n", booking.ID, booking.ServiceType, booking.VendorID, booking.Amount, booking.Status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "total %.2f\n", v.TotalCost)
	return nil
}

type snapshotView struct {
	EventID          string            `json:"event_id" yaml:"event_id"`
	CurrentStep      int               `json:"current_step" yaml:"current_step"`
	CompletedSteps   []int             `json:"completed_steps" yaml:"completed_steps"`
	SelectedServices map[string]string `json:"selected_services" yaml:"selected_services"`
	Timestamp        time.Time         `json:"timestamp" yaml:"timestamp"`
}

func newSnapshotView(saved models.LocalPlanSnapshot) snapshotView {
	return snapshotView{
		EventID:          saved.EventID,
		CurrentStep:      saved.CurrentStep,
		CompletedSteps:   saved.CompletedSteps,
		SelectedServices: saved.SelectedServices,
		Timestamp:        saved.Timestamp,
	}
}

func (v snapshotView) writeTable(w io.Writer) error {
	_, _ = headerColor.Fprintf(w, "Snapshot %s\n", v.EventID)
	_, _ = fmt.Fprintf(w, "saved at: %s\n", v.Timestamp.Format(time.RFC3339))
	_, _ = fmt.Fprintf(w, "current step: %d\n", v.CurrentStep)
	_, _ = fmt.Fprintf(w, "completed steps: %v\n", v.CompletedSteps)

	steps := make([]string, 0, len(v.SelectedServices))
	for step := range v.SelectedServices {
		steps = append(steps, step)
	}
	sort.Strings(steps)
	for _, step := range steps {
		_, _ = fmt.Fprintf(w, "selected %s: %s\n", step, v.SelectedServices[step])
	}

	return nil
}
