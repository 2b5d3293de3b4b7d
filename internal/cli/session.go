package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"example.com/event-planner/gateway/internal/cart"
	"example.com/event-planner/gateway/internal/models"
	"example.com/event-planner/gateway/internal/planner"
	"example.com/event-planner/gateway/internal/snapshot"
)

// openLocal открывает локальное хранилище снапшотов.
func openLocal(ctx context.Context) (*snapshot.Adapter, func(), error) {
	store, err := snapshot.OpenSQLite(ctx, snapshotPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open snapshot store: %w", err)
	}

	return snapshot.NewAdapter(store, logger), func() { _ = store.Close() }, nil
}

// withController открывает сессию события и передает контроллер в fn.
func withController(cmd *cobra.Command, eventID string, fn func(ctx context.Context, controller *planner.Controller) error) error {
	ctx := cmd.Context()

	local, closeLocal, err := openLocal(ctx)
	if err != nil {
		return err
	}
	defer closeLocal()

	client := cart.NewClient(cart.Options{
		BaseURL:      plannerCfg.APIBaseURL,
		Token:        apiToken,
		Timeout:      plannerCfg.Timeout,
		DefaultPrice: plannerCfg.DefaultPrice,
		Logger:       logger,
	})

	session := models.NewPlannerSession(uuid.Nil, eventID, cart.ToCents(eventBudget))
	controller := planner.NewController(session, client, local, nil, logger)

	outcome, err := controller.Open(ctx)
	if err != nil {
		return fmt.Errorf("open planner for event %s: %w", eventID, err)
	}
	if outcome.Session.Degraded {
		printWarning(cmd.ErrOrStderr(), "event service unreachable, working from the local snapshot")
	}

	return fn(ctx, controller)
}
