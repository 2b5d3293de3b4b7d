package cli

import (
	"context"

	"github.com/spf13/cobra"

	"example.com/event-planner/gateway/internal/planner"
)

var finalizeCmd = &cobra.Command{
	Use:   "finalize <event-id>",
	Short: "Turn the cart into vendor bookings",
	Long: `Finalize the event's cart. On success the cart is emptied and the local
snapshot removed; on failure nothing changes and the command can be retried.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, args[0], func(ctx context.Context, controller *planner.Controller) error {
			result, err := controller.Finalize(ctx)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), newFinalizeView(result))
		})
	},
}

func init() {
	rootCmd.AddCommand(finalizeCmd)
}
