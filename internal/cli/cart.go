package cli

import (
	"context"

	"github.com/spf13/cobra"

	"example.com/event-planner/gateway/internal/models"
	"example.com/event-planner/gateway/internal/planner"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Inspect and change an event's cart",
}

// cart show

var cartShowCmd = &cobra.Command{
	Use:   "show <event-id>",
	Short: "Show cart items, selections and budget",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, args[0], func(ctx context.Context, controller *planner.Controller) error {
			return render(cmd.OutOrStdout(), newSessionView(controller.Session()))
		})
	},
}

// cart add

var (
	addVendorID         string
	addVendorName       string
	addRecommendedPrice float64
	addMinPrice         float64
	addBasePrice        float64
)

var cartAddCmd = &cobra.Command{
	Use:   "add <event-id> <step-id>",
	Short: "Add a vendor's service for a planner step",
	Long: `Add a vendor's service to the cart for a planner step.

The price sent is the first positive of --recommended-price, --min-price and
--base-price, or the configured default price.`,
	Args: cobra.ExactArgs(2),
	RunE: runCartAdd,
}

func runCartAdd(cmd *cobra.Command, args []string) error {
	vendor := models.Vendor{ID: addVendorID, Name: addVendorName}
	if cmd.Flags().Changed("recommended-price") {
		vendor.RecommendedPrice = &addRecommendedPrice
	}
	if cmd.Flags().Changed("min-price") {
		vendor.PriceRangeMin = &addMinPrice
	}
	if cmd.Flags().Changed("base-price") {
		vendor.BasePrice = &addBasePrice
	}

	return withController(cmd, args[0], func(ctx context.Context, controller *planner.Controller) error {
		result, err := controller.AddService(ctx, args[1], vendor)
		if err != nil {
			return err
		}

		if result.OverBudget {
			printWarning(cmd.ErrOrStderr(), "cart is over budget")
		}
		return render(cmd.OutOrStdout(), newSessionView(result.Session))
	})
}

// cart remove

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <event-id> <item-id>",
	Short: "Remove a cart item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, args[0], func(ctx context.Context, controller *planner.Controller) error {
			result, err := controller.RemoveItem(ctx, args[1])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), newSessionView(result.Session))
		})
	},
}

// cart clear

var cartClearCmd = &cobra.Command{
	Use:   "clear <event-id>",
	Short: "Remove every cart item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withController(cmd, args[0], func(ctx context.Context, controller *planner.Controller) error {
			result, err := controller.ClearCart(ctx)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), newSessionView(result.Session))
		})
	},
}

func init() {
	cartAddCmd.Flags().StringVar(&addVendorID, "vendor-id", "", "vendor id")
	cartAddCmd.Flags().StringVar(&addVendorName, "vendor-name", "", "vendor display name")
	cartAddCmd.Flags().Float64Var(&addRecommendedPrice, "recommended-price", 0, "vendor recommended price")
	cartAddCmd.Flags().Float64Var(&addMinPrice, "min-price", 0, "lower bound of the vendor price range")
	cartAddCmd.Flags().Float64Var(&addBasePrice, "base-price", 0, "vendor base price")
	_ = cartAddCmd.MarkFlagRequired("vendor-id")
	_ = cartAddCmd.MarkFlagRequired("vendor-name")

	cartCmd.AddCommand(cartShowCmd)
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartClearCmd)
	rootCmd.AddCommand(cartCmd)
}
