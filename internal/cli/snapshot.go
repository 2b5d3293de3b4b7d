package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect local progress snapshots",
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <event-id>",
	Short: "Show the local snapshot of an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		local, closeLocal, err := openLocal(cmd.Context())
		if err != nil {
			return err
		}
		defer closeLocal()

		saved, ok := local.LoadLocalSnapshot(cmd.Context(), args[0])
		if !ok {
			return fmt.Errorf("no local snapshot for event %s", args[0])
		}
		return render(cmd.OutOrStdout(), newSnapshotView(saved))
	},
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <event-id>",
	Short: "Delete the local snapshot of an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		local, closeLocal, err := openLocal(cmd.Context())
		if err != nil {
			return err
		}
		defer closeLocal()

		local.DeleteLocalSnapshot(cmd.Context(), args[0])
		printSuccess(cmd.OutOrStdout(), "snapshot deleted for event "+args[0])
		return nil
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotDeleteCmd)
	rootCmd.AddCommand(snapshotCmd)
}
