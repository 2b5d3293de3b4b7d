package cli

import (
	"context"

	"github.com/spf13/cobra"

	"example.com/event-planner/gateway/internal/planner"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Manage planner wizard progress",
}

var (
	progressStep      int
	progressCompleted []int
)

var progressSaveCmd = &cobra.Command{
	Use:   "save <event-id>",
	Short: "Save wizard progress to the event service and the local snapshot",
	Long: `Save the current step and completed steps. The local snapshot is written
even when the event service rejects the request or cannot be reached.`,
	Args: cobra.ExactArgs(1),
	RunE: runProgressSave,
}

func runProgressSave(cmd *cobra.Command, args []string) error {
	return withController(cmd, args[0], func(ctx context.Context, controller *planner.Controller) error {
		if cmd.Flags().Changed("step") || cmd.Flags().Changed("completed") {
			current := controller.Session()
			step := current.CurrentStep
			if cmd.Flags().Changed("step") {
				step = progressStep
			}
			completed := current.CompletedStepList()
			if cmd.Flags().Changed("completed") {
				completed = progressCompleted
			}

			if _, err := controller.SetProgress(step, completed); err != nil {
				return err
			}
		}

		outcome, err := controller.Save(ctx)
		if err != nil {
			return err
		}

		if !outcome.SavedRemote {
			printWarning(cmd.ErrOrStderr(), "progress saved locally only: "+outcome.RemoteErr.Error())
		}
		return render(cmd.OutOrStdout(), saveView{Session: newSessionView(outcome.Session), SavedRemote: outcome.SavedRemote})
	})
}

func init() {
	progressSaveCmd.Flags().IntVar(&progressStep, "step", 0, "current wizard step")
	progressSaveCmd.Flags().IntSliceVar(&progressCompleted, "completed", nil, "completed steps, comma separated")

	progressCmd.AddCommand(progressSaveCmd)
	rootCmd.AddCommand(progressCmd)
}
