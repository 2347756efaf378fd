package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/focus-agent/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Save initial preferences",
		Long:  "Save wake, meal, and avoid preferences for the first time. Unset times use defaults.",
		Args:  cobra.NoArgs,
		Run:   runOnboard,
	}

	cmd.Flags().String("wake", "07:00", "Wake time")
	cmd.Flags().String("lunch", "12:30", "Lunch time")
	cmd.Flags().String("dinner", "19:00", "Dinner time")
	cmd.Flags().String("avoid", "", "Things to avoid scheduling, e.g. \"meetings before 10am\"")
	cmd.Flags().Bool("force", false, "Replace existing preferences")

	RootCmd.AddCommand(cmd)
}

func runOnboard(cmd *cobra.Command, args []string) {
	wake, _ := cmd.Flags().GetString("wake")
	lunch, _ := cmd.Flags().GetString("lunch")
	dinner, _ := cmd.Flags().GetString("dinner")
	avoid, _ := cmd.Flags().GetString("avoid")
	force, _ := cmd.Flags().GetBool("force")

	a := openApp()
	defer a.Close()
	ctx := cmd.Context()

	if !a.svc.NeedsOnboarding(ctx) && !force {
		exitErr("onboard", errors.New("preferences already saved; use --force to replace them or `prefs --set` to edit"))
	}

	prefs := model.Preferences{
		model.PrefWakeTime:   wake,
		model.PrefLunchTime:  lunch,
		model.PrefDinnerTime: dinner,
	}
	if avoid != "" {
		prefs[model.PrefAvoid] = avoid
	}
	if err := a.svc.SavePreferences(ctx, prefs); err != nil {
		exitErr("save preferences", err)
	}

	if jsonOutput() {
		printJSON(prefs)
		return
	}
	fmt.Println(prefs.String())
}
