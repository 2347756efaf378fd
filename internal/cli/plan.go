package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/focus-agent/internal/planner"
)

func init() {
	cmd := &cobra.Command{
		Use:   "plan [tasks]",
		Short: "Plan today's tasks",
		Long:  "Ask the model for a schedule of today's tasks. Tasks can be positional args or piped via stdin.",
		Run:   runPlan,
	}

	cmd.Flags().String("export", "", "Also write the plan to this PDF file in the export directory")

	RootCmd.AddCommand(cmd)
}

func runPlan(cmd *cobra.Command, args []string) {
	exportName, _ := cmd.Flags().GetString("export")

	tasks := readInput(args)
	if tasks == "" {
		exitErr("plan", fmt.Errorf("tasks are required (positional arg or stdin): %w", planner.ErrEmptyInput))
	}

	a := openApp()
	defer a.Close()
	ctx := cmd.Context()

	if a.svc.NeedsOnboarding(ctx) {
		fmt.Fprintln(os.Stderr, "note: no preferences saved yet; run `focus-agent onboard` to set wake, meal, and avoid times")
	}

	out, err := a.svc.Plan(ctx, tasks)
	if err != nil {
		exitErr("plan", err)
	}

	var path string
	if exportName != "" {
		if path, err = a.svc.Export("Daily Plan", out, exportName); err != nil {
			exitErr("export", err)
		}
	}

	if jsonOutput() {
		printJSON(map[string]string{"plan": out, "export": path})
		return
	}
	fmt.Println(out)
	if path != "" {
		fmt.Fprintf(os.Stderr, "exported to %s\n", path)
	}
}
