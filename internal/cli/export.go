package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/focus-agent/internal/model"
	"github.com/rcliao/focus-agent/internal/planner"
	"github.com/rcliao/focus-agent/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export [content]",
		Short: "Export a plan as PDF",
		Long:  "Write content (positional arg or stdin) to a PDF in the export directory. With --from-plan, export the latest plan.",
		Run:   runExport,
	}

	cmd.Flags().StringP("title", "t", "Daily Plan", "Document title")
	cmd.Flags().StringP("out", "o", "", "File name (default: plan-YYYY-MM-DD.pdf)")
	cmd.Flags().Bool("from-plan", false, "Export the most recent plan")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	title, _ := cmd.Flags().GetString("title")
	out, _ := cmd.Flags().GetString("out")
	fromPlan, _ := cmd.Flags().GetBool("from-plan")

	a := openApp()
	defer a.Close()

	var content string
	if fromPlan {
		plans, err := a.svc.Artifacts(cmd.Context(), store.SnapshotParams{Type: model.TypePlan, Limit: 1})
		if err != nil {
			exitErr("export", err)
		}
		if len(plans) == 0 {
			exitErr("export", errors.New("no plans recorded yet"))
		}
		content = planner.FormatSchedule(plans[0].Content)
	} else {
		content = readInput(args)
	}
	if content == "" {
		exitErr("export", fmt.Errorf("content is required (positional arg, stdin, or --from-plan): %w", planner.ErrEmptyInput))
	}

	path, err := a.svc.Export(title, content, out)
	if err != nil {
		exitErr("export", err)
	}

	if jsonOutput() {
		printJSON(map[string]string{"path": path})
		return
	}
	fmt.Println(path)
}
