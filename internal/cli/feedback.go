package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/focus-agent/internal/planner"
)

func init() {
	cmd := &cobra.Command{
		Use:   "feedback [tasks done]",
		Short: "Record what got done today",
		Long:  "Record completed tasks. The text is logged, summarized, turned into an insight, and used to update preferences.",
		Run:   runFeedback,
	}

	RootCmd.AddCommand(cmd)
}

func runFeedback(cmd *cobra.Command, args []string) {
	text := readInput(args)

	a := openApp()
	defer a.Close()
	ctx := cmd.Context()

	if _, err := a.svc.RecordFeedback(ctx, text); err != nil {
		if errors.Is(err, planner.ErrEmptyInput) {
			err = fmt.Errorf("feedback text is required (positional arg or stdin): %w", err)
		}
		exitErr("feedback", err)
	}

	res, err := a.svc.SubmitFeedback(ctx, text)
	if err != nil {
		exitErr("feedback", err)
	}

	if jsonOutput() {
		printJSON(res)
		return
	}
	fmt.Println(res.Message)
	if !res.Preferences.Applied {
		fmt.Fprintf(os.Stderr, "note: preferences unchanged (%s)\n", res.Preferences.Reason)
	}
}
