package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review the past week",
		Long:  "Summarize the last week of plans, feedback, and insights into improvements for next week.",
		Args:  cobra.NoArgs,
		Run:   runReview,
	}

	RootCmd.AddCommand(cmd)
}

func runReview(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	review, err := a.svc.GenerateReview(cmd.Context())
	if err != nil {
		exitErr("review", err)
	}

	if jsonOutput() {
		printJSON(map[string]string{"review": review})
		return
	}
	fmt.Println(review)
}
