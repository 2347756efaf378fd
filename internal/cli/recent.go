package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recent feedback",
		Args:  cobra.NoArgs,
		Run:   runRecent,
	}

	cmd.Flags().Int("days", 3, "Window in days")

	RootCmd.AddCommand(cmd)
}

func runRecent(cmd *cobra.Command, args []string) {
	days, _ := cmd.Flags().GetInt("days")

	a := openApp()
	defer a.Close()

	entries := a.svc.RecentFeedback(cmd.Context(), days)
	if jsonOutput() {
		printJSON(entries)
		return
	}
	for _, e := range entries {
		fmt.Printf("%s  %s\n", e.Date.Local().Format("2006-01-02 15:04"), e.Feedback)
	}
}
