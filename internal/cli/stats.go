package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Args:  cobra.NoArgs,
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	stats, err := a.store.Stats(cmd.Context(), a.cfg.DBPath)
	if err != nil {
		exitErr("stats", err)
	}

	if jsonOutput() {
		printJSON(stats)
		return
	}
	fmt.Printf("database:    %s (%d bytes)\n", stats.DBPath, stats.DBSizeBytes)
	fmt.Printf("feedback:    %d entries\n", stats.FeedbackEntries)
	fmt.Printf("artifacts:   %d (%d chunks)\n", stats.Artifacts, stats.Chunks)
	fmt.Printf("preferences: %t\n", stats.HasPreferences)
	for _, t := range stats.Types {
		fmt.Printf("  %-14s %4d  latest %s\n", t.Type, t.Count, t.Latest)
	}
}
