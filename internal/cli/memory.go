package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/focus-agent/internal/model"
	"github.com/rcliao/focus-agent/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "List stored artifacts",
		Long:  "List plans, feedback summaries, insights, preference snapshots, and reviews, newest first.",
		Args:  cobra.NoArgs,
		Run:   runMemory,
	}

	cmd.Flags().String("type", "", "Filter by type: plan, feedback, insight, preferences, weekly_review")
	cmd.Flags().IntP("limit", "l", 20, "Max results (negative for all)")

	RootCmd.AddCommand(cmd)
}

func runMemory(cmd *cobra.Command, args []string) {
	typeStr, _ := cmd.Flags().GetString("type")
	limit, _ := cmd.Flags().GetInt("limit")

	var typ model.ArtifactType
	if typeStr != "" {
		var err error
		if typ, err = model.ParseArtifactType(typeStr); err != nil {
			exitErr("memory", err)
		}
	}

	a := openApp()
	defer a.Close()

	arts, err := a.svc.Artifacts(cmd.Context(), store.SnapshotParams{Type: typ, Limit: limit})
	if err != nil {
		exitErr("memory", err)
	}

	if jsonOutput() {
		printJSON(arts)
		return
	}
	printArtifacts(arts)
}

func printArtifacts(arts []model.Artifact) {
	for i, a := range arts {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("[%s %s]\n%s\n", a.Type, a.Timestamp.Local().Format("2006-01-02 15:04"), a.Content)
	}
}
