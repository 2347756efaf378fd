package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/focus-agent/internal/model"
	"github.com/rcliao/focus-agent/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search stored artifacts",
		Long:  "Find artifacts similar in meaning to the query. With --keyword, match words exactly instead.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().String("type", "", "Filter by type")
	cmd.Flags().IntP("limit", "k", 5, "Max results")
	cmd.Flags().Int("days", 0, "Only artifacts from the last N days (similarity search)")
	cmd.Flags().Bool("keyword", false, "Keyword search instead of similarity")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	typeStr, _ := cmd.Flags().GetString("type")
	k, _ := cmd.Flags().GetInt("limit")
	days, _ := cmd.Flags().GetInt("days")
	keyword, _ := cmd.Flags().GetBool("keyword")
	query := strings.Join(args, " ")

	var typ model.ArtifactType
	if typeStr != "" {
		var err error
		if typ, err = model.ParseArtifactType(typeStr); err != nil {
			exitErr("search", err)
		}
	}

	a := openApp()
	defer a.Close()

	if keyword {
		results, err := a.store.Search(cmd.Context(), store.SearchParams{Query: query, Type: typ, Limit: k})
		if err != nil {
			exitErr("search", err)
		}
		if jsonOutput() {
			printJSON(results)
			return
		}
		arts := make([]model.Artifact, len(results))
		for i, r := range results {
			arts[i] = r.Artifact
		}
		printArtifacts(arts)
		return
	}

	arts, err := a.svc.Recall(cmd.Context(), query, k, typ, days)
	if err != nil {
		exitErr("search", err)
	}
	if jsonOutput() {
		printJSON(arts)
		return
	}
	for i, art := range arts {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%.3f ", art.Score)
		printArtifacts([]model.Artifact{art})
	}
}
