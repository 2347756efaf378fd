package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "context [description]",
		Short: "Show the history a plan would use",
		Long:  "Show the stored artifacts most similar to a description, packed into the history budget the planner binds.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runContext,
	}

	RootCmd.AddCommand(cmd)
}

func runContext(cmd *cobra.Command, args []string) {
	query := strings.Join(args, " ")

	a := openApp()
	defer a.Close()

	result, err := a.svc.History(cmd.Context(), query)
	if err != nil {
		exitErr("context", err)
	}

	if jsonOutput() {
		printJSON(result)
		return
	}
	fmt.Println(result.Render())
}
