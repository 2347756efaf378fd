package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/focus-agent/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a JSON feedback log",
		Long:  `Import feedback from a JSON array of {"date": ..., "feedback": ...} records (file or stdin), keeping the original dates.`,
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("read input", err)
	}

	var entries []store.LegacyEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		exitErr("parse json", err)
	}

	a := openApp()
	defer a.Close()

	res, err := a.store.ImportFeedback(cmd.Context(), entries)
	if err != nil {
		exitErr("import", err)
	}

	if jsonOutput() {
		printJSON(res)
		return
	}
	fmt.Printf("imported %d entries, skipped %d\n", res.Imported, res.Skipped)
}
