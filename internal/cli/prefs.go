package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/focus-agent/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or replace scheduling preferences",
		Long:  "Show the saved preferences. With --set, replace them entirely with the given key=value pairs.",
		Args:  cobra.NoArgs,
		Run:   runPrefs,
	}

	cmd.Flags().StringArray("set", nil, "key=value to save (repeatable); replaces all preferences")

	RootCmd.AddCommand(cmd)
}

func runPrefs(cmd *cobra.Command, args []string) {
	sets, _ := cmd.Flags().GetStringArray("set")

	a := openApp()
	defer a.Close()
	ctx := cmd.Context()

	if len(sets) > 0 {
		prefs, err := parsePairs(sets)
		if err != nil {
			exitErr("prefs", err)
		}
		if err := a.svc.SavePreferences(ctx, prefs); err != nil {
			exitErr("save preferences", err)
		}
	}

	prefs := a.svc.LoadPreferences(ctx)
	if jsonOutput() {
		printJSON(prefs)
		return
	}
	if len(prefs) == 0 {
		fmt.Println("no preferences saved; run `focus-agent onboard`")
		return
	}
	fmt.Println(prefs.String())
}

func parsePairs(pairs []string) (model.Preferences, error) {
	prefs := model.Preferences{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q (want key=value)", p)
		}
		prefs[k] = strings.TrimSpace(v)
	}
	return prefs, nil
}
