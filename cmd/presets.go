package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/rotables/core/policy"
)

var presetsCmd = &cobra.Command{
	Use:   "presets [name]",
	Short: "Show the parameters of the allocation presets",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPresets,
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}

func runPresets(cmd *cobra.Command, args []string) error {
	names := policy.PresetNames()
	if len(args) == 1 {
		names = args
	}
	out := make(map[string]policy.Config, len(names))
	for _, n := range names {
		cfg, err := policy.Preset(n)
		if err != nil {
			return err
		}
		out[cfg.Preset] = cfg
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode presets: %w", err)
	}
	return nil
}
