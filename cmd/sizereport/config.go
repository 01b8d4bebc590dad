package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sizereport/internal/config"
	reperrors "sizereport/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect sizereport configuration",
}

var configCheckCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Check a config file for unknown keys and invalid values",
	Long: `Read a config file strictly. Unknown keys, which the loader would
silently ignore, are reported together with invalid values.

Examples:
  sizereport config check
  sizereport config check ci/sizereport.yml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigCheck,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	path := configFlag
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		dir, err := projectDir()
		if err != nil {
			return err
		}
		if path = findConfig(dir); path == "" {
			return reperrors.Newf(reperrors.ConfigInvalid, "no %s.{json,yaml,yml,toml} in %s", config.ConfigName, dir)
		}
	}

	res, err := config.Lint(path)
	if err != nil {
		return reperrors.New(reperrors.ConfigInvalid, "failed to check config", err)
	}

	out := cmd.OutOrStdout()
	if res.OK() {
		fmt.Fprintf(out, "%s: ok\n", res.Path)
		return nil
	}
	for _, k := range res.UnknownKeys {
		fmt.Fprintf(out, "%s: unknown key %q\n", res.Path, k)
	}
	for _, p := range res.Problems {
		fmt.Fprintf(out, "%s: %s\n", res.Path, p)
	}
	return reperrors.Newf(reperrors.ConfigInvalid, "%d problem(s) in %s", len(res.UnknownKeys)+len(res.Problems), res.Path)
}

// findConfig returns the first config file present in dir, in loader order.
func findConfig(dir string) string {
	for _, ext := range []string{"json", "toml", "yaml", "yml"} {
		path := filepath.Join(dir, config.ConfigName+"."+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return reperrors.New(reperrors.InternalError, "failed to encode config", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
