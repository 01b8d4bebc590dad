package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sizereport/internal/config"
	reperrors "sizereport/internal/errors"
)

var (
	initForce  bool
	initFormat string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration",
	Long: `Create sizereport.<format> in the project directory with example groups
and thresholds.

Examples:
  sizereport init                 # sizereport.json
  sizereport init --format yaml
  sizereport init --format toml --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")
	initCmd.Flags().StringVar(&initFormat, "format", "json", "Config format (json, yaml, toml)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := projectDir()
	if err != nil {
		return err
	}

	ext := initFormat
	if ext == "yaml" {
		ext = "yml"
	}
	path := filepath.Join(dir, config.ConfigName+"."+ext)

	if _, statErr := os.Stat(path); statErr == nil && !initForce {
		// Already initialized is success, so CI can run init unconditionally.
		fmt.Fprintf(cmd.OutOrStdout(), "Config already exists at %s\n", path)
		fmt.Fprintln(cmd.OutOrStdout(), "Run 'sizereport init --force' to overwrite.")
		return nil
	}

	var buf bytes.Buffer
	if err := config.Write(&buf, config.StarterConfig(), initFormat); err != nil {
		return reperrors.New(reperrors.ConfigInvalid, "failed to encode config", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return reperrors.New(reperrors.IOFailure, "failed to write config file", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
