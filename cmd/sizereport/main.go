package main

import (
	"os"

	reperrors "sizereport/internal/errors"
	"sizereport/internal/logging"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger := logging.NewLogger(logging.Config{
			Format: logging.HumanFormat,
			Level:  logging.InfoLevel,
		})
		logger.Error("Command execution failed", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(reperrors.ExitCode(reperrors.CodeOf(err)))
	}
}
