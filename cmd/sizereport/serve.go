package main

import (
	"github.com/spf13/cobra"
)

var (
	serveHost   string
	servePort   string
	serveNoOpen bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the last size report",
	Long: `Start the read-only viewer for the report written by the last analysis.
When the report file is missing and the run store is enabled, the newest
stored run is served instead.

Endpoints:
  GET /size                 report page
  GET /api/sizeReportInfo   report JSON
  GET /api/reports          stored runs
  GET /api/reports/{id}     one stored run
  GET /health
  GET /metrics`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (overrides server.host)")
	serveCmd.Flags().StringVar(&servePort, "port", "", `Port to listen on, or "auto" (overrides server.port)`)
	serveCmd.Flags().BoolVar(&serveNoOpen, "no-open", false, "Do not open the browser")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, dir, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != "" {
		cfg.Server.Port = servePort
	}
	if serveNoOpen {
		cfg.Server.AutoOpenBrowser = false
	}

	return newPipeline(cfg, dir, logger, cmd.OutOrStdout()).serve(cmd.Context())
}
