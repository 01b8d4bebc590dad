package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sizereport/internal/analysis"
	"sizereport/internal/bundleparse"
	"sizereport/internal/buildstats"
	"sizereport/internal/config"
	reperrors "sizereport/internal/errors"
	"sizereport/internal/logging"
	"sizereport/internal/output"
	"sizereport/internal/paths"
	"sizereport/internal/storage"
	"sizereport/internal/viewer"
)

var (
	analyzeStats           string
	analyzeOutputPath      string
	analyzeFormat          string
	analyzeFailOnThreshold bool
	analyzeServe           bool
	analyzeStore           bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Attribute the size of a finished build",
	Long: `Read the build stats document, parse every emitted chunk, attribute its
bytes to packages, report groups and pages, and write the size report.

Examples:
  sizereport analyze                         # uses stats.file from config
  sizereport analyze --stats dist/stats.json
  sizereport analyze --fail-on-threshold     # exit 3 on threshold violations
  sizereport analyze --serve                 # open the viewer afterwards`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeStats, "stats", "", "Build stats file (overrides stats.file)")
	analyzeCmd.Flags().StringVar(&analyzeOutputPath, "output-path", "", "Directory holding the emitted assets (overrides the stats outputPath)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "human", "Summary format (human, json)")
	analyzeCmd.Flags().BoolVar(&analyzeFailOnThreshold, "fail-on-threshold", false, "Exit with status 3 when a threshold is exceeded")
	analyzeCmd.Flags().BoolVar(&analyzeServe, "serve", false, "Start the viewer after writing the report (overrides server.enable)")
	analyzeCmd.Flags().BoolVar(&analyzeStore, "store", false, "Persist the report in the run store (overrides store.enable)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, dir, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	statsPath := cfg.Stats.File
	if analyzeStats != "" {
		statsPath = analyzeStats
	}
	if !filepath.IsAbs(statsPath) {
		statsPath = filepath.Join(dir, statsPath)
	}

	stats, err := buildstats.Load(statsPath)
	if err != nil {
		return err
	}
	switch {
	case analyzeOutputPath != "":
		stats.OutputPath = resolveIn(dir, analyzeOutputPath)
	case cfg.Stats.OutputPath != "":
		stats.OutputPath = resolveIn(dir, cfg.Stats.OutputPath)
	}

	build, err := stats.Resolve()
	if err != nil {
		return err
	}

	p := newPipeline(cfg, dir, logger, cmd.OutOrStdout())
	p.applyFlags(cmd)
	return p.run(cmd.Context(), build, bundleparse.NewParser(build.OutputPath))
}

// pipeline runs a pass and everything that follows it: writing, storing,
// summarizing and serving the report.
type pipeline struct {
	cfg    *config.Config
	dir    string
	logger *logging.Logger
	out    io.Writer
	format string
	fail   bool
	now    func() time.Time
}

func newPipeline(cfg *config.Config, dir string, logger *logging.Logger, out io.Writer) *pipeline {
	return &pipeline{
		cfg:    cfg,
		dir:    dir,
		logger: logger,
		out:    out,
		format: "human",
		now:    time.Now,
	}
}

// applyFlags copies the analyze flags shared with `build` onto p.
func (p *pipeline) applyFlags(cmd *cobra.Command) {
	p.format = analyzeFormat
	p.fail = analyzeFailOnThreshold
	if cmd.Flags().Changed("serve") {
		p.cfg.Server.Enable = analyzeServe
	}
	if cmd.Flags().Changed("store") {
		p.cfg.Store.Enable = analyzeStore
	}
}

func (p *pipeline) run(ctx context.Context, build *buildstats.Build, spans analysis.SpanSource) error {
	if ctx == nil {
		ctx = context.Background()
	}

	rep, err := p.analyze(ctx, build, spans)
	if err != nil {
		return err
	}

	if err := writeSummary(p.out, rep, displayPath(p.cfg.ReportPath(p.dir), p.dir), p.format); err != nil {
		return err
	}

	if p.cfg.Server.Enable {
		if err := p.serve(ctx); err != nil {
			return err
		}
	}

	if n := rep.Violations(); p.fail && n > 0 {
		return reperrors.Newf(reperrors.ThresholdViolation, "%d size threshold violation(s)", n)
	}
	return nil
}

// analyze runs the pass, writes the report file and optionally stores it.
func (p *pipeline) analyze(ctx context.Context, build *buildstats.Build, spans analysis.SpanSource) (*output.Report, error) {
	opts, err := analysis.NewOptions(p.cfg)
	if err != nil {
		return nil, reperrors.New(reperrors.ConfigInvalid, "invalid report options", err)
	}

	res, err := analysis.NewAnalyzer(p.logger).Run(ctx, analysis.Input{
		Build:   build,
		Spans:   spans,
		Options: opts,
	})
	if err != nil {
		return nil, err
	}

	title := p.cfg.Title
	if title == "" {
		title = config.DefaultTitle(p.now())
	}
	rep := output.Build(res, output.Meta{Title: title, GeneratedAt: p.now()})

	path := p.cfg.ReportPath(p.dir)
	if err := output.WriteFile(path, rep); err != nil {
		return nil, err
	}
	p.logger.Info("Size report written", map[string]interface{}{
		"path": path,
	})

	if p.cfg.Store.Enable {
		if err := p.store(ctx, rep); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

func (p *pipeline) storePath() string {
	return resolveIn(p.dir, p.cfg.Store.Path)
}

func (p *pipeline) store(ctx context.Context, rep *output.Report) error {
	body, err := output.Encode(rep)
	if err != nil {
		return reperrors.New(reperrors.InternalError, "failed to encode report", err)
	}

	db, err := storage.Open(p.storePath(), p.logger)
	if err != nil {
		return reperrors.New(reperrors.IOFailure, "failed to open report store", err)
	}
	defer func() { _ = db.Close() }()

	repo, err := storage.NewReportRepository(db)
	if err != nil {
		return reperrors.New(reperrors.InternalError, "failed to create report repository", err)
	}
	defer repo.Close()

	run := &storage.ReportRun{
		Title:      rep.Title,
		CreatedAt:  p.now(),
		TotalSize:  rep.SizeSummary.TotalBytes,
		Violations: rep.Violations(),
		Body:       body,
	}
	if err := repo.Save(ctx, run); err != nil {
		return err
	}
	p.logger.Info("Report stored", map[string]interface{}{
		"id":   run.ID,
		"path": db.Path(),
	})
	return nil
}

// serve runs the viewer until interrupted.
func (p *pipeline) serve(ctx context.Context) error {
	port, err := p.cfg.Server.ResolvedPort()
	if err != nil {
		return reperrors.New(reperrors.ConfigInvalid, "invalid server.port", err)
	}

	opts := viewer.Options{
		Host:            p.cfg.Server.Host,
		Port:            port,
		ReportPath:      p.cfg.ReportPath(p.dir),
		AutoOpenBrowser: p.cfg.Server.AutoOpenBrowser,
	}

	if p.cfg.Store.Enable {
		db, err := storage.Open(p.storePath(), p.logger)
		if err != nil {
			return reperrors.New(reperrors.IOFailure, "failed to open report store", err)
		}
		defer func() { _ = db.Close() }()
		repo, err := storage.NewReportRepository(db)
		if err != nil {
			return reperrors.New(reperrors.InternalError, "failed to create report repository", err)
		}
		defer repo.Close()
		opts.Store = repo
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(p.out, "Press Ctrl+C to stop the viewer")
	return viewer.NewServer(opts, p.logger).Run(ctx)
}

// displayPath shortens paths inside the project directory to their
// project-relative form.
func displayPath(path, dir string) string {
	if !paths.IsWithinRoot(path, dir) {
		return path
	}
	rel, err := paths.CanonicalizePath(path, dir)
	if err != nil {
		return path
	}
	return rel
}

func resolveIn(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
