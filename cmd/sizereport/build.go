package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sizereport/internal/bundler"
	reperrors "sizereport/internal/errors"
)

var (
	buildOutdir     string
	buildMinify     bool
	buildSourcemap  bool
	buildWriteStats bool
)

var buildCmd = &cobra.Command{
	Use:   "build <entry>...",
	Short: "Bundle entry points with esbuild and analyze the result",
	Long: `Bundle the given entry points with code splitting, then run the size
analysis on the emitted files. Module spans come from the esbuild metafile,
so chunks are not re-parsed.

Examples:
  sizereport build src/app.js src/pages/index.js
  sizereport build src/app.js --outdir build --minify
  sizereport build src/app.js --write-stats   # also write <outdir>/stats.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildOutdir, "outdir", "dist", "Output directory, relative to --dir")
	buildCmd.Flags().BoolVar(&buildMinify, "minify", false, "Minify the output")
	buildCmd.Flags().BoolVar(&buildSourcemap, "sourcemap", false, "Emit linked source maps")
	buildCmd.Flags().BoolVar(&buildWriteStats, "write-stats", false, "Write the converted build stats next to the output")
	buildCmd.Flags().StringVar(&analyzeFormat, "format", "human", "Summary format (human, json)")
	buildCmd.Flags().BoolVar(&analyzeFailOnThreshold, "fail-on-threshold", false, "Exit with status 3 when a threshold is exceeded")
	buildCmd.Flags().BoolVar(&analyzeServe, "serve", false, "Start the viewer after writing the report (overrides server.enable)")
	buildCmd.Flags().BoolVar(&analyzeStore, "store", false, "Persist the report in the run store (overrides store.enable)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, dir, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	result, err := bundler.NewBundler(logger).Build(cmd.Context(), bundler.Options{
		WorkDir:     dir,
		EntryPoints: args,
		Outdir:      buildOutdir,
		Minify:      buildMinify,
		Sourcemap:   buildSourcemap,
	})
	if err != nil {
		return err
	}
	logger.Debug("Build converted", map[string]interface{}{
		"result": result.String(),
	})

	if buildWriteStats {
		if err := writeStats(result); err != nil {
			return err
		}
	}

	build, err := result.Stats.Resolve()
	if err != nil {
		return err
	}

	p := newPipeline(cfg, dir, logger, cmd.OutOrStdout())
	p.applyFlags(cmd)
	return p.run(cmd.Context(), build, result.Spans)
}

// writeStats stores the converted stats so `analyze` can rerun without a build.
func writeStats(result *bundler.Result) error {
	stats := *result.Stats
	outputPath := stats.OutputPath
	stats.OutputPath = "."

	data, err := json.MarshalIndent(&stats, "", "  ")
	if err != nil {
		return reperrors.New(reperrors.InternalError, "failed to encode build stats", err)
	}
	path := filepath.Join(outputPath, "stats.json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return reperrors.New(reperrors.IOFailure, "failed to write build stats", err)
	}
	return nil
}
