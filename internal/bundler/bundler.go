package bundler

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"sizereport/internal/buildstats"
	reperrors "sizereport/internal/errors"
	"sizereport/internal/logging"
)

// Options configures a build.
type Options struct {
	// WorkDir is the directory entry points and Outdir are relative to.
	WorkDir     string
	EntryPoints []string
	Outdir      string
	Minify      bool
	Sourcemap   bool
}

// Result is a finished build.
type Result struct {
	Stats    *buildstats.Stats
	Metafile *Metafile
	Spans    *MetafileSpans
}

// Bundler runs esbuild builds.
type Bundler struct {
	logger *logging.Logger
}

// NewBundler creates a bundler.
func NewBundler(logger *logging.Logger) *Bundler {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Bundler{logger: logger}
}

// Build bundles the entry points with code splitting, writes the outputs and
// returns the converted stats.
func (b *Bundler) Build(ctx context.Context, opts Options) (*Result, error) {
	if len(opts.EntryPoints) == 0 {
		return nil, reperrors.New(reperrors.ConfigInvalid, "no entry points to build", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	workDir, err := filepath.Abs(opts.WorkDir)
	if err != nil {
		return nil, reperrors.New(reperrors.IOFailure, "failed to resolve working directory", err)
	}
	outdir := opts.Outdir
	if outdir == "" {
		outdir = "dist"
	}
	if filepath.IsAbs(outdir) {
		if outdir, err = filepath.Rel(workDir, outdir); err != nil {
			return nil, reperrors.New(reperrors.ConfigInvalid, "output directory must share a root with the working directory", err)
		}
	}
	outdir = filepath.ToSlash(outdir)

	sourcemap := api.SourceMapNone
	if opts.Sourcemap {
		sourcemap = api.SourceMapLinked
	}

	b.logger.Info("Starting build", map[string]interface{}{
		"entryPoints": len(opts.EntryPoints),
		"outdir":      outdir,
	})

	result := api.Build(api.BuildOptions{
		EntryPoints:       opts.EntryPoints,
		Bundle:            true,
		Splitting:         true,
		Write:             true,
		Metafile:          true,
		Format:            api.FormatESModule,
		Platform:          api.PlatformBrowser,
		Target:            api.ESNext,
		Outdir:            outdir,
		AbsWorkingDir:     workDir,
		Sourcemap:         sourcemap,
		MinifyWhitespace:  opts.Minify,
		MinifyIdentifiers: opts.Minify,
		MinifySyntax:      opts.Minify,
		LogLevel:          api.LogLevelSilent,
	})

	if len(result.Errors) > 0 {
		var errMsgs []string
		for _, e := range result.Errors {
			errMsgs = append(errMsgs, e.Text)
		}
		return nil, reperrors.Newf(reperrors.BuildFailed, "build failed: %s", strings.Join(errMsgs, "; ")).WithDetails(errMsgs)
	}
	for _, w := range result.Warnings {
		b.logger.Warn("Build warning", map[string]interface{}{"text": w.Text})
	}

	var meta Metafile
	if err := json.Unmarshal([]byte(result.Metafile), &meta); err != nil {
		return nil, reperrors.New(reperrors.BuildFailed, "failed to parse metafile", err)
	}

	stats := ToStats(&meta, outdir)
	stats.OutputPath = filepath.Join(workDir, outdir)

	b.logger.Info("Build complete", map[string]interface{}{
		"inputs":  len(meta.Inputs),
		"outputs": len(meta.Outputs),
	})

	return &Result{
		Stats:    stats,
		Metafile: &meta,
		Spans:    NewMetafileSpans(&meta, outdir),
	}, nil
}

// String summarizes a result for logs.
func (r *Result) String() string {
	return fmt.Sprintf("%d modules, %d entries, %d assets", len(r.Stats.Modules), len(r.Stats.Entries), len(r.Stats.Assets))
}
