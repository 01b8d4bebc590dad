package viewer

import (
	"bytes"
	"context"
	"os"

	reperrors "sizereport/internal/errors"
	"sizereport/internal/output"
)

const (
	sourceFile  = "file"
	sourceStore = "store"
)

// loadedReport is a report together with its encoded form.
type loadedReport struct {
	report *output.Report
	raw    []byte
	source string
}

// reportLoader reads the current report from the report file on every
// request, falling back to the newest stored run.
type reportLoader struct {
	path    string
	store   ReportStore
	metrics *Metrics
}

func (l *reportLoader) current(ctx context.Context) (*loadedReport, error) {
	if l.path != "" {
		raw, err := os.ReadFile(l.path)
		if err == nil {
			return l.decode(raw, sourceFile)
		}
		if !os.IsNotExist(err) {
			return nil, reperrors.New(reperrors.IOFailure, "failed to read report", err)
		}
	}
	if l.store == nil {
		return nil, reperrors.Newf(reperrors.ReportNotFound, "no report has been written yet")
	}
	run, err := l.store.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return l.decode(run.Body, sourceStore)
}

func (l *reportLoader) stored(ctx context.Context, id string) (*loadedReport, error) {
	if l.store == nil {
		return nil, reperrors.Newf(reperrors.ReportNotFound, "report store is disabled")
	}
	run, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return l.decode(run.Body, sourceStore)
}

func (l *reportLoader) decode(raw []byte, source string) (*loadedReport, error) {
	rep, err := output.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	if l.metrics != nil {
		l.metrics.ObserveReport(source, rep)
	}
	return &loadedReport{report: rep, raw: raw, source: source}, nil
}
