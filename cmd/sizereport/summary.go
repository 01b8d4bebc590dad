package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	reperrors "sizereport/internal/errors"
	"sizereport/internal/output"
)

// writeSummary prints the outcome of a pass. The json format prints the
// report document itself.
func writeSummary(w io.Writer, rep *output.Report, path, format string) error {
	switch format {
	case "json":
		data, err := output.Encode(rep)
		if err != nil {
			return reperrors.New(reperrors.InternalError, "failed to encode report", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "", "human":
		return writeHumanSummary(w, rep, path)
	default:
		return reperrors.Newf(reperrors.ConfigInvalid, "unsupported format: %s", format)
	}
}

func writeHumanSummary(w io.Writer, rep *output.Report, path string) error {
	s := rep.SizeSummary
	fmt.Fprintf(w, "%s\n\n", rep.Title)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total\t%s\t(%s, %s bytes)\n", s.TotalSize, humanize.IBytes(uint64(s.TotalBytes)), humanize.Comma(s.TotalBytes))
	fmt.Fprintf(tw, "Static\t%s\n", s.StaticSize)
	fmt.Fprintf(tw, "Chunk\t%s\n", s.ChunkSize)
	fmt.Fprintf(tw, "Copy\t%s\n", s.CopySize)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(s.SizeInfo) > 0 {
		fmt.Fprintln(w, "\nPackages:")
		names := make([]string, 0, len(s.SizeInfo))
		for name := range s.SizeInfo {
			names = append(names, name)
		}
		sort.Strings(names)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, name := range names {
			fmt.Fprintf(tw, "  %s\t%s\n", name, s.SizeInfo[name].Size)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(s.Groups) > 0 {
		fmt.Fprintln(w, "\nGroups:")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  NAME\tSELF\tSHARED")
		for _, g := range s.Groups {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", g.Name, g.SelfSize, g.SharedSize)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(rep.Diagnostics) > 0 {
		fmt.Fprintf(w, "\nDiagnostics (%d):\n", len(rep.Diagnostics))
		for _, d := range rep.Diagnostics {
			fmt.Fprintf(w, "  %-7s [%s] %s\n", d.Severity, d.Code, d.Message)
		}
	}

	if path != "" {
		fmt.Fprintf(w, "\nReport written to %s\n", path)
	}
	return nil
}
