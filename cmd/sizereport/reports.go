package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	reperrors "sizereport/internal/errors"
	"sizereport/internal/output"
	"sizereport/internal/storage"
)

var reportsLimit int

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Browse stored size reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored reports, newest first",
	RunE:  runReportsList,
}

var reportsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportsShow,
}

var reportsCompareCmd = &cobra.Command{
	Use:   "compare <id> <other-id>",
	Short: "Check whether two stored reports attribute sizes identically",
	Long: `Compares two stored reports, ignoring the title and generation time.
Exits with an error when they differ.`,
	Args: cobra.ExactArgs(2),
	RunE: runReportsCompare,
}

func init() {
	reportsListCmd.Flags().IntVarP(&reportsLimit, "limit", "n", 20, "Maximum number of reports (0 for all)")
	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
	reportsCmd.AddCommand(reportsCompareCmd)
	rootCmd.AddCommand(reportsCmd)
}

// openStore opens the configured run store read-side. A store that was
// never written is reported as missing rather than created.
func openStore() (*storage.DB, *storage.ReportRepository, error) {
	cfg, dir, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	path := resolveIn(dir, cfg.Store.Path)
	if _, err := os.Stat(path); err != nil {
		return nil, nil, reperrors.New(reperrors.ReportNotFound, "no report store at "+path, err)
	}
	db, err := storage.Open(path, nil)
	if err != nil {
		return nil, nil, reperrors.New(reperrors.IOFailure, "failed to open report store", err)
	}
	repo, err := storage.NewReportRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, reperrors.New(reperrors.InternalError, "failed to create report repository", err)
	}
	return db, repo, nil
}

func runReportsList(cmd *cobra.Command, args []string) error {
	db, repo, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	defer repo.Close()

	runs, err := repo.List(cmd.Context(), reportsLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No stored reports.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tTOTAL\tVIOLATIONS\tTITLE")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			r.ID, humanize.Time(r.CreatedAt), humanize.IBytes(uint64(r.TotalSize)), r.Violations, r.Title)
	}
	return tw.Flush()
}

func runReportsShow(cmd *cobra.Command, args []string) error {
	db, repo, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	defer repo.Close()

	run, err := repo.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(run.Body)
	return err
}

func runReportsCompare(cmd *cobra.Command, args []string) error {
	db, repo, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	defer repo.Close()

	a, err := repo.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	b, err := repo.Get(cmd.Context(), args[1])
	if err != nil {
		return err
	}

	same, msg := output.CompareSnapshots(a.Body, b.Body)
	if !same {
		return reperrors.Newf(reperrors.ReportMismatch, "reports %s and %s differ: %s", a.ID, b.ID, msg)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reports %s and %s match.\n", a.ID, b.ID)
	return nil
}
