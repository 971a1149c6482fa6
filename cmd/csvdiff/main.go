// Package main provides the command-line front end for CSV comparison.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/csvdiff/internal/config"
	"github.com/JonMunkholm/csvdiff/internal/core"
	"github.com/JonMunkholm/csvdiff/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// compareOptions holds the compare command's flags.
type compareOptions struct {
	sheet    string
	out      string
	format   string
	preview  int
	logLevel string
}

func main() {
	// A missing .env is fine; the CLI runs on defaults
	_ = godotenv.Load()

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		if core.IsUserFacing(err) {
			fmt.Fprintln(stderr, "Error:", core.FormatUserError(err))
		} else {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "csvdiff",
		Short:         "Compare two CSV files cell by cell",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	opts := &compareOptions{}
	compareCmd := &cobra.Command{
		Use:   "compare FILE1 FILE2",
		Short: "List every cell whose trimmed value differs between two CSV files",
		Long: `compare reads both files, aligns them by row and column position and
reports each differing cell once per file that has a value there.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, args, opts)
		},
	}
	compareCmd.Flags().StringVar(&opts.sheet, "sheet", "", "Tab name recorded on every difference (default from COMPARE_DEFAULT_SHEET)")
	compareCmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write the full report to this path")
	compareCmd.Flags().StringVar(&opts.format, "format", "", "Report format: csv or xlsx (default: from --out extension, else csv)")
	compareCmd.Flags().IntVar(&opts.preview, "preview", 0, "Rows shown in the preview table (default from COMPARE_PREVIEW_LIMIT)")
	compareCmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(compareCmd)
	return rootCmd
}

func runCompare(cmd *cobra.Command, args []string, opts *compareOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logLevel := opts.logLevel
	if logLevel == "" {
		logLevel = cfg.Logging.Level
	}
	logging.SetupWriter(cmd.ErrOrStderr(), logLevel, cfg.Logging.Format)

	previewLimit := opts.preview
	if previewLimit <= 0 {
		previewLimit = cfg.Compare.PreviewLimit
	}
	sheet := opts.sheet
	if sheet == "" {
		sheet = cfg.Compare.DefaultSheet
	}
	format, err := resolveFormat(opts.format, opts.out)
	if err != nil {
		return err
	}

	sess := core.NewSession("cli")
	if err := loadFiles(cmd, sess, args, cfg.Upload.MaxFileSize); err != nil {
		return err
	}

	report, err := sess.Compare(sheet)
	if err != nil {
		return err
	}
	slog.Debug("comparison completed", "differences", report.Len(), "sheet", sheet)

	out := cmd.OutOrStdout()
	printReport(out, report, previewLimit)

	if opts.out == "" {
		return nil
	}
	if _, err := sess.Download(); err != nil {
		return err
	}
	if err := writeReport(report, opts.out, format); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintf(out, "Report written to %s\n", opts.out)
	return nil
}

// loadFiles reads both inputs concurrently, then parses them into the
// session's slots in order.
func loadFiles(cmd *cobra.Command, sess *core.Session, paths []string, maxSize int64) error {
	texts := make([]string, len(paths))

	g, _ := errgroup.WithContext(cmd.Context())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("%w: %v", core.ErrFileRead, err)
			}
			defer f.Close()

			text, err := core.ReadText(f, maxSize)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, path := range paths {
		if err := sess.LoadText(core.Slot(i+1), filepath.Base(path), texts[i]); err != nil {
			return err
		}
	}
	return nil
}

func printReport(w io.Writer, report *core.Report, limit int) {
	summary := report.Summary()
	fmt.Fprintln(w, summary.Message)
	if summary.Identical {
		return
	}

	preview := report.Preview(limit)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE NAME\tTAB NAME\tCELL\tVALUE")
	for _, d := range preview.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.FileName, d.TabName, d.CellReference, d.Value)
	}
	tw.Flush()

	if preview.Truncated {
		fmt.Fprintf(w, "Showing first %d of %d differences. Use --out for the full report.\n",
			preview.Shown, preview.Total)
	}
}

func resolveFormat(format, path string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		if strings.EqualFold(filepath.Ext(path), ".xlsx") {
			return "xlsx", nil
		}
		return "csv", nil
	}
	if format != "csv" && format != "xlsx" {
		return "", fmt.Errorf("invalid format: %s (must be csv or xlsx)", format)
	}
	return format, nil
}

func writeReport(report *core.Report, path, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if format == "xlsx" {
		err = report.WriteXLSX(f)
	} else {
		err = report.WriteDelimited(f)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
