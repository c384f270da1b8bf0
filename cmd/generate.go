package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-report/internal/session"
)

var generateCmd = &cobra.Command{
	Use:   "generate [files or directories...]",
	Short: "Generate a PDF report from photos",
	Long: `Generate a PDF report from the given photos, in the order given.
Directories contribute their files in name order. Files that are not
images are skipped with a warning.

Examples:
  # Two photos per page with the default variant
  photo-report generate -o report.pdf --number 1234/7-000123-4 photos/

  # One photo per page, captions from a YAML map of file name to caption
  photo-report generate -o report.pdf --per-page 1 --captions captions.yaml a.jpg b.jpg

  # Accept a document larger than the soft size limit
  photo-report generate -o report.pdf --yes photos/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("output", "o", "report.pdf", "Output PDF path")
	generateCmd.Flags().String("number", "", "Report number printed in the header")
	generateCmd.Flags().Int("per-page", 0, "Photos per page, 1 or 2 (defaults to REPORT_PER_PAGE)")
	generateCmd.Flags().Int("target", 0, "Byte budget per photo (defaults to REPORT_TARGET_BYTES)")
	generateCmd.Flags().String("captions", "", "YAML file mapping file names to captions")
	generateCmd.Flags().String("date", "", "Report date as YYYY-MM-DD (defaults to today)")
	generateCmd.Flags().BoolP("yes", "y", false, "Proceed when the estimated size exceeds the soft limit")
	generateCmd.Flags().Bool("json", false, "Print the export report as JSON")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	output := mustGetString(cmd, "output")
	number := mustGetString(cmd, "number")
	captionsPath := mustGetString(cmd, "captions")
	dateStr := mustGetString(cmd, "date")
	confirmed := mustGetBool(cmd, "yes")
	jsonOutput := mustGetBool(cmd, "json")

	date := time.Now()
	if dateStr != "" {
		d, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", dateStr, err)
		}
		date = d
	}

	cfg := loadSessionConfig(cmd)
	s, err := session.FromConfig(cfg)
	if err != nil {
		return err
	}

	captions, err := loadCaptions(captionsPath)
	if err != nil {
		return err
	}
	inputs, err := collectInputs(args)
	if err != nil {
		return err
	}

	photos := ingestFiles(s, inputs)
	if len(photos) == 0 {
		return session.ErrNoImages
	}
	for _, p := range photos {
		if c, ok := captionFor(captions, p.Name); ok {
			if err := s.SetCaption(p.ID, c); err != nil {
				return err
			}
		}
	}

	if !jsonOutput {
		fmt.Printf("Variant: %s, %d photos, %d per page\n", cfg.Report.Variant, len(photos), cfg.Report.PerPage)
	}
	if err := compressAll(s, photos, cfg.Report.TargetBytes, jsonOutput); err != nil {
		return err
	}

	doc, err := s.Generate(cmd.Context(), session.GenerateRequest{
		Number:      number,
		PerPage:     cfg.Report.PerPage,
		TargetBytes: cfg.Report.TargetBytes,
		Date:        date,
		Confirmed:   confirmed,
	})
	var capacity *session.CapacityWarning
	if errors.As(err, &capacity) {
		return fmt.Errorf("%w; rerun with --yes to generate anyway", capacity)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, doc.Data, 0o644); err != nil { //nolint:gosec // report is meant to be shared
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(doc.Report); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}
		return nil
	}

	fmt.Printf("Wrote %s: %d pages, %d photos, %s\n", output, doc.Report.PageCount, doc.Report.PhotoCount, formatMB(len(doc.Data)))
	if len(doc.Report.Warnings) > 0 {
		fmt.Printf("\nWarnings: %d\n", len(doc.Report.Warnings))
		for _, w := range doc.Report.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
	return nil
}
