package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-report/internal/session"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate [files or directories...]",
	Short: "Estimate the size of the report for a set of photos",
	Long: `Compress the given photos to the per-photo budget and report the expected
document size, including the fixed document overhead. Exits with an error
when the estimate is above the soft limit and --strict is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)

	estimateCmd.Flags().Int("target", 0, "Byte budget per photo (defaults to REPORT_TARGET_BYTES)")
	estimateCmd.Flags().Bool("strict", false, "Fail when the estimate exceeds the soft limit")
	estimateCmd.Flags().Bool("json", false, "Output as JSON")
}

type estimateOutput struct {
	Photos     []estimatePhoto `json:"photos"`
	Bytes      int             `json:"bytes"`
	Overhead   int             `json:"overhead"`
	LimitBytes int             `json:"limit_bytes"`
	OverLimit  bool            `json:"over_limit"`
}

type estimatePhoto struct {
	File         string `json:"file"`
	Bytes        int    `json:"bytes"`
	WithinTarget bool   `json:"within_target"`
}

func runEstimate(cmd *cobra.Command, args []string) error {
	strict := mustGetBool(cmd, "strict")
	jsonOutput := mustGetBool(cmd, "json")

	cfg := loadSessionConfig(cmd)
	s, err := session.FromConfig(cfg)
	if err != nil {
		return err
	}
	inputs, err := collectInputs(args)
	if err != nil {
		return err
	}
	photos := ingestFiles(s, inputs)
	if err := compressAll(s, photos, cfg.Report.TargetBytes, jsonOutput); err != nil {
		return err
	}

	est, err := s.EstimateDocumentSize(cfg.Report.TargetBytes)
	if err != nil {
		return err
	}

	out := estimateOutput{
		Photos:     make([]estimatePhoto, len(est.PerAsset)),
		Bytes:      est.Bytes,
		Overhead:   est.Overhead,
		LimitBytes: cfg.Report.SoftLimitBytes,
		OverLimit:  est.Warning != nil,
	}
	for i, a := range est.PerAsset {
		out.Photos[i] = estimatePhoto{File: photos[i].Name, Bytes: a.Bytes, WithinTarget: a.WithinTarget}
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(out); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}
	} else {
		for _, p := range out.Photos {
			marker := ""
			if !p.WithinTarget {
				marker = "  (over budget)"
			}
			fmt.Printf("  %-40s %10s%s\n", p.File, formatMB(p.Bytes), marker)
		}
		fmt.Printf("\nEstimated document size: %s (limit %s)\n", formatMB(out.Bytes), formatMB(out.LimitBytes))
		if est.Warning != nil {
			fmt.Printf("Warning: %v\n", est.Warning)
		}
	}

	if strict && est.Warning != nil {
		return est.Warning
	}
	return nil
}
