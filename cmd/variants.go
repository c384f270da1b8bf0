package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-report/internal/session"
)

var variantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "List the report variants and their layout settings",
	RunE:  runVariants,
}

func init() {
	rootCmd.AddCommand(variantsCmd)
}

func runVariants(cmd *cobra.Command, args []string) error {
	cfg := loadSessionConfig(cmd)
	out := cmd.OutOrStdout()
	for _, name := range cfg.VariantNames() {
		v, _ := cfg.GetVariant(name)
		lc := session.LayoutConfig(v)
		co := session.CompressionOptions(v, cfg.Report.MaxDimension)

		marker := ""
		if name == cfg.Report.Variant {
			marker = " (default)"
		}
		fmt.Fprintf(out, "%s%s\n", name, marker)
		fmt.Fprintf(out, "  Header:      %s <number>\n", v.Label)
		fmt.Fprintf(out, "  Margins:     %.0f mm, header %.0f mm, footer %.0f mm, slot gap %.0f mm\n",
			lc.MarginMM, lc.HeaderHeightMM, lc.FooterHeightMM, lc.SlotGapMM)
		fmt.Fprintf(out, "  Usable area: %.0f x %.0f mm\n", lc.UsableWidth(), lc.UsableHeight())
		fmt.Fprintf(out, "  Quality:     %.2f..%.2f, start %.2f, %d rounds, floor %d px\n",
			co.QualityLow, co.QualityHigh, co.QualityStart, co.Iterations, co.FloorDimension)
	}
	return nil
}
