package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "photo-report",
	Short: "Assemble field photos into a paginated PDF report",
	Long: `Photo Report turns photographs taken on site into an A4 PDF report with
captions, a report number header and a page folio. Every photo is
re-encoded to fit a per-photo byte budget so the document stays small
enough to send by e-mail.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().String("variant", "", "Report variant (field, letterhead, compact); defaults to REPORT_VARIANT")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
