package cmd

import (
	"github.com/geoquad/tilebuilder/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var styleCmd = &cobra.Command{
	Use:   "style <stylesheet>",
	Short: "Parse a stylesheet and warm the style cache",
	Long: `Parse a MapCSS-like stylesheet and report whether it is valid.

This is mainly useful for catching stylesheet errors before a build run,
since RegisterStylesheet is exactly the call LoadQuadKey makes on its
first access to the same file.`,
	Args: cobra.ExactArgs(1),
	Run:  runStyle,
}

func init() {
	rootCmd.AddCommand(styleCmd)
}

func runStyle(cmd *cobra.Command, args []string) {
	log := logger.Get()
	app := newApplication()
	defer app.Close()

	if err := app.RegisterStylesheet(args[0]); err != nil {
		exitWithError("stylesheet is invalid", err)
	}
	log.Info("stylesheet registered", zap.String("path", args[0]))
}
