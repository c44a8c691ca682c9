package cmd

import (
	"os"
	"time"

	"github.com/geoquad/tilebuilder/internal/config"
	"github.com/geoquad/tilebuilder/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg             = config.DefaultConfig()
	verbose         bool
	logFile         string
	metricsInterval time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "tilebuilder",
	Short: "Quadkey tile-build pipeline for 3D map meshes",
	Long: `tilebuilder turns a geo-store of OSM-shaped elements into styled 3D
mesh tiles, addressed by Bing-style quadkey.

Features:
  - MapCSS-like stylesheet evaluation, cached per path
  - Shapefile and OSM-XML ingestion into in-memory or PostgreSQL stores
  - SRTM-backed elevation lookups, selected per level of detail
  - Pluggable roof and facade strategies for extruded building meshes`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg.Verbose = verbose
		cfg.LogFile = logFile
		cfg.MetricsInterval = metricsInterval

		if logFile != "" {
			logger.InitWithFile(verbose, logFile)
		} else {
			logger.Init(verbose)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfg.StringTablePath, "string-table", cfg.StringTablePath, "Path to the shared string table file")
	rootCmd.PersistentFlags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory holding source data files")
	rootCmd.PersistentFlags().StringVar(&cfg.ElevationDir, "elevation-dir", cfg.ElevationDir, "Directory holding SRTM elevation tiles")

	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file for persistent logging (JSON format)")
	rootCmd.PersistentFlags().DurationVar(&metricsInterval, "metrics-interval", 30*time.Second, "Interval for system metrics logging (e.g., 10s, 1m)")

	rootCmd.PersistentFlags().StringVar(&cfg.DBHost, "db-host", cfg.DBHost, "PostgreSQL host")
	rootCmd.PersistentFlags().IntVar(&cfg.DBPort, "db-port", cfg.DBPort, "PostgreSQL port")
	rootCmd.PersistentFlags().StringVarP(&cfg.DBName, "db-name", "d", cfg.DBName, "PostgreSQL database name")
	rootCmd.PersistentFlags().StringVarP(&cfg.DBUser, "db-user", "U", cfg.DBUser, "PostgreSQL user")
	rootCmd.PersistentFlags().StringVarP(&cfg.DBPassword, "db-password", "W", cfg.DBPassword, "PostgreSQL password")
	rootCmd.PersistentFlags().StringVar(&cfg.DBSchema, "db-schema", cfg.DBSchema, "PostgreSQL schema")
}

func exitWithError(msg string, err error) {
	log := logger.Get()
	if err != nil {
		log.Error(msg, zap.Error(err))
	} else {
		log.Error(msg)
	}
	os.Exit(1)
}
