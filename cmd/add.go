package cmd

import (
	"time"

	"github.com/geoquad/tilebuilder/internal/config"
	"github.com/geoquad/tilebuilder/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	addLodRange   string
	addQuadKey    string
	addBBox       string
	addPersistent bool
)

var addCmd = &cobra.Command{
	Use:   "add <stylesheet> <source>",
	Short: "Ingest a source file into the in-memory or persistent geo-store",
	Long: `Ingest source (a shapefile or OSM XML file, selected by extension) into
a named geo-store, styled by stylesheet.

--quadkey takes precedence and ignores --lod; --bbox ingests source inside
the box across the --lod range (in-memory store only); --lod alone ingests
source everywhere across that level-of-detail range.`,
	Args: cobra.ExactArgs(2),
	Run:  runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVar(&addLodRange, "lod", "0-22", "Level-of-detail range, as min-max or a single value")
	addCmd.Flags().StringVar(&addQuadKey, "quadkey", "", "Restrict ingestion to a single quadkey (lod/x/y)")
	addCmd.Flags().StringVar(&addBBox, "bbox", "", "Restrict ingestion to a bounding box: minlon,minlat,maxlon,maxlat")
	addCmd.Flags().BoolVar(&addPersistent, "persistent", false, "Ingest into the PostgreSQL store instead of in-memory")
}

func runAdd(cmd *cobra.Command, args []string) {
	log := logger.Get()
	styleFile, source := args[0], args[1]

	defer startSystemMetrics()()

	app := newApplication()
	defer app.Close()

	start := time.Now()

	switch {
	case addQuadKey != "":
		qk, err := parseQuadKey(addQuadKey)
		if err != nil {
			exitWithError("invalid quadkey", err)
		}
		if addPersistent {
			if err := app.AddToPersistentStoreQuadKey(styleFile, source, qk); err != nil {
				exitWithError("add to persistent store failed", err)
			}
		} else {
			if err := app.AddToInMemoryStoreQuadKey(styleFile, source, qk); err != nil {
				exitWithError("add to in-memory store failed", err)
			}
		}

	case addBBox != "":
		bbox, err := config.ParseBBox(addBBox)
		if err != nil {
			exitWithError("invalid bbox", err)
		}
		lodRange, err := parseLodRange(addLodRange)
		if err != nil {
			exitWithError("invalid lod range", err)
		}
		if addPersistent {
			exitWithError("bbox-restricted ingestion is not supported for the persistent store", nil)
		}
		qkBBox := toQuadKeyBBox(bbox)
		if err := app.AddToInMemoryStoreBBox(styleFile, source, qkBBox, lodRange); err != nil {
			exitWithError("add to in-memory store failed", err)
		}

	default:
		lodRange, err := parseLodRange(addLodRange)
		if err != nil {
			exitWithError("invalid lod range", err)
		}
		if addPersistent {
			if err := app.AddToPersistentStore(styleFile, source, lodRange); err != nil {
				exitWithError("add to persistent store failed", err)
			}
		} else {
			if err := app.AddToInMemoryStore(styleFile, source, lodRange); err != nil {
				exitWithError("add to in-memory store failed", err)
			}
		}
	}

	log.Info("ingestion complete",
		zap.String("source", source),
		zap.Duration("duration", time.Since(start).Round(time.Millisecond)),
	)
}
