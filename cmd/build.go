package cmd

import (
	"time"

	"github.com/geoquad/tilebuilder/internal/builders"
	"github.com/geoquad/tilebuilder/internal/logger"
	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var buildListElements bool

var buildCmd = &cobra.Command{
	Use:   "build <stylesheet> <quadkey>",
	Short: "Build mesh tiles for a single quadkey",
	Long: `Run the full per-tile pipeline for a single quadkey (lod/x/y): resolve
stylesheet, select the appropriate elevation provider, and build one mesh
per element that a registered element builder turns into geometry.`,
	Args: cobra.ExactArgs(2),
	Run:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().BoolVar(&buildListElements, "list-elements", false, "Log every element dispatched during the build")
}

func runBuild(cmd *cobra.Command, args []string) {
	log := logger.Get()
	styleFile := args[0]

	qk, err := parseQuadKey(args[1])
	if err != nil {
		exitWithError("invalid quadkey", err)
	}

	defer startSystemMetrics()()

	app := newApplication()
	defer app.Close()

	var meshCount, vertexCount, elementCount int

	onMesh := func(m *builders.Mesh) {
		meshCount++
		vertexCount += len(m.Vertices) / 3
		log.Info("mesh built", zap.String("layer", m.Name), zap.Int("vertices", len(m.Vertices)/3), zap.Int("triangles", len(m.Triangles)/3))
	}

	var onElement func(model.Element)
	if buildListElements {
		onElement = func(e model.Element) {
			elementCount++
			log.Debug("element dispatched")
		}
	} else {
		onElement = func(model.Element) { elementCount++ }
	}

	start := time.Now()
	if err := app.LoadQuadKey(styleFile, qk, onMesh, onElement); err != nil {
		exitWithError("build failed", err)
	}

	log.Info("build complete",
		zap.String("quadkey", qk.String()),
		zap.Int("elements", elementCount),
		zap.Int("meshes", meshCount),
		zap.Int("vertices", vertexCount),
		zap.Duration("duration", time.Since(start).Round(time.Millisecond)),
	)
}
