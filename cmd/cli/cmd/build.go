package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/topomesh/mergetree/internal/service"
	"github.com/topomesh/mergetree/pkg/compression"
	"github.com/topomesh/mergetree/pkg/config"
	"github.com/topomesh/mergetree/pkg/mergetree"
	"github.com/topomesh/mergetree/pkg/meshio"
	"github.com/topomesh/mergetree/pkg/telemetry"
)

var (
	buildInput      string
	buildTreeType   string
	buildOutput     string
	buildSegment    bool
	buildContour    bool
	buildStats      bool
	buildConfigPath string
	buildCompress   string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a merge tree from a mesh and scalar field file",
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildInput, "input", "i", "", "Input mesh/scalar-field file (required)")
	buildCmd.Flags().StringVarP(&buildTreeType, "type", "t", "join", "Tree type: join or split")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Write the built tree as JSON to this path")
	buildCmd.Flags().BoolVar(&buildSegment, "segment", false, "Run the segmentation pass and populate arc regions")
	buildCmd.Flags().BoolVar(&buildContour, "contour", false, "Build both the join and split trees")
	buildCmd.Flags().BoolVar(&buildStats, "stats", false, "Collect phase timings and persist run statistics")
	buildCmd.Flags().StringVar(&buildConfigPath, "config", "", "Path to a config file (defaults searched if omitted)")
	buildCmd.Flags().StringVar(&buildCompress, "compress", "none", "Compress the JSON output: none, gzip, or zstd")
	buildCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(buildConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Build.Stats = cfg.Build.Stats || buildStats

	shutdown, err := telemetry.Init(ctx)
	if err != nil {
		GetLogger().Warn("failed to initialize telemetry: %v", err)
	}
	defer shutdown(ctx)

	svc, err := service.New(cfg, GetLogger())
	if err != nil {
		return err
	}
	if err := svc.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}
	defer svc.Stop()

	ds, err := meshio.Load(buildInput)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", buildInput, err)
	}

	treeType, err := parseTreeType(buildTreeType)
	if err != nil {
		return err
	}

	if buildContour {
		return runContourBuild(ctx, svc, ds)
	}

	result, err := svc.Build(ctx, ds, buildInput, treeType, buildSegment)
	if err != nil {
		return err
	}

	printSummary(result)

	if buildOutput != "" {
		if err := writeTreeJSON(result.Tree, buildOutput); err != nil {
			return err
		}
	}

	return nil
}

func runContourBuild(ctx context.Context, svc *service.Service, ds *meshio.Dataset) error {
	joinResult, err := svc.Build(ctx, ds, buildInput, mergetree.Join, buildSegment)
	if err != nil {
		return fmt.Errorf("join build failed: %w", err)
	}
	splitResult, err := svc.Build(ctx, ds, buildInput, mergetree.Split, buildSegment)
	if err != nil {
		return fmt.Errorf("split build failed: %w", err)
	}

	printSummary(joinResult)
	printSummary(splitResult)

	if buildOutput != "" {
		if err := writeTreeJSON(joinResult.Tree, buildOutput+".join.json"); err != nil {
			return err
		}
		if err := writeTreeJSON(splitResult.Tree, buildOutput+".split.json"); err != nil {
			return err
		}
	}

	return nil
}

func writeTreeJSON(t *mergetree.Tree, path string) error {
	compType, ext, err := parseCompression(buildCompress)
	if err != nil {
		return err
	}

	f, err := os.Create(path + ext)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if compType == compression.TypeNone {
		if err := t.WriteJSON(f, true); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		return nil
	}
	if err := t.WriteCompressed(f, compType, compression.LevelDefault); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func parseCompression(s string) (compression.Type, string, error) {
	switch s {
	case "", "none":
		return compression.TypeNone, "", nil
	case "gzip":
		return compression.TypeGzip, ".gz", nil
	case "zstd":
		return compression.TypeZstd, ".zst", nil
	default:
		return compression.TypeNone, "", fmt.Errorf("unsupported compression %q (valid: none, gzip, zstd)", s)
	}
}

func printSummary(r *service.BuildResult) {
	fmt.Printf("tree type:   %s\n", r.Run.TreeType)
	fmt.Printf("run uuid:    %s\n", r.Run.RunUUID)
	fmt.Printf("nodes:       %d\n", r.Run.NodeCount)
	fmt.Printf("arcs:        %d\n", r.Run.ArcCount)
	fmt.Printf("leaves:      %d\n", r.Run.LeafCount)
	fmt.Printf("roots:       %d\n", r.Run.RootCount)
	fmt.Printf("segmented:   %t\n", r.Run.Segmented)
}

func parseTreeType(s string) (mergetree.TreeType, error) {
	switch s {
	case "join":
		return mergetree.Join, nil
	case "split":
		return mergetree.Split, nil
	default:
		return mergetree.Join, fmt.Errorf("unsupported tree type %q (valid: join, split)", s)
	}
}
