package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/topomesh/mergetree/pkg/utils"
)

var (
	// Global flags
	verbose bool
	logger  utils.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mergetree",
	Short: "Build join/split merge trees over a mesh and scalar field",
	Long: `mergetree is a CLI tool for constructing merge trees from scalar fields
defined over simplicial meshes.

It runs the task-parallel leaf-sweep algorithm to build a join or split
tree, optionally segments it into regions, and can persist build
statistics or export the tree as JSON.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := utils.LevelInfo
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stdout)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	binName := BinName()
	rootCmd.Example = `  # Build a join tree and print a summary
  ` + binName + ` build -i ./testdata/chain.mesh

  # Build a split tree, segment it, and write it to JSON
  ` + binName + ` build -i ./testdata/chain.mesh -t split --segment -o tree.json

  # Build both the join and split trees and record run statistics
  ` + binName + ` build -i ./testdata/chain.mesh --contour --stats`
}

// GetLogger returns the configured logger.
func GetLogger() utils.Logger {
	return logger
}

// BinName returns the base name of the current executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}
