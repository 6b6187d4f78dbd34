package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	recoconfig "github.com/whiteleaf/reco/internal/config"
)

var (
	cfgFile    string
	dataset    string
	sourcePath string
	vip        *viper.Viper
)

var rootCmd = &cobra.Command{
	Use:   "reco",
	Short: "A chunked-matrix item/user recommendation engine",
	Long: `reco builds user and item neighborhoods over a ratings dataset
without ever materialising the full item x item similarity matrix,
walking it tile by tile instead.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v, err := recoconfig.New(cfgFile)
		if err != nil {
			return fmt.Errorf("reco: load config: %w", err)
		}
		vip = v
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to reco.yaml (optional)")
	rootCmd.PersistentFlags().StringVar(&dataset, "dataset", "movie-lens-small", "books|simple-movie|shelves|movie-lens|movie-lens-small")
	rootCmd.PersistentFlags().StringVar(&sourcePath, "path", "", "path to the dataset's ratings triplet CSV")

	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(evalCmd)
}

// Execute runs the root command, exiting the process on error the way the
// teacher's binaries do (they panic; cobra's convention is os.Exit(1)).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
