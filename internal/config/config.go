// Package config loads reco's settings with viper: defaults, then a
// reco.yaml file, then RECO_* environment variables. No cobra flag is
// bound onto the instance; cmd/reco only passes its --config path to New.
// This is the precedence order the retrieval
// pack's production service (gallery-so-go-gallery) uses for its own
// viper setup.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/whiteleaf/reco/internal/matrix"
)

// Config is the fully-resolved, typed view over the process's viper
// instance.
type Config struct {
	SimMatrix matrix.Config

	Engine struct {
		MeanCache struct {
			MaxEntries      int
			ShrinkKeepRatio float64
		}
	}

	System struct {
		TermVerbosityLevel string
		FileVerbosityLevel string
		LogOutput          string
	}
}

// New builds a viper.Viper pre-loaded with reco's defaults, optionally
// merging a config file at path (if non-empty) and RECO_*-prefixed
// environment variables.
func New(path string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("sim_matrix.allow_chunk_optimization", true)
	v.SetDefault("sim_matrix.chunk_size_threshold", 0.5)
	v.SetDefault("sim_matrix.partial_users_chunk_size", 500)
	v.SetDefault("engine.mean_cache.max_entries", 10000)
	v.SetDefault("engine.mean_cache.shrink_keep_ratio", 0.5)
	v.SetDefault("system.term_verbosity_level", "info")
	v.SetDefault("system.file_verbosity_level", "warn")
	v.SetDefault("system.log_output", "stdout")

	v.SetEnvPrefix("RECO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// Load reads every field of Config out of v.
func Load(v *viper.Viper) Config {
	var cfg Config
	cfg.SimMatrix.AllowChunkOptimization = v.GetBool("sim_matrix.allow_chunk_optimization")
	cfg.SimMatrix.ChunkSizeThreshold = v.GetFloat64("sim_matrix.chunk_size_threshold")
	cfg.SimMatrix.PartialUsersChunkSize = v.GetInt("sim_matrix.partial_users_chunk_size")
	cfg.Engine.MeanCache.MaxEntries = v.GetInt("engine.mean_cache.max_entries")
	cfg.Engine.MeanCache.ShrinkKeepRatio = v.GetFloat64("engine.mean_cache.shrink_keep_ratio")
	cfg.System.TermVerbosityLevel = v.GetString("system.term_verbosity_level")
	cfg.System.FileVerbosityLevel = v.GetString("system.file_verbosity_level")
	cfg.System.LogOutput = v.GetString("system.log_output")
	return cfg
}
