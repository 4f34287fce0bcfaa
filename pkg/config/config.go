// Package config loads engine configuration from YAML with environment
// overrides. All knobs default to values that work without a config file.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/trustvector/adversary/pkg/attack"
	"github.com/trustvector/adversary/pkg/blueteam"
	"github.com/trustvector/adversary/pkg/detector"
	"github.com/trustvector/adversary/pkg/redteam"
	"github.com/trustvector/adversary/pkg/remediation"
)

type Config struct {
	LogLevel   string                   `mapstructure:"log_level"`
	Attack     attack.Options           `mapstructure:"attack"`
	Classifier ClassifierConfig         `mapstructure:"classifier"`
	Robustness redteam.RobustnessConfig `mapstructure:"robustness"`
	Chain      redteam.ChainConfig      `mapstructure:"chain"`
	Pipeline   blueteam.Config          `mapstructure:"pipeline"`
}

// ClassifierConfig tunes the guards wrapped around the injected classifier.
type ClassifierConfig struct {
	TimeoutMS          int    `mapstructure:"timeout_ms"`
	BreakerName        string `mapstructure:"breaker_name"`
	BreakerCooldownMS  int    `mapstructure:"breaker_cooldown_ms"`
	BreakerMaxFailures uint32 `mapstructure:"breaker_max_failures"`
}

var globalConfig Config

// Load reads config.yaml from configPath (plus a .env file when present) and
// applies ADVERSARY_-prefixed environment overrides. A missing config file is
// not an error; defaults apply.
func Load(configPath string) error {
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("ADVERSARY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	return viper.Unmarshal(&globalConfig)
}

func setDefaults() {
	defaults := Default()

	viper.SetDefault("log_level", defaults.LogLevel)

	viper.SetDefault("attack.intensity", defaults.Attack.Intensity)
	viper.SetDefault("attack.seed", defaults.Attack.Seed)
	viper.SetDefault("attack.scheme", string(defaults.Attack.Scheme))

	viper.SetDefault("classifier.timeout_ms", defaults.Classifier.TimeoutMS)
	viper.SetDefault("classifier.breaker_name", defaults.Classifier.BreakerName)
	viper.SetDefault("classifier.breaker_cooldown_ms", defaults.Classifier.BreakerCooldownMS)
	viper.SetDefault("classifier.breaker_max_failures", defaults.Classifier.BreakerMaxFailures)

	viper.SetDefault("robustness.samples_per_text", defaults.Robustness.SamplesPerText)
	viper.SetDefault("robustness.confidence_drop_threshold", defaults.Robustness.ConfidenceDropThreshold)
	viper.SetDefault("robustness.evasion_mode", string(defaults.Robustness.EvasionMode))
	viper.SetDefault("robustness.intensity", defaults.Robustness.Intensity)
	viper.SetDefault("robustness.seed", defaults.Robustness.Seed)
	viper.SetDefault("robustness.parallelism", defaults.Robustness.Parallelism)

	viper.SetDefault("chain.max_turns", defaults.Chain.MaxTurns)
	viper.SetDefault("chain.confidence_threshold", defaults.Chain.ConfidenceThreshold)
	viper.SetDefault("chain.intensity", defaults.Chain.Intensity)
	viper.SetDefault("chain.seed", defaults.Chain.Seed)

	viper.SetDefault("pipeline.confidence_band.low", defaults.Pipeline.ConfidenceBand.Low)
	viper.SetDefault("pipeline.confidence_band.high", defaults.Pipeline.ConfidenceBand.High)
	viper.SetDefault("pipeline.remediation.event_id_length", defaults.Pipeline.Remediation.EventIDLength)
	viper.SetDefault("pipeline.remediation.dedup_size", defaults.Pipeline.Remediation.DedupSize)
	viper.SetDefault("pipeline.parallelism", defaults.Pipeline.Parallelism)
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Attack:   attack.DefaultOptions(),
		Classifier: ClassifierConfig{
			TimeoutMS:          5000,
			BreakerName:        "classifier",
			BreakerCooldownMS:  30000,
			BreakerMaxFailures: 5,
		},
		Robustness: redteam.DefaultRobustnessConfig(),
		Chain:      redteam.DefaultChainConfig(),
		Pipeline: blueteam.Config{
			ConfidenceBand: detector.DefaultBand(),
			Remediation:    remediation.DefaultConfig(),
			Parallelism:    4,
		},
	}
}

func GetConfig() *Config {
	return &globalConfig
}
