package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TASK_CLI_STORAGE_PATH.
const EnvPrefix = "TASK_CLI"

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.lock", d.Storage.Lock)
	v.SetDefault("storage.lock_timeout", d.Storage.LockTimeout.String())
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.color", d.Output.Color)
}

// Load resolves the configuration from defaults, the config file at path,
// the environment and any flags already bound to v. A missing config file is
// only an error when required is set.
func Load(v *viper.Viper, path string, required bool) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		settings, err := readFile(path)
		switch {
		case err == nil:
			if err := ValidateSettings(settings); err != nil {
				return Config{}, err
			}
			if err := v.MergeConfigMap(settings); err != nil {
				return Config{}, fmt.Errorf("merge config: %w", err)
			}
		case isNotFound(err) && !required:
		default:
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string) (map[string]any, error) {
	fileV := viper.New()
	fileV.SetConfigFile(path)
	fileV.SetConfigType("json")
	if err := fileV.ReadInConfig(); err != nil {
		return nil, err
	}
	return fileV.AllSettings(), nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}
