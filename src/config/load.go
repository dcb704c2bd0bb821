package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides. A double underscore
// separates section and setting: CHBACKUP_CLICKHOUSE__HOST overrides
// clickhouse.host.
const EnvPrefix = "CHBACKUP_"

// configFileNames are tried in order inside the config folder.
var configFileNames = []string{"config.yaml", "config.yml"}

// Load layers defaults, the config file in configFolder and the environment
// overlay, then validates the result.
func Load(configFolder string) (Config, error) {
	k := koanf.New(".")

	defaults := Default()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if configFolder != "" {
		info, err := os.Stat(configFolder)
		if err != nil {
			return Config{}, fmt.Errorf("%w: config folder %s: %v", ErrInvalid, configFolder, err)
		}
		if !info.IsDir() {
			return Config{}, fmt.Errorf("%w: config folder %s is not a directory", ErrInvalid, configFolder)
		}
		for _, name := range configFileNames {
			path := filepath.Join(configFolder, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
			}
			break
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	cfg := Config{}
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envTransform maps CHBACKUP_BACKUP__MAX_FULL_BACKUPS to
// backup.max_full_backups.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}
