package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/takeoff/internal/feeder"
	"github.com/mesh-intelligence/takeoff/internal/logging"
	"github.com/mesh-intelligence/takeoff/internal/paths"
	"github.com/mesh-intelligence/takeoff/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "TAKEOFF"

	cfgKeyBackend            = "backend"
	cfgKeyDataDir            = "data_dir"
	cfgKeyLogLevel           = "log_level"
	cfgKeyLogFormat          = "log_format"
	cfgKeyLogOutput          = "log_output"
	cfgKeyStrictVersionCodes = "strict_version_codes"
	cfgKeySyncStrategy       = "sync_strategy"
	cfgKeyDefaultWorksheet   = "default_worksheet"
)

// settings is the resolved content of config.yaml.
type settings struct {
	Backend            string `yaml:"backend"`
	DataDir            string `yaml:"data_dir,omitempty"`
	LogLevel           string `yaml:"log_level"`
	LogFormat          string `yaml:"log_format"`
	LogOutput          string `yaml:"log_output"`
	StrictVersionCodes bool   `yaml:"strict_version_codes"`
	SyncStrategy       string `yaml:"sync_strategy"`
	DefaultWorksheet   string `yaml:"default_worksheet"`
}

func defaultSettings() settings {
	lc := logging.DefaultConfig()
	return settings{
		Backend:          types.BackendSQLite,
		LogLevel:         lc.Level,
		LogFormat:        lc.Format,
		LogOutput:        lc.Output,
		SyncStrategy:     types.SyncImmediate,
		DefaultWorksheet: feeder.DefaultWorksheet,
	}
}

// loadSettings reads config.yaml from configDir, writing one with defaults
// on first run. TAKEOFF_* environment variables override file values.
func loadSettings(configDir string) (settings, error) {
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return settings{}, fmt.Errorf("ensure default config: %w", err)
	}

	def := defaultSettings()
	v := viper.New()
	v.SetDefault(cfgKeyBackend, def.Backend)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetDefault(cfgKeyLogFormat, def.LogFormat)
	v.SetDefault(cfgKeyLogOutput, def.LogOutput)
	v.SetDefault(cfgKeyStrictVersionCodes, def.StrictVersionCodes)
	v.SetDefault(cfgKeySyncStrategy, def.SyncStrategy)
	v.SetDefault(cfgKeyDefaultWorksheet, def.DefaultWorksheet)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	return settings{
		Backend:            v.GetString(cfgKeyBackend),
		DataDir:            v.GetString(cfgKeyDataDir),
		LogLevel:           v.GetString(cfgKeyLogLevel),
		LogFormat:          v.GetString(cfgKeyLogFormat),
		LogOutput:          v.GetString(cfgKeyLogOutput),
		StrictVersionCodes: v.GetBool(cfgKeyStrictVersionCodes),
		SyncStrategy:       v.GetString(cfgKeySyncStrategy),
		DefaultWorksheet:   v.GetString(cfgKeyDefaultWorksheet),
	}, nil
}

// ensureDefaultConfigFile creates configDir and a config.yaml holding the
// defaults when the file does not exist.
func ensureDefaultConfigFile(configDir string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}
	path := paths.ConfigFile(configDir)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(defaultSettings())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte("# takeoff configuration\n"), data...), 0o644)
}
