package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/bootstrap/internal/dotenv"
	"github.com/eugenenazirov/bootstrap/internal/logging"
	"github.com/eugenenazirov/bootstrap/internal/paths"
)

// AppName names the user config directory searched for a fallback .env.
const AppName = "bootstrap"

// ErrInvalidConfig indicates the merged configuration failed validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > Environment variables (including .env) > YAML config > Defaults
//
// Relative root and env_file values from the YAML file are resolved against
// the file's directory; the same values from flags or the environment are
// resolved against the working directory. Dirs entries are relative to Root.
type Config struct {
	Root        string
	Dirs        paths.Dirs
	EnvFile     string
	EnvOverride bool
	LoadedEnv   []string
	LogLevel    string
	LogFile     logging.FileTarget
	LoggerName  string
	LogFormat   logging.Format
	ExtendPath  bool
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Root        string     `yaml:"root"`
	Dirs        paths.Dirs `yaml:"dirs"`
	EnvFile     string     `yaml:"env_file"`
	EnvOverride *bool      `yaml:"env_override"`
	ExtendPath  *bool      `yaml:"extend_path"`
	Log         yamlLog    `yaml:"log"`
}

// yamlLog represents the log section in YAML.
type yamlLog struct {
	Level  string              `yaml:"level"`
	File   *logging.FileTarget `yaml:"file"`
	Name   string              `yaml:"name"`
	Format string              `yaml:"format"`
}

// envConfig lists the environment variables read after the .env file is loaded.
type envConfig struct {
	Root       string `env:"PROJECT_ROOT"`
	LogLevel   string `env:"LOGLEVEL"`
	LogFile    string `env:"LOGFILE"`
	LoggerName string `env:"LOGGER_NAME"`
	LogFormat  string `env:"LOG_FORMAT"`
}

// dotenvPathEnv points at an explicit .env file.
const dotenvPathEnv = "DOTENV_PATH"

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile string
	Root       *string
	EnvFile    *string
	LogLevel   *string
	LogFile    *string
	LoggerName *string
	LogFormat  *string
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > Environment variables (including .env) > YAML config > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Load from YAML file if specified
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, errors.Wrap(err, "load YAML config")
		}
		if err := applyYAMLConfig(&cfg, yamlCfg, filepath.Dir(overrides.ConfigFile)); err != nil {
			return Config{}, err
		}
	}

	// Export .env entries so the environment layer sees them
	if err := loadDotenv(&cfg, overrides); err != nil {
		return Config{}, err
	}

	// Apply environment variables (override YAML)
	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	// Validate final configuration
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		LogFile:    logging.DefaultFile,
		LoggerName: logging.DefaultName,
		LogFormat:  logging.FormatConsole,
		ExtendPath: true,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, errors.Wrap(err, "parse YAML")
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct. Relative
// root and env_file values are taken relative to baseDir, the directory of
// the config file.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig, baseDir string) error {
	if yamlCfg.Root != "" {
		cfg.Root = relativeTo(baseDir, yamlCfg.Root)
	}

	cfg.Dirs = yamlCfg.Dirs

	if yamlCfg.EnvFile != "" {
		cfg.EnvFile = relativeTo(baseDir, yamlCfg.EnvFile)
	}

	if yamlCfg.EnvOverride != nil {
		cfg.EnvOverride = *yamlCfg.EnvOverride
	}

	if yamlCfg.ExtendPath != nil {
		cfg.ExtendPath = *yamlCfg.ExtendPath
	}

	if yamlCfg.Log.Level != "" {
		cfg.LogLevel = yamlCfg.Log.Level
	}

	if yamlCfg.Log.File != nil {
		cfg.LogFile = *yamlCfg.Log.File
	}

	if yamlCfg.Log.Name != "" {
		cfg.LoggerName = yamlCfg.Log.Name
	}

	if yamlCfg.Log.Format != "" {
		format, err := logging.ParseFormat(yamlCfg.Log.Format)
		if err != nil {
			return errors.Wrap(err, "YAML log.format")
		}
		cfg.LogFormat = format
	}

	return nil
}

// loadDotenv picks the .env file and exports it. An explicitly named file
// must exist; a discovered one is optional.
func loadDotenv(cfg *Config, overrides *CLIOverrides) error {
	explicit := cfg.EnvFile
	if path := strings.TrimSpace(os.Getenv(dotenvPathEnv)); path != "" {
		explicit = path
	}
	if overrides != nil && overrides.EnvFile != nil && *overrides.EnvFile != "" {
		explicit = *overrides.EnvFile
	}

	path := explicit
	if path == "" {
		path = dotenv.Find(searchStart(cfg, overrides), AppName)
	}

	applied, err := dotenv.Load(path, cfg.EnvOverride)
	if err != nil {
		return errors.Wrap(err, "load env file")
	}

	cfg.EnvFile = path
	cfg.LoadedEnv = applied
	return nil
}

// searchStart is where .env discovery begins: the most specific root known
// before the environment layer runs, or the working directory.
func searchStart(cfg *Config, overrides *CLIOverrides) string {
	if overrides != nil && overrides.Root != nil && *overrides.Root != "" {
		return *overrides.Root
	}
	if root := strings.TrimSpace(os.Getenv("PROJECT_ROOT")); root != "" {
		return root
	}
	if cfg.Root != "" {
		return cfg.Root
	}
	return "."
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) error {
	envCfg, err := env.ParseAs[envConfig]()
	if err != nil {
		return errors.Wrap(err, "parse environment")
	}

	if root := strings.TrimSpace(envCfg.Root); root != "" {
		cfg.Root = root
	}

	if level := strings.TrimSpace(envCfg.LogLevel); level != "" {
		cfg.LogLevel = level
	}

	if file := strings.TrimSpace(envCfg.LogFile); file != "" {
		cfg.LogFile = logging.ParseFileTarget(file)
	}

	if name := strings.TrimSpace(envCfg.LoggerName); name != "" {
		cfg.LoggerName = name
	}

	if raw := strings.TrimSpace(envCfg.LogFormat); raw != "" {
		format, err := logging.ParseFormat(raw)
		if err != nil {
			return errors.Mark(errors.Wrap(err, "LOG_FORMAT"), ErrInvalidConfig)
		}
		cfg.LogFormat = format
	}

	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Root != nil && *overrides.Root != "" {
		cfg.Root = *overrides.Root
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}

	if overrides.LogFile != nil && *overrides.LogFile != "" {
		cfg.LogFile = logging.ParseFileTarget(*overrides.LogFile)
	}

	if overrides.LoggerName != nil && *overrides.LoggerName != "" {
		cfg.LoggerName = *overrides.LoggerName
	}

	if overrides.LogFormat != nil && *overrides.LogFormat != "" {
		format, err := logging.ParseFormat(*overrides.LogFormat)
		if err != nil {
			return errors.Wrap(err, "parse log format")
		}
		cfg.LogFormat = format
	}

	return nil
}

func relativeTo(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(baseDir, path)
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return errors.Mark(errors.Wrap(err, "log level"), ErrInvalidConfig)
	}
	if _, err := logging.ParseFormat(string(cfg.LogFormat)); err != nil {
		return errors.Mark(errors.Wrap(err, "log format"), ErrInvalidConfig)
	}
	if strings.TrimSpace(cfg.LoggerName) == "" {
		return errors.Mark(errors.New("logger name cannot be empty"), ErrInvalidConfig)
	}
	return nil
}
