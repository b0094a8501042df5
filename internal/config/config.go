package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gleicon/rwlog/internal/logs"
	"github.com/gleicon/rwlog/pkg/utils"
)

// Config represents the main configuration structure
type Config struct {
	Console ConsoleConfig  `yaml:"console"`
	Default LoggerConfig   `yaml:"default"`
	Loggers []LoggerConfig `yaml:"loggers,omitempty"`
}

// ConsoleConfig configures the console logger
type ConsoleConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty" default:"true"`
	Level   string `yaml:"level" default:"normal"`
}

// LoggerConfig configures one file logger
type LoggerConfig struct {
	Path             string `yaml:"path"`
	Enabled          *bool  `yaml:"enabled,omitempty" default:"true"`
	Level            string `yaml:"level" default:"normal"`
	Overflow         string `yaml:"overflow" default:"truncate"`
	MaxSize          int64  `yaml:"max_size" default:"1048576"`
	ReflectToConsole bool   `yaml:"reflect_to_console" default:"false"`
}

// IsEnabled reports the enabled flag, true when unset
func (c ConsoleConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// IsEnabled reports the enabled flag, true when unset
func (l LoggerConfig) IsEnabled() bool {
	return l.Enabled == nil || *l.Enabled
}

// Defaults returns the configuration used when no file is given
func Defaults() *Config {
	return &Config{
		Console: ConsoleConfig{
			Level: "normal",
		},
		Default: LoggerConfig{
			Path:     logs.DefaultLogPath(),
			Level:    "normal",
			Overflow: "truncate",
			MaxSize:  logs.DefaultMaxLogSize,
		},
	}
}

// Load loads configuration from a file, applying defaults
func Load(configFile string) (*Config, error) {
	config := Defaults()

	// If config file exists, load it
	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate performs configuration validation and fills in per-logger defaults
func (c *Config) Validate() error {
	if _, err := logs.ParseLevel(c.Console.Level); err != nil {
		return fmt.Errorf("console: %w", err)
	}

	if c.Default.Path == "" {
		c.Default.Path = logs.DefaultLogPath()
	}
	if err := c.Default.validate(); err != nil {
		return fmt.Errorf("default logger: %w", err)
	}

	defaultAbs, err := utils.GetAbsolutePath(c.Default.Path)
	if err != nil {
		return err
	}
	pathMap := map[string]string{defaultAbs: "default"}

	for i := range c.Loggers {
		logger := &c.Loggers[i]

		if strings.TrimSpace(logger.Path) == "" {
			return fmt.Errorf("logger %d: path cannot be empty (reserved for the console)", i)
		}

		if err := logger.validate(); err != nil {
			return fmt.Errorf("logger %s: %w", logger.Path, err)
		}

		// Check for duplicate paths, including the reserved default path
		abs, err := utils.GetAbsolutePath(logger.Path)
		if err != nil {
			return err
		}
		if existing, exists := pathMap[abs]; exists {
			return fmt.Errorf("path %s is used by both %s and %s", logger.Path, existing, logger.Path)
		}
		pathMap[abs] = logger.Path
	}

	return nil
}

func (l *LoggerConfig) validate() error {
	if _, err := logs.ParseLevel(l.Level); err != nil {
		return err
	}
	if _, err := logs.ParseOverflowAction(l.Overflow); err != nil {
		return err
	}

	if l.MaxSize < 0 {
		return fmt.Errorf("invalid max_size: %d", l.MaxSize)
	}
	if l.MaxSize == 0 {
		l.MaxSize = logs.DefaultMaxLogSize
	}
	if l.MaxSize < logs.MinLogSize {
		l.MaxSize = logs.MinLogSize
	}

	return nil
}

// Apply configures the console, default and listed loggers of registry.
// The registry's default path is used for the default logger; Default.Path only
// matters when building the registry with NewRegistry.
func (c *Config) Apply(registry *logs.Registry) error {
	consoleLevel, err := logs.ParseLevel(c.Console.Level)
	if err != nil {
		return err
	}
	console := registry.Console()
	console.SetEnabled(c.Console.IsEnabled())
	console.SetLogLevel(consoleLevel)

	action, err := logs.ParseOverflowAction(c.Default.Overflow)
	if err != nil {
		return err
	}
	if err := c.Default.apply(registry.Default(action)); err != nil {
		return fmt.Errorf("default logger: %w", err)
	}

	for _, logger := range c.Loggers {
		action, err := logs.ParseOverflowAction(logger.Overflow)
		if err != nil {
			return err
		}
		if err := logger.apply(registry.File(logger.Path, action)); err != nil {
			return fmt.Errorf("logger %s: %w", logger.Path, err)
		}
	}

	return nil
}

func (l LoggerConfig) apply(inst *logs.Instance) error {
	level, err := logs.ParseLevel(l.Level)
	if err != nil {
		return err
	}
	action, err := logs.ParseOverflowAction(l.Overflow)
	if err != nil {
		return err
	}

	// Creation may have fallen back to the console, leave its settings alone
	if inst.Path() == logs.ConsolePath {
		return fmt.Errorf("%w: %s could not be opened", logs.ErrCreate, l.Path)
	}

	inst.SetEnabled(l.IsEnabled())
	inst.SetLogLevel(level)
	inst.SetOverflowAction(action)
	inst.SetMaxLogSize(l.MaxSize)
	inst.SetReflectToConsole(l.ReflectToConsole)
	return nil
}

// CreateSample creates a sample configuration file
func CreateSample(filename string, defaultPath string) error {
	sample := Defaults()
	if defaultPath != "" {
		sample.Default.Path = defaultPath
	}
	sample.Loggers = []LoggerConfig{
		{
			Path:     "logs/app.log",
			Level:    "debug",
			Overflow: "rotate",
			MaxSize:  10 * 1024 * 1024,
		},
		{
			Path:             "logs/audit.log",
			Level:            "warning",
			Overflow:         "none",
			ReflectToConsole: true,
		},
	}

	return WriteConfig(sample, filename)
}

// WriteConfig writes a configuration to a file
func WriteConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := `# rwlog configuration
# levels: error, warning, normal, debug, insane
# overflow: none, truncate, rotate (max_size in bytes, at least 512)

`

	fullContent := header + string(data)
	if err := os.WriteFile(filename, []byte(fullContent), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
