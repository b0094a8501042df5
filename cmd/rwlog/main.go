package main

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gleicon/rwlog/internal/config"
	"github.com/gleicon/rwlog/internal/logs"
	"github.com/gleicon/rwlog/pkg/logger"
	"github.com/gleicon/rwlog/pkg/utils"
)

var (
	configFile string
	log        *logrus.Logger
	registry   *logs.Registry
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if strings.Contains(err.Error(), "config") {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			fmt.Fprintf(os.Stderr, "Try: rwlog init\n")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rwlog",
	Short: "rwlog - leveled file and console logging with truncation and rotation",
	Long: `rwlog writes leveled, timestamped records to the console, a default log
file and any number of named log files, keeping each file under a size limit.

Basic workflow:
  rwlog init       # Write a sample rwlog.yaml
  rwlog validate   # Check configuration
  rwlog write ...  # Append a record
  rwlog size       # Show the size of a log file
  rwlog stress     # Hammer one logger from many goroutines`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupRegistry()
	},
}

var initCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Write a sample configuration file",
	Args:  cobra.MaximumNArgs(1),
	Run:   runInit,
	// No registry needed, and a broken config must not stop init from replacing it
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

var validateCmd = &cobra.Command{
	Use:               "validate",
	Short:             "Validate configuration",
	Run:               runValidate,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

var writeCmd = &cobra.Command{
	Use:   "write [message...]",
	Short: "Append one record to a logger",
	Long: `Write a record:
- write hello                     # Default logger, normal level
- write -l warning disk is full   # Default logger, warning level
- write -p app.log -o rotate hi   # Named file logger
- write --console hi              # Console only`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWrite,
}

var sizeCmd = &cobra.Command{
	Use:   "size [path]",
	Short: "Show the current size of a log file (default logger if omitted)",
	Args:  cobra.MaximumNArgs(1),
	Run:   runSize,
}

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Write fixed-width records to one logger from many goroutines",
	RunE:  runStress,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().Bool("debug", false, "debug diagnostics")

	// Write command flags
	writeCmd.Flags().StringP("path", "p", "", "log file (default logger if empty)")
	writeCmd.Flags().StringP("level", "l", "normal", "error, warning, normal, debug, insane")
	writeCmd.Flags().StringP("overflow", "o", "truncate", "none, truncate, rotate (used when the logger is created)")
	writeCmd.Flags().Int64("max-size", 0, "max log size in bytes (at least 512)")
	writeCmd.Flags().Bool("console", false, "write to the console logger only")
	writeCmd.Flags().Bool("reflect", false, "also print the record on the console")

	// Stress command flags
	stressCmd.Flags().String("stress-path", "", "log file (default logger if empty)")
	stressCmd.Flags().Int("goroutines", 8, "concurrent writers")
	stressCmd.Flags().Int("iterations", 1000, "records per writer")
	stressCmd.Flags().String("stress-overflow", "none", "overflow action for a new logger")

	// Init command flags
	initCmd.Flags().Bool("force", false, "overwrite existing file")

	viper.BindPFlags(rootCmd.PersistentFlags())
	viper.BindPFlags(stressCmd.Flags())
	viper.BindPFlags(initCmd.Flags())

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(sizeCmd)
	rootCmd.AddCommand(stressCmd)
}

func initConfig() {
	log = logger.NewWithOutput(os.Stderr, viper.GetBool("debug"))

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("rwlog")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/rwlog")
	}

	viper.SetEnvPrefix("RWLOG")
	viper.AutomaticEnv()

	// Don't fail if no config file
	viper.ReadInConfig()
}

// setupRegistry builds the process-wide registry from the configuration and
// mirrors our own diagnostics into the default logger.
func setupRegistry() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry = logs.NewRegistry(cfg.Default.Path, logs.WithDiagnostics(log))
	if err := cfg.Apply(registry); err != nil {
		log.WithError(err).Warn("some loggers could not be configured")
	}
	logs.SetGlobalRegistry(registry)

	log.AddHook(logs.NewInstanceHook(registry.Default(logs.OverflowTruncate)))
	return nil
}

func loadConfig() (*config.Config, error) {
	configPath := configFile
	if configPath == "" {
		configPath = viper.ConfigFileUsed()
	}
	return config.Load(configPath)
}

// Command implementations

func runInit(cmd *cobra.Command, args []string) {
	target := "rwlog.yaml"
	if len(args) > 0 {
		target = args[0]
	}

	if utils.FileExists(target) && !viper.GetBool("force") {
		fmt.Printf("Exists: %s (use --force to overwrite)\n", target)
		return
	}

	if err := config.CreateSample(target, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created: %s\n", target)
}

func runValidate(cmd *cobra.Command, args []string) {
	fmt.Println("Validating configuration...")

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("ERROR: Configuration validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OK: console (level %s, enabled %t)\n", cfg.Console.Level, cfg.Console.IsEnabled())
	fmt.Printf("OK: default %s (level %s, overflow %s, max %d bytes)\n",
		cfg.Default.Path, cfg.Default.Level, cfg.Default.Overflow, cfg.Default.MaxSize)
	for _, l := range cfg.Loggers {
		fmt.Printf("OK: %s (level %s, overflow %s, max %d bytes)\n", l.Path, l.Level, l.Overflow, l.MaxSize)
	}
	fmt.Println("Configuration is valid!")
}

func runWrite(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	path, _ := flags.GetString("path")
	levelName, _ := flags.GetString("level")
	overflowName, _ := flags.GetString("overflow")
	maxSize, _ := flags.GetInt64("max-size")
	consoleOnly, _ := flags.GetBool("console")
	reflect, _ := flags.GetBool("reflect")

	level, err := logs.ParseLevel(levelName)
	if err != nil {
		return err
	}
	action, err := logs.ParseOverflowAction(overflowName)
	if err != nil {
		return err
	}

	var inst *logs.Instance
	switch {
	case consoleOnly:
		inst = registry.Console()
	case path == "":
		inst = registry.Default(action)
	default:
		inst = registry.File(path, action)
	}

	if maxSize > 0 {
		inst.SetMaxLogSize(maxSize)
	}
	if reflect {
		inst.SetReflectToConsole(true)
	}

	inst.Log(level, strings.Join(args, " "))
	return nil
}

func runSize(cmd *cobra.Command, args []string) {
	path := registry.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}

	inst := registry.File(path, logs.OverflowNone)
	fmt.Printf("%s: %d bytes\n", path, inst.LogSize())
}

func runStress(cmd *cobra.Command, args []string) error {
	path := viper.GetString("stress-path")
	goroutines := viper.GetInt("goroutines")
	iterations := viper.GetInt("iterations")

	action, err := logs.ParseOverflowAction(viper.GetString("stress-overflow"))
	if err != nil {
		return err
	}
	if goroutines <= 0 || iterations <= 0 {
		return fmt.Errorf("goroutines and iterations must be positive")
	}

	inst := registry.Default(action)
	if path != "" {
		inst = registry.File(path, action)
	}

	before := inst.LogSize()
	start := time.Now()

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				inst.Logf(logs.LevelNormal, "writer %04d record %08d", g, i)
			}
		}(g)
	}
	wg.Wait()

	elapsed := time.Since(start)
	log.WithFields(logrus.Fields{
		"path":       inst.Path(),
		"goroutines": goroutines,
		"iterations": iterations,
		"elapsed":    elapsed.String(),
	}).Info("stress run finished")

	fmt.Printf("Wrote %d records to %s in %s\n", goroutines*iterations, inst.Path(), elapsed.Round(time.Millisecond))
	fmt.Printf("Size: %d -> %d bytes\n", before, inst.LogSize())
	return nil
}
