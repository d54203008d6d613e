package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/frahmantamala/leave-management/internal"
)

// configDir is where config.yml is looked up.
var configDir string

var rootCmd = &cobra.Command{
	Use:   "leave-management",
	Short: "Employee Leave Management",
	Long: `Leave applications, multi-level approvals and leave balances for academic institutions.

Configuration is read from config.yml in --config-dir, with ENV_ prefixed
environment overrides. With APP_ENV=production or DOCKER_ENV=true the file is
skipped and everything comes from the environment.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runningInContainer() bool {
	return os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true"
}

func loadConfig(dir string) (*internal.Config, error) {
	// a local .env is optional
	_ = godotenv.Load()

	var (
		cfg *internal.Config
		err error
	)
	if runningInContainer() {
		cfg = internal.LoadConfigFromEnv()
	} else if cfg, err = readConfigFile(dir); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func readConfigFile(dir string) (*internal.Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read %s/config.yml: %w", dir, err)
	}
	cfg := &internal.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory containing config.yml")

	rootCmd.AddCommand(httpServerCmd, migrateCmd, seedCmd, holidaysCmd, balancesCmd)
}
