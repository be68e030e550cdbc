package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/hvkurs/kursmap/pkg/constants"
)

// Config holds the application configuration loaded from flags,
// environment variables, .env files, and the config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Catalog configuration
	DataPath string

	// Normalization service configuration
	APIKey   string
	Model    string
	Throttle time.Duration

	// Logging configuration
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from all sources in order of
// precedence: command-line flags (applied later by cobra), environment
// variables, .env files, config file, defaults.
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// Bind the service API key under both conventional names.
	_ = viper.BindEnv("gemini_api_key", "GEMINI_API_KEY", "GOOGLE_API_KEY")

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".kursmap")
		}
	}
	_ = viper.ReadInConfig()

	config := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),
		Format:  viper.GetString("format"),

		ConfigFile: viper.ConfigFileUsed(),

		DataPath: viper.GetString("data_path"),
		APIKey:   viper.GetString("gemini_api_key"),
		Model:    viper.GetString("model"),
		Throttle: viper.GetDuration("throttle"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
	}

	if config.DataPath == "" {
		config.DataPath = "data"
	}
	if config.Model == "" {
		config.Model = constants.DefaultModel
	}
	if config.Throttle == 0 {
		config.Throttle = constants.DefaultThrottle
	}

	return config, nil
}

// UpdateFromFlags applies parsed command flags, which take precedence
// over config file and environment values.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads .env files from the working directory. Missing
// files are fine; explicit environment variables win over file values.
func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
