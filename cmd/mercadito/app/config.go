package app

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rpampin/mercadito/internal/server"
	"github.com/rpampin/mercadito/pkg/assets"
	"github.com/rpampin/mercadito/pkg/catalog"
)

// Backend names accepted in configuration.
const (
	BackendGitHub = "github"
	BackendLocal  = "local"
)

// Config holds the application configuration loaded from config files,
// environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Output  string

	// Config file
	ConfigFile string

	// Content backend configuration
	Backend      string
	GitHubOwner  string
	GitHubRepo   string
	GitHubBranch string
	GitHubToken  string
	LocalPath    string
	DocumentPath string
	ImagesRoot   string

	// Server configuration
	ServerHost  string
	ServerPort  int
	AdminToken  string
	CORSOrigins []string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (handled by cobra)
//  2. Environment variables
//  3. .env files
//  4. Config file (~/.mercadito.yaml)
//  5. Defaults
func LoadConfig() (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	bindEnvKeys()

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath("$HOME")
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".mercadito")
	}

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()

	config := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),
		Output:  viper.GetString("output"),

		ConfigFile: viper.ConfigFileUsed(),

		Backend:      viper.GetString("backend"),
		GitHubOwner:  viper.GetString("github_owner"),
		GitHubRepo:   viper.GetString("github_repo"),
		GitHubBranch: viper.GetString("github_branch"),
		GitHubToken:  viper.GetString("github_token"),
		LocalPath:    viper.GetString("local_path"),
		DocumentPath: viper.GetString("document_path"),
		ImagesRoot:   viper.GetString("images_root"),

		ServerHost:  viper.GetString("host"),
		ServerPort:  viper.GetInt("port"),
		AdminToken:  viper.GetString("admin_token"),
		CORSOrigins: viper.GetStringSlice("cors_origins"),

		LogLevel:  viper.GetString("log_level"),
		LogFormat: viper.GetString("log_format"),
		LogOutput: viper.GetString("log_output"),
	}

	// Defaults
	if config.Backend == "" {
		if config.GitHubOwner != "" && config.GitHubRepo != "" {
			config.Backend = BackendGitHub
		} else {
			config.Backend = BackendLocal
		}
	}
	if config.GitHubBranch == "" {
		config.GitHubBranch = "main"
	}
	if config.LocalPath == "" {
		config.LocalPath = "./content"
	}
	if config.DocumentPath == "" {
		config.DocumentPath = catalog.DefaultDocumentPath
	}
	if config.ImagesRoot == "" {
		config.ImagesRoot = assets.DefaultImagesRoot
	}
	if config.ServerHost == "" {
		config.ServerHost = "localhost"
	}
	if config.ServerPort == 0 {
		config.ServerPort = 8080
	}

	return config, nil
}

// ServerConfig builds the HTTP server configuration from this config.
func (c *Config) ServerConfig() server.Config {
	cfg := server.DefaultConfig()
	cfg.Host = c.ServerHost
	cfg.Port = c.ServerPort
	cfg.AdminToken = c.AdminToken
	if len(c.CORSOrigins) > 0 {
		cfg.CORSOrigins = c.CORSOrigins
	}
	return cfg
}

// UpdateFromFlags updates config values from parsed command flags.
// Flag values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, output, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if output != "" {
		c.Output = output
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	envFiles := []string{
		".env",
		".env.local",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// bindEnvKeys explicitly binds the environment variables the content
// backend and server need, so values from .env files are visible to Viper.
func bindEnvKeys() {
	keys := []string{
		"GITHUB_TOKEN",
		"GITHUB_OWNER",
		"GITHUB_REPO",
		"GITHUB_BRANCH",
		"ADMIN_TOKEN",
		"HOST",
		"PORT",
	}

	for _, key := range keys {
		_ = viper.BindEnv(strings.ToLower(key), key)
	}
}
