package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	ConfigPath   string
	ProjectRoot  string
	AllowOrigins []string
	IPHashSecret string

	AutoExportEnabled  bool
	AutoExportDir      string
	AutoExportFilename string
}

// ParseFlags validates flags, falling back to environment variables.
// A .env file in the working directory is loaded first if present.
func ParseFlags(args []string) (Config, error) {
	// Missing .env is fine; explicit env vars and flags still apply.
	_ = godotenv.Load()

	var cfg Config
	var origins string

	fs := flag.NewFlagSet("experiment-api", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL or file path")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.ConfigPath, "c", "", "Experiment config JSON path")
	fs.StringVar(&cfg.ProjectRoot, "r", "", "Project root for relative image dirs (optional)")
	fs.StringVar(&origins, "origins", "", "Comma-separated allowed CORS origins")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 8000 // default
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("DATABASE_TYPE must be sqlite or postgres")
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "postgres" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = "experiment.db"
	}

	if cfg.ConfigPath == "" {
		cfg.ConfigPath = os.Getenv("EXPERIMENT_CONFIG_PATH")
		if cfg.ConfigPath == "" {
			cfg.ConfigPath = "config/experiment.json"
		}
	}
	if cfg.ProjectRoot == "" {
		cfg.ProjectRoot = os.Getenv("EXPERIMENT_PROJECT_ROOT")
	}

	if origins == "" {
		origins = os.Getenv("ALLOW_ORIGINS")
	}
	cfg.AllowOrigins = splitOrigins(origins)
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"*"}
	}

	// Secret - MUST be provided
	cfg.IPHashSecret = os.Getenv("IP_HASH_SECRET")
	if cfg.IPHashSecret == "" {
		return Config{}, errors.New("IP_HASH_SECRET required")
	}

	cfg.AutoExportEnabled = true
	if v := os.Getenv("AUTO_EXPORT_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, errors.New("invalid AUTO_EXPORT_ENABLED env variable")
		}
		cfg.AutoExportEnabled = enabled
	}
	cfg.AutoExportDir = os.Getenv("AUTO_EXPORT_DIR")
	if cfg.AutoExportDir == "" {
		cfg.AutoExportDir = "exports"
	}
	cfg.AutoExportFilename = os.Getenv("AUTO_EXPORT_FILENAME")
	if cfg.AutoExportFilename == "" {
		cfg.AutoExportFilename = "records.csv"
	}

	return cfg, nil
}

func splitOrigins(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
