package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Session gate
	JWTSecret string

	// Backend selection: memory, sqlite or firestore
	DataBackend string

	// SQLite backend
	SQLiteDBPath string

	// Backup mirror written by the worker
	BackupDBPath string

	// Firestore backend. The connection descriptor is a JSON blob (or a
	// path to one) holding the service-account credentials; the project id
	// may live inside it or be given separately.
	FirestoreProjectID       string
	FirestoreCredentialsJSON string
	FirestoreCredentialsFile string

	// Advice generator
	GeminiAPIKey string
	GeminiModel  string

	// AMQP sync events (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Sync coordinator
	SyncDebounce time.Duration
}

func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8082"),
		JWTSecret: getEnv("JWT_SECRET", ""),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fintrack.db"),
		BackupDBPath: getEnv("BACKUP_DB_PATH", "./data/fintrack-backup.db"),

		FirestoreProjectID:       getEnv("FIRESTORE_PROJECT_ID", ""),
		FirestoreCredentialsJSON: getEnv("FIRESTORE_CREDENTIALS_JSON", ""),
		FirestoreCredentialsFile: getEnv("FIRESTORE_CREDENTIALS_FILE", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_synced"),

		SyncDebounce: getEnvDuration("SYNC_DEBOUNCE", 2*time.Second),
	}
}

// RemoteConfigured reports whether the firestore connection descriptor is
// present. Its absence is a distinct state the host surfaces at startup,
// never an error thrown mid-operation.
func (c *Config) RemoteConfigured() bool {
	return c.FirestoreProjectID != "" &&
		(c.FirestoreCredentialsJSON != "" || c.FirestoreCredentialsFile != "")
}

// AdvisorConfigured reports whether the advice-generator credential is set.
func (c *Config) AdvisorConfigured() bool {
	return c.GeminiAPIKey != ""
}

// FirestoreCredentials returns the raw service-account JSON, reading the
// file variant if the inline one is absent.
func (c *Config) FirestoreCredentials() ([]byte, error) {
	if c.FirestoreCredentialsJSON != "" {
		return []byte(c.FirestoreCredentialsJSON), nil
	}
	if c.FirestoreCredentialsFile != "" {
		raw, err := os.ReadFile(c.FirestoreCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read firestore credentials file: %w", err)
		}
		return raw, nil
	}
	return nil, fmt.Errorf("firestore credentials not configured")
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "memory", "sqlite", "firestore":
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [memory sqlite firestore]", c.DataBackend))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.DataBackend == "firestore" {
		if !c.RemoteConfigured() {
			errs = append(errs, "firestore backend requires FIRESTORE_PROJECT_ID and one of FIRESTORE_CREDENTIALS_JSON or FIRESTORE_CREDENTIALS_FILE")
		}
		if c.FirestoreCredentialsFile != "" {
			if _, err := os.Stat(c.FirestoreCredentialsFile); os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("firestore credentials file does not exist: %s", c.FirestoreCredentialsFile))
			}
		}
		if c.FirestoreCredentialsJSON != "" && !json.Valid([]byte(c.FirestoreCredentialsJSON)) {
			errs = append(errs, "FIRESTORE_CREDENTIALS_JSON is not valid JSON")
		}
	}

	if c.BackupDBPath == "" {
		errs = append(errs, "backup database path cannot be empty")
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SyncDebounce < 100*time.Millisecond {
		errs = append(errs, fmt.Sprintf("invalid sync debounce %v: must be at least 100ms", c.SyncDebounce))
	} else if c.SyncDebounce > time.Minute {
		errs = append(errs, fmt.Sprintf("invalid sync debounce %v: must be at most 1 minute", c.SyncDebounce))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
