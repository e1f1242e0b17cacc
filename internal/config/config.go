package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env               string        // application environment (e.g. "dev", "prod")
	Port              string        // HTTP port to listen on
	DBUser            string        // database username
	DBPass            string        // database password (optional)
	DBHost            string        // database host address
	DBPort            string        // database port number
	DBName            string        // database name
	DBAutoMigrate     bool          // create missing tables on start
	JWTSecret         string        // secret used to sign admin JWTs
	AccessTTLMin      int           // access token time‑to‑live in minutes
	BcryptCost        int           // bcrypt cost used by the hash-password helper
	AdminUser         string        // organizer login name
	AdminPasswordHash string        // bcrypt hash of the organizer password
	LogLevel          string        // debug | info | warn | error
	LogFormat         string        // json | console
	TenantCacheTTL    time.Duration // lifetime of cached slug -> event id entries
}

// Load reads an optional .env file and then the environment.  Required
// variables are enforced by must() and missing values cause the program
// to exit with a fatal log message.
func Load() Config {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()
	return Config{
		Env:               must("APP_ENV"),
		Port:              must("APP_PORT"),
		DBUser:            must("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"), // empty allowed
		DBHost:            must("DB_HOST"),
		DBPort:            must("DB_PORT"),
		DBName:            must("DB_NAME"),
		DBAutoMigrate:     envBool("DB_AUTO_MIGRATE", true),
		JWTSecret:         must("JWT_SECRET"),
		AccessTTLMin:      mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:        envInt("BCRYPT_COST", 12),
		AdminUser:         must("ADMIN_USER"),
		AdminPasswordHash: must("ADMIN_PASSWORD_HASH"),
		LogLevel:          envStr("LOG_LEVEL", "info"),
		LogFormat:         envStr("LOG_FORMAT", "json"),
		TenantCacheTTL:    envDur("TENANT_CACHE_TTL", 5*time.Minute),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
