package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries everything resolved once at process start. Backend
// selection is the presence of Supabase credentials; it is fixed for the
// process lifetime.
type Config struct {
	HTTPAddr           string
	SupabaseURL        string
	SupabaseServiceKey string
	JWTSecret          string
	CORSAllowedOrigins []string
	LogLevel           string
	LogFormat          string
}

// Load reads .env (if present) and the environment.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:           getenv("HTTP_ADDR", ":8000"),
		SupabaseURL:        getenv("SUPABASE_URL", ""),
		SupabaseServiceKey: getenv("SUPABASE_SERVICE_KEY", ""),
		JWTSecret:          getenv("JWT_SECRET_KEY", "bossops-super-secret-key-change-in-production"),
		LogLevel:           getenv("LOG_LEVEL", ""),
		LogFormat:          getenv("LOG_FORMAT", ""),
	}
	for _, o := range strings.Split(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}
	return cfg
}

// UseSupabase reports whether the remote backend is configured. The
// placeholder URL shipped in .env.example does not count.
func (c Config) UseSupabase() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != "" &&
		c.SupabaseURL != "https://your-project.supabase.co"
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
