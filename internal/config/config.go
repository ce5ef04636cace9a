package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port          string
	DBDSN         string
	StoreDriver   string // sqlite | redis
	RedisAddr     string
	LogFile       string
	TemplatesDir  string
	StaticDir     string
	APIKeys       []string
	MaxUploadMB   int
	RateLimit     int // requests per minute per IP; 0 disables
	SeedDemo      bool
	AdminEmail    string
	AdminPassword string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "venues.db"
	} // sqlite file in project root
	driver := strings.ToLower(strings.TrimSpace(os.Getenv("STORE_DRIVER")))
	if driver == "" {
		driver = "sqlite"
	}
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	templates := os.Getenv("TEMPLATES_DIR")
	if templates == "" {
		templates = "./web/templates"
	}
	static := os.Getenv("STATIC_DIR")
	if static == "" {
		static = "./web/static"
	}
	maxMB, err := strconv.Atoi(os.Getenv("MAX_UPLOAD_MB"))
	if err != nil || maxMB <= 0 {
		maxMB = 8
	}
	rate, err := strconv.Atoi(os.Getenv("RATE_LIMIT_PER_MIN"))
	if err != nil || rate < 0 {
		rate = 120
	}
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@venues.test"
	}
	adminPass := os.Getenv("ADMIN_PASSWORD")
	if adminPass == "" {
		adminPass = "Passw0rd!"
	}

	cfg := Config{
		Port:          port,
		DBDSN:         dsn,
		StoreDriver:   driver,
		RedisAddr:     redisAddr,
		LogFile:       os.Getenv("LOG_FILE"),
		TemplatesDir:  templates,
		StaticDir:     static,
		APIKeys:       ParseAPIKeys(os.Getenv("API_KEYS")),
		MaxUploadMB:   maxMB,
		RateLimit:     rate,
		SeedDemo:      os.Getenv("SEED_DEMO") == "1",
		AdminEmail:    adminEmail,
		AdminPassword: adminPass,
	}
	log.Printf("[config] PORT=%s DB_DSN=%s STORE_DRIVER=%s LOG_FILE=%s API_KEYS=%d MAX_UPLOAD_MB=%d",
		cfg.Port, cfg.DBDSN, cfg.StoreDriver, cfg.LogFile, len(cfg.APIKeys), cfg.MaxUploadMB)
	return cfg
}

// ParseAPIKeys splits a comma-separated key list, dropping blanks and duplicates.
func ParseAPIKeys(s string) []string {
	var keys []string
	seen := map[string]bool{}
	for _, k := range strings.Split(s, ",") {
		if v := strings.TrimSpace(k); v != "" && !seen[v] {
			seen[v] = true
			keys = append(keys, v)
		}
	}
	return keys
}

// MaxBodyBytes is the request body cap handed to the fiber server.
func (c Config) MaxBodyBytes() int {
	return c.MaxUploadMB << 20
}
