package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EngineChromedp = "chromedp"
	EngineRod      = "rod"

	StoreMongo         = "mongo"
	StorePostgres      = "postgres"
	StoreElasticsearch = "elasticsearch"
	StoreMemory        = "memory"
)

// Config holds all application configuration loaded from environment variables.
// CLI flags are bound directly onto these fields.
type Config struct {
	// Storefront
	RootURL     string
	FallbackURL string
	SiteURL     string

	MaxApps       int
	OutputPath    string
	ScreenshotDir string

	// Browser session
	Engine             string
	ChromeBin          string
	Headless           bool
	WindowWidth        int
	WindowHeight       int
	PageLoadTimeout    time.Duration
	ListingWaitTimeout time.Duration
	ItemWaitTimeout    time.Duration
	ScrollTimes        int
	ScrollPause        time.Duration
	FallbackSettle     time.Duration
	FallbackScrolls    int
	PacingMin          time.Duration
	PacingMax          time.Duration
	NavigationRPS      float64
	RespectRobots      bool
	MaxRetries         int

	// Persistence
	StoreBackend    string
	SkipStore       bool
	ClearBeforeSync bool
	SyncDemo        bool

	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	ElasticAddress  string
	ElasticUsername string
	ElasticPassword string
	ElasticIndex    string

	RedisAddr   string
	RedisDB     int
	RedisStream string

	MemcacheAddr string
	CooldownTTL  time.Duration

	// Import endpoint
	APIURL        string
	SkipAPI       bool
	ImportTimeout time.Duration
}

// Load reads the .env file when present and returns a populated Config struct.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		RootURL:     getEnv("META_ROOT_URL", "https://www.meta.com/quest/gaming/"),
		FallbackURL: getEnv("META_FALLBACK_URL", "https://www.meta.com/quest/store/"),
		SiteURL:     getEnv("META_SITE_URL", "https://www.meta.com"),

		MaxApps:       getEnvInt("MAX_APPS", 20),
		OutputPath:    getEnv("OUTPUT_PATH", "meta_quest_apps.json"),
		ScreenshotDir: getEnv("SCREENSHOT_DIR", "."),

		Engine:             getEnv("BROWSER_ENGINE", EngineChromedp),
		ChromeBin:          getEnv("CHROME_BIN", ""),
		Headless:           getEnvBool("HEADLESS", true),
		WindowWidth:        getEnvInt("WINDOW_WIDTH", 1920),
		WindowHeight:       getEnvInt("WINDOW_HEIGHT", 1080),
		PageLoadTimeout:    getEnvDuration("PAGE_LOAD_TIMEOUT", 30*time.Second),
		ListingWaitTimeout: getEnvDuration("LISTING_WAIT_TIMEOUT", 20*time.Second),
		ItemWaitTimeout:    getEnvDuration("ITEM_WAIT_TIMEOUT", 15*time.Second),
		ScrollTimes:        getEnvInt("SCROLL_TIMES", 5),
		ScrollPause:        getEnvDuration("SCROLL_PAUSE", 2*time.Second),
		FallbackSettle:     getEnvDuration("FALLBACK_SETTLE", 5*time.Second),
		FallbackScrolls:    getEnvInt("FALLBACK_SCROLLS", 3),
		PacingMin:          getEnvDuration("PACING_MIN", time.Second),
		PacingMax:          getEnvDuration("PACING_MAX", 3*time.Second),
		NavigationRPS:      getEnvFloat("NAV_RPS", 0),
		RespectRobots:      getEnvBool("RESPECT_ROBOTS", false),
		MaxRetries:         getEnvInt("MAX_RETRIES", 3),

		StoreBackend:    getEnv("STORE_BACKEND", StoreMongo),
		SkipStore:       getEnvBool("SKIP_STORE", false),
		ClearBeforeSync: getEnvBool("CLEAR_BEFORE_SYNC", true),
		SyncDemo:        getEnvBool("SYNC_DEMO", false),

		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017/"),
		MongoDatabase:   getEnv("MONGO_DB", "meta_store"),
		MongoCollection: getEnv("MONGO_COLLECTION", "meta_store"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "meta_store"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		ElasticAddress:  getEnv("ELASTIC_ADDRESS", "http://localhost:9200"),
		ElasticUsername: getEnv("ELASTIC_USERNAME", ""),
		ElasticPassword: getEnv("ELASTIC_PASSWORD", ""),
		ElasticIndex:    getEnv("ELASTIC_INDEX", "meta_store"),

		RedisAddr:   getEnv("REDIS_ADDR", ""),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisStream: getEnv("REDIS_STREAM", "meta_store:records"),

		MemcacheAddr: getEnv("MEMCACHE_ADDR", ""),
		CooldownTTL:  getEnvDuration("COOLDOWN_TTL", 30*time.Minute),

		APIURL:        getEnv("API_URL", "http://localhost:5000/api/import"),
		SkipAPI:       getEnvBool("SKIP_API", false),
		ImportTimeout: getEnvDuration("IMPORT_TIMEOUT", 30*time.Second),
	}
}

// Validate checks the values that the CLI and environment can get wrong.
func (c *Config) Validate() error {
	if c.MaxApps < 1 {
		return fmt.Errorf("max apps must be at least 1, got %d", c.MaxApps)
	}
	switch c.Engine {
	case EngineChromedp, EngineRod:
	default:
		return fmt.Errorf("unknown browser engine %q (want %s or %s)", c.Engine, EngineChromedp, EngineRod)
	}
	switch c.StoreBackend {
	case StoreMongo, StorePostgres, StoreElasticsearch, StoreMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	if c.PacingMin < 0 || c.PacingMax < c.PacingMin {
		return fmt.Errorf("invalid pacing window [%v, %v]", c.PacingMin, c.PacingMax)
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return fmt.Errorf("output path must not be empty")
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("1500ms", "2s") or a bare
// number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(val, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}
