package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/spec-kit/ticket-report/internal/chart"
	"github.com/spec-kit/ticket-report/internal/domain"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Report       ReportConfig
	SLA          SLAConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	BodyLimitBytes        int
}

// PostgresConfig holds DB connection values. An empty DSN disables run
// history.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables the
// rendered report cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines API access and share link parameters.
type AuthConfig struct {
	// APIKeyHash is the bcrypt hash of the API key. Empty disables the check.
	APIKeyHash      string
	ShareSecret     string
	ShareTTLMinutes int
	ShareIssuer     string
}

// ReportConfig controls snapshot discovery and report rendering.
type ReportConfig struct {
	RawDataDir       string
	SnapshotPattern  string
	OutputFile       string
	TemplatePath     string
	CacheTTLSeconds  int
	PieSize          int
	CategoryPieSize  int
	BarWidth         int
	MinSegmentWidth  int
	Palette          []string
	RunsDefaultLimit int
	// ScheduleInterval regenerates reports periodically; zero disables.
	ScheduleInterval time.Duration
	ScheduleClients  []string
}

// NotificationConfig holds report delivery endpoints. Empty values turn
// the corresponding channel off.
type NotificationConfig struct {
	EmailFrom  string
	EmailTo    []string
	WebhookURL string
}

// SLAConfig holds per-tier thresholds. A nil value leaves the dimension
// undefined for that tier.
type SLAConfig struct {
	UrgentReply   *time.Duration
	UrgentResolve *time.Duration
	HighReply     *time.Duration
	HighResolve   *time.Duration
	MediumReply   *time.Duration
	MediumResolve *time.Duration
	LowReply      *time.Duration
	LowResolve    *time.Duration
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	scheduleInterval, err := getEnvAsDuration("REPORT_SCHEDULE_INTERVAL", 0)
	if err != nil {
		return nil, err
	}

	sla, err := loadSLA()
	if err != nil {
		return nil, err
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-report-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			BodyLimitBytes:        getEnvAsInt("HTTP_BODY_LIMIT_BYTES", 32<<20),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			APIKeyHash:      os.Getenv("AUTH_API_KEY_HASH"),
			ShareSecret:     getEnv("AUTH_SHARE_SECRET", "dev-secret"),
			ShareTTLMinutes: getEnvAsInt("AUTH_SHARE_TTL_MINUTES", 7*24*60),
			ShareIssuer:     getEnv("AUTH_SHARE_ISSUER", "ticket-report"),
		},
		Report: ReportConfig{
			RawDataDir:       getEnv("REPORT_RAW_DATA_DIR", "raw_data"),
			SnapshotPattern:  getEnv("REPORT_SNAPSHOT_PATTERN", "freshservice_*.json"),
			OutputFile:       getEnv("REPORT_OUTPUT_FILE", "final_report.html"),
			TemplatePath:     os.Getenv("REPORT_TEMPLATE_PATH"),
			CacheTTLSeconds:  getEnvAsInt("REPORT_CACHE_TTL_SECONDS", 3600),
			PieSize:          getEnvAsInt("REPORT_PIE_SIZE", 120),
			CategoryPieSize:  getEnvAsInt("REPORT_CATEGORY_PIE_SIZE", 150),
			BarWidth:         getEnvAsInt("REPORT_BAR_WIDTH", 300),
			MinSegmentWidth:  getEnvAsInt("REPORT_MIN_SEGMENT_PX", 6),
			Palette:          getEnvAsList("REPORT_PALETTE", chart.DefaultPalette),
			RunsDefaultLimit: getEnvAsInt("REPORT_RUNS_DEFAULT_LIMIT", 20),
			ScheduleInterval: scheduleInterval,
			ScheduleClients:  getEnvAsList("REPORT_SCHEDULE_CLIENTS", nil),
		},
		SLA: sla,
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			EmailTo:    getEnvAsList("NOTIFY_EMAIL_TO", nil),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ShareTTL is the lifetime of a report share link.
func (a AuthConfig) ShareTTL() time.Duration {
	if a.ShareTTLMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(a.ShareTTLMinutes) * time.Minute
}

// CacheTTL is how long rendered reports stay in Redis.
func (r ReportConfig) CacheTTL() time.Duration {
	if r.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(r.CacheTTLSeconds) * time.Second
}

// Chart converts the rendering settings for the chart encoder.
func (r ReportConfig) Chart() chart.Config {
	return chart.Config{
		Palette:         r.Palette,
		PieSize:         r.PieSize,
		CategoryPieSize: r.CategoryPieSize,
		BarWidth:        r.BarWidth,
		MinSegmentWidth: r.MinSegmentWidth,
	}
}

// Table builds the SLA lookup table.
func (s SLAConfig) Table() domain.SLATable {
	return domain.SLATable{
		domain.PriorityUrgent: {Reply: s.UrgentReply, Resolve: s.UrgentResolve},
		domain.PriorityHigh:   {Reply: s.HighReply, Resolve: s.HighResolve},
		domain.PriorityMedium: {Reply: s.MediumReply, Resolve: s.MediumResolve},
		domain.PriorityLow:    {Reply: s.LowReply, Resolve: s.LowResolve},
	}
}

func loadSLA() (SLAConfig, error) {
	def := domain.DefaultSLATable()
	var (
		cfg SLAConfig
		err error
	)
	fields := []struct {
		key      string
		dst      **time.Duration
		fallback *time.Duration
	}{
		{"SLA_URGENT_REPLY", &cfg.UrgentReply, def[domain.PriorityUrgent].Reply},
		{"SLA_URGENT_RESOLVE", &cfg.UrgentResolve, def[domain.PriorityUrgent].Resolve},
		{"SLA_HIGH_REPLY", &cfg.HighReply, def[domain.PriorityHigh].Reply},
		{"SLA_HIGH_RESOLVE", &cfg.HighResolve, def[domain.PriorityHigh].Resolve},
		{"SLA_MEDIUM_REPLY", &cfg.MediumReply, def[domain.PriorityMedium].Reply},
		{"SLA_MEDIUM_RESOLVE", &cfg.MediumResolve, def[domain.PriorityMedium].Resolve},
		{"SLA_LOW_REPLY", &cfg.LowReply, def[domain.PriorityLow].Reply},
		{"SLA_LOW_RESOLVE", &cfg.LowResolve, def[domain.PriorityLow].Resolve},
	}
	for _, f := range fields {
		if *f.dst, err = getEnvAsOptionalDuration(f.key, f.fallback); err != nil {
			return SLAConfig{}, err
		}
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, val)
	}
	return d, nil
}

// getEnvAsOptionalDuration reads a Go duration. An unset variable keeps the
// fallback; a variable set to "", "none" or "-" clears the threshold.
func getEnvAsOptionalDuration(key string, fallback *time.Duration) (*time.Duration, error) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	val = strings.TrimSpace(val)
	if val == "" || strings.EqualFold(val, "none") || val == "-" {
		return nil, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return nil, fmt.Errorf("invalid %s: negative duration", key)
	}
	return &d, nil
}
