package config

import (
	"strings"
	"time"

	"adminpanel/pkg/constraints"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Chart   ChartConfig   `mapstructure:"chart"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Dev     DevConfig     `mapstructure:"dev"`
	Console ConsoleConfig `mapstructure:"console"`
}

type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

type APIConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	AnalyticsTimeout time.Duration `mapstructure:"analytics_timeout"`
	UseMockData      bool          `mapstructure:"use_mock_data"`
	// RequestsPerSecond throttles outgoing calls; zero disables the limiter.
	RequestsPerSecond int `mapstructure:"requests_per_second"`
}

type SessionConfig struct {
	// Backend is "memory" or "redis".
	Backend   string `mapstructure:"backend"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ChartConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

type CacheConfig struct {
	FreshFor     time.Duration `mapstructure:"fresh_for"`
	GCAfter      time.Duration `mapstructure:"gc_after"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type DevConfig struct {
	Port              string        `mapstructure:"port"`
	SigningKey        string        `mapstructure:"signing_key"`
	AccessTokenTTL    time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL   time.Duration `mapstructure:"refresh_token_ttl"`
	RequestsPerSecond int           `mapstructure:"requests_per_second"`
	Origins           []string      `mapstructure:"origins"`
	SeedAdmins        int           `mapstructure:"seed_admins"`
}

// ConsoleConfig holds the credentials cmd/console signs in with.
type ConsoleConfig struct {
	Email         string `mapstructure:"email"`
	Password      string `mapstructure:"password"`
	TwoFactorCode string `mapstructure:"two_factor_code"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", "dev")
	v.SetDefault("api.base_url", constraints.DefaultBaseURL)
	v.SetDefault("api.timeout", constraints.DefaultTimeout)
	v.SetDefault("api.analytics_timeout", constraints.AnalyticsTimeout)
	v.SetDefault("api.use_mock_data", false)
	v.SetDefault("api.requests_per_second", 0)
	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.key_prefix", "adminpanel:session:")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("chart.debounce", constraints.ChartDebounce)
	v.SetDefault("cache.fresh_for", 5*time.Minute)
	v.SetDefault("cache.gc_after", 10*time.Minute)
	v.SetDefault("cache.poll_interval", 30*time.Second)
	v.SetDefault("dev.port", ":5000")
	v.SetDefault("dev.signing_key", "adminpanel-dev-signing-key")
	v.SetDefault("dev.access_token_ttl", 15*time.Minute)
	v.SetDefault("dev.refresh_token_ttl", 7*24*time.Hour)
	v.SetDefault("dev.requests_per_second", 20)
	v.SetDefault("dev.seed_admins", 25)
	v.SetDefault("console.email", constraints.DevAdminEmail)
	v.SetDefault("console.password", constraints.DevAdminPassword)
}

// Load reads config.yaml from . or ./config, then ADMIN_* environment
// variables. The front-end variable names VITE_API_BASE_URL and
// VITE_USE_MOCK_DATA are honoured as well.
func Load() *Config {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("ADMIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api.base_url", "ADMIN_API_BASE_URL", "VITE_API_BASE_URL")
	_ = v.BindEnv("api.use_mock_data", "ADMIN_API_USE_MOCK_DATA", "VITE_USE_MOCK_DATA")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}
