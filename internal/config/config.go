package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Session   SessionConfig   `mapstructure:"session"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Speech    SpeechConfig    `mapstructure:"speech"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

// DatabaseConfig configures the visitor interaction log store
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type RateLimitConfig struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

type KnowledgeConfig struct {
	BackendURL    string        `mapstructure:"backend_url"`
	SnapshotPath  string        `mapstructure:"snapshot_path"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"`
	Authoritative bool          `mapstructure:"authoritative"`
}

type SpeechConfig struct {
	STTURL     string        `mapstructure:"stt_url"`
	TTSURL     string        `mapstructure:"tts_url"`
	Voice      string        `mapstructure:"voice"`
	CacheDir   string        `mapstructure:"cache_dir"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxAudioMB int           `mapstructure:"max_audio_mb"`
}

type LLMConfig struct {
	DefaultProvider string       `mapstructure:"default_provider"`
	Groq            GroqConfig   `mapstructure:"groq"`
	Gemini          GeminiConfig `mapstructure:"gemini"`
}

type GroqConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set config file path
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set defaults
	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	// Override with environment variables
	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.request_timeout", "90s")

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "musia")
	v.SetDefault("database.database", "musia")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)

	// Redis
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Sessions
	v.SetDefault("session.ttl", "1h")

	// Rate limiting
	v.SetDefault("rate_limit.max_requests", 10)
	v.SetDefault("rate_limit.window", "60s")

	// Knowledge base
	v.SetDefault("knowledge.backend_url", "http://localhost:3000/api/v1")
	v.SetDefault("knowledge.snapshot_path", "data/artworks.json")
	v.SetDefault("knowledge.fetch_timeout", "10s")
	v.SetDefault("knowledge.authoritative", false)

	// Speech services
	v.SetDefault("speech.stt_url", "http://localhost:9000")
	v.SetDefault("speech.tts_url", "http://localhost:9100")
	v.SetDefault("speech.voice", "fr-FR-DeniseNeural")
	v.SetDefault("speech.cache_dir", "data/tts_cache")
	v.SetDefault("speech.timeout", "30s")
	v.SetDefault("speech.max_audio_mb", 10)

	// LLM
	v.SetDefault("llm.default_provider", "groq")
	v.SetDefault("llm.groq.model", "llama-3.1-70b-versatile")
	v.SetDefault("llm.gemini.model", "gemini-1.5-flash")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	// Database
	v.BindEnv("database.host", "POSTGRES_HOST")
	v.BindEnv("database.password", "POSTGRES_PASSWORD")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Knowledge base
	v.BindEnv("knowledge.backend_url", "MUSIA_BACKEND_URL")

	// Speech services
	v.BindEnv("speech.stt_url", "STT_URL")
	v.BindEnv("speech.tts_url", "TTS_URL")

	// LLM API keys
	v.BindEnv("llm.groq.api_key", "GROQ_API_KEY")
	v.BindEnv("llm.gemini.api_key", "GEMINI_API_KEY")
}
