package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"eshop-api/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppName                string
	AppPort                string
	APIPrefix              string
	LogLevel               string
	MongoURI               string
	MongoDBName            string
	JWTSecret              string
	UploadDir              string
	GrpcPort               string
	KafkaBrokers           []string
	KafkaTopic             string
	RemoteLogHttpURI       string
	RemoteTraceRpcURI      string
	RemoteProfilingHttpURI string
	TraceStdout            bool
}

// SafeConfig is the loggable view of Config (no secrets, no credentials in URIs).
type SafeConfig struct {
	AppName                string `json:"app_name"`
	AppPort                string `json:"app_port"`
	APIPrefix              string `json:"api_prefix"`
	LogLevel               string `json:"log_level"`
	MongoDBName            string `json:"mongo_db_name"`
	UploadDir              string `json:"upload_dir"`
	GrpcPort               string `json:"grpc_port"`
	KafkaBrokers           string `json:"kafka_brokers"`
	KafkaTopic             string `json:"kafka_topic"`
	RemoteLogHttpURI       string `json:"remote_log_http_uri"`
	RemoteTraceRpcURI      string `json:"remote_trace_rpc_uri"`
	RemoteProfilingHttpURI string `json:"remote_profiling_http_uri"`
	TraceStdout            bool   `json:"trace_stdout"`
}

func toSnake(s string) string {
	var out strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && s[i-1] != '_' {
				out.WriteRune('_')
			}
			out.WriteRune(unicode.ToLower(r))
		} else {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// StructAttrs("data", cfg) ➜ []slog.Attr{ slog.String("data.app_port", "9000"), ... }
func StructAttrs(prefix string, s any) []slog.Attr {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	t := v.Type()

	attrs := make([]slog.Attr, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := prefix + "." + jsonKey(f)

		switch v.Field(i).Kind() {
		case reflect.String:
			attrs = append(attrs, slog.String(key, v.Field(i).String()))
		case reflect.Int, reflect.Int64, reflect.Int32:
			attrs = append(attrs, slog.Int64(key, v.Field(i).Int()))
		case reflect.Bool:
			attrs = append(attrs, slog.Bool(key, v.Field(i).Bool()))
		default:
			attrs = append(attrs, slog.Any(key, v.Field(i).Interface()))
		}
	}
	return attrs
}

func jsonKey(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		return strings.Split(tag, ",")[0]
	}
	return toSnake(f.Name)
}

func (c *Config) ToSafeConfig() SafeConfig {
	return SafeConfig{
		AppName:                c.AppName,
		AppPort:                c.AppPort,
		APIPrefix:              c.APIPrefix,
		LogLevel:               c.LogLevel,
		MongoDBName:            c.MongoDBName,
		UploadDir:              c.UploadDir,
		GrpcPort:               c.GrpcPort,
		KafkaBrokers:           strings.Join(c.KafkaBrokers, ","),
		KafkaTopic:             c.KafkaTopic,
		RemoteLogHttpURI:       c.RemoteLogHttpURI,
		RemoteTraceRpcURI:      c.RemoteTraceRpcURI,
		RemoteProfilingHttpURI: c.RemoteProfilingHttpURI,
		TraceStdout:            c.TraceStdout,
	}
}

var (
	configInstance *Config
	configOnce     sync.Once
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsSlice(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Instance().Warn("No .env file found, using system environment variables")
	}

	cfg := &Config{
		AppName:                getEnv("APP_NAME", "eshop-api"),
		AppPort:                getEnv("APP_PORT", "9000"),
		APIPrefix:              strings.TrimRight(getEnv("API_URL", "/api/v1"), "/"),
		LogLevel:               strings.ToLower(getEnv("LOG_LEVEL", "info")),
		MongoURI:               os.Getenv("MONGO_URI"),
		MongoDBName:            os.Getenv("MONGO_DB_NAME"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		UploadDir:              getEnv("UPLOAD_DIR", "public/uploads"),
		GrpcPort:               os.Getenv("GRPC_PORT"),
		KafkaBrokers:           getEnvAsSlice("KAFKA_BROKERS"),
		KafkaTopic:             getEnv("KAFKA_TOPIC", "eshop-events"),
		RemoteLogHttpURI:       os.Getenv("REMOTE_LOG_HTTP_URI"),
		RemoteTraceRpcURI:      os.Getenv("REMOTE_TRACE_RPC_URI"),
		RemoteProfilingHttpURI: os.Getenv("REMOTE_PROFILING_HTTP_URI"),
		TraceStdout:            getEnvAsBool("TRACE_STDOUT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate() error {
	var missing []string
	if c.MongoURI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if c.MongoDBName == "" {
		missing = append(missing, "MONGO_DB_NAME")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if _, err := strconv.Atoi(c.AppPort); err != nil {
		return fmt.Errorf("APP_PORT must be numeric, got %q", c.AppPort)
	}
	if c.APIPrefix == "" || !strings.HasPrefix(c.APIPrefix, "/") {
		return errors.New("API_URL must start with /")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}
	return nil
}

func Instance() *Config {
	configOnce.Do(func() {
		log := logger.Instance()

		cfg, err := Load()
		if err != nil {
			log.Error("Failed to load configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}
		configInstance = cfg

		logger.SetLevel(cfg.LogLevel)
		logger.SetRemote(cfg.RemoteLogHttpURI, cfg.AppName)

		if cfg.RemoteLogHttpURI == "" {
			log.Warn("Missing REMOTE_LOG_HTTP_URI will skip sending log")
		}
		if cfg.RemoteTraceRpcURI == "" {
			log.Warn("Missing REMOTE_TRACE_RPC_URI will skip sending trace")
		}
		if cfg.RemoteProfilingHttpURI == "" {
			log.Warn("Missing REMOTE_PROFILING_HTTP_URI will skip sending profiling")
		}

		attrs := StructAttrs("data", cfg.ToSafeConfig())
		anyAttrs := make([]any, len(attrs))
		for i, a := range attrs {
			anyAttrs[i] = a
		}
		log.Info("Configuration loaded successfully", anyAttrs...)
	})

	return configInstance
}
