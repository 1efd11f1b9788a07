package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"

	LLMOpenAI = "openai"
	LLMVertex = "vertex"
)

// Config is built once at startup and handed to every component that needs it.
type Config struct {
	Port       string `koanf:"port"`
	CORSOrigin string `koanf:"cors_origin"`
	LogLevel   string `koanf:"log_level"`

	StoreDriver string `koanf:"store_driver"`
	MongoURI    string `koanf:"mongo_uri"`
	MongoDB     string `koanf:"mongo_db"`
	PostgresURI string `koanf:"postgres_uri"`

	RedisAddr string        `koanf:"redis_addr"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`

	JWTSecret  string        `koanf:"jwt_secret"`
	JWTIssuer  string        `koanf:"jwt_issuer"`
	JWTTTL     time.Duration `koanf:"jwt_ttl"`
	BcryptCost int           `koanf:"bcrypt_cost"`

	LLMProvider    string        `koanf:"llm_provider"`
	LLMAPIKey      string        `koanf:"llm_api_key"`
	LLMBaseURL     string        `koanf:"llm_base_url"`
	LLMModel       string        `koanf:"llm_model"`
	LLMTimeout     time.Duration `koanf:"llm_timeout"`
	VertexProject  string        `koanf:"vertex_project"`
	VertexLocation string        `koanf:"vertex_location"`

	UploadDir   string `koanf:"upload_dir"`
	MaxUploadMB int64  `koanf:"max_upload_mb"`
	GCSBucket   string `koanf:"gcs_bucket"`

	ChromePath string `koanf:"chrome_path"`
	AssetDir   string `koanf:"asset_dir"`
}

// Load reads .env (if present), then an optional YAML file, then the process
// environment. Later sources win. path may be empty.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		path = "config.yaml"
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, v string) (string, any) {
			return strings.ToLower(key), v
		},
	}), nil); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = "5000"
	}
	if c.CORSOrigin == "" {
		c.CORSOrigin = "http://localhost:3000"
	}
	if c.StoreDriver == "" {
		c.StoreDriver = StoreMongo
	}
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	if c.MongoDB == "" {
		c.MongoDB = "cvstudio"
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 10 * time.Minute
	}
	if c.JWTIssuer == "" {
		c.JWTIssuer = "cvstudio"
	}
	if c.JWTTTL <= 0 {
		c.JWTTTL = 30 * 24 * time.Hour
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 10
	}
	if c.LLMProvider == "" {
		c.LLMProvider = LLMOpenAI
	}
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	if c.LLMModel == "" && c.LLMProvider == LLMOpenAI {
		c.LLMModel = "gpt-4o-mini"
	}
	if c.LLMTimeout <= 0 {
		c.LLMTimeout = 2 * time.Minute
	}
	if c.VertexLocation == "" {
		c.VertexLocation = "us-central1"
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = 5
	}
	if c.AssetDir == "" {
		c.AssetDir = "assets"
	}
}

// Validate reports settings that make the server unusable.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	}
	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is not set"))
		}
	case StorePostgres:
		if c.PostgresURI == "" {
			errs = append(errs, errors.New("POSTGRES_URI is not set"))
		}
	default:
		errs = append(errs, errors.New("STORE_DRIVER must be mongo or postgres"))
	}
	switch c.LLMProvider {
	case LLMOpenAI:
		if c.LLMAPIKey == "" {
			errs = append(errs, errors.New("LLM_API_KEY is not set"))
		}
	case LLMVertex:
		if c.VertexProject == "" {
			errs = append(errs, errors.New("VERTEX_PROJECT is not set"))
		}
	default:
		errs = append(errs, errors.New("LLM_PROVIDER must be openai or vertex"))
	}
	return errors.Join(errs...)
}
