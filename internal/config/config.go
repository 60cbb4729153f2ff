package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Log         LogConfig
	Database    DatabaseConfig
	Qdrant      QdrantConfig
	VectorStore VectorStoreConfig
	Gemini      GeminiConfig
	Embedding   EmbeddingConfig
	Redis       RedisConfig
	Storage     StorageConfig
	Worker      WorkerConfig
	Matching    MatchingConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL              string
	APIKey           string
	CollectionPrefix string
}

const (
	BackendQdrant   = "qdrant"
	BackendPgvector = "pgvector"
)

type VectorStoreConfig struct {
	Backend string
}

type GeminiConfig struct {
	APIKey      string
	Model       string
	EmbedModel  string
	Temperature float32
}

type EmbeddingConfig struct {
	Dimension int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	LockTTL  time.Duration
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type WorkerConfig struct {
	CoreWorkers       int
	MaxWorkers        int
	QueueSize         int
	BatchConcurrency  int
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
	RetryMaxDelay     time.Duration
}

type MatchingConfig struct {
	SimilarityThreshold     float64
	OversampleFactor        int
	DefaultLimit            int
	MaxLimit                int
	TaskTimeout             time.Duration
	FallbackScore           int
	InterviewerDefaultScore int
	ResumeDefaultScore      int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Log: LogConfig{
			JSON:  v.GetBool("LOG_JSON"),
			Debug: v.GetBool("LOG_DEBUG"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
		},
		Qdrant: QdrantConfig{
			URL:              v.GetString("QDRANT_URL"),
			APIKey:           v.GetString("QDRANT_API_KEY"),
			CollectionPrefix: v.GetString("QDRANT_COLLECTION_PREFIX"),
		},
		VectorStore: VectorStoreConfig{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString("VECTOR_BACKEND"))),
		},
		Gemini: GeminiConfig{
			APIKey:      v.GetString("GEMINI_API_KEY"),
			Model:       v.GetString("GEMINI_MODEL"),
			EmbedModel:  v.GetString("GEMINI_EMBED_MODEL"),
			Temperature: float32(v.GetFloat64("GEMINI_TEMPERATURE")),
		},
		Embedding: EmbeddingConfig{
			Dimension: v.GetInt("EMBEDDING_DIMENSION"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			LockTTL:  v.GetDuration("SYNC_LOCK_TTL"),
		},
		Storage: StorageConfig{
			UploadPath:  v.GetString("UPLOAD_PATH"),
			MaxFileSize: v.GetInt64("MAX_FILE_SIZE"),
		},
		Worker: WorkerConfig{
			CoreWorkers:       v.GetInt("WORKER_CORE"),
			MaxWorkers:        v.GetInt("WORKER_MAX"),
			QueueSize:         v.GetInt("WORKER_QUEUE_SIZE"),
			BatchConcurrency:  v.GetInt("BATCH_CONCURRENCY"),
			RetryMaxAttempts:  v.GetInt("RETRY_MAX_ATTEMPTS"),
			RetryInitialDelay: v.GetDuration("RETRY_INITIAL_DELAY"),
			RetryMaxDelay:     v.GetDuration("RETRY_MAX_DELAY"),
		},
		Matching: MatchingConfig{
			SimilarityThreshold:     v.GetFloat64("MATCH_SIMILARITY_THRESHOLD"),
			OversampleFactor:        v.GetInt("MATCH_OVERSAMPLE_FACTOR"),
			DefaultLimit:            v.GetInt("MATCH_DEFAULT_LIMIT"),
			MaxLimit:                v.GetInt("MATCH_MAX_LIMIT"),
			TaskTimeout:             v.GetDuration("MATCH_TASK_TIMEOUT"),
			FallbackScore:           v.GetInt("MATCH_FALLBACK_SCORE"),
			InterviewerDefaultScore: v.GetInt("MATCH_INTERVIEWER_DEFAULT_SCORE"),
			ResumeDefaultScore:      v.GetInt("MATCH_RESUME_DEFAULT_SCORE"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_JSON", false)
	v.SetDefault("LOG_DEBUG", false)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "cv_matcher")

	v.SetDefault("QDRANT_URL", "http://localhost:6334")
	v.SetDefault("QDRANT_API_KEY", "")
	v.SetDefault("QDRANT_COLLECTION_PREFIX", "cv_matcher")
	v.SetDefault("VECTOR_BACKEND", BackendQdrant)

	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("GEMINI_EMBED_MODEL", "text-embedding-004")
	v.SetDefault("GEMINI_TEMPERATURE", 0.2)
	v.SetDefault("EMBEDDING_DIMENSION", 768)

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SYNC_LOCK_TTL", "10m")

	v.SetDefault("UPLOAD_PATH", "./uploads")
	v.SetDefault("MAX_FILE_SIZE", 10485760)

	v.SetDefault("WORKER_CORE", 5)
	v.SetDefault("WORKER_MAX", 10)
	v.SetDefault("WORKER_QUEUE_SIZE", 25)
	v.SetDefault("BATCH_CONCURRENCY", 4)
	v.SetDefault("RETRY_MAX_ATTEMPTS", 3)
	v.SetDefault("RETRY_INITIAL_DELAY", "2s")
	v.SetDefault("RETRY_MAX_DELAY", "10s")

	v.SetDefault("MATCH_SIMILARITY_THRESHOLD", 0.7)
	v.SetDefault("MATCH_OVERSAMPLE_FACTOR", 3)
	v.SetDefault("MATCH_DEFAULT_LIMIT", 5)
	v.SetDefault("MATCH_MAX_LIMIT", 10)
	v.SetDefault("MATCH_TASK_TIMEOUT", "30s")
	v.SetDefault("MATCH_FALLBACK_SCORE", 50)
	v.SetDefault("MATCH_INTERVIEWER_DEFAULT_SCORE", 75)
	v.SetDefault("MATCH_RESUME_DEFAULT_SCORE", 1)
}

// Validate rejects settings the matching pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error

	m := c.Matching
	if m.SimilarityThreshold < 0 || m.SimilarityThreshold > 1 {
		errs = append(errs, fmt.Errorf("MATCH_SIMILARITY_THRESHOLD must be within [0,1], got %v", m.SimilarityThreshold))
	}
	if m.OversampleFactor < 2 {
		errs = append(errs, fmt.Errorf("MATCH_OVERSAMPLE_FACTOR must be at least 2, got %d", m.OversampleFactor))
	}
	if m.MaxLimit < 1 {
		errs = append(errs, fmt.Errorf("MATCH_MAX_LIMIT must be positive, got %d", m.MaxLimit))
	}
	if m.DefaultLimit < 1 || m.DefaultLimit > m.MaxLimit {
		errs = append(errs, fmt.Errorf("MATCH_DEFAULT_LIMIT must be within [1,%d], got %d", m.MaxLimit, m.DefaultLimit))
	}
	if m.TaskTimeout <= 0 {
		errs = append(errs, errors.New("MATCH_TASK_TIMEOUT must be positive"))
	}
	for name, score := range map[string]int{
		"MATCH_FALLBACK_SCORE":            m.FallbackScore,
		"MATCH_INTERVIEWER_DEFAULT_SCORE": m.InterviewerDefaultScore,
		"MATCH_RESUME_DEFAULT_SCORE":      m.ResumeDefaultScore,
	} {
		if score < 0 || score > 100 {
			errs = append(errs, fmt.Errorf("%s must be within [0,100], got %d", name, score))
		}
	}

	w := c.Worker
	if w.CoreWorkers < 1 || w.MaxWorkers < w.CoreWorkers {
		errs = append(errs, fmt.Errorf("worker pool needs 1 <= WORKER_CORE <= WORKER_MAX, got %d/%d", w.CoreWorkers, w.MaxWorkers))
	}
	if w.QueueSize < 0 {
		errs = append(errs, fmt.Errorf("WORKER_QUEUE_SIZE must not be negative, got %d", w.QueueSize))
	}
	if w.RetryMaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1, got %d", w.RetryMaxAttempts))
	}

	if c.Embedding.Dimension < 1 {
		errs = append(errs, fmt.Errorf("EMBEDDING_DIMENSION must be positive, got %d", c.Embedding.Dimension))
	}
	switch c.VectorStore.Backend {
	case BackendQdrant, BackendPgvector:
	default:
		errs = append(errs, fmt.Errorf("VECTOR_BACKEND must be %q or %q, got %q", BackendQdrant, BackendPgvector, c.VectorStore.Backend))
	}

	return errors.Join(errs...)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}
