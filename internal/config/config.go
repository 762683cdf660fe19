package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var (
	ErrMissingRequired = errors.New("missing required configuration")
	ErrInvalid         = errors.New("invalid configuration")
)

type Config struct {
	// Discovery
	WatchDirectory  string   `envconfig:"WATCH_DIRECTORY"`
	FilePatterns    []string `envconfig:"FILE_PATTERNS" default:"*.md,*.docx,*.txt"`
	ExcludePatterns []string `envconfig:"EXCLUDE_PATTERNS" default:"*.tmp,~*"`
	MaxFileSize     int64    `envconfig:"MAX_FILE_SIZE" default:"10485760"` // 10MB
	HoursLookback   int      `envconfig:"HOURS_LOOKBACK" default:"24"`

	// Flowise
	FlowiseAPIURL   string `envconfig:"FLOWISE_API_URL"`
	FlowiseAPIKey   string `envconfig:"FLOWISE_API_KEY"`
	DocumentStoreID string `envconfig:"DOCUMENT_STORE_ID"`

	// Document processing
	ChunkSize             int               `envconfig:"CHUNK_SIZE" default:"2000"`
	ChunkOverlap          int               `envconfig:"CHUNK_OVERLAP" default:"400"`
	DocumentLoader        string            `envconfig:"DOCUMENT_LOADER" default:"plainText"`
	TextSplitter          string            `envconfig:"TEXT_SPLITTER" default:"recursiveCharacterTextSplitter"`
	TextSplitterOverrides map[string]string `envconfig:"TEXT_SPLITTER_OVERRIDES" default:".md:markdownTextSplitter"`
	TokenEncoding         string            `envconfig:"TOKEN_ENCODING" default:"gpt2"`

	// Vector store and embeddings
	VectorStoreName      string `envconfig:"VECTOR_STORE_NAME" default:"pinecone"`
	VectorStoreNamespace string `envconfig:"VECTOR_STORE_NAMESPACE" default:"default"`
	EmbeddingName        string `envconfig:"EMBEDDING_NAME" default:"openAIEmbeddings"`
	RecordManagerName    string `envconfig:"RECORD_MANAGER_NAME" default:"postgresRecordManager"`

	// Logging
	LogLevel   string `envconfig:"LOG_LEVEL" default:"INFO"`
	LogFile    string `envconfig:"LOG_FILE" default:"document_processor.log"`
	LogFormat  string `envconfig:"LOG_FORMAT" default:"json"`
	ReportFile string `envconfig:"REPORT_FILE"`
}

// Load reads the given .env files (missing files are ignored, since the
// variables may already be set in the shell) and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	cfg.FilePatterns = trimAll(cfg.FilePatterns)
	cfg.ExcludePatterns = trimAll(cfg.ExcludePatterns)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.WatchDirectory == "" {
		return fmt.Errorf("%w: WATCH_DIRECTORY", ErrMissingRequired)
	}
	if c.FlowiseAPIURL == "" {
		return fmt.Errorf("%w: FLOWISE_API_URL", ErrMissingRequired)
	}
	if c.FlowiseAPIKey == "" {
		return fmt.Errorf("%w: FLOWISE_API_KEY", ErrMissingRequired)
	}
	if c.DocumentStoreID == "" {
		return fmt.Errorf("%w: DOCUMENT_STORE_ID", ErrMissingRequired)
	}
	if len(c.FilePatterns) == 0 {
		return fmt.Errorf("%w: FILE_PATTERNS is empty", ErrInvalid)
	}
	if c.HoursLookback <= 0 {
		return fmt.Errorf("%w: HOURS_LOOKBACK must be positive", ErrInvalid)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: CHUNK_SIZE must be positive", ErrInvalid)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: CHUNK_OVERLAP must be in [0, CHUNK_SIZE)", ErrInvalid)
	}
	return nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
