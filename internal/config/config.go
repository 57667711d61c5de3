// Package config provides the configuration schema and loader for pathql:
// the HTTP server, each collaborator backend, and the default beam/depth
// policy. Grounded on MrWong99-glyphoxa's internal/config package shape.
package config

// Config is the root configuration structure.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Graph      GraphConfig      `yaml:"graph"`
	Vector     VectorConfig     `yaml:"vector"`
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Lineage    LineageConfig    `yaml:"lineage"`
	Policy     PolicyConfig     `yaml:"policy"`
	Observe    ObserveConfig    `yaml:"observe"`
}

// ServerConfig holds network and logging settings for the HTTP front-end.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on, e.g. ":8080".
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel names a log verbosity. Valid values: "debug", "info", "warn",
	// "error". Load validates it; nothing else reads it.
	LogLevel string `yaml:"log_level"`

	// AllowedOrigins lists the origins the CORS middleware accepts. "*"
	// accepts any origin.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Backend selects which concrete adapter implements a collaborator
// interface.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendPgvector Backend = "pgvector"
	BackendQdrant   Backend = "qdrant"
	BackendOpenAI   Backend = "openai"
	BackendMemory   Backend = "memory"
)

// GraphConfig configures the graph store collaborator.
type GraphConfig struct {
	Backend     Backend `yaml:"backend"`
	PostgresDSN string  `yaml:"postgres_dsn"`
}

// VectorConfig configures the vector index collaborator. Exactly one of
// PostgresDSN (for pgvector) or QdrantAddr (for Qdrant) applies, selected by
// Backend.
type VectorConfig struct {
	Backend     Backend `yaml:"backend"`
	PostgresDSN string  `yaml:"postgres_dsn"`
	Table       string  `yaml:"table"`
	QdrantAddr  string  `yaml:"qdrant_addr"`
	Collection  string  `yaml:"collection"`
}

// EmbedderConfig configures the embedding model collaborator.
type EmbedderConfig struct {
	Backend   Backend `yaml:"backend"`
	APIKey    string  `yaml:"api_key"`
	BaseURL   string  `yaml:"base_url"`
	Model     string  `yaml:"model"`
	Dimension int     `yaml:"dimension"`
}

// EnrichmentConfig configures the optional content-enrichment object store.
type EnrichmentConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UseSSL          bool   `yaml:"use_ssl"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Concurrency     int    `yaml:"concurrency"`
	DefaultLimit    int    `yaml:"default_limit"`
}

// LineageConfig configures the default lineage scoping behavior.
type LineageConfig struct {
	// DefaultDirection names a lineage direction. Valid values: "ancestors",
	// "descendants", "both". Load validates it; the HTTP handler does not read
	// it, and a request whose lineage block omits a direction uses ancestors.
	DefaultDirection string `yaml:"default_direction"`
}

// PolicyConfig holds the beam/depth/deadline policy settings. Load fills
// unset fields with defaults. The engine applies DeadlineSeconds and
// FallbackPenalty; K, KExplore and MaxDepth are not applied, and queries use
// the engine's built-in beam widths and depth cap.
type PolicyConfig struct {
	K               int     `yaml:"k"`
	KExplore        int     `yaml:"k_explore"`
	MaxDepth        int     `yaml:"max_depth"`
	DeadlineSeconds float64 `yaml:"deadline_seconds"`
	FallbackPenalty float64 `yaml:"fallback_penalty"`
}

// ObserveConfig configures metrics export.
type ObserveConfig struct {
	MetricsEnabled bool   `yaml:"metrics_enabled"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	ServiceName    string `yaml:"service_name"`
}

// logLevels is the closed set of accepted Server.LogLevel values.
var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// logLevelValid reports whether LogLevel is empty or one of the recognised levels.
func (s ServerConfig) logLevelValid() bool {
	return s.LogLevel == "" || logLevels[s.LogLevel]
}

var lineageDirections = map[string]bool{"": true, "ancestors": true, "descendants": true, "both": true}

func (l LineageConfig) directionValid() bool {
	return lineageDirections[l.DefaultDirection]
}

var backends = map[string]bool{
	string(BackendPostgres): true, string(BackendPgvector): true,
	string(BackendQdrant): true, string(BackendOpenAI): true, string(BackendMemory): true, "": true,
}

func validBackend(b Backend) bool { return backends[string(b)] }
