package model

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/siherrmann/fingrapher/helper"
	"gopkg.in/yaml.v3"
)

// Graph backends supported by the graph store
const (
	GraphBackendPostgres = "postgres"
	GraphBackendNeo4j    = "neo4j"
	GraphBackendNone     = "none"
)

// AnswerOptions configures a single question answering call
type AnswerOptions struct {
	TopK         int    `json:"top_k" yaml:"top_k"`
	IncludeGraph bool   `json:"include_graph" yaml:"include_graph"`
	TickerFilter string `json:"ticker_filter,omitempty" yaml:"ticker_filter"`
}

// DefaultAnswerOptions returns top 5 vector hits with graph retrieval enabled
func DefaultAnswerOptions() AnswerOptions {
	return AnswerOptions{
		TopK:         5,
		IncludeGraph: true,
	}
}

// Neo4jConfig holds the Neo4j connection settings
type Neo4jConfig struct {
	URI                   string        `yaml:"uri"`
	Username              string        `yaml:"username"`
	Password              string        `yaml:"password"`
	Database              string        `yaml:"database"`
	MaxConnectionPoolSize int           `yaml:"max_connection_pool_size"`
	ConnectionTimeout     time.Duration `yaml:"connection_timeout"`
}

// Validate checks if the configuration is valid
func (c Neo4jConfig) Validate() error {
	if c.URI == "" {
		return helper.NewError("neo4j configuration", fmt.Errorf("uri cannot be empty"))
	}
	if c.Username == "" {
		return helper.NewError("neo4j configuration", fmt.Errorf("username cannot be empty"))
	}
	if c.ConnectionTimeout <= 0 {
		return helper.NewError("neo4j configuration", fmt.Errorf("connection timeout must be positive"))
	}
	return nil
}

// LLMConfig selects the generative model
type LLMConfig struct {
	Model     string `yaml:"model"`
	ServerURL string `yaml:"server_url"`
}

// EmbeddingConfig selects the embedding model
type EmbeddingConfig struct {
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
}

// Config is the complete service configuration
type Config struct {
	Database     helper.DatabaseConfiguration `yaml:"database"`
	GraphBackend string                       `yaml:"graph_backend"`
	Neo4j        Neo4jConfig                  `yaml:"neo4j"`
	LLM          LLMConfig                    `yaml:"llm"`
	Embedding    EmbeddingConfig              `yaml:"embedding"`
	Answer       AnswerOptions                `yaml:"answer"`
	LogLevel     string                       `yaml:"log_level"`
}

// DefaultConfig returns a configuration for a local setup
func DefaultConfig() Config {
	return Config{
		Database: helper.DatabaseConfiguration{
			Host:     "localhost",
			Port:     "5432",
			Database: "fingrapher",
			Username: "postgres",
			Schema:   "public",
			SSLMode:  "disable",
		},
		GraphBackend: GraphBackendPostgres,
		Neo4j: Neo4jConfig{
			URI:                   "bolt://localhost:7687",
			Username:              "neo4j",
			MaxConnectionPoolSize: 50,
			ConnectionTimeout:     30 * time.Second,
		},
		LLM: LLMConfig{
			Model:     "llama3.2",
			ServerURL: "http://localhost:11434",
		},
		Embedding: EmbeddingConfig{
			Model:     "sentence-transformers/all-MiniLM-L6-v2",
			Dimension: 384,
		},
		Answer:   DefaultAnswerOptions(),
		LogLevel: "info",
	}
}

// LoadConfig reads a YAML configuration file on top of the defaults and
// applies environment overrides, including those of a .env file in the
// working directory. An empty path only applies the overrides.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, helper.NewError("read config", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, helper.NewError("parse config", err)
		}
	}

	_ = godotenv.Load()
	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the parts of the configuration used by the selected backends
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}

	switch c.GraphBackend {
	case GraphBackendPostgres, GraphBackendNone:
	case GraphBackendNeo4j:
		if err := c.Neo4j.Validate(); err != nil {
			return err
		}
	default:
		return helper.NewError("configuration", fmt.Errorf("unknown graph backend %q", c.GraphBackend))
	}

	if c.Embedding.Dimension <= 0 {
		return helper.NewError("configuration", fmt.Errorf("embedding dimension must be positive"))
	}
	if c.Answer.TopK <= 0 {
		c.Answer.TopK = DefaultAnswerOptions().TopK
	}

	return nil
}

func (c *Config) applyEnv() {
	override := func(target *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*target = v
		}
	}

	override(&c.Database.Host, "DATABASE_HOST")
	override(&c.Database.Port, "DATABASE_PORT")
	override(&c.Database.Database, "DATABASE_NAME")
	override(&c.Database.Username, "DATABASE_USERNAME")
	override(&c.Database.Password, "DATABASE_PASSWORD")
	override(&c.Database.Schema, "DATABASE_SCHEMA")
	override(&c.Database.SSLMode, "DATABASE_SSL_MODE")
	override(&c.GraphBackend, "GRAPH_BACKEND")
	override(&c.Neo4j.URI, "NEO4J_URI")
	override(&c.Neo4j.Username, "NEO4J_USERNAME")
	override(&c.Neo4j.Password, "NEO4J_PASSWORD")
	override(&c.LLM.Model, "LLM_MODEL")
	override(&c.LLM.ServerURL, "OLLAMA_HOST")
	override(&c.LogLevel, "LOG_LEVEL")
}
