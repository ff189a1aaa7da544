package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "insight-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// StoreConfig holds settings for the analytics store.
type StoreConfig struct {
	// Path is the SQLite database file. ":memory:" opens an in-memory
	// database, used by tests.
	Path string `json:"path" yaml:"path"`
}

// ResolveConfig holds settings for address resolution.
type ResolveConfig struct {
	HTTPConfig `yaml:",inline"`

	// RegistryEnabled controls whether the structured provider registry
	// is queried before falling back to web search.
	RegistryEnabled bool `json:"registry_enabled" yaml:"registry_enabled"`

	// WebSearchEnabled controls whether web search fallback is used when
	// the registry yields no usable address.
	WebSearchEnabled bool `json:"web_search_enabled" yaml:"web_search_enabled"`
}

// ChatConfig holds settings for the chat dispatcher.
type ChatConfig struct {
	// DefaultLimit is the number of organizations a ranking query returns
	// when the message does not name a count (default 5).
	DefaultLimit int `json:"default_limit" yaml:"default_limit"`

	// MaxLimit caps the count a ranking query may request (default 20).
	MaxLimit int `json:"max_limit" yaml:"max_limit"`
}

// AIConfig holds settings for components that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// DocQAConfig holds settings for document question answering.
type DocQAConfig struct {
	AIConfig `yaml:",inline"`

	// DocsDir is the directory holding reference documents served to the
	// model as context.
	DocsDir string `json:"docs_dir" yaml:"docs_dir"`
}

// ServerConfig holds settings for the HTTP chat server.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// ShutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM.
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Config groups all component configurations.
type Config struct {
	Store   StoreConfig   `json:"store" yaml:"store"`
	Resolve ResolveConfig `json:"resolve" yaml:"resolve"`
	Chat    ChatConfig    `json:"chat" yaml:"chat"`
	DocQA   DocQAConfig   `json:"docqa" yaml:"docqa"`
	Server  ServerConfig  `json:"server" yaml:"server"`
}
