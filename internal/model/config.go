package model

import "time"

// Config is the complete plagcheck configuration
type Config struct {
	Analysis    AnalysisConfig    `yaml:"analysis" mapstructure:"analysis"`
	Input       InputConfig       `yaml:"input" mapstructure:"input"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Authority   AuthorityConfig   `yaml:"authority" mapstructure:"authority"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// AnalysisConfig controls the mock analysis
type AnalysisConfig struct {
	Delay    time.Duration `yaml:"delay" mapstructure:"delay"`         // Simulated backend latency
	MinWords int           `yaml:"min_words" mapstructure:"min_words"` // Inputs below this are rejected
	Seed     int64         `yaml:"seed" mapstructure:"seed"`           // 0 = time-seeded
	Policy   string        `yaml:"policy" mapstructure:"policy"`       // Highlight policy: preserve | merge
}

// InputConfig limits what the input layer accepts
type InputConfig struct {
	MaxBytes int64 `yaml:"max_bytes" mapstructure:"max_bytes"`
}

// HTTPConfig controls URL input fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// ServerConfig controls the HTTP UI and API
type ServerConfig struct {
	Addr              string        `yaml:"addr" mapstructure:"addr"`
	ReadTimeout       time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	ResultTTL         time.Duration `yaml:"result_ttl" mapstructure:"result_ttl"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"` // Per client, 0 = unlimited
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	ClientIdleTTL     time.Duration `yaml:"client_idle_ttl" mapstructure:"client_idle_ttl"` // Rate-limit state of a silent client is dropped after this
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LLMConfig configures the optional narrative summary
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // "" disables, "openai"
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"` // OpenAI-compatible endpoint (e.g. Ollama)
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"`             // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
	Color         bool `yaml:"color" mapstructure:"color"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Delay:    2 * time.Second,
			MinWords: 10,
			Policy:   "preserve",
		},
		Input: InputConfig{
			MaxBytes: 10 << 20,
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "plagcheck/0.3 (+https://github.com/ppiankov/plagcheck)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			ShutdownTimeout:   5 * time.Second,
			ResultTTL:         30 * time.Minute,
			RequestsPerSecond: 2,
			Burst:             5,
			ClientIdleTTL:     10 * time.Minute,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"scholar.google.com",
				"doi.org",
				"arxiv.org",
				"pubmed.ncbi.nlm.nih.gov",
				"jstor.org",
			},
			SecondaryDomains: []string{
				"wikipedia.org",
				"britannica.com",
				"springer.com",
				"sciencedirect.com",
			},
			PathPatterns: []PathPattern{
				{Pattern: `^/(article|journal)s?/`, Tier: "secondary"},
				{Pattern: `^/(paper|papers|publication)s?/`, Tier: "primary"},
			},
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 400,
		},
		Output: OutputConfig{
			IncludeFooter: true,
			Color:         true,
		},
	}
}
