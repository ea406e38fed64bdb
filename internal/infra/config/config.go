package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Agent   AgentConfig   `yaml:"agent"`
	LLM     LLMConfig     `yaml:"llm"`
	Logger  LoggerConfig  `yaml:"logger"`
	Tracer  TracerConfig  `yaml:"tracer"`
	Threads ThreadsConfig `yaml:"threads"`
	Tasks   TasksConfig   `yaml:"tasks"`
	Profile ProfileConfig `yaml:"profile"`
	Skills  SkillsConfig  `yaml:"skills"`
}

// AgentConfig holds orchestrator and worker loop settings.
type AgentConfig struct {
	MaxIterations   int                `yaml:"max_iterations"`
	MaxHistory      int                `yaml:"max_history"`
	DelegateTimeout time.Duration      `yaml:"delegate_timeout"`
	ToolRateLimit   int                `yaml:"tool_rate_limit"` // calls per minute per tool, 0 disables
	Compression     CompressionConfig  `yaml:"compression"`
	ContextGuard    ContextGuardConfig `yaml:"context_guard"`
}

// CompressionConfig controls history compression behavior.
type CompressionConfig struct {
	Enabled    bool `yaml:"enabled"`
	Threshold  int  `yaml:"threshold"`
	KeepRecent int  `yaml:"keep_recent"`
}

// ContextGuardConfig controls proactive context window overflow prevention.
type ContextGuardConfig struct {
	Enabled       bool    `yaml:"enabled"`
	MaxTokens     int     `yaml:"max_tokens"`
	ReserveTokens int     `yaml:"reserve_tokens"`
	SafetyMargin  float64 `yaml:"safety_margin"`
}

// LLMConfig holds LLM provider settings.
type LLMConfig struct {
	DefaultProvider string               `yaml:"default_provider"`
	Providers       []ProviderConfig     `yaml:"providers"`
	CircuitBreaker  CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// ProviderConfig holds settings for a single LLM provider.
type ProviderConfig struct {
	Name        string        `yaml:"name"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	ConnTimeout time.Duration `yaml:"conn_timeout"`
	RespTimeout time.Duration `yaml:"resp_timeout"`
	Pool        PoolConfig    `yaml:"pool"`
}

// PoolConfig holds HTTP connection pool settings for LLM providers.
type PoolConfig struct {
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `yaml:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
}

// CircuitBreakerConfig holds circuit breaker settings for LLM providers.
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
	Endpoint string `yaml:"endpoint"`
}

// ThreadsConfig holds conversation checkpoint settings.
type ThreadsConfig struct {
	Store        string        `yaml:"store"` // "memory" or "sqlite"
	Path         string        `yaml:"path"`
	MaxAge       time.Duration `yaml:"max_age"`
	ReapSchedule string        `yaml:"reap_schedule"`
}

// TasksConfig holds task protocol settings.
type TasksConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	MaxAge       time.Duration `yaml:"max_age"`
	ReapSchedule string        `yaml:"reap_schedule"`
}

// ProfileConfig holds user profile settings.
type ProfileConfig struct {
	Path                string `yaml:"path"`
	CompletionThreshold int    `yaml:"completion_threshold"`
}

// SkillsConfig holds prompt skill library settings.
type SkillsConfig struct {
	Dir string `yaml:"dir"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Agent: AgentConfig{
			MaxIterations:   10,
			MaxHistory:      40,
			DelegateTimeout: 120 * time.Second,
			ToolRateLimit:   60,
			Compression: CompressionConfig{
				Enabled:    true,
				Threshold:  30,
				KeepRecent: 10,
			},
			ContextGuard: ContextGuardConfig{
				Enabled:       true,
				MaxTokens:     128000,
				ReserveTokens: 1000,
				SafetyMargin:  0.15,
			},
		},
		LLM: LLMConfig{
			DefaultProvider: "openai",
			Providers: []ProviderConfig{
				{
					Name:        "openai",
					BaseURL:     "https://api.openai.com/v1",
					Model:       "gpt-4o-mini",
					ConnTimeout: 10 * time.Second,
					RespTimeout: 120 * time.Second,
				},
			},
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:     true,
				MaxFailures: 5,
				Timeout:     30 * time.Second,
				Interval:    60 * time.Second,
			},
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
		Threads: ThreadsConfig{
			Store:        "memory",
			MaxAge:       24 * time.Hour,
			ReapSchedule: "@hourly",
		},
		Tasks: TasksConfig{
			Timeout:      180 * time.Second,
			MaxAge:       time.Hour,
			ReapSchedule: "30m",
		},
		Profile: ProfileConfig{
			CompletionThreshold: 80,
		},
	}
}

// Load reads a YAML config from path, applies env overrides and defaults,
// and decrypts any "enc:" secrets when AUTOCHAT_CONFIG_KEY is set. A
// missing file is not an error; defaults plus env overrides apply.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	if err := validatePermissions(absPath); err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyEnvOverrides(cfg)

	passphrase := os.Getenv("AUTOCHAT_CONFIG_KEY")
	if passphrase != "" {
		if err := decryptSecrets(cfg, passphrase); err != nil {
			return nil, fmt.Errorf("decrypt secrets: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvOverrides maps AUTOCHAT_* env vars to config fields.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AUTOCHAT_LLM_DEFAULT_PROVIDER"); v != "" {
		cfg.LLM.DefaultProvider = v
	}
	if v := os.Getenv("AUTOCHAT_LLM_API_KEY"); v != "" {
		for i := range cfg.LLM.Providers {
			if cfg.LLM.Providers[i].Name == cfg.LLM.DefaultProvider {
				cfg.LLM.Providers[i].APIKey = v
			}
		}
	}
	if v := os.Getenv("AUTOCHAT_LLM_MODEL"); v != "" {
		for i := range cfg.LLM.Providers {
			if cfg.LLM.Providers[i].Name == cfg.LLM.DefaultProvider {
				cfg.LLM.Providers[i].Model = v
			}
		}
	}
	if v := os.Getenv("AUTOCHAT_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("AUTOCHAT_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("AUTOCHAT_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("AUTOCHAT_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
	if v := os.Getenv("AUTOCHAT_THREADS_STORE"); v != "" {
		cfg.Threads.Store = v
	}
	if v := os.Getenv("AUTOCHAT_THREADS_PATH"); v != "" {
		cfg.Threads.Path = v
	}
	if v := os.Getenv("AUTOCHAT_PROFILE_PATH"); v != "" {
		cfg.Profile.Path = v
	}
	if v := os.Getenv("AUTOCHAT_PROFILE_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			cfg.Profile.CompletionThreshold = n
		}
	}
	if v := os.Getenv("AUTOCHAT_SKILLS_DIR"); v != "" {
		cfg.Skills.Dir = v
	}
	if v := os.Getenv("AUTOCHAT_AGENT_MAX_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Agent.MaxIterations = n
		}
	}
	if v := os.Getenv("AUTOCHAT_AGENT_DELEGATE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Agent.DelegateTimeout = d
		}
	}
}

// Validate checks the config for invalid combinations.
func Validate(cfg *Config) error {
	if cfg.Agent.MaxIterations <= 0 {
		return fmt.Errorf("agent.max_iterations must be positive")
	}
	if cfg.LLM.DefaultProvider == "" {
		return fmt.Errorf("llm.default_provider is required")
	}
	found := false
	for _, p := range cfg.LLM.Providers {
		if p.Name == "" {
			return fmt.Errorf("llm.providers entries require a name")
		}
		if p.Name == cfg.LLM.DefaultProvider {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("llm.default_provider %q has no matching provider entry", cfg.LLM.DefaultProvider)
	}
	switch cfg.Threads.Store {
	case "", "memory":
	case "sqlite":
		if cfg.Threads.Path == "" {
			return fmt.Errorf("threads.path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown threads.store %q (want memory or sqlite)", cfg.Threads.Store)
	}
	if t := cfg.Profile.CompletionThreshold; t < 0 || t > 100 {
		return fmt.Errorf("profile.completion_threshold must be within 0..100")
	}
	if m := cfg.Agent.ContextGuard.SafetyMargin; m < 0 || m > 0.5 {
		return fmt.Errorf("agent.context_guard.safety_margin must be within 0..0.5")
	}
	return nil
}

const encPrefix = "enc:"

// decryptSecrets replaces "enc:" values in the config with their plaintext.
func decryptSecrets(cfg *Config, passphrase string) error {
	for i := range cfg.LLM.Providers {
		key := cfg.LLM.Providers[i].APIKey
		if !strings.HasPrefix(key, encPrefix) {
			continue
		}
		decrypted, err := DecryptValue(strings.TrimPrefix(key, encPrefix), passphrase)
		if err != nil {
			return fmt.Errorf("provider %q api_key: %w", cfg.LLM.Providers[i].Name, err)
		}
		cfg.LLM.Providers[i].APIKey = decrypted
	}
	return nil
}

// EncryptValue encrypts a plaintext value with AES-256-GCM using a passphrase.
func EncryptValue(plaintext, passphrase string) (string, error) {
	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := deriveKey(passphrase, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create gcm: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	// Format: hex(salt) + ":" + hex(nonce+ciphertext)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(ciphertext), nil
}

// DecryptValue decrypts an AES-256-GCM encrypted value.
func DecryptValue(encrypted, passphrase string) (string, error) {
	parts := strings.SplitN(encrypted, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid encrypted format")
	}

	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("decode salt: %w", err)
	}

	data, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}

	key := deriveKey(passphrase, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create gcm: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}

	return string(plaintext), nil
}

// deriveKey uses Argon2id to derive a 32-byte key from passphrase + salt.
func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, 32)
}

// validatePermissions checks the config file has restrictive permissions.
func validatePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	mode := info.Mode().Perm()
	// Allow 0600 and 0644 (readable by others but not writable)
	if mode&0o077 > 0o044 {
		return fmt.Errorf("config file %s has insecure permissions %o (want 0600 or 0644)", path, mode)
	}
	return nil
}
