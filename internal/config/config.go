package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Config aggregates every configuration area of the service.
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Metrics MetricsConfig
	OpenAI  OpenAIConfig
	Grading GradingConfig
	AI      AIConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	metrics, err := loadMetricsConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	grading, err := loadGradingConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		Log:     loadLogConfig(),
		Metrics: metrics,
		OpenAI:  loadOpenAIConfig(),
		Grading: grading,
		AI:      ai,
	}, nil
}

// ServerConfig describes the HTTP listener and on-disk locations.
type ServerConfig struct {
	Addr         string
	ReportsDir   string
	PersonasFile string
	MaxUploadMB  int
}

// MaxUploadBytes is the multipart limit applied to grade requests.
func (c ServerConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func loadServerConfig() (ServerConfig, error) {
	addr, err := parseAddr(os.Getenv("PORT"))
	if err != nil {
		return ServerConfig{}, err
	}

	maxUpload := 32
	if override, err := parseOptionalIntEnv("MAX_UPLOAD_MB"); err != nil {
		return ServerConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return ServerConfig{}, fmt.Errorf("invalid MAX_UPLOAD_MB value %d: must be positive", *override)
		}
		maxUpload = *override
	}

	return ServerConfig{
		Addr:         addr,
		ReportsDir:   getEnvOrDefault("REPORTS_DIR", "reports"),
		PersonasFile: strings.TrimSpace(os.Getenv("PERSONAS_FILE")),
		MaxUploadMB:  maxUpload,
	}, nil
}

func parseAddr(raw string) (string, error) {
	port := strings.TrimSpace(raw)
	if port == "" {
		port = "5000"
	}

	if strings.Contains(port, ":") {
		// Accept ":5000" or "127.0.0.1:5000" verbatim.
		return port, nil
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}

	return ":" + port, nil
}

// LogConfig controls the logrus logger.
type LogConfig struct {
	Level  string
	Format string
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Format: getEnvOrDefault("LOG_FORMAT", "text"),
	}
}

// MetricsConfig toggles the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

func loadMetricsConfig() (MetricsConfig, error) {
	enabled, err := parseBoolEnv("METRICS_ENABLED", true)
	if err != nil {
		return MetricsConfig{}, err
	}
	return MetricsConfig{
		Enabled: enabled,
		Path:    getEnvOrDefault("METRICS_PATH", "/metrics"),
	}, nil
}

// OpenAIConfig covers the realtime voice, transcription and chat endpoints.
type OpenAIConfig struct {
	APIKey                string
	BaseURL               string
	RealtimeModel         string
	RealtimeVoice         string
	TranscriptionModel    string
	TranscriptionLanguage string
}

// Enabled reports whether an API key was supplied.
func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != ""
}

// NewClient builds an OpenAI client. Retries are disabled: every provider call
// is a single attempt and failures surface to the caller.
func (c OpenAIConfig) NewClient(opts ...option.RequestOption) openai.Client {
	base := []option.RequestOption{
		option.WithAPIKey(c.APIKey),
		option.WithBaseURL(c.BaseURL + "/"),
		option.WithMaxRetries(0),
	}
	return openai.NewClient(append(base, opts...)...)
}

func loadOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		APIKey:                strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		BaseURL:               strings.TrimRight(getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"), "/"),
		RealtimeModel:         getEnvOrDefault("OPENAI_REALTIME_MODEL", "gpt-realtime-mini"),
		RealtimeVoice:         getEnvOrDefault("OPENAI_REALTIME_VOICE", "alloy"),
		TranscriptionModel:    getEnvOrDefault("OPENAI_TRANSCRIBE_MODEL", "whisper-1"),
		TranscriptionLanguage: getEnvOrDefault("OPENAI_TRANSCRIBE_LANGUAGE", "en"),
	}
}

// Grading providers.
const (
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"
)

// GradingConfig selects the language model used to score sessions.
type GradingConfig struct {
	Provider string
	Model    string
}

func loadGradingConfig() (GradingConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("GRADING_PROVIDER", ProviderOpenAI))
	switch provider {
	case ProviderOpenAI, ProviderArk:
	default:
		return GradingConfig{}, fmt.Errorf("invalid GRADING_PROVIDER value %q: want %s or %s", provider, ProviderOpenAI, ProviderArk)
	}

	return GradingConfig{
		Provider: provider,
		Model:    getEnvOrDefault("GRADING_MODEL", "gpt-4o-mini"),
	}, nil
}

// AIConfig describes the Ark model used when GRADING_PROVIDER=ark.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required Ark credentials were supplied.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds an Ark chat model from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: set ARK_API_KEY + Model or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("Model")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
