package realtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"

	"github.com/gemsales/voice-trainer/backend/internal/config"
	"github.com/gemsales/voice-trainer/backend/internal/metrics"
)

// ReasonNotConfigured is the degraded reason when no API key is set.
const ReasonNotConfigured = "voice provider not configured"

// Credential is a short-lived secret the browser uses once to open the
// realtime voice channel directly with the provider.
type Credential struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
	Model     string    `json:"model"`
	Voice     string    `json:"voice"`
}

// Result is either a credential or the reason one could not be obtained.
type Result struct {
	Credential *Credential
	Degraded   string
}

// OK reports whether a credential was issued.
func (r Result) OK() bool {
	return r.Credential != nil
}

// Status is the metric and response label for the outcome.
func (r Result) Status() string {
	if r.OK() {
		return "ok"
	}
	return "degraded"
}

// Provisioner issues voice credentials.
type Provisioner interface {
	CreateVoiceCredential(ctx context.Context) Result
}

// Broker provisions ephemeral realtime credentials from OpenAI.
type Broker struct {
	client  openai.Client
	enabled bool
	model   string
	voice   string
	logger  logrus.FieldLogger
}

// NewBroker builds a broker from cfg. Extra options are applied last.
func NewBroker(cfg config.OpenAIConfig, logger logrus.FieldLogger, opts ...option.RequestOption) *Broker {
	return &Broker{
		client:  cfg.NewClient(opts...),
		enabled: cfg.Enabled(),
		model:   cfg.RealtimeModel,
		voice:   cfg.RealtimeVoice,
		logger:  logger.WithField("component", "realtime"),
	}
}

type sessionRequest struct {
	Model string `json:"model"`
	Voice string `json:"voice"`
}

type sessionResponse struct {
	ID           string `json:"id"`
	Model        string `json:"model"`
	Voice        string `json:"voice"`
	ClientSecret struct {
		Value     string `json:"value"`
		ExpiresAt int64  `json:"expires_at"`
	} `json:"client_secret"`
}

// CreateVoiceCredential makes exactly one provisioning attempt. Failures are
// reported as a degraded result, never as an error.
func (b *Broker) CreateVoiceCredential(ctx context.Context) Result {
	result := b.create(ctx)
	metrics.RecordCredential(result.Status())
	return result
}

func (b *Broker) create(ctx context.Context) Result {
	if !b.enabled {
		return Result{Degraded: ReasonNotConfigured}
	}

	var resp sessionResponse
	err := b.client.Post(ctx, "realtime/sessions", sessionRequest{Model: b.model, Voice: b.voice}, &resp)
	if err != nil {
		reason := describe(err)
		b.logger.WithError(err).Warn("ephemeral credential request failed")
		return Result{Degraded: reason}
	}

	secret := strings.TrimSpace(resp.ClientSecret.Value)
	if secret == "" {
		b.logger.WithField("session", resp.ID).Warn("ephemeral credential response had no client secret")
		return Result{Degraded: "voice provider returned no credential"}
	}

	cred := &Credential{
		Value: secret,
		Model: firstNonEmpty(resp.Model, b.model),
		Voice: firstNonEmpty(resp.Voice, b.voice),
	}
	if resp.ClientSecret.ExpiresAt > 0 {
		cred.ExpiresAt = time.Unix(resp.ClientSecret.ExpiresAt, 0).UTC()
	}
	return Result{Credential: cred}
}

func describe(err error) string {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("voice provider returned status %d", apiErr.StatusCode)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "voice provider request cancelled"
	}
	return "voice provider unreachable"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
