// Package moderation classifies free text for toxicity by calling a remote
// text-classification endpoint.
//
// The gateway fails open: when the classifier is disabled, unconfigured,
// slow or broken, content is treated as clean and the failure is logged.
package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/dalemusser/campusconnect/internal/app/system/metrics"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// ToxicLabel is the classifier label whose score is compared with thresholds.
const ToxicLabel = "toxic"

// Contexts used for metrics and logging.
const (
	ContextMessage = "message"
	ContextRequest = "request"
	ContextCheck   = "check"
)

// Config controls the gateway.
type Config struct {
	Enabled          bool
	Endpoint         string
	APIKey           string
	Timeout          time.Duration
	MessageThreshold float64
	RequestThreshold float64
}

// Verdict is the result of a moderation check.
type Verdict struct {
	Toxic     bool    `json:"toxic"`
	Score     float64 `json:"score"`
	Threshold float64 `json:"threshold"`
	// Checked is false when the classifier was not consulted or failed.
	Checked bool `json:"checked"`
}

// Gateway talks to the classifier.
type Gateway struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger
}

// New builds a Gateway. The API key is sent as a bearer token.
func New(cfg Config, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	base := &http.Client{Timeout: cfg.Timeout}
	client := base
	if cfg.APIKey != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.APIKey,
			TokenType:   "Bearer",
		}))
		client.Timeout = cfg.Timeout
	}
	return &Gateway{cfg: cfg, client: client, log: logger}
}

// Active reports whether the classifier will be consulted at all.
func (g *Gateway) Active() bool {
	return g != nil && g.cfg.Enabled && g.cfg.Endpoint != "" && g.cfg.APIKey != ""
}

// MessageThreshold is the score above which a chat message is redacted.
func (g *Gateway) MessageThreshold() float64 { return g.cfg.MessageThreshold }

// RequestThreshold is the score above which a request is rejected.
func (g *Gateway) RequestThreshold() float64 { return g.cfg.RequestThreshold }

// CheckMessage classifies chat text against the message threshold.
func (g *Gateway) CheckMessage(ctx context.Context, text string) Verdict {
	return g.Check(ctx, ContextMessage, text, g.cfg.MessageThreshold)
}

// CheckRequest classifies request text against the request threshold.
func (g *Gateway) CheckRequest(ctx context.Context, text string) Verdict {
	return g.Check(ctx, ContextRequest, text, g.cfg.RequestThreshold)
}

// Check classifies text against threshold. It never fails: gateway errors
// produce a clean, unchecked verdict.
func (g *Gateway) Check(ctx context.Context, kind, text string, threshold float64) Verdict {
	v := Verdict{Threshold: threshold}
	if strings.TrimSpace(text) == "" {
		return v
	}
	if !g.Active() {
		metrics.ModerationChecks.WithLabelValues(kind, metrics.OutcomeSkipped).Inc()
		return v
	}

	score, err := g.Score(ctx, text)
	if err != nil {
		metrics.ModerationChecks.WithLabelValues(kind, metrics.OutcomeError).Inc()
		g.log.Warn("moderation check failed; allowing content",
			zap.String("context", kind),
			zap.Error(err))
		return v
	}

	v.Checked = true
	v.Score = score
	v.Toxic = score > threshold
	if v.Toxic {
		metrics.ModerationChecks.WithLabelValues(kind, metrics.OutcomeToxic).Inc()
	} else {
		metrics.ModerationChecks.WithLabelValues(kind, metrics.OutcomeClean).Inc()
	}
	return v
}

type prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Score returns the toxic-label score for text. A response without the
// toxic label scores 0.
func (g *Gateway) Score(ctx context.Context, text string) (float64, error) {
	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return 0, apperr.Wrap(apperr.UpstreamUnavailable, "encode moderation request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, apperr.Wrap(apperr.UpstreamUnavailable, "build moderation request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.client.Do(req)
	metrics.ModerationLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, apperr.Wrap(apperr.UpstreamUnavailable, "call moderation endpoint", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, apperr.Wrap(apperr.UpstreamUnavailable, "read moderation response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, apperr.New(apperr.UpstreamUnavailable,
			fmt.Sprintf("moderation endpoint returned %d", resp.StatusCode))
	}

	preds, err := decodePredictions(raw)
	if err != nil {
		return 0, apperr.Wrap(apperr.UpstreamUnavailable, "decode moderation response", err)
	}
	return toxicScore(preds), nil
}

// decodePredictions accepts both the batched [[...]] and flat [...] shapes.
func decodePredictions(raw []byte) ([]prediction, error) {
	var nested [][]prediction
	if err := json.Unmarshal(raw, &nested); err == nil {
		var out []prediction
		for _, row := range nested {
			out = append(out, row...)
		}
		return out, nil
	}
	var flat []prediction
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	return flat, nil
}

func toxicScore(preds []prediction) float64 {
	for _, p := range preds {
		if strings.EqualFold(p.Label, ToxicLabel) {
			return p.Score
		}
	}
	return 0
}
