package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/campusconnect/internal/app/system/moderation"
	"go.uber.org/zap"
)

// FlaggedScore is the toxic score the fake classifier returns for flagged text.
const FlaggedScore = 0.93

// NewModeration returns a gateway backed by a fake classifier. Text that
// contains any of flagged (case-insensitive) scores FlaggedScore, everything
// else 0.02.
func NewModeration(t *testing.T, flagged ...string) *moderation.Gateway {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Inputs string `json:"inputs"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		score := 0.02
		lower := strings.ToLower(in.Inputs)
		for _, f := range flagged {
			if strings.Contains(lower, strings.ToLower(f)) {
				score = FlaggedScore
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([][]map[string]any{{
			{"label": "toxic", "score": score},
			{"label": "insult", "score": score / 2},
		}})
	}))
	t.Cleanup(srv.Close)
	return moderation.New(moderation.Config{
		Enabled:          true,
		Endpoint:         srv.URL,
		APIKey:           "test-key",
		MessageThreshold: 0.5,
		RequestThreshold: 0.7,
	}, zap.NewNop())
}

// UnreachableModeration returns a gateway whose classifier always fails.
func UnreachableModeration(t *testing.T) *moderation.Gateway {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	return moderation.New(moderation.Config{
		Enabled:          true,
		Endpoint:         srv.URL,
		APIKey:           "test-key",
		MessageThreshold: 0.5,
		RequestThreshold: 0.7,
	}, zap.NewNop())
}
