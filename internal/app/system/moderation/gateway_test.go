package moderation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func cfgFor(url string) Config {
	return Config{
		Enabled:          true,
		Endpoint:         url,
		APIKey:           "test-key",
		Timeout:          2 * time.Second,
		MessageThreshold: 0.5,
		RequestThreshold: 0.7,
	}
}

func TestScore_SendsBearerAndParsesNested(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello there", body["inputs"])
		_, _ = w.Write([]byte(`[[{"label":"toxic","score":0.91},{"label":"insult","score":0.4}]]`))
	})

	g := New(cfgFor(srv.URL), nil)
	score, err := g.Score(context.Background(), "hello there")
	require.NoError(t, err)
	assert.InDelta(t, 0.91, score, 1e-9)
}

func TestScore_FlatShapeAndCaseInsensitiveLabel(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"label":"TOXIC","score":0.3}]`))
	})

	score, err := New(cfgFor(srv.URL), nil).Score(context.Background(), "x")
	require.NoError(t, err)
	assert.InDelta(t, 0.3, score, 1e-9)
}

func TestScore_MissingToxicLabelIsZero(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[{"label":"obscene","score":0.99}]]`))
	})

	score, err := New(cfgFor(srv.URL), nil).Score(context.Background(), "x")
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestScore_Non200IsUpstreamUnavailable(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := New(cfgFor(srv.URL), nil).Score(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, apperr.UpstreamUnavailable, apperr.KindOf(err))
}

func TestCheckMessage_ScoreMustExceedThreshold(t *testing.T) {
	tests := []struct {
		name      string
		score     string
		wantToxic bool
	}{
		{"equal", "0.5", false},
		{"just above", "0.5001", true},
		{"below", "0.49", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`[[{"label":"toxic","score":` + tt.score + `}]]`))
			})

			v := New(cfgFor(srv.URL), nil).CheckMessage(context.Background(), "borderline")
			assert.True(t, v.Checked)
			assert.Equal(t, tt.wantToxic, v.Toxic)
			assert.Equal(t, 0.5, v.Threshold)
		})
	}
}

func TestCheckRequest_UsesStricterThreshold(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[{"label":"toxic","score":0.6}]]`))
	})

	g := New(cfgFor(srv.URL), nil)
	assert.True(t, g.CheckMessage(context.Background(), "meh").Toxic)
	assert.False(t, g.CheckRequest(context.Background(), "meh").Toxic)
}

func TestCheck_FailsOpen(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	v := New(cfgFor(srv.URL), nil).CheckMessage(context.Background(), "anything")
	assert.False(t, v.Toxic)
	assert.False(t, v.Checked)
}

func TestCheck_TimeoutFailsOpen(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`[[{"label":"toxic","score":1}]]`))
	})

	cfg := cfgFor(srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	v := New(cfg, nil).CheckRequest(context.Background(), "slow")
	assert.False(t, v.Toxic)
	assert.False(t, v.Checked)
}

func TestCheck_InactiveSkipsCall(t *testing.T) {
	called := false
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	cfg := cfgFor(srv.URL)
	cfg.APIKey = ""
	g := New(cfg, nil)
	assert.False(t, g.Active())
	assert.False(t, g.CheckMessage(context.Background(), "hi").Toxic)

	cfg = cfgFor(srv.URL)
	cfg.Enabled = false
	assert.False(t, New(cfg, nil).CheckMessage(context.Background(), "hi").Toxic)
	assert.False(t, called)
}

func TestCheck_BlankTextNotSent(t *testing.T) {
	called := false
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	v := New(cfgFor(srv.URL), nil).CheckMessage(context.Background(), "   ")
	assert.False(t, v.Toxic)
	assert.False(t, called)
}
