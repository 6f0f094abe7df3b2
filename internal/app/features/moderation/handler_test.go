package moderation_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/campusconnect/internal/app/features/moderation"
	gateway "github.com/dalemusser/campusconnect/internal/app/system/moderation"
	"github.com/dalemusser/campusconnect/internal/testutil"
	"go.uber.org/zap"
)

type checkResponse struct {
	IsOffensive bool    `json:"is_offensive"`
	Score       float64 `json:"score"`
	Checked     bool    `json:"checked"`
}

func check(t *testing.T, h *moderation.Handler, body any) (*testutil.ResponseRecorder, checkResponse) {
	t.Helper()
	rec := testutil.NewRecorder()
	h.ServeCheck(rec, testutil.NewJSONRequest(t, http.MethodPost, "/api/moderation/check", body))
	var out checkResponse
	if rec.Code == http.StatusOK {
		rec.Decode(t, &out)
	}
	return rec, out
}

func TestServeCheck(t *testing.T) {
	h := moderation.NewHandler(testutil.NewModeration(t, "loser"), zap.NewNop())

	rec, out := check(t, h, map[string]string{"text": "what a loser"})
	rec.AssertStatus(t, http.StatusOK)
	if !out.IsOffensive || !out.Checked || out.Score != testutil.FlaggedScore {
		t.Errorf("unexpected verdict %+v", out)
	}
	for _, key := range []string{`"is_offensive":true`, `"score":`, `"checked":true`} {
		rec.AssertContains(t, key)
	}

	rec, out = check(t, h, map[string]string{"text": "see you at practice"})
	rec.AssertStatus(t, http.StatusOK)
	if out.IsOffensive {
		t.Errorf("clean text flagged: %+v", out)
	}

	rec, _ = check(t, h, map[string]string{"text": " "})
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertKind(t, "ValidationFailed")
}

func TestServeCheck_FailsOpen(t *testing.T) {
	for name, g := range map[string]*gateway.Gateway{
		"unreachable": testutil.UnreachableModeration(t),
		"disabled":    gateway.New(gateway.Config{}, zap.NewNop()),
	} {
		t.Run(name, func(t *testing.T) {
			h := moderation.NewHandler(g, zap.NewNop())
			rec, out := check(t, h, map[string]string{"text": "what a loser"})
			rec.AssertStatus(t, http.StatusOK)
			if out.IsOffensive || out.Checked {
				t.Errorf("expected unchecked clean verdict, got %+v", out)
			}
		})
	}
}
