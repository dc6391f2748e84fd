package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/csheth/whatif/internal/config"
	"github.com/csheth/whatif/internal/llm"
	"github.com/csheth/whatif/internal/response"
	"github.com/csheth/whatif/internal/server"
	"github.com/csheth/whatif/internal/submit"
)

func startService(t *testing.T, deps server.Deps) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ts := httptest.NewServer(server.New(deps).Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func runAskCommand(t *testing.T, endpoint string, asJSON bool, args ...string) (string, string, error) {
	t.Helper()
	cfg = config.Config{Endpoint: endpoint, Layout: "raw"}
	logger = zap.NewNop()
	askJSON = asJSON
	t.Cleanup(func() { askJSON = false })

	var stdout, stderr bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetContext(context.Background())
	err := runAsk(cmd, args)
	return stdout.String(), stderr.String(), err
}

func TestAskPrintsSections(t *testing.T) {
	endpoint := startService(t, server.Deps{Generator: llm.Mock{}})

	stdout, stderr, err := runAskCommand(t, endpoint, false, "cats", "ruled", "the", "world")
	if err != nil {
		t.Fatalf("ask failed: %v (stderr %q)", err, stderr)
	}
	for _, want := range []string{"Scenario\nImagine a world where cats ruled the world.", "Consequences\n  - ", "Analysis\n"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("output missing %q:\n%s", want, stdout)
		}
	}
	if !strings.Contains(stderr, "Asking: cats ruled the world") {
		t.Fatalf("progress line missing: %q", stderr)
	}
}

func TestAskJSON(t *testing.T) {
	endpoint := startService(t, server.Deps{Generator: llm.Mock{}})

	stdout, _, err := runAskCommand(t, endpoint, true, "dogs could talk")
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	var parsed response.Parsed
	if err := json.Unmarshal([]byte(stdout), &parsed); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if parsed.Scenario != "Imagine a world where dogs could talk." || len(parsed.Consequences) != 3 {
		t.Fatalf("unexpected parse: %+v", parsed)
	}
}

func TestAskReportsFailureKind(t *testing.T) {
	endpoint := startService(t, server.Deps{Generator: llm.Mock{}, RatePerMinute: 1})

	if _, _, err := runAskCommand(t, endpoint, false, "first question here"); err != nil {
		t.Fatalf("first ask failed: %v", err)
	}
	_, stderr, err := runAskCommand(t, endpoint, false, "second question here")
	if err != errReported {
		t.Fatalf("expected reported failure, got %v", err)
	}
	if !strings.Contains(stderr, submit.RateLimited.Message()) {
		t.Fatalf("rate limit message missing: %q", stderr)
	}
}

func TestAskValidatesLocally(t *testing.T) {
	_, _, err := runAskCommand(t, "http://127.0.0.1:1", false, "short")
	if err == nil || !strings.Contains(err.Error(), "between 10 and 500") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRenderPlainRawFallback(t *testing.T) {
	raw := "No labels at all."
	if got := renderPlain(response.Parse(raw), raw, response.PolicyRawFallback); got != raw {
		t.Fatalf("unexpected raw fallback %q", got)
	}
	if got := renderPlain(response.Parse(raw), raw, response.PolicyOmitEmpty); got != "" {
		t.Fatalf("omit-empty should print nothing, got %q", got)
	}
}
