package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zen-systems/claimroute/pkg/claim"
	"github.com/zen-systems/claimroute/pkg/config"
	"github.com/zen-systems/claimroute/pkg/router"
)

func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
	for _, key := range []string{
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GOOGLE_API_KEY", "DEEPSEEK_API_KEY",
		"CLAIMROUTE_ADVANCED_OPTIMIZATION", "CLAIMROUTE_OPTIMIZATION_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeWithLog(t, args...)
	return out, err
}

// executeWithLog also returns what the command logged to stderr.
func executeWithLog(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRouteCommandPrintsResult(t *testing.T) {
	isolate(t)
	path := writeFile(t, "claim.json", `{"id":"clm-1","procedures":[{"code":"D4341","fee":240}]}`)

	out, err := execute(t, "route", path)
	require.NoError(t, err)

	var result router.RoutingResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, router.RouteDefault, result.Route.Type)
	assert.True(t, result.OptimizationApplied)
	assert.Equal(t, router.PlaceholderNarrative, result.OptimizedClaim.Narrative)
	assert.Empty(t, result.OriginalClaim.Narrative)
}

func TestRouteCommandNoOptimize(t *testing.T) {
	isolate(t)
	path := writeFile(t, "claim.yaml", "id: clm-2\nprocedures:\n  - code: D4341\n    fee: 240\n")

	out, err := execute(t, "route", "--no-optimize", path)
	require.NoError(t, err)

	var result router.RoutingResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.OptimizationApplied)
	assert.Empty(t, result.OptimizedClaim.Narrative)
}

func TestRouteCommandDraftsWithMockAdapter(t *testing.T) {
	isolate(t)
	cfgPath := writeFile(t, "config.yaml", "narrative:\n  adapter: mock\n  model: mock-1\n")
	path := writeFile(t, "claim.json", `{"id":"clm-3","payer_id":"Cigna","procedures":[{"code":"D1110","fee":95}]}`)

	out, err := execute(t, "--config", cfgPath, "route", "--draft", path)
	require.NoError(t, err)

	var result router.RoutingResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, strings.HasPrefix(result.OptimizedClaim.Narrative, "mock narrative:"))
}

func TestRouteCommandRejectsInvalidClaim(t *testing.T) {
	isolate(t)
	path := writeFile(t, "claim.json", `{"id":"empty","procedures":[]}`)

	_, err := execute(t, "route", path)
	assert.True(t, claim.IsValidation(err), "got %v", err)
}

func TestRouteCommandRejectsBadLevel(t *testing.T) {
	isolate(t)
	t.Setenv("CLAIMROUTE_OPTIMIZATION_LEVEL", "extreme")
	path := writeFile(t, "claim.json", `{"id":"c","procedures":[{"code":"D1110","fee":1}]}`)

	_, err := execute(t, "route", path)
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestBatchCommand(t *testing.T) {
	isolate(t)
	path := writeFile(t, "claims.yaml", `
- id: a
  procedures: [{code: D1110, fee: 95}]
- id: b
  procedures: []
- id: c
  requires_preauth: true
  procedures: [{code: D2740, fee: 900}]
`)

	out, err := execute(t, "batch", "--workers", "2", path)
	require.NoError(t, err)

	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "PREAUTHORIZATION")

	start := strings.Index(out, "{")
	require.GreaterOrEqual(t, start, 0)
	var snap router.MetricsSnapshot
	require.NoError(t, json.Unmarshal([]byte(out[start:]), &snap))
	assert.Equal(t, int64(2), snap.TotalClaims)
	assert.Equal(t, int64(1), snap.RoutedClaims[router.RoutePreauthorization])
}

func TestRouteBatchKeepsOrder(t *testing.T) {
	r, err := router.New(config.DefaultEngineConfig())
	require.NoError(t, err)

	claims := make([]*claim.Claim, 40)
	for i := range claims {
		claims[i] = &claim.Claim{ID: string(rune('A' + i%26)), Procedures: []claim.Procedure{{Code: "D1110", Fee: float64(i)}}}
	}
	claims[7] = nil

	results := routeBatch(context.Background(), r, nil, claims, 0)
	require.Len(t, results, len(claims))
	for i, res := range results {
		if i == 7 {
			assert.True(t, claim.IsValidation(res.Err))
			continue
		}
		require.NoError(t, res.Err)
		assert.Equal(t, claims[i].ID, res.ClaimID)
		assert.Same(t, claims[i], res.Result.OriginalClaim)
	}
	assert.Equal(t, int64(len(claims)-1), r.Metrics().TotalClaims)
}

func TestRoutesCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, "routes")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[1], "EMERGENCY"))
	assert.True(t, strings.HasPrefix(lines[5], "DEFAULT"))
	assert.Contains(t, lines[4], "72")
}

func TestModelsCommand(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	out, err := execute(t, "models")
	require.NoError(t, err)
	assert.Regexp(t, `openai\s+gpt-5.2-instant, gpt-5.2-thinking\s+ready`, out)
	assert.Regexp(t, `anthropic\s+.*no key`, out)
	assert.Regexp(t, `deepseek\s+.*no key`, out)

	t.Setenv("DEEPSEEK_API_KEY", "ds-test")
	out, err = execute(t, "models")
	require.NoError(t, err)
	assert.Regexp(t, `deepseek\s+deepseek-chat, deepseek-reasoner\s+ready`, out)

	out, err = execute(t, "models", "--resolve")
	require.NoError(t, err)
	assert.Regexp(t, `quality\s+claude-sonnet-4-20250514`, out)
}

func TestBatchCommandLogsEngineSettings(t *testing.T) {
	isolate(t)
	t.Setenv("CLAIMROUTE_OPTIMIZATION_LEVEL", "aggressive")
	path := writeFile(t, "claims.yaml", "- id: a\n  procedures: [{code: D1110, fee: 95}]\n")

	_, logged, err := executeWithLog(t, "batch", path)
	require.NoError(t, err)

	assert.Contains(t, logged, "batch routed")
	assert.Contains(t, logged, "optimization_level")
	assert.Contains(t, logged, "aggressive")
}
