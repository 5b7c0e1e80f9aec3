package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-report/internal/config"
)

const snapshotDoc = `{"client_info":{"id":42,"name":"Acme"},"tickets":[
 {"id":1,"subject":"Printer jam","status_text":"Closed","priority_text":"Low",
  "created_at":"2024-01-02T08:00:00Z","resolved_at":"2024-01-02T10:00:00Z"}]}`

func TestGenerate_WritesReport(t *testing.T) {
	raw := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(raw, "freshservice_42.json"), []byte(snapshotDoc), 0o644))
	out := filepath.Join(t.TempDir(), "nested", "report.html")

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Report.SnapshotPattern = "freshservice_*.json"

	err = generate(context.Background(), cfg, options{rawDataDir: raw, clientID: "42", outputFile: out}, zap.NewNop())
	require.NoError(t, err)

	html, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Acme")
	assert.Contains(t, string(html), "Printer jam")
}

func TestGenerate_MissingSnapshot(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	err = generate(context.Background(), cfg, options{rawDataDir: t.TempDir(), outputFile: filepath.Join(t.TempDir(), "r.html")}, zap.NewNop())
	assert.Error(t, err)
}

func TestRun_RejectsExtraArguments(t *testing.T) {
	assert.ErrorContains(t, run([]string{"stray"}), "unexpected argument")
}
