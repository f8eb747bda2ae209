package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("STATCALC_GRAPH_DIR", t.TempDir())
	t.Setenv("STATCALC_REPORT_FORMAT", "")
	t.Setenv("LOG_LEVEL", "")

	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCalculatorCommand(t *testing.T) {
	code, stdout, stderr := execute(t, "z_score", "x=85", "mu=100", "sigma=15", "z=-")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "BERECHNUNGEN")
	assert.Contains(t, stdout, "-1")
}

func TestCalculatorAlias(t *testing.T) {
	code, stdout, stderr := execute(t, "--format", "json", "zscore", "x=85", "mu=100", "sigma=15")
	require.Equal(t, 0, code, stderr)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "Z_SCORE", doc["family"])
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"parse", []string{"z_score", "x=abc", "mu=1", "sigma=1"}, 2},
		{"insufficient", []string{"z_score", "x=85"}, 3},
		{"ambiguous", []string{"hypothesentest", "x_bar=105", "mu0=100", "sigma=15", "s=14", "n=25"}, 4},
		{"domain", []string{"binomial", "k=2", "n=8", "p=1.5"}, 5},
		{"non-convergence", []string{"trennschaerfe", "mu0=100", "mu1=100", "sigma=15", "alpha=0.05", "power=0.8", "n=-"}, 6},
		{"unknown command", []string{"anova"}, 1},
		{"bad format", []string{"--format", "pdf", "z_score", "x=85", "mu=100", "sigma=15"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := execute(t, tt.args...)
			assert.Equal(t, tt.code, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "Fehler:")
		})
	}
}

func TestGraphFlag(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STATCALC_GRAPH_DIR", dir)
	t.Setenv("STATCALC_REPORT_FORMAT", "")

	var stdout, stderr bytes.Buffer
	code := run([]string{"binomial", "--graph", "k=2", "n=8", "p=0.1"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "Grafik gespeichert:")

	files, err := filepath.Glob(filepath.Join(dir, "binomial_*.xlsx"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	info, err := os.Stat(files[0])
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestGraphFlagOnlyForDistributions(t *testing.T) {
	code, _, stderr := execute(t, "z_score", "--graph", "x=85", "mu=100", "sigma=15")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown flag")
}

func TestListCommand(t *testing.T) {
	code, stdout, _ := execute(t, "list")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "z_score")
	assert.Contains(t, stdout, "hypergeometrisch")
}
