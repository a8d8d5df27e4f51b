package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRealMain_TransformsFile(t *testing.T) {
	in := writeInput(t, "id,address\n1,深圳南山区科技园\n2,科技园\n")
	out := filepath.Join(t.TempDir(), "out.csv")

	code := realMain([]string{"--in", in, "--out", out, "--workers", "2"})
	require.Equal(t, 0, code)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,address,province,city,district,residual_address,adcode", lines[0])
	assert.Equal(t, "1,深圳南山区科技园,,深圳市,南山区,科技园,440305000000", lines[1])
}

func TestRealMain_ExitCodes(t *testing.T) {
	in := writeInput(t, "id,address\n1,深圳南山区\n")
	out := filepath.Join(t.TempDir(), "out.csv")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"help", []string{"--help"}, 0},
		{"unknown flag", []string{"--bogus"}, 2},
		{"missing config file", []string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, 2},
		{"missing input", []string{"--in", filepath.Join(t.TempDir(), "missing.csv"), "--out", out}, 1},
		{"missing column", []string{"--in", in, "--out", out, "--column", "addr"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, realMain(tt.args))
		})
	}
}
