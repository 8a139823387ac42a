package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/davidvella/xsort/run/strategy/bytesize"
	"github.com/davidvella/xsort/run/strategy/composite"
	"github.com/davidvella/xsort/run/strategy/linecount"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		env        map[string]string
		wantInput  string
		wantOutput string
		wantErr    bool
	}{
		{
			name:       "defaults",
			wantInput:  defaultInput,
			wantOutput: defaultOutput,
		},
		{
			name:       "environment",
			env:        map[string]string{envInput: "in.txt", envOutput: "out.txt"},
			wantInput:  "in.txt",
			wantOutput: "out.txt",
		},
		{
			name:       "flags win over environment",
			args:       []string{"-i", "flag-in.txt", "--output", "flag-out.txt"},
			env:        map[string]string{envInput: "in.txt", envOutput: "out.txt"},
			wantInput:  "flag-in.txt",
			wantOutput: "flag-out.txt",
		},
		{
			name:       "flag and environment mixed",
			args:       []string{"--input", "flag-in.txt"},
			env:        map[string]string{envOutput: "out.txt"},
			wantInput:  "flag-in.txt",
			wantOutput: "out.txt",
		},
		{
			name:    "unknown store",
			args:    []string{"--store", "s3"},
			wantErr: true,
		},
		{
			name:    "unknown flag",
			args:    []string{"--bogus"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parseConfig(tt.args, func(key string) string { return tt.env[key] })
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantInput, cfg.input)
			assert.Equal(t, tt.wantOutput, cfg.output)
		})
	}
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "case insensitive on local store",
			want: "marcos barbero\nMarcos Gomes\nMarcos Henrique\nMarcos Henrique Gomes Barbero\n",
		},
		{
			name: "lexical on pebble store",
			args: []string{"--order", "lexical", "--store", "pebble", "--frontier", "loser", "--atomic"},
			want: "Marcos Gomes\nMarcos Henrique\nMarcos Henrique Gomes Barbero\nmarcos barbero\n",
		},
		{
			name: "line and byte caps",
			args: []string{"--run-lines", "2", "--run-bytes", "40"},
			want: "marcos barbero\nMarcos Gomes\nMarcos Henrique\nMarcos Henrique Gomes Barbero\n",
		},
		{
			name: "parallel btree merge",
			args: []string{"--parallel", "4", "--frontier", "btree", "--memory", "64", "--max-runs", "4"},
			want: "marcos barbero\nMarcos Gomes\nMarcos Henrique\nMarcos Henrique Gomes Barbero\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			input := filepath.Join(dir, "input.txt")
			output := filepath.Join(dir, "output.txt")
			require.NoError(t, os.WriteFile(input,
				[]byte("Marcos Henrique\nmarcos barbero\nMarcos Gomes\nMarcos Henrique Gomes Barbero\n"), 0o600))

			cfg, err := parseConfig(append([]string{"-i", input, "-o", output}, tt.args...), func(string) string { return "" })
			require.NoError(t, err)

			var stdout bytes.Buffer
			require.NoError(t, execute(context.Background(), cfg, zap.NewNop(), &stdout))
			assert.Contains(t, stdout.String(), "Sorted 4 lines")

			data, err := os.ReadFile(output)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestRunStrategy(t *testing.T) {
	assert.Nil(t, runStrategy(config{}))
	assert.IsType(t, linecount.Strategy{}, runStrategy(config{runLines: 10}))
	assert.IsType(t, bytesize.Strategy{}, runStrategy(config{runBytes: 10}))
	assert.IsType(t, &composite.Strategy{}, runStrategy(config{runLines: 10, runBytes: 10}))
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown order", args: []string{"--order", "random"}},
		{name: "unknown frontier", args: []string{"--frontier", "list"}},
		{name: "missing input", args: []string{"-i", "does-not-exist.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parseConfig(append([]string{"-o", filepath.Join(t.TempDir(), "out.txt")}, tt.args...), func(string) string { return "" })
			require.NoError(t, err)

			assert.Error(t, execute(context.Background(), cfg, zap.NewNop(), &bytes.Buffer{}))
		})
	}
}
