package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatError(t *testing.T) {
	tests := []struct {
		name     string
		opts     ErrorOptions
		contains []string
		excludes []string
	}{
		{
			name: "with context",
			opts: ErrorOptions{
				Context: "invalid document",
				Problem: "S003 at operations[0]",
				Detail:  "Invalid json. Property kind wasn't specified",
			},
			contains: []string{
				"❌ INVALID DOCUMENT: S003 at operations[0]\n",
				"   Invalid json. Property kind wasn't specified\n",
			},
			excludes: []string{"Did you mean"},
		},
		{
			name: "suggestions and help",
			opts: ErrorOptions{
				Problem:      "missing",
				Suggestions:  []string{"cars", "cats"},
				HelpCommands: []string{"See stored extensions: extmodel store list"},
			},
			contains: []string{
				"❌ missing\n",
				"   Did you mean: cars, cats?\n",
				"   → See stored extensions: extmodel store list\n",
			},
		},
		{
			name:     "warning",
			opts:     ErrorOptions{Level: ErrorLevelWarning, Problem: "legacy keys"},
			contains: []string{"⚠️ legacy keys"},
			excludes: []string{"❌"},
		},
		{
			name:     "info",
			opts:     ErrorOptions{Level: ErrorLevelInfo, Problem: "3 documents"},
			contains: []string{"ℹ️ 3 documents"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.NoColor = true
			out := FormatError(tt.opts)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	assert.Contains(t, DocumentError("S001 at errors", "missing mandatory key", true), "INVALID DOCUMENT: S001 at errors")
	assert.Contains(t, DocumentNotFoundError("crs", []string{"cars"}, true), "Cannot find extension 'crs' in the store.")
	assert.Contains(t, ConfigError("unknown store backend", true), "CONFIGURATION ERROR")
	assert.Contains(t, Warning("careful", true), "⚠️ careful")

	var buf bytes.Buffer
	WriteSuccess(&buf, "fleet.json is valid", true)
	assert.Equal(t, "✓ fleet.json is valid\n", buf.String())
}
