package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "KIND", "NAME", "PARAMETERS")
	table.AddRow("operation", "getCar", "1")
	table.AddRow("source", "onSale")
	table.AddRow("function", "price", "0", "ignored")
	assert.Equal(t, 3, table.Len())

	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "KIND       NAME    PARAMETERS", lines[0])
	assert.Equal(t, "─────────  ──────  ──────────", lines[1])
	assert.Equal(t, "operation  getCar  1", lines[2])
	assert.Equal(t, "source     onSale", lines[3])
	assert.Equal(t, "function   price   0", lines[4])
}

func TestTable_NoHeaders(t *testing.T) {
	var buf bytes.Buffer
	NewTable(&buf, true).Render()
	assert.Empty(t, buf.String())
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	kv := NewKeyValueTable(&buf, true)
	kv.AddRow("Name", "fleet")
	kv.AddRow("Description", "")
	kv.AddRow("Category", "SELECT")
	kv.Render()

	assert.Equal(t, "Name:     fleet\nCategory: SELECT\n", buf.String())
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Errors", true)
	assert.Equal(t, "Errors\n──────\n", buf.String())
}
