package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	require.NoError(t, writeJSON(path, map[string]int{"count": 2}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"count\": 2\n}\n", string(data))
}

func TestWriteOutputErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing", "out.html")
	assert.ErrorContains(t, writeOutput(missing, []byte("x")), "create output file")

	assert.ErrorContains(t, writeJSON(filepath.Join(t.TempDir(), "x.json"), func() {}), "marshal JSON")
}
