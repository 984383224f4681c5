package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netreduce/rgcidr/internal/lineio"
)

// run() exits the process directly via os.Exit, so these tests exercise
// the pure helpers around it rather than invoking the cobra command
// itself.

func TestResolvePatternsAndFilesFromPositionalArgument(t *testing.T) {
	cliConfig = &CLIConfig{}
	patterns, files, err := resolvePatternsAndFiles([]string{"10.0.0.0/8", "a.log", "b.log"})
	require.NoError(t, err)
	assert.Len(t, patterns, 1)
	assert.Equal(t, []string{"a.log", "b.log"}, files)
}

func TestResolvePatternsAndFilesMissingPattern(t *testing.T) {
	cliConfig = &CLIConfig{}
	_, _, err := resolvePatternsAndFiles(nil)
	require.Error(t, err)
}

func TestResolvePatternsAndFilesFromPatternFile(t *testing.T) {
	cliConfig = &CLIConfig{PatternFile: writeTempPatternFile(t)}
	patterns, files, err := resolvePatternsAndFiles([]string{"a.log"})
	require.NoError(t, err)
	assert.Len(t, patterns, 2)
	assert.Equal(t, []string{"a.log"}, files)
}

func TestResolvePatternsAndFilesBadPattern(t *testing.T) {
	cliConfig = &CLIConfig{}
	_, _, err := resolvePatternsAndFiles([]string{"not-an-address"})
	require.Error(t, err)
}

func TestBufferClassForStdin(t *testing.T) {
	assert.Equal(t, lineio.SmallBuffer, bufferClassFor(false, nil))
}

func TestBufferClassForCountMode(t *testing.T) {
	assert.Equal(t, lineio.SmallBuffer, bufferClassFor(true, []string{"a.log"}))
}

func TestBufferClassForFileScan(t *testing.T) {
	assert.Equal(t, lineio.LargeBuffer, bufferClassFor(false, []string{"a.log"}))
}

func writeTempPatternFile(t *testing.T) string {
	t.Helper()
	path := t.TempDir() + "/patterns.txt"
	require.NoError(t, os.WriteFile(path, []byte("10.0.0.0/8\n192.168.1.1\n"), 0o644))
	return path
}
