package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCheck(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestValidateEmbedded(t *testing.T) {
	out, err := runCheck(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "embedded library: ok")
}

func TestScaffoldThenValidate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "library")

	out, err := runCheck(t, "scaffold", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")

	out, err = runCheck(t, "scaffold", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to write")

	out, err = runCheck(t, "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, dir+": ok")
}

func TestValidateMissingDir(t *testing.T) {
	_, err := runCheck(t, "validate", filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestValidateRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	_, err := runCheck(t, "validate", path)
	assert.Error(t, err)
}
