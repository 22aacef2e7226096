package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommand(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"new", "orders", "--dir", dir, "--module", "github.com/acme/orders"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Created orders")
	assert.Contains(t, out.String(), "go.mod")

	_, err := os.Stat(filepath.Join(dir, "orders", "main.go"))
	assert.NoError(t, err)
}

func TestNewCommandErrors(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"new", "Bad_Name", "--dir", t.TempDir()})
	assert.Error(t, cmd.Execute())

	cmd = newRootCmd(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"new"})
	assert.Error(t, cmd.Execute())
}
