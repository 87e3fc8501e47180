package main

import (
	"bytes"
	"strings"
	"testing"

	"go-audit-relay/internal/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteActions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeActions(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, len(audit.Rows())+1)
	assert.True(t, strings.HasPrefix(lines[0], "ACTION"))
	assert.Contains(t, buf.String(), "Member Banned")
	assert.Contains(t, buf.String(), "audit-log")
}

func TestActionsCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"actions"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Webhook Created")
}
