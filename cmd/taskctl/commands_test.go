package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// failingWriter rejects every write.
type failingWriter struct{}

var errWrite = errors.New("write failed")

func (failingWriter) Write(p []byte) (int, error) { return 0, errWrite }

func runToFailingWriter(fn func(*cobra.Command, []string) error) error {
	cmd := &cobra.Command{}
	cmd.SetOut(failingWriter{})
	return fn(cmd, nil)
}

func run(t *testing.T, fn func(*cobra.Command, []string) error) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	err := fn(cmd, nil)
	return buf.String(), err
}

func setFlags(t *testing.T, role, from, to, output string) {
	t.Helper()
	roleFlag, fromFlag, toFlag, outputFormat = role, from, to, output
	t.Cleanup(func() {
		roleFlag, fromFlag, toFlag, outputFormat = "", "", "", "text"
	})
}

func TestTableCmd_Text(t *testing.T) {
	setFlags(t, "", "", "", "text")

	out, err := run(t, runTable)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "ASSIGNED")
	assert.Contains(t, lines[0], "IN_PROGRESS")
	assert.Contains(t, lines[2], "APPROVED, REJECTED")
	assert.Contains(t, lines[3], "(terminal)")
	assert.Contains(t, lines[4], "(terminal)")
}

func TestTableCmd_YAML(t *testing.T) {
	setFlags(t, "", "", "", "yaml")

	out, err := run(t, runTable)
	require.NoError(t, err)

	var doc struct {
		Transitions []struct {
			From string   `yaml:"from"`
			To   []string `yaml:"to"`
		} `yaml:"transitions"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Transitions, 5)
	assert.Equal(t, "WAITING_CONFIRM", doc.Transitions[2].From)
	assert.Equal(t, []string{"APPROVED", "REJECTED"}, doc.Transitions[2].To)
	assert.Empty(t, doc.Transitions[3].To)
}

func TestTableCmd_UnknownFormat(t *testing.T) {
	setFlags(t, "", "", "", "xml")

	_, err := run(t, runTable)
	assert.Error(t, err)
}

func TestCheckCmd(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		from    string
		to      string
		want    string
		denied  bool
		wantErr bool
	}{
		{"assignee starts", "assignee", "ASSIGNED", "IN_PROGRESS", "allowed", false, false},
		{"assignee self-approves", "assignee", "WAITING_CONFIRM", "APPROVED", "the assignee cannot", true, false},
		{"table only", "", "WAITING_CONFIRM", "REJECTED", "allowed", false, false},
		{"terminal", "assigner", "REJECTED", "IN_PROGRESS", "not permitted", true, false},
		{"no-op", "assigner", "APPROVED", "approved", "already in status", true, false},
		{"bad status", "assigner", "DONE", "APPROVED", "", false, true},
		{"bad role", "admin", "WAITING_CONFIRM", "APPROVED", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setFlags(t, tt.role, tt.from, tt.to, "text")

			out, err := run(t, runCheck)
			switch {
			case tt.denied:
				assert.ErrorIs(t, err, errDenied)
			case tt.wantErr:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, errDenied)
			default:
				assert.NoError(t, err)
			}
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestOptionsCmd(t *testing.T) {
	setFlags(t, "assigner", "WAITING_CONFIRM", "", "text")

	out, err := run(t, runOptions)
	require.NoError(t, err)
	assert.Contains(t, out, "Approve?")
	assert.Contains(t, out, "Reject?")

	setFlags(t, "assigner", "ASSIGNED", "", "text")
	out, err = run(t, runOptions)
	require.NoError(t, err)
	assert.Contains(t, out, "no actions available")
}

func TestCommands_ReportWriteErrors(t *testing.T) {
	tests := []struct {
		name                   string
		role, from, to, output string
		fn                     func(*cobra.Command, []string) error
	}{
		{"table", "", "", "", "text", runTable},
		{"check allowed", "assignee", "ASSIGNED", "IN_PROGRESS", "text", runCheck},
		{"check denied", "assignee", "WAITING_CONFIRM", "APPROVED", "text", runCheck},
		{"check no-op", "assigner", "APPROVED", "APPROVED", "text", runCheck},
		{"options", "assigner", "WAITING_CONFIRM", "", "text", runOptions},
		{"options empty", "assigner", "ASSIGNED", "", "text", runOptions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setFlags(t, tt.role, tt.from, tt.to, tt.output)

			err := runToFailingWriter(tt.fn)
			assert.ErrorIs(t, err, errWrite)
			assert.NotErrorIs(t, err, errDenied)
		})
	}
}
