package cli

// Test Plan for CLI Commands:
// - executeExtract prints the parameter and edits as JSON without touching the file
// - executeExtract --write rewrites the file and prints a summary
// - executeExtract fails with ErrNothingToExtract on keys and rejects negative positions
// - loadRuntime reads .cfn-refactor/config.yml and applies --log-level
// - loadRuntime fails on invalid configuration
// - reload applies a new config to the engine and ignores invalid ones
// - version prints the build information

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cfn-refactor/internal/config"
	"github.com/mvp-joe/cfn-refactor/internal/protocol"
	"github.com/mvp-joe/cfn-refactor/internal/refactor"
)

const templateJSON = `{
  "AWSTemplateFormatVersion": "2010-09-09",
  "Resources": {
    "Queue": {
      "Type": "AWS::SQS::Queue",
      "Properties": {
        "VisibilityTimeout": 30
      }
    }
  }
}
`

// Position of 30 on the VisibilityTimeout line.
var timeoutValue = protocol.Position{Line: 6, Character: 30}

func writeTemplate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.json")
	require.NoError(t, os.WriteFile(path, []byte(templateJSON), 0644))
	return path
}

func newTestRuntime(t *testing.T, root string) *runtime {
	t.Helper()
	rt, err := loadRuntime(root, "", "", io.Discard)
	require.NoError(t, err)
	t.Cleanup(rt.close)
	return rt
}

func TestExecuteExtract_PrintsJSON(t *testing.T) {
	t.Parallel()
	rt := newTestRuntime(t, t.TempDir())
	path := writeTemplate(t)

	var out bytes.Buffer
	err := executeExtract(context.Background(), rt.engine, extractOptions{Path: path, Position: timeoutValue}, &out)
	require.NoError(t, err)

	var result refactor.FileResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "QueueVisibilityTimeout", result.ParameterName)
	assert.Equal(t, "Number", result.Parameter.Type)
	assert.False(t, result.Applied)
	assert.Len(t, result.Edit.Changes, 1)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, templateJSON, string(content))
}

func TestExecuteExtract_Write(t *testing.T) {
	t.Parallel()
	rt := newTestRuntime(t, t.TempDir())
	path := writeTemplate(t)

	var out bytes.Buffer
	err := executeExtract(context.Background(), rt.engine, extractOptions{Path: path, Position: timeoutValue, Write: true}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Added parameter QueueVisibilityTimeout")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"Parameters": {`)
	assert.Contains(t, string(content), `"VisibilityTimeout": {"Ref": "QueueVisibilityTimeout"}`)
}

func TestExecuteExtract_Errors(t *testing.T) {
	t.Parallel()
	rt := newTestRuntime(t, t.TempDir())
	path := writeTemplate(t)
	ctx := context.Background()

	err := executeExtract(ctx, rt.engine, extractOptions{Path: path, Position: protocol.Position{Line: 6, Character: 10}}, io.Discard)
	assert.ErrorIs(t, err, refactor.ErrNothingToExtract)

	err = executeExtract(ctx, rt.engine, extractOptions{Path: path, Position: protocol.Position{Line: -1}}, io.Discard)
	assert.Error(t, err)

	err = executeExtract(ctx, rt.engine, extractOptions{Path: filepath.Join(t.TempDir(), "missing.json"), Position: timeoutValue}, io.Discard)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadRuntime_ReadsConfigAndLogLevel(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, config.DirName), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, config.DirName, "config.yml"), []byte("editor:\n  tab_size: 4\n"), 0644))

	rt, err := loadRuntime(root, "", "debug", io.Discard)
	require.NoError(t, err)
	defer rt.close()

	assert.Equal(t, 4, rt.engine.EditorSettings().TabSize)
	assert.Equal(t, log.DebugLevel, rt.logger.GetLevel())
	assert.Equal(t, filepath.Join(root, config.DirName, "config.yml"), rt.loader.ConfigFileUsed())
}

func TestLoadRuntime_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := loadRuntime(t.TempDir(), "", "chatty", io.Discard)
	assert.ErrorIs(t, err, config.ErrInvalidLogLevel)

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("editor:\n  tab_size: 99\n"), 0644))
	_, err = loadRuntime(t.TempDir(), path, "", io.Discard)
	assert.ErrorIs(t, err, config.ErrInvalidTabSize)
}

func TestRuntimeReload(t *testing.T) {
	t.Parallel()
	rt := newTestRuntime(t, t.TempDir())

	cfg := config.Default()
	cfg.Editor.TabSize = 8
	cfg.Log.Level = "warn"
	rt.reload(cfg, nil)
	assert.Equal(t, 8, rt.engine.EditorSettings().TabSize)
	assert.Equal(t, log.WarnLevel, rt.logger.GetLevel())

	rt.reload(nil, errors.New("broken file"))
	assert.Equal(t, 8, rt.engine.EditorSettings().TabSize)

	bad := config.Default()
	bad.Documents.YAMLPatterns = []string{"[oops"}
	rt.reload(bad, nil)
	assert.Equal(t, 8, rt.engine.EditorSettings().TabSize)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "cfn-refactor "+Version)
	assert.Contains(t, out.String(), "Git commit: "+GitCommit)
}
