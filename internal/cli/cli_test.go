package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/weave/internal/document"
	"github.com/roach88/weave/internal/graph"
)

const testSG = `---
muid: sg-cli
title: CLI Test Graph
graph_version: "1.0"
---

# CLI Test Graph

` + "```json\n" + `{
  "nodes": [
    {"MUID": "n1", "type": "concept"},
    {"MUID": "n2", "type": "concept"}
  ],
  "relations": [
    {"class": "link", "LID": "l1", "from_MUID": "n1", "to_MUID": "n2", "type": "relates_to"}
  ]
}` + "\n```\n"

func writeTestSG(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.md")
	require.NoError(t, os.WriteFile(path, []byte(testSG), 0o644))
	return path
}

// runCLI executes the root command with the given args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// decodeResponse parses the JSON-format output of a command.
func decodeResponse(t *testing.T, out string) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	return resp
}

func TestBatchModify(t *testing.T) {
	sgPath := writeTestSG(t)
	recipePath := filepath.Join(t.TempDir(), "add.yaml")
	require.NoError(t, os.WriteFile(recipePath, []byte(`
steps:
  - operation: add_node
    params:
      node_data:
        MUID: n3
        type: concept
`), 0o644))

	out, err := runCLI(t, "batch-modify", "--file", sgPath, "--recipe", recipePath, "--format", "json")
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(1), data["changes"])
	assert.True(t, strings.HasPrefix(data["transaction"].(string), "t_"))

	// Document mutated, log created, backup taken.
	doc, err := document.Load(sgPath)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, doc.Graph.FindNode("n3"), 0)

	logDoc, err := document.Load(document.LogPath(sgPath))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, logDoc.Graph.FindNode("ha_n3"), 0)

	backups, err := document.FindBackups(sgPath)
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestBatchModify_NoBackup(t *testing.T) {
	sgPath := writeTestSG(t)
	recipePath := filepath.Join(t.TempDir(), "add.yaml")
	require.NoError(t, os.WriteFile(recipePath, []byte(`
steps:
  - operation: add_node
    params:
      node_data:
        MUID: n3
`), 0o644))

	_, err := runCLI(t, "batch-modify", "--file", sgPath, "--recipe", recipePath, "--no-backup")
	require.NoError(t, err)

	backups, err := document.FindBackups(sgPath)
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestBatchModify_FailingStepPersistsNothing(t *testing.T) {
	sgPath := writeTestSG(t)
	recipePath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(recipePath, []byte(`
steps:
  - operation: add_node
    params:
      node_data:
        MUID: n3
  - operation: update_node
    params:
      muid: missing
      updates:
        title: x
`), 0o644))

	before, err := os.ReadFile(sgPath)
	require.NoError(t, err)

	_, err = runCLI(t, "batch-modify", "--file", sgPath, "--recipe", recipePath, "--no-backup")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	// All-or-nothing: the successful first step is not on disk either.
	after, err := os.ReadFile(sgPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	_, statErr := os.Stat(document.LogPath(sgPath))
	assert.True(t, os.IsNotExist(statErr))
}

func TestBatchModify_MissingRecipe(t *testing.T) {
	sgPath := writeTestSG(t)
	_, err := runCLI(t, "batch-modify", "--file", sgPath, "--recipe", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidate(t *testing.T) {
	// A dangling relation: n2 removed, l1 still points at it.
	content := strings.Replace(testSG, `{"MUID": "n2", "type": "concept"}`, `{"MUID": "n1", "type": "dup"}`, 1)
	sgPath := filepath.Join(t.TempDir(), "graph.md")
	require.NoError(t, os.WriteFile(sgPath, []byte(content), 0o644))

	out, err := runCLI(t, "validate", "--file", sgPath, "--no-backup", "--format", "json")
	require.NoError(t, err)
	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)

	doc, err := document.Load(sgPath)
	require.NoError(t, err)
	_, ok := doc.Graph.Props[graph.PropValidationIssues]
	assert.True(t, ok, "issues are persisted in the document")

	// Second run finds the same issues and commits nothing.
	out, err = runCLI(t, "validate", "--file", sgPath, "--no-backup", "--format", "json")
	require.NoError(t, err)
	resp = decodeResponse(t, out)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(0), data["changes"])
}

func TestValidate_CleanGraphCommitsNothing(t *testing.T) {
	sgPath := writeTestSG(t)

	out, err := runCLI(t, "validate", "--file", sgPath, "--no-backup", "--format", "json")
	require.NoError(t, err)
	resp := decodeResponse(t, out)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(0), data["changes"])

	_, statErr := os.Stat(document.LogPath(sgPath))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPromoteRelation(t *testing.T) {
	sgPath := writeTestSG(t)

	out, err := runCLI(t, "promote-relation", "--file", sgPath, "--lid", "l1", "--no-backup", "--format", "json")
	require.NoError(t, err)
	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)

	doc, err := document.Load(sgPath)
	require.NoError(t, err)
	require.Len(t, doc.Graph.Relations, 1)
	rel := doc.Graph.Relations[0]
	assert.Equal(t, graph.ClassBind, rel.Class())
	assert.Empty(t, rel.LID())
	assert.Equal(t, "l1", rel["legacy_LID"])
	assert.True(t, graph.IsUUID(rel.MUID()))
}

func TestPromoteRelation_UnknownLID(t *testing.T) {
	sgPath := writeTestSG(t)
	_, err := runCLI(t, "promote-relation", "--file", sgPath, "--lid", "nope", "--no-backup")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestMissingDocument(t *testing.T) {
	_, err := runCLI(t, "validate", "--file", filepath.Join(t.TempDir(), "absent.md"), "--no-backup")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInvalidFormat(t *testing.T) {
	sgPath := writeTestSG(t)
	_, err := runCLI(t, "validate", "--file", sgPath, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLifecycleCommands(t *testing.T) {
	sgPath := writeTestSG(t)
	recipePath := filepath.Join(t.TempDir(), "add.yaml")
	require.NoError(t, os.WriteFile(recipePath, []byte(`
steps:
  - operation: add_node
    params:
      node_data:
        MUID: n3
`), 0o644))
	_, err := runCLI(t, "batch-modify", "--file", sgPath, "--recipe", recipePath, "--no-backup")
	require.NoError(t, err)

	logPath := document.LogPath(sgPath)

	// bundle-log embeds the history and removes the external file.
	out, err := runCLI(t, "bundle-log", "--file", sgPath, "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, "ok", decodeResponse(t, out).Status)
	_, statErr := os.Stat(logPath)
	assert.True(t, os.IsNotExist(statErr))

	// detach-log restores it.
	out, err = runCLI(t, "detach-log", "--file", sgPath, "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, "ok", decodeResponse(t, out).Status)
	_, statErr = os.Stat(logPath)
	require.NoError(t, statErr)

	// archive-log rotates the external log.
	out, err = runCLI(t, "archive-log", "--file", sgPath, "--format", "json")
	require.NoError(t, err)
	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)

	ok, err := document.HasArchives(logPath)
	require.NoError(t, err)
	assert.True(t, ok)

	// bundle-log refuses while archives are present.
	_, err = runCLI(t, "bundle-log", "--file", sgPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestHistoryCommand(t *testing.T) {
	sgPath := writeTestSG(t)
	recipePath := filepath.Join(t.TempDir(), "add.yaml")
	require.NoError(t, os.WriteFile(recipePath, []byte(`
steps:
  - operation: add_node
    params:
      node_data:
        MUID: n3
`), 0o644))
	_, err := runCLI(t, "batch-modify", "--file", sgPath, "--recipe", recipePath, "--no-backup")
	require.NoError(t, err)

	out, err := runCLI(t, "history", "n3", "--file", sgPath, "--format", "json")
	require.NoError(t, err)
	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "n3", data["entity_id"])
	entries := data["entries"].([]any)
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]any)
	assert.Equal(t, "add_node", entry["action"])
	assert.Equal(t, "add.yaml", entry["recipe_id"])
}

func TestHistoryCommand_NoLog(t *testing.T) {
	sgPath := writeTestSG(t)
	out, err := runCLI(t, "history", "n1", "--file", sgPath, "--format", "json")
	require.NoError(t, err)
	resp := decodeResponse(t, out)
	data := resp.Data.(map[string]any)
	assert.Empty(t, data["entries"])
}

func TestCleanupBackups(t *testing.T) {
	sgPath := writeTestSG(t)
	recipePath := filepath.Join(t.TempDir(), "add.yaml")
	require.NoError(t, os.WriteFile(recipePath, []byte(`
steps:
  - operation: add_node
    params:
      node_data:
        MUID: n3
`), 0o644))
	_, err := runCLI(t, "batch-modify", "--file", sgPath, "--recipe", recipePath)
	require.NoError(t, err)

	backups, err := document.FindBackups(sgPath)
	require.NoError(t, err)
	require.Len(t, backups, 1)

	out, err := runCLI(t, "cleanup-backups", "--file", sgPath, "--yes", "--format", "json")
	require.NoError(t, err)
	resp := decodeResponse(t, out)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(1), data["deleted"])

	backups, err = document.FindBackups(sgPath)
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestCleanupBackups_DeclinedConfirmation(t *testing.T) {
	sgPath := writeTestSG(t)
	backup, err := document.Backup(sgPath, "batch-modify")
	require.NoError(t, err)

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader("n\n"))
	cmd.SetArgs([]string{"cleanup-backups", "--file", sgPath})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "cancelled")

	_, statErr := os.Stat(backup)
	require.NoError(t, statErr)
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitCommandError, GetExitCode(graph.NewError(graph.ErrCodeDocumentParse, "bad")))
	assert.Equal(t, ExitFailure, GetExitCode(graph.NewError(graph.ErrCodeEntityNotFound, "gone")))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}
