package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/weave/internal/graph"
)

const sampleSG = `---
muid: sg-001
title: Test Graph
graph_version: "1.3"
tags:
  - test
---

# Test Graph

Some prose before the data block.

` + "```json\n" + `{
  "nodes": [
    {"MUID": "n2", "type": "concept"},
    {"MUID": "n1", "type": "concept", "weight": 3}
  ],
  "relations": [
    {"class": "link", "LID": "l1", "from_MUID": "n1", "to_MUID": "n2", "type": "relates_to"}
  ],
  "note": "kept"
}` + "\n```\n\nSome prose after.\n"

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.md")
	require.NoError(t, os.WriteFile(path, []byte(sampleSG), 0o644))
	return path
}

func TestParse(t *testing.T) {
	doc, err := Parse(sampleSG)
	require.NoError(t, err)

	assert.Equal(t, "sg-001", doc.Header.MUID)
	assert.Equal(t, "Test Graph", doc.Header.Title)
	assert.Equal(t, "1.3", doc.Header.GraphVersion)
	assert.Equal(t, []string{"test"}, doc.Header.Tags)

	assert.Len(t, doc.Graph.Nodes, 2)
	assert.Len(t, doc.Graph.Relations, 1)
	assert.Equal(t, "kept", doc.Graph.Props["note"])
}

func TestParse_NoJSONBlock(t *testing.T) {
	_, err := Parse("# Just prose\n")
	assert.Equal(t, graph.ErrCodeDocumentParse, graph.CodeOf(err))
}

func TestParse_BadJSON(t *testing.T) {
	_, err := Parse("```json\n{not json}\n```\n")
	assert.Equal(t, graph.ErrCodeDocumentParse, graph.CodeOf(err))
}

func TestParse_NoFrontMatterIsFine(t *testing.T) {
	doc, err := Parse("```json\n{\"nodes\": [], \"relations\": []}\n```\n")
	require.NoError(t, err)
	assert.Empty(t, doc.Header.MUID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.md"))
	assert.Equal(t, graph.ErrCodeDocumentNotFound, graph.CodeOf(err))
}

func TestLoadLog_MissingFileIsEmptyLog(t *testing.T) {
	doc, err := LoadLog(filepath.Join(t.TempDir(), "absent_log.md"))
	require.NoError(t, err)
	assert.Empty(t, doc.Content)
	assert.Empty(t, doc.Graph.Nodes)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := writeSample(t)
	doc, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, Save(doc))
	reloaded, err := Load(path)
	require.NoError(t, err)

	// Recovered entity sets, keyed by identity, equal the pre-save sets.
	wantNodes := map[string]graph.Node{}
	for _, n := range doc.Graph.Nodes {
		wantNodes[n.MUID()] = n
	}
	gotNodes := map[string]graph.Node{}
	for _, n := range reloaded.Graph.Nodes {
		gotNodes[n.MUID()] = n
	}
	assert.Equal(t, wantNodes, gotNodes)

	require.Len(t, reloaded.Graph.Relations, 1)
	assert.Equal(t, "l1", reloaded.Graph.Relations[0].LID())
	assert.Equal(t, "kept", reloaded.Graph.Props["note"])
}

func TestSave_PreservesProse(t *testing.T) {
	path := writeSample(t)
	doc, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Save(doc))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Some prose before the data block.")
	assert.Contains(t, string(content), "Some prose after.")
}

func TestSave_BumpsVersionAndTimestamp(t *testing.T) {
	path := writeSample(t)
	doc, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Save(doc))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "1.4", reloaded.Header.GraphVersion)
	assert.NotEmpty(t, reloaded.Header.LastUpdate)
}

func TestSave_SortsEntitiesCanonically(t *testing.T) {
	path := writeSample(t)
	doc, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Save(doc))

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, reloaded.Graph.Nodes, 2)
	assert.Equal(t, "n1", reloaded.Graph.Nodes[0].MUID())
	assert.Equal(t, "n2", reloaded.Graph.Nodes[1].MUID())
}

func TestSave_RepeatedSavesStable(t *testing.T) {
	path := writeSample(t)
	doc, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Save(doc))

	first, err := os.ReadFile(path)
	require.NoError(t, err)

	doc2, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Save(doc2))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	// Only the version counter and timestamp may differ between saves.
	stripHeader := func(s string) string {
		_, rest, _ := strings.Cut(s, "\n---\n")
		return rest
	}
	assert.Equal(t, stripHeader(string(first)), stripHeader(string(second)))
}

func TestRender_NewFileSkeleton(t *testing.T) {
	doc := &Document{
		Header: Header{Title: "Fresh", MUID: "sg-9"},
		Graph:  graph.New(),
	}
	content, err := Render(doc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(content, "---\n"))
	assert.Contains(t, content, "# Fresh")
	assert.Contains(t, content, "```json")
}

func TestRenderJSONBlock_Golden(t *testing.T) {
	g := graph.New()
	g.Nodes = append(g.Nodes,
		graph.Node{"MUID": "n2", "type": "concept"},
		graph.Node{"MUID": "n1", "type": "concept", "title": "Alpha & <Beta>"},
	)
	g.Relations = append(g.Relations,
		graph.Relation{"class": "link", "LID": "l1", "from_MUID": "n1", "to_MUID": "n2", "type": "relates_to"},
	)

	block, err := RenderJSONBlock(g)
	require.NoError(t, err)

	gold := goldie.New(t)
	gold.Assert(t, "canonical_block", []byte(block))
}

func TestMarshalCanonical_SortsKeysAndKeepsNumbers(t *testing.T) {
	doc, err := Parse("```json\n{\"b\": 2, \"a\": 1.50, \"nodes\": [], \"relations\": []}\n```\n")
	require.NoError(t, err)

	data, err := MarshalCanonical(doc.Graph.ToMap())
	require.NoError(t, err)
	s := string(data)
	assert.Less(t, strings.Index(s, `"a"`), strings.Index(s, `"b"`))
	assert.Contains(t, s, "1.50", "decoder-sourced numbers survive verbatim")
}
