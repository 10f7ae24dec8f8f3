package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/weave/internal/graph"
)

// FormatVersion marks the log file format written by this tool.
const FormatVersion = "lsg-1"

// timestampLayout is the UTC timestamp written to front matter on save.
const timestampLayout = "2006-01-02T15:04:05Z"

var (
	frontMatterRe = regexp.MustCompile(`(?s)^---\s*\n(.*?)\n(?:---|\.\.\.)\s*\n`)
	jsonBlockRe   = regexp.MustCompile("(?s)```json\\s*\n(.*?)\n```")
)

// Header is the YAML front matter of an SG document. Unknown keys are
// preserved through Extra.
type Header struct {
	MUID         string         `yaml:"muid,omitempty"`
	Title        string         `yaml:"title,omitempty"`
	GraphVersion string         `yaml:"graph_version,omitempty"`
	LastUpdate   string         `yaml:"last_update_timestamp,omitempty"`
	Tags         []string       `yaml:"tags,omitempty"`
	ParentMUID   string         `yaml:"parent_muid,omitempty"`
	Format       string         `yaml:"format,omitempty"`
	Extra        map[string]any `yaml:",inline"`
}

// Document is one loaded SG file: parsed header, parsed graph, and the raw
// file content the JSON block will be spliced back into on save.
type Document struct {
	Path    string
	Header  Header
	Graph   *graph.Graph
	Content string // original file content, "" for a document created in memory
}

// Load reads and parses an SG document. Returns DOCUMENT_NOT_FOUND if the
// file is missing and DOCUMENT_PARSE_ERROR for a malformed header or data
// block.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, graph.NewErrorf(graph.ErrCodeDocumentNotFound, "file not found: %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// LoadLog reads the log document at path. A missing file is not an error:
// an empty in-memory log is returned, to be created on first commit.
func LoadLog(path string) (*Document, error) {
	doc, err := Load(path)
	if graph.CodeOf(err) == graph.ErrCodeDocumentNotFound {
		return &Document{Path: path, Graph: graph.New()}, nil
	}
	return doc, err
}

// Parse decodes document content: YAML front matter (optional) plus exactly
// one fenced JSON block (required).
func Parse(content string) (*Document, error) {
	doc := &Document{Content: content, Graph: graph.New()}

	if m := frontMatterRe.FindStringSubmatch(content); m != nil {
		if err := yaml.Unmarshal([]byte(m[1]), &doc.Header); err != nil {
			return nil, graph.NewErrorf(graph.ErrCodeDocumentParse, "invalid front matter: %v", err)
		}
	}

	m := jsonBlockRe.FindStringSubmatch(content)
	if m == nil {
		return nil, graph.NewError(graph.ErrCodeDocumentParse, "no ```json block found")
	}

	data, err := decodeJSON([]byte(m[1]))
	if err != nil {
		return nil, graph.NewErrorf(graph.ErrCodeDocumentParse, "invalid JSON block: %v", err)
	}
	g, err := graph.FromMap(data)
	if err != nil {
		return nil, err
	}
	doc.Graph = g
	return doc, nil
}

// decodeJSON parses a JSON object keeping numbers as json.Number so the
// canonical serializer can write them back unchanged.
func decodeJSON(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// Save renders the document and writes it to doc.Path. The front matter
// version counter is bumped and the update timestamp refreshed; the JSON
// block is replaced in place, preserving surrounding prose. The write goes
// through a temp file in the same directory followed by a rename.
func Save(doc *Document) error {
	doc.Header.LastUpdate = time.Now().UTC().Format(timestampLayout)
	doc.Header.GraphVersion = bumpVersion(doc.Header.GraphVersion)

	content, err := Render(doc)
	if err != nil {
		return err
	}

	tmp := doc.Path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, doc.Path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	doc.Content = content
	return nil
}

// Render produces the full file content for the document without touching
// the filesystem.
func Render(doc *Document) (string, error) {
	block, err := RenderJSONBlock(doc.Graph)
	if err != nil {
		return "", err
	}

	headerYAML, err := yaml.Marshal(&doc.Header)
	if err != nil {
		return "", fmt.Errorf("marshal front matter: %w", err)
	}
	front := "---\n" + string(headerYAML) + "---\n"

	content := doc.Content
	if content == "" {
		// New file: synthesize the minimal document skeleton.
		title := doc.Header.Title
		if title == "" {
			title = "Semantic Graph"
		}
		return front + "\n# " + title + "\n\n" + block + "\n", nil
	}

	if frontMatterRe.MatchString(content) {
		content = frontMatterRe.ReplaceAllLiteralString(content, front)
	} else {
		content = front + "\n" + content
	}
	if jsonBlockRe.MatchString(content) {
		content = jsonBlockRe.ReplaceAllLiteralString(content, block)
	} else {
		content = content + "\n" + block + "\n"
	}
	return content, nil
}

// RenderJSONBlock serializes the graph as the canonical fenced JSON block:
// nodes sorted by MUID, relations by MUID-else-LID, keys sorted.
func RenderJSONBlock(g *graph.Graph) (string, error) {
	sorted := sortedCopy(g)
	data, err := MarshalCanonical(sorted.ToMap())
	if err != nil {
		return "", fmt.Errorf("marshal graph: %w", err)
	}
	return "```json\n" + string(data) + "\n```", nil
}

// sortedCopy returns a shallow copy of g with nodes and relations in
// canonical order. Entity maps are shared, not cloned; callers must not
// mutate through the copy.
func sortedCopy(g *graph.Graph) *graph.Graph {
	out := &graph.Graph{
		Nodes:     append([]graph.Node(nil), g.Nodes...),
		Relations: append([]graph.Relation(nil), g.Relations...),
		Props:     g.Props,
	}
	sort.SliceStable(out.Nodes, func(i, j int) bool {
		return out.Nodes[i].MUID() < out.Nodes[j].MUID()
	})
	sort.SliceStable(out.Relations, func(i, j int) bool {
		return out.Relations[i].EntityID() < out.Relations[j].EntityID()
	})
	return out
}

// bumpVersion increments the minor component of a "major.minor" version
// counter. Missing or unparseable versions restart at 0.1.
func bumpVersion(v string) string {
	parts := strings.SplitN(v, ".", 2)
	if len(parts) == 2 {
		major, errMaj := strconv.Atoi(parts[0])
		minor, errMin := strconv.Atoi(parts[1])
		if errMaj == nil && errMin == nil {
			return fmt.Sprintf("%d.%d", major, minor+1)
		}
	}
	return "0.1"
}
