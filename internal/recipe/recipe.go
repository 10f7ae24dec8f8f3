// Package recipe implements the batch recipe executor: an ordered list of
// named operations, structurally validated up front and applied against
// the operation registry as one accumulated changeset.
package recipe

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/weave/internal/graph"
)

//go:embed schema.cue
var schemaCUE string

// Step is one recipe entry: an operation name plus its parameters.
type Step struct {
	Operation string         `yaml:"operation"`
	Params    map[string]any `yaml:"params"`
}

// Recipe is an ordered list of steps with an optional description. Name is
// the recipe file's base name; it becomes the transaction's recipe_id.
type Recipe struct {
	Name        string
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Load reads a recipe file (YAML, which subsumes JSON), validates its
// structure against the embedded CUE schema, and decodes it. Validation
// fails fast: a malformed recipe never reaches execution.
func Load(path string) (*Recipe, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, graph.NewErrorf(graph.ErrCodeDocumentNotFound, "recipe file not found: %s", path)
		}
		return nil, fmt.Errorf("read recipe %s: %w", path, err)
	}

	var data any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, graph.NewErrorf(graph.ErrCodeDocumentParse, "invalid recipe %s: %v", path, err)
	}
	if err := validateStructure(data); err != nil {
		return nil, graph.NewErrorf(graph.ErrCodeDocumentParse, "invalid recipe %s: %v", path, err)
	}

	var r Recipe
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return nil, graph.NewErrorf(graph.ErrCodeDocumentParse, "invalid recipe %s: %v", path, err)
	}
	r.Name = filepath.Base(path)
	return &r, nil
}

// validateStructure unifies the decoded recipe with the #Recipe schema.
func validateStructure(data any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile recipe schema: %w", err)
	}

	val := ctx.Encode(data)
	if err := val.Err(); err != nil {
		return err
	}

	unified := schema.LookupPath(cue.ParsePath("#Recipe")).Unify(val)
	if err := unified.Err(); err != nil {
		return err
	}
	return unified.Validate(cue.Concrete(true))
}
