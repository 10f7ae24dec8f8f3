// Package validate implements the read-only integrity checks over a graph
// store: duplicate nodes, duplicate relations, and dangling relation
// endpoints. Checks never mutate the store and are idempotent; the caller
// decides whether to persist the issue list into the document.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/weave/internal/graph"
)

// Issue codes.
const (
	CodeDuplicateNode     = "DUPLICATE_NODE"
	CodeDuplicateRelation = "DUPLICATE_RELATION"
	CodeDanglingRelation  = "DANGLING_RELATION"
)

// SeverityError is the severity of all current checks.
const SeverityError = "ERROR"

// Issue is one structured validation finding.
type Issue struct {
	Code     string         `json:"issue_code"`
	Severity string         `json:"severity"`
	Message  string         `json:"message"`
	Details  map[string]any `json:"details,omitempty"`
}

// ToMap converts the issue to the map shape stored under the document's
// validation_issues property.
func (i Issue) ToMap() map[string]any {
	m := map[string]any{
		"issue_code": i.Code,
		"severity":   i.Severity,
		"message":    i.Message,
	}
	if i.Details != nil {
		m["details"] = i.Details
	}
	return m
}

// Run executes all checks against g and returns the flat issue list.
func Run(g *graph.Graph) []Issue {
	var issues []Issue
	issues = append(issues, CheckDuplicateNodes(g)...)
	issues = append(issues, CheckDuplicateRelations(g)...)
	issues = append(issues, CheckDanglingRelations(g)...)
	return issues
}

// CheckDuplicateNodes groups nodes by MUID and reports one issue per MUID
// shared by more than one node. The first occurrence is reported as the
// canonical instance.
func CheckDuplicateNodes(g *graph.Graph) []Issue {
	byMUID := map[string][]int{}
	var order []string
	for i, node := range g.Nodes {
		muid := node.MUID()
		if muid == "" {
			continue
		}
		if _, seen := byMUID[muid]; !seen {
			order = append(order, muid)
		}
		byMUID[muid] = append(byMUID[muid], i)
	}

	var issues []Issue
	for _, muid := range order {
		indices := byMUID[muid]
		if len(indices) < 2 {
			continue
		}
		occurrences := make([]any, len(indices))
		for i, idx := range indices {
			occurrences[i] = idx
		}
		issues = append(issues, Issue{
			Code:     CodeDuplicateNode,
			Severity: SeverityError,
			Message:  fmt.Sprintf("MUID %q is used by %d nodes", muid, len(indices)),
			Details: map[string]any{
				"muid":        muid,
				"canonical":   graph.CloneMap(g.Nodes[indices[0]]),
				"occurrences": occurrences,
			},
		})
	}
	return issues
}

// CheckDuplicateRelations groups relations by the signature
// (from_MUID, to_MUID, type, class) and reports one issue per signature
// that appears more than once.
func CheckDuplicateRelations(g *graph.Graph) []Issue {
	bySig := map[string][]int{}
	var order []string
	for i, rel := range g.Relations {
		sig := strings.Join([]string{rel.From(), rel.To(), rel.Type(), rel.Class()}, "|")
		if _, seen := bySig[sig]; !seen {
			order = append(order, sig)
		}
		bySig[sig] = append(bySig[sig], i)
	}

	var issues []Issue
	for _, sig := range order {
		indices := bySig[sig]
		if len(indices) < 2 {
			continue
		}
		first := g.Relations[indices[0]]
		occurrences := make([]any, len(indices))
		for i, idx := range indices {
			occurrences[i] = idx
		}
		issues = append(issues, Issue{
			Code:     CodeDuplicateRelation,
			Severity: SeverityError,
			Message: fmt.Sprintf("relation (%s -> %s, type %q) appears %d times",
				first.From(), first.To(), first.Type(), len(indices)),
			Details: map[string]any{
				"from_MUID":   first.From(),
				"to_MUID":     first.To(),
				"type":        first.Type(),
				"class":       first.Class(),
				"occurrences": occurrences,
			},
		})
	}
	return issues
}

// CheckDanglingRelations reports one issue for every relation endpoint
// whose MUID does not belong to any node in the store.
func CheckDanglingRelations(g *graph.Graph) []Issue {
	known := g.NodeMUIDs()

	var issues []Issue
	for _, rel := range g.Relations {
		for _, endpoint := range []struct {
			direction string
			muid      string
		}{
			{"from", rel.From()},
			{"to", rel.To()},
		} {
			if known[endpoint.muid] {
				continue
			}
			issues = append(issues, Issue{
				Code:     CodeDanglingRelation,
				Severity: SeverityError,
				Message: fmt.Sprintf("%s_MUID %q not found in nodes (relation %q)",
					endpoint.direction, endpoint.muid, rel.EntityID()),
				Details: map[string]any{
					"direction":   endpoint.direction,
					"missing":     endpoint.muid,
					"relation_id": rel.EntityID(),
				},
			})
		}
	}
	return issues
}

// ToProperty converts issues to the plain list stored under
// validation_issues.
func ToProperty(issues []Issue) []any {
	out := make([]any, len(issues))
	for i, issue := range issues {
		out[i] = issue.ToMap()
	}
	return out
}

// EqualToStored compares a fresh issue list with the previously stored
// validation_issues property. Comparison is by the multiset of
// (code, message) pairs: position-derived details (occurrence indices)
// depend on storage order and are ignored. Used to skip re-persisting and
// re-logging an unchanged issue list.
func EqualToStored(issues []Issue, stored any) bool {
	fresh := make([]string, 0, len(issues))
	for _, issue := range issues {
		fresh = append(fresh, issue.Code+"|"+issue.Message)
	}

	storedList, ok := stored.([]any)
	if !ok {
		return len(fresh) == 0 && stored == nil
	}
	prev := make([]string, 0, len(storedList))
	for _, item := range storedList {
		m, ok := item.(map[string]any)
		if !ok {
			return false
		}
		code, _ := m["issue_code"].(string)
		message, _ := m["message"].(string)
		prev = append(prev, code+"|"+message)
	}

	if len(fresh) != len(prev) {
		return false
	}
	sort.Strings(fresh)
	sort.Strings(prev)
	for i := range fresh {
		if fresh[i] != prev[i] {
			return false
		}
	}
	return true
}
