// Package badges implements the configurable business-category engine. A
// priority-ordered rule set with exclusion keywords assigns zero or more
// category tags to a work order from its descriptive text.
//
// Missing or invalid configuration degrades to "no category" for every work
// order; badge absence is always an acceptable state, never an error.
package badges

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/rachidben91-web/demat-bt-bdsn/internal/textnorm"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/workorder"
)

// DefaultMaxPerOrder caps the badge count per work order when the
// configuration does not set one.
const DefaultMaxPerOrder = 2

// RuleEntry is one matching clause of a badge. A clause matches when at
// least one Any keyword is present (if set), every All keyword is present
// (if set) and at least one Any2 keyword is present (if set).
type RuleEntry struct {
	Any  []string `json:"any,omitempty"`
	All  []string `json:"all,omitempty"`
	Any2 []string `json:"any2,omitempty"`
}

// Badge is one configured business category. Entries in Rules are OR'd;
// any Exclude keyword present in the search text vetoes the badge outright.
type Badge struct {
	ID       string      `json:"id"`
	Label    string      `json:"label"`
	Color    string      `json:"color"`
	Icon     string      `json:"icon,omitempty"`
	Priority int         `json:"priority"`
	Rules    []RuleEntry `json:"rules"`
	Exclude  []string    `json:"exclude,omitempty"`
}

// RuleSet is the badge configuration document.
type RuleSet struct {
	Version string  `json:"version"`
	Badges  []Badge `json:"badges"`
	Notes   struct {
		UI struct {
			Display struct {
				StackOrder     []string `json:"stackOrder"`
				MaxBadgesPerBT int      `json:"maxBadgesPerBT"`
			} `json:"display"`
		} `json:"ui"`
	} `json:"notes"`
}

// ruleSchema validates the shape of a rules document before it is trusted.
const ruleSchema = `{
  "type": "object",
  "required": ["badges"],
  "properties": {
    "version": {"type": "string"},
    "badges": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "rules"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "label": {"type": "string"},
          "color": {"type": "string"},
          "icon": {"type": "string"},
          "priority": {"type": "integer"},
          "rules": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "any":  {"type": "array", "items": {"type": "string", "minLength": 1}},
                "all":  {"type": "array", "items": {"type": "string", "minLength": 1}},
                "any2": {"type": "array", "items": {"type": "string", "minLength": 1}}
              },
              "additionalProperties": false
            }
          },
          "exclude": {"type": "array", "items": {"type": "string", "minLength": 1}}
        }
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("badges-rules.schema.json", ruleSchema)

// LoadRules reads and validates a badge-rules document.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read badge rules: %w", err)
	}
	return ParseRules(data)
}

// ParseRules validates a rules document against the embedded schema and
// decodes it.
func ParseRules(data []byte) (*RuleSet, error) {
	var doc any
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse badge rules: %w", err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("badge rules do not match schema: %w", err)
	}

	var rs RuleSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("decode badge rules: %w", err)
	}
	return &rs, nil
}

// Engine applies a rule set to work orders. A nil Engine or an Engine with
// no rule set classifies everything to the empty list.
type Engine struct {
	rs *RuleSet
}

// NewEngine wraps a rule set; rs may be nil for degraded operation.
func NewEngine(rs *RuleSet) *Engine {
	return &Engine{rs: rs}
}

// Badge returns the configured badge for id.
func (e *Engine) Badge(id string) (Badge, bool) {
	if e == nil || e.rs == nil {
		return Badge{}, false
	}
	for _, b := range e.rs.Badges {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}

// Detect assigns category ids to a work order from its objet and
// observations fields. The designation field is deliberately not consulted:
// that zone bleeds in unrelated text from an adjacent column on the source
// form and produced systematic false positives.
func (e *Engine) Detect(o *workorder.WorkOrder) []string {
	if e == nil || e.rs == nil || len(e.rs.Badges) == 0 {
		return []string{}
	}

	text := textnorm.Key(o.Objet + " " + o.Observations)

	ordered := make([]Badge, len(e.rs.Badges))
	copy(ordered, e.rs.Badges)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority > ordered[j].Priority })

	matched := []string{}
	seen := map[string]bool{}
	for _, b := range ordered {
		if seen[b.ID] || excluded(text, b.Exclude) {
			continue
		}
		for _, entry := range b.Rules {
			if entryMatches(text, entry) {
				matched = append(matched, b.ID)
				seen[b.ID] = true
				break
			}
		}
	}

	e.stackSort(matched)

	max := e.rs.Notes.UI.Display.MaxBadgesPerBT
	if max <= 0 {
		max = DefaultMaxPerOrder
	}
	if len(matched) > max {
		matched = matched[:max]
	}
	return matched
}

// stackSort reorders matched ids by the configured display stacking order;
// unlisted ids keep their priority order after the listed ones.
func (e *Engine) stackSort(ids []string) {
	stack := e.rs.Notes.UI.Display.StackOrder
	if len(stack) == 0 {
		return
	}
	rank := func(id string) int {
		for i, s := range stack {
			if s == id {
				return i
			}
		}
		return len(stack) + 1
	}
	sort.SliceStable(ids, func(i, j int) bool { return rank(ids[i]) < rank(ids[j]) })
}

func excluded(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, textnorm.Key(k)) {
			return true
		}
	}
	return false
}

func entryMatches(text string, entry RuleEntry) bool {
	has := func(k string) bool { return strings.Contains(text, textnorm.Key(k)) }

	if len(entry.Any) > 0 {
		ok := false
		for _, k := range entry.Any {
			if has(k) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, k := range entry.All {
		if !has(k) {
			return false
		}
	}
	if len(entry.Any2) > 0 {
		ok := false
		for _, k := range entry.Any2 {
			if has(k) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return len(entry.Any) > 0 || len(entry.All) > 0 || len(entry.Any2) > 0
}
