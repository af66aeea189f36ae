// Package roster loads the technician roster and normalizes the many
// historical field-name variants of upstream exports into one canonical
// record. All downstream code consumes only the canonical shape.
package roster

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rachidben91-web/demat-bt-bdsn/internal/textnorm"
)

// Technician is the canonical roster record. NNI is the badge-style join
// key (one letter, five digits) used by the team resolver.
type Technician struct {
	NNI     string `json:"nni"`
	Name    string `json:"name"`
	Manager string `json:"manager,omitempty"`
	PTC     string `json:"ptc,omitempty"`
	PTD     string `json:"ptd,omitempty"`
}

// Roster is a read-only technician directory keyed by NNI.
type Roster struct {
	list  []Technician
	byNNI map[string]Technician
}

// Load reads a roster file, YAML or JSON depending on extension. The file
// must hold a list of records; field names are normalized per Normalize.
func Load(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var raw []map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse roster yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse roster json: %w", err)
		}
	}

	return New(Normalize(raw)), nil
}

// New builds a Roster from canonical records. Records without an NNI are
// kept in the list but cannot be resolved.
func New(list []Technician) *Roster {
	r := &Roster{list: list, byNNI: make(map[string]Technician, len(list))}
	for _, t := range list {
		key := strings.ToUpper(t.NNI)
		if key == "" {
			continue
		}
		if _, dup := r.byNNI[key]; !dup {
			r.byNNI[key] = t
		}
	}
	return r
}

// Normalize is the single normalization boundary for upstream roster data.
// It folds every historical alias (nni/NNI/id/code, name/nom/fullName,
// prenom+nom, manager/referent/responsable, ptc/ptd) into the canonical
// record.
func Normalize(raw []map[string]any) []Technician {
	out := make([]Technician, 0, len(raw))
	for _, m := range raw {
		t := Technician{
			NNI:     strings.ToUpper(firstString(m, "nni", "NNI", "id", "code")),
			Name:    textnorm.Clean(firstString(m, "name", "nom", "fullName", "display")),
			Manager: textnorm.Clean(firstString(m, "manager", "Manager", "referent", "responsable")),
			PTC:     firstString(m, "ptc", "PTC"),
			PTD:     firstString(m, "ptd", "PTD"),
		}
		if t.Name == "" {
			prenom := firstString(m, "prenom", "firstName")
			nom := firstString(m, "nom", "lastName")
			t.Name = textnorm.Clean(prenom + " " + nom)
		}
		out = append(out, t)
	}
	return out
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// ByNNI resolves a technician by badge identifier, case-insensitively.
// Absence is a valid, displayable state: callers fall back to showing the
// raw identifier.
func (r *Roster) ByNNI(nni string) (Technician, bool) {
	if r == nil {
		return Technician{}, false
	}
	t, ok := r.byNNI[strings.ToUpper(strings.TrimSpace(nni))]
	return t, ok
}

// All returns the canonical records in load order.
func (r *Roster) All() []Technician {
	if r == nil {
		return nil
	}
	return r.list
}

// Len returns the roster size.
func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.list)
}
