package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// overlaySchema validates configs/policies.json before it is merged. Bad config
// must fail loudly at load time, never at mutation time.
const overlaySchema = `{
  "type": "object",
  "properties": {
    "policies": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["code", "min_starters", "max_starters", "max_substitutes", "roles"],
        "properties": {
          "name": {"type": "string"},
          "code": {"type": "string", "minLength": 1},
          "min_starters": {"type": "integer", "minimum": 0},
          "max_starters": {"type": "integer", "minimum": 1},
          "max_substitutes": {"type": "integer", "minimum": 0},
          "roles": {"type": "array", "items": {"type": "string"}, "minItems": 1},
          "role_descriptions": {"type": "object"},
          "requires_unique_roles": {"type": "boolean"},
          "allows_multi_role": {"type": "boolean"}
        }
      }
    }
  },
  "required": ["policies"]
}`

type overlayFile struct {
	Policies []GameRosterPolicy `json:"policies"`
}

// LoadOverlayFile merges policies from a JSON file over the current table.
// Entries with a known code replace the built-in; new codes are added.
func (r *Registry) LoadOverlayFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read policy overlay: %w", err)
	}
	return r.LoadOverlay(b)
}

// LoadOverlay validates and merges raw overlay JSON.
func (r *Registry) LoadOverlay(b []byte) error {
	res, err := gojsonschema.Validate(gojsonschema.NewStringLoader(overlaySchema), gojsonschema.NewBytesLoader(b))
	if err != nil {
		return fmt.Errorf("validate policy overlay: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("policy overlay rejected: %s", strings.Join(msgs, "; "))
	}

	var f overlayFile
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("decode policy overlay: %w", err)
	}

	next := r.snapshot()
	for _, p := range f.Policies {
		p.Code = Normalize(p.Code)
		if p.MaxStarters < p.MinStarters {
			return fmt.Errorf("policy overlay rejected: %s: max_starters < min_starters", p.Code)
		}
		if p.Name == "" {
			p.Name = p.Code
		}
		next[p.Code] = p
	}
	r.swap(next)
	return nil
}
