package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Mode selects how strictly control parameters are checked.
type Mode int

const (
	// Lenient requires the parameter to be present and numeric.
	Lenient Mode = iota

	// Strict additionally enforces value ranges.
	Strict
)

// Validator checks control parameters against the per-action JSON Schemas
// in actionSchemas. Compiled schemas are cached by action and mode.
type Validator struct {
	mu    sync.RWMutex
	cache map[cacheKey]*jsonschema.Schema
}

type cacheKey struct {
	action string
	mode   Mode
}

// NewValidator creates a Validator with an empty cache.
func NewValidator() *Validator {
	return &Validator{cache: make(map[cacheKey]*jsonschema.Schema)}
}

// Validate checks params for action. Actions without a schema (turn_on,
// turn_off, unknown names) are not the validator's concern and pass.
func (v *Validator) Validate(action string, params map[string]any, mode Mode) error {
	compiled, err := v.compile(action, mode)
	if err != nil {
		return err
	}
	if compiled == nil {
		return nil
	}

	if params == nil {
		params = map[string]any{}
	}

	// Round-trip through JSON so Go numeric types reach the validator as
	// json.Number, which is what jsonschema expects.
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encoding parameters: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decoding parameters: %w", err)
	}

	return compiled.Validate(doc)
}

func (v *Validator) compile(action string, mode Mode) (*jsonschema.Schema, error) {
	key := cacheKey{action: action, mode: mode}

	v.mu.RLock()
	if s, ok := v.cache[key]; ok {
		v.mu.RUnlock()
		return s, nil
	}
	v.mu.RUnlock()

	def, ok := actionSchemas[action]
	if !ok {
		return nil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.cache[key]; ok {
		return s, nil
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def.document(mode)))
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema for %s: %w", action, err)
	}

	url := fmt.Sprintf("%s-%d.json", action, mode)
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("failed to add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile: %w", err)
	}

	v.cache[key] = compiled
	return compiled, nil
}
