// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package boilerplate

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
)

//go:embed rules/*.yaml
var builtinRules embed.FS

//go:embed ruleset.schema.json
var schemaJSON []byte

const schemaURL = "https://topic-engine.local/schema/ruleset.schema.json"

// builtinOrder fixes the evaluation order of the embedded rule sets.
var builtinOrder = []string{"common.yaml", "english.yaml", "german.yaml"}

// LoadRuleSet reads a YAML rule set from path, validates it against the
// rule-set schema and compiles its patterns.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule set %s: %w", path, err)
	}
	set, err := ParseRuleSet(data)
	if err != nil {
		return nil, fmt.Errorf("loading rule set %s: %w", path, err)
	}
	return set, nil
}

// ParseRuleSet validates and compiles a YAML rule set document.
func ParseRuleSet(data []byte) (*RuleSet, error) {
	if problems := ValidateRuleSet(data); len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRuleSet, strings.Join(problems, "; "))
	}

	var set RuleSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRuleSet, err)
	}
	if err := set.compile(); err != nil {
		return nil, err
	}
	return &set, nil
}

// ValidateRuleSet checks a YAML rule set document against the embedded JSON
// schema and returns one message per violation. An empty result means the
// document is structurally valid; patterns are not compiled here.
func ValidateRuleSet(data []byte) []string {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return []string{fmt.Sprintf("parsing YAML: %v", err)}
	}
	if doc == nil {
		return []string{"rule set document is empty"}
	}

	// Round-trip through JSON so numbers reach the validator as json.Number.
	raw, err := json.Marshal(doc)
	if err != nil {
		return []string{fmt.Sprintf("converting to JSON: %v", err)}
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return []string{fmt.Sprintf("decoding JSON: %v", err)}
	}

	schema, err := compileSchema()
	if err != nil {
		return []string{fmt.Sprintf("compiling schema: %v", err)}
	}

	if err := schema.Validate(inst); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return flattenValidationError(verr)
		}
		return []string{err.Error()}
	}
	return nil
}

func compileSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
}

// flattenValidationError collects the leaf messages of a validation error
// tree, each prefixed with its instance location.
func flattenValidationError(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "$"
		if len(verr.InstanceLocation) > 0 {
			loc = "$." + strings.Join(verr.InstanceLocation, ".")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}
	var msgs []string
	for _, cause := range verr.Causes {
		msgs = append(msgs, flattenValidationError(cause)...)
	}
	return msgs
}

// Builtin returns freshly compiled copies of the embedded rule sets:
// common (language-neutral), english and german.
func Builtin() ([]*RuleSet, error) {
	sets := make([]*RuleSet, 0, len(builtinOrder))
	for _, name := range builtinOrder {
		data, err := builtinRules.ReadFile(path.Join("rules", name))
		if err != nil {
			return nil, fmt.Errorf("reading builtin rule set %s: %w", name, err)
		}
		set, err := ParseRuleSet(data)
		if err != nil {
			return nil, fmt.Errorf("builtin rule set %s: %w", name, err)
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// DefaultClassifier returns a classifier over the builtin rule sets. It
// panics if an embedded rule set is broken, which only a bad build can cause.
func DefaultClassifier() *Classifier {
	sets, err := Builtin()
	if err != nil {
		panic(err)
	}
	return NewClassifier(sets...)
}
