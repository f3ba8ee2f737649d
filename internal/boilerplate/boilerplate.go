// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package boilerplate recognises institutional, administrative and generic
// slide text (course banners, instructor names, "Agenda", "Thank You") that
// must never become a topic. Rules are grouped into versioned rule sets that
// can be loaded from YAML and selected per document language.
package boilerplate

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/topic-engine/internal/normalize"
)

// ErrInvalidRuleSet is returned when a rule set fails schema validation or
// contains a pattern that does not compile.
var ErrInvalidRuleSet = errors.New("invalid rule set")

// Rule is a single boilerplate matcher. Pattern is a regular expression
// evaluated against the normalized form of a line (lowercase, no punctuation).
type Rule struct {
	ID       string `json:"id" yaml:"id"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	Pattern  string `json:"pattern" yaml:"pattern"`

	re *regexp.Regexp
}

// Match reports whether the normalized key matches the rule.
func (r *Rule) Match(key string) bool {
	return r.re != nil && r.re.MatchString(key)
}

// RuleSet is a named, versioned list of rules. An empty Language applies the
// set to every document.
type RuleSet struct {
	Name        string `json:"name" yaml:"name"`
	Version     int    `json:"version" yaml:"version"`
	Language    string `json:"language,omitempty" yaml:"language,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Rules       []Rule `json:"rules" yaml:"rules"`
}

// Ref returns the set's name and version, e.g. "english@1".
func (s *RuleSet) Ref() string {
	return fmt.Sprintf("%s@%d", s.Name, s.Version)
}

// compile prepares every rule's pattern. Rule IDs must be unique within the set.
func (s *RuleSet) compile() error {
	seen := make(map[string]bool, len(s.Rules))
	for i := range s.Rules {
		r := &s.Rules[i]
		if seen[r.ID] {
			return fmt.Errorf("%w: %s: duplicate rule id %q", ErrInvalidRuleSet, s.Name, r.ID)
		}
		seen[r.ID] = true

		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return fmt.Errorf("%w: %s: rule %q: %v", ErrInvalidRuleSet, s.Name, r.ID, err)
		}
		r.re = re
	}
	return nil
}

// Match is a rule hit, naming the rule set and rule that fired.
type Match struct {
	RuleSet  string
	RuleID   string
	Category string
}

// Classifier evaluates lines against an ordered list of rule sets.
type Classifier struct {
	sets []*RuleSet
}

// NewClassifier builds a classifier over the given compiled rule sets.
// Sets are evaluated in the order given.
func NewClassifier(sets ...*RuleSet) *Classifier {
	return &Classifier{sets: sets}
}

// RuleSets returns the sets the classifier evaluates.
func (c *Classifier) RuleSets() []*RuleSet {
	return c.sets
}

// Version identifies the combination of rule sets, e.g. "common@1+english@1".
func (c *Classifier) Version() string {
	refs := make([]string, len(c.sets))
	for i, s := range c.sets {
		refs[i] = s.Ref()
	}
	return strings.Join(refs, "+")
}

// Languages returns the sorted distinct languages covered by language-specific sets.
func (c *Classifier) Languages() []string {
	seen := make(map[string]bool)
	var langs []string
	for _, s := range c.sets {
		if s.Language != "" && !seen[s.Language] {
			seen[s.Language] = true
			langs = append(langs, s.Language)
		}
	}
	sort.Strings(langs)
	return langs
}

// ForLanguage returns a classifier restricted to the language-neutral sets
// plus the sets for lang. When no set targets lang the receiver is returned
// unchanged, so an unrecognised language keeps every rule active.
func (c *Classifier) ForLanguage(lang string) *Classifier {
	if lang == "" {
		return c
	}
	var sets []*RuleSet
	matched := false
	for _, s := range c.sets {
		switch s.Language {
		case "":
			sets = append(sets, s)
		case lang:
			sets = append(sets, s)
			matched = true
		}
	}
	if !matched {
		return c
	}
	return &Classifier{sets: sets}
}

// MatchKey tests an already-normalized key. The first matching rule wins.
func (c *Classifier) MatchKey(key string) (Match, bool) {
	if key == "" {
		return Match{}, false
	}
	for _, s := range c.sets {
		for i := range s.Rules {
			r := &s.Rules[i]
			if r.Match(key) {
				return Match{RuleSet: s.Name, RuleID: r.ID, Category: r.Category}, true
			}
		}
	}
	return Match{}, false
}

// Match normalizes text and tests it against every rule.
func (c *Classifier) Match(text string) (Match, bool) {
	return c.MatchKey(normalize.Key(text))
}

// IsBoilerplate reports whether text matches any rule.
func (c *Classifier) IsBoilerplate(text string) bool {
	_, ok := c.Match(text)
	return ok
}
