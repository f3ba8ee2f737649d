// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package hierarchy folds numbered topic series such as "Oligopoly I:
// Cournot", "Oligopoly II: Bertrand" into a single parent topic whose
// members become subtopics.
package hierarchy

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/topic-engine/internal/normalize"
	"github.com/pdiddy/topic-engine/pkg/types"
)

// markerPattern matches "<prefix> <marker>[ sep] [free text]" where marker
// is a roman numeral I to VI, a digit 1 to 9 or a capital letter. Matching
// is case-sensitive so ordinary lowercase words are never taken as markers.
var markerPattern = regexp.MustCompile(`^(.+?)\s+(VI|IV|V|I{1,3}|[1-9]|[A-Z])(?:\s*[:\-–.]\s*(.+)|\s+(.+))?$`)

// Split parses a series title into its prefix, marker and free text.
func Split(text string) (prefix, marker, rest string, ok bool) {
	m := markerPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", "", "", false
	}
	rest = m[3]
	if rest == "" {
		rest = m[4]
	}
	return strings.TrimSpace(m[1]), m[2], strings.TrimSpace(rest), true
}

// Result is the outcome of a merge.
type Result struct {
	// Topics holds parents and standalone topics, sorted by key.
	Topics []types.Topic

	// Subtopics lists every folded member, grouped by parent in Topics order.
	Subtopics []types.Subtopic
}

type series struct {
	name    string
	key     string
	markers map[string]bool
	members []*types.Candidate
}

type parent struct {
	topic   types.Topic
	members []*types.Candidate
}

func (p *parent) absorb(c *types.Candidate) {
	p.topic.Pages = types.UnionPages(p.topic.Pages, c.Pages)
	p.topic.Occurrences = len(p.topic.Pages)
	if avg := c.AvgFontSize(); avg > p.topic.AvgFontSize {
		p.topic.AvgFontSize = avg
	}
	if len(p.topic.Pages) > 0 {
		p.topic.FirstPage = p.topic.Pages[0]
	}
	p.members = append(p.members, c)
}

// Merge groups candidates by series prefix. A prefix carrying two or more
// distinct markers becomes a parent topic covering the union of their pages, with
// the largest member average font. Candidates whose key contains a parent's
// key are folded into that parent too, so given substring-free input no
// final key is a substring of another.
func Merge(cands []*types.Candidate) Result {
	ordered := append([]*types.Candidate(nil), cands...)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].FirstPage != ordered[j].FirstPage {
			return ordered[i].FirstPage < ordered[j].FirstPage
		}
		return ordered[i].Key < ordered[j].Key
	})

	bySeries := make(map[string]*series)
	var seriesOrder []*series
	var standalone []*types.Candidate
	for _, c := range ordered {
		prefix, marker, _, ok := Split(c.Text)
		key := normalize.Key(prefix)
		if !ok || key == "" {
			standalone = append(standalone, c)
			continue
		}
		s, exists := bySeries[key]
		if !exists {
			s = &series{name: prefix, key: key, markers: make(map[string]bool)}
			bySeries[key] = s
			seriesOrder = append(seriesOrder, s)
		}
		s.markers[marker] = true
		s.members = append(s.members, c)
	}

	var parents []*parent
	for _, s := range seriesOrder {
		// Members sharing one marker are a single sibling, not a series.
		if len(s.markers) < 2 {
			standalone = append(standalone, s.members...)
			continue
		}
		p := &parent{topic: types.Topic{Name: s.name, Key: s.key}}
		for _, m := range s.members {
			p.absorb(m)
		}
		parents = append(parents, p)
	}

	// Fold longer parents into shorter ones they contain.
	sort.Slice(parents, func(i, j int) bool {
		if len(parents[i].topic.Key) != len(parents[j].topic.Key) {
			return len(parents[i].topic.Key) < len(parents[j].topic.Key)
		}
		return parents[i].topic.Key < parents[j].topic.Key
	})
	var kept []*parent
	for _, p := range parents {
		if host := containing(kept, p.topic.Key); host != nil {
			for _, m := range p.members {
				host.absorb(m)
			}
			continue
		}
		kept = append(kept, p)
	}

	var res Result
	sort.Slice(standalone, func(i, j int) bool { return standalone[i].Key < standalone[j].Key })
	for _, c := range standalone {
		if host := containing(kept, c.Key); host != nil {
			host.absorb(c)
			continue
		}
		res.Topics = append(res.Topics, types.TopicFromCandidate(c))
	}

	for _, p := range kept {
		sort.Slice(p.members, func(i, j int) bool {
			if p.members[i].FirstPage != p.members[j].FirstPage {
				return p.members[i].FirstPage < p.members[j].FirstPage
			}
			return p.members[i].Key < p.members[j].Key
		})
		seen := make(map[string]bool, len(p.members))
		for _, m := range p.members {
			if seen[m.Text] {
				continue
			}
			seen[m.Text] = true
			p.topic.Subtopics = append(p.topic.Subtopics, m.Text)
		}
		res.Topics = append(res.Topics, p.topic)
	}

	sort.Slice(res.Topics, func(i, j int) bool { return res.Topics[i].Key < res.Topics[j].Key })

	membersByKey := make(map[string][]*types.Candidate, len(kept))
	for _, p := range kept {
		membersByKey[p.topic.Key] = p.members
	}
	for _, t := range res.Topics {
		seen := make(map[string]bool)
		for _, m := range membersByKey[t.Key] {
			if seen[m.Text] {
				continue
			}
			seen[m.Text] = true
			res.Subtopics = append(res.Subtopics, types.Subtopic{
				Name:        m.Text,
				Key:         m.Key,
				Parent:      t.Name,
				Occurrences: m.Occurrences(),
				FirstPage:   m.FirstPage,
			})
		}
	}
	return res
}

// containing returns the first parent whose key is a substring of key.
func containing(parents []*parent, key string) *parent {
	for _, p := range parents {
		if strings.Contains(key, p.topic.Key) {
			return p
		}
	}
	return nil
}
