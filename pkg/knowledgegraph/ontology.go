// Package knowledgegraph builds a lightweight domain knowledge graph from
// the newsletter's retained article text: dictionary-based entity
// extraction, type-pair relation inference, centrality-ranked glossary
// generation. Deliberately dependency-free of any ML/NLP library — the
// spec requires this to work without one, and nothing in the reference
// corpus supplies a suitable alternative anyway.
package knowledgegraph

import (
	"regexp"
	"sort"
	"strings"

	"github.com/oncopulse/newsletter/pkg/state"
)

// Ontology is the entity-type -> dictionary-term vocabulary the extractor
// matches against. Keys are state.EntityType values; built from
// pkg/config's built-in/user-merged ontology.yaml.
type Ontology map[string][]string

// term pairs a dictionary phrase with the entity type it belongs to, used
// internally once the ontology is flattened and sorted for longest-match.
type term struct {
	phrase     string
	lower      string
	entityType state.EntityType
}

// Extractor performs longest-match-wins, case-insensitive, token-boundary
// entity extraction against a fixed ontology.
type Extractor struct {
	terms []term // sorted longest-phrase-first
}

// NewExtractor flattens and sorts the ontology for longest-match lookup.
func NewExtractor(ont Ontology) *Extractor {
	var terms []term
	for entityType, phrases := range ont {
		for _, p := range phrases {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			terms = append(terms, term{phrase: p, lower: strings.ToLower(p), entityType: state.EntityType(entityType)})
		}
	}
	// Break length ties on the phrase itself so two equal-length dictionary
	// terms that could overlap a match range resolve the same way on every
	// run, regardless of the ontology map's iteration order above.
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i].lower) != len(terms[j].lower) {
			return len(terms[i].lower) > len(terms[j].lower)
		}
		return terms[i].lower < terms[j].lower
	})
	return &Extractor{terms: terms}
}

// Extract finds every ontology term present in text, returning one KGEntity
// per distinct (surface form, entity type) with Frequency counting
// occurrences and Contexts holding the sentence each occurrence appeared
// in (capped per entity to keep output bounded).
func (ex *Extractor) Extract(sentences []string) []state.KGEntity {
	counts := make(map[string]*state.KGEntity)
	order := make([]string, 0)

	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		matched := make([]bool, len(lower)) // tracks already-claimed byte ranges, longest match wins

		for _, t := range ex.terms {
			for _, loc := range findTokenBoundaryMatches(lower, t.lower) {
				if rangeClaimed(matched, loc[0], loc[1]) {
					continue
				}
				markClaimed(matched, loc[0], loc[1])

				surface := sentence[loc[0]:loc[1]]
				key := state.KGEntity{SurfaceForm: normalizeSurface(surface), EntityType: t.entityType}.EntityKey()

				e, ok := counts[key]
				if !ok {
					e = &state.KGEntity{SurfaceForm: normalizeSurface(surface), EntityType: t.entityType}
					counts[key] = e
					order = append(order, key)
				}
				e.Frequency++
				if len(e.Contexts) < 5 {
					e.Contexts = append(e.Contexts, sentence)
				}
			}
		}
	}

	out := make([]state.KGEntity, 0, len(order))
	for _, key := range order {
		out = append(out, *counts[key])
	}
	return out
}

// normalizeSurface collapses internal whitespace and trims, so the same
// entity matched across differently-spaced occurrences still dedups to
// one KGEntity.
func normalizeSurface(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func rangeClaimed(matched []bool, start, end int) bool {
	for i := start; i < end && i < len(matched); i++ {
		if matched[i] {
			return true
		}
	}
	return false
}

func markClaimed(matched []bool, start, end int) {
	for i := start; i < end && i < len(matched); i++ {
		matched[i] = true
	}
}

// findTokenBoundaryMatches finds every occurrence of phrase in text where
// both edges fall on a token boundary (start/end of string, or adjacent to
// a non-alphanumeric rune), so "PD-1" doesn't match inside "PD-10" and
// "AI" doesn't match inside "pAIn".
func findTokenBoundaryMatches(text, phrase string) [][2]int {
	if phrase == "" {
		return nil
	}
	var matches [][2]int
	start := 0
	for {
		idx := strings.Index(text[start:], phrase)
		if idx == -1 {
			break
		}
		absStart := start + idx
		absEnd := absStart + len(phrase)
		if isTokenBoundary(text, absStart) && isTokenBoundary(text, absEnd) {
			matches = append(matches, [2]int{absStart, absEnd})
		}
		start = absStart + 1
	}
	return matches
}

var wordChar = regexp.MustCompile(`[a-z0-9]`)

func isTokenBoundary(text string, pos int) bool {
	if pos <= 0 || pos >= len(text) {
		return true
	}
	before := text[pos-1 : pos]
	after := text[pos : pos+1]
	return !(wordChar.MatchString(before) && wordChar.MatchString(after))
}

// sentenceSplitPattern segments plain text into sentences on '.', '!', '?'
// followed by whitespace and a capital letter or end of string — a
// deliberately simple heuristic (no ML dependency) that tolerates the
// common "Dr. Smith found..." abbreviation case by requiring the
// following token to start uppercase.
var sentenceSplitPattern = regexp.MustCompile(`(?:[.!?])\s+(?:[A-Z]|$)`)

// SplitSentences segments text into trimmed, non-empty sentences.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	indices := sentenceSplitPattern.FindAllStringIndex(text, -1)
	if len(indices) == 0 {
		return []string{text}
	}

	var sentences []string
	prev := 0
	for _, idx := range indices {
		end := idx[0] + 1 // include the terminal punctuation, exclude the trailing space/capital we matched
		s := strings.TrimSpace(text[prev:end])
		if s != "" {
			sentences = append(sentences, s)
		}
		prev = idx[1] - 1
	}
	if tail := strings.TrimSpace(text[prev:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}
