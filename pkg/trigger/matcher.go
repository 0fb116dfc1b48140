// Package trigger maps words in chat messages to reaction types.
//
// The index is built once from configuration and never mutated afterwards,
// so a single Index can be shared by concurrent message handlers.
package trigger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Match represents a trigger word found in a message
type Match struct {
	Trigger      string
	ReactionType string
	MatchedText  string
	// Start and End are byte offsets into the lower-cased message text.
	Start int
	End   int
	// Confidence and ContextScore are always 1.0 for exact token matches.
	Confidence   float64
	ContextScore float64
}

// Definition declares the words that activate one reaction type
type Definition struct {
	ReactionType string
	Words        []string
	Hidden       bool
}

// Index maps normalized trigger words to the reaction types they activate
type Index struct {
	triggers map[string][]string
	words    []string
	byType   map[string][]string
	types    []string
	hidden   map[string]bool
}

// NewIndex builds an index from reaction definitions. A word claimed by
// several reactions lists them in definition order.
func NewIndex(defs []Definition) *Index {
	idx := &Index{
		triggers: make(map[string][]string),
		byType:   make(map[string][]string),
		hidden:   make(map[string]bool),
	}

	for _, def := range defs {
		if _, seen := idx.byType[def.ReactionType]; !seen {
			idx.types = append(idx.types, def.ReactionType)
			idx.byType[def.ReactionType] = nil
		}
		if def.Hidden {
			idx.hidden[def.ReactionType] = true
		}
		for _, word := range def.Words {
			idx.add(word, def.ReactionType)
		}
	}

	return idx
}

func (idx *Index) add(word, reactionType string) {
	word = Normalize(word)
	if word == "" {
		return
	}

	types, exists := idx.triggers[word]
	if !exists {
		idx.words = append(idx.words, word)
	}
	for _, t := range types {
		if t == reactionType {
			return
		}
	}

	idx.triggers[word] = append(types, reactionType)
	idx.byType[reactionType] = append(idx.byType[reactionType], word)
}

// Normalize lower-cases and trims a trigger word
func Normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// FindMatches scans text and returns one Match per reaction type for every
// whitespace-separated token present in the index, in message order.
func (idx *Index) FindMatches(text string) []Match {
	var matches []Match
	content := strings.ToLower(text)

	forEachToken(content, func(token string, start int) {
		for _, reactionType := range idx.triggers[token] {
			matches = append(matches, Match{
				Trigger:      token,
				ReactionType: reactionType,
				MatchedText:  token,
				Start:        start,
				End:          start + len(token),
				Confidence:   1.0,
				ContextScore: 1.0,
			})
		}
	})

	return matches
}

// forEachToken calls fn with every whitespace-separated token and its byte offset
func forEachToken(s string, fn func(token string, start int)) {
	start := -1
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsSpace(r) {
			if start >= 0 {
				fn(s[start:i], start)
				start = -1
			}
		} else if start < 0 {
			start = i
		}
		i += size
	}
	if start >= 0 {
		fn(s[start:], start)
	}
}

// Lookup returns the reaction types a normalized word activates
func (idx *Index) Lookup(word string) []string {
	types := idx.triggers[Normalize(word)]
	out := make([]string, len(types))
	copy(out, types)
	return out
}

// Words returns every registered trigger word in registration order
func (idx *Index) Words() []string {
	out := make([]string, len(idx.words))
	copy(out, idx.words)
	return out
}

// Len returns the number of distinct trigger words
func (idx *Index) Len() int {
	return len(idx.words)
}

// ReactionTriggers groups trigger words under a reaction type
type ReactionTriggers struct {
	ReactionType string
	Triggers     []string
}

// VisibleTriggers returns trigger words grouped by reaction type in
// definition order, leaving out hidden reactions and reactions without words.
func (idx *Index) VisibleTriggers() []ReactionTriggers {
	var out []ReactionTriggers
	for _, t := range idx.types {
		if idx.hidden[t] || len(idx.byType[t]) == 0 {
			continue
		}
		words := make([]string, len(idx.byType[t]))
		copy(words, idx.byType[t])
		out = append(out, ReactionTriggers{ReactionType: t, Triggers: words})
	}
	return out
}
