package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/okian/fplsquad/internal/domain/model"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases a name, strips accents and collapses whitespace.
func Fold(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(name))
	if err != nil {
		folded = strings.ToLower(name)
	}
	return strings.Join(strings.Fields(folded), " ")
}

// FindByName returns candidates whose folded name equals the folded query, or, when
// none match exactly, those containing it.
func FindByName(cands []model.Candidate, query string) []model.Candidate {
	q := Fold(query)
	if q == "" {
		return nil
	}
	var exact, partial []model.Candidate
	for _, c := range cands {
		name := Fold(c.Name)
		switch {
		case name == q:
			exact = append(exact, c)
		case strings.Contains(name, q):
			partial = append(partial, c)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return partial
}

// ResolveIDs maps tokens (ids or names) to candidate ids. A name must match exactly one
// candidate.
func ResolveIDs(cands []model.Candidate, tokens []string) ([]int, error) {
	out := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if id, err := strconv.Atoi(tok); err == nil {
			out = append(out, id)
			continue
		}
		matches := FindByName(cands, tok)
		switch len(matches) {
		case 0:
			return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, tok)
		case 1:
			out = append(out, matches[0].ID)
		default:
			return nil, fmt.Errorf("%w: %q matches %d players", ErrAmbiguousPlayer, tok, len(matches))
		}
	}
	return out, nil
}
