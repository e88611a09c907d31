package checkbook

import (
	"slices"
	"sort"
	"strings"
	"unicode"
)

// payeeJaccardThreshold is the word similarity above which two payees are considered the same.
const payeeJaccardThreshold = 0.6

// MaxPayeeSuggestions is the maximum number of payee suggestions returned.
const MaxPayeeSuggestions = 3

// words returns the set of lowercase words of s, with non alphanumeric runes stripped.
func words(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, f := range strings.Fields(strings.ToLower(s)) {
		w := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, f)
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

// firstToken returns the lowercase first whitespace separated token of s.
func firstToken(s string) string {
	f := strings.Fields(strings.ToLower(s))
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

// Jaccard returns the Jaccard similarity of the word sets of a and b, in [0, 1].
func Jaccard(a, b string) float64 {
	wa, wb := words(a), words(b)
	if len(wa) == 0 && len(wb) == 0 {
		return 0
	}
	inter := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	return float64(inter) / float64(union)
}

// PayeesAgree reports whether two payee labels plausibly name the same party:
// either label contains the first token of the other, case insensitive, or
// their word sets are similar enough.
func PayeesAgree(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if t := firstToken(a); t != "" && strings.Contains(lb, t) {
		return true
	}
	if t := firstToken(b); t != "" && strings.Contains(la, t) {
		return true
	}
	return Jaccard(a, b) > payeeJaccardThreshold
}

// SuggestPayees ranks candidate payees against what the user entered, and
// returns at most n of them (and never more than MaxPayeeSuggestions).
//
// Candidates are compared case insensitive. A candidate starting with the
// entered text ranks first, then candidates sharing its first token, then by
// word similarity. Ties keep the candidates order.
func SuggestPayees(entered string, candidates []string, n int) []string {
	n = min(n, MaxPayeeSuggestions)
	entered = strings.TrimSpace(entered)
	if entered == "" || n <= 0 {
		return nil
	}
	type scored struct {
		payee string
		score float64
	}
	var ranked []scored
	seen := make(map[string]bool)
	le := strings.ToLower(entered)
	for _, c := range candidates {
		lc := strings.ToLower(strings.TrimSpace(c))
		if lc == "" || seen[lc] || lc == le {
			continue
		}
		seen[lc] = true
		var score float64
		switch {
		case strings.HasPrefix(lc, le):
			score = 3
		case strings.Contains(lc, firstToken(entered)):
			score = 2
		default:
			score = Jaccard(entered, c)
		}
		if score > 0 {
			ranked = append(ranked, scored{strings.TrimSpace(c), score})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	out := make([]string, 0, n)
	for _, r := range ranked {
		if len(out) == n {
			break
		}
		out = append(out, r.payee)
	}
	return slices.Clip(out)
}
