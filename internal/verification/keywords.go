package verification

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const maxKeywords = 5

var stopwords = toSet(
	// fr
	"les", "des", "une", "est", "dans", "pour", "par", "sur", "avec", "que", "qui", "pas", "plus",
	"son", "ses", "leur", "leurs", "aux", "ont", "été", "être", "sont", "mais", "comme", "tout",
	"cette", "ces", "cet", "entre", "après", "avant", "aussi", "elle", "ils", "elles", "nous", "vous",
	"sans", "sous", "fait", "très", "selon", "depuis", "lors", "dont", "alors", "encore", "même",
	// en
	"the", "and", "for", "are", "was", "were", "with", "that", "this", "from", "has", "have", "had",
	"not", "but", "all", "its", "his", "her", "their", "they", "will", "would", "been", "into",
	"about", "after", "before", "than", "then", "there", "which", "who", "what", "when", "where",
)

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

type keywordCandidate struct {
	word        string
	capitalized bool
	count       int
	first       int
}

// ExtractKeywords picks up to five display keywords from a claim. Capitalized
// words rank first, then frequency, then first appearance.
func ExtractKeywords(text string) []string {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	})
	byWord := map[string]*keywordCandidate{}
	order := []*keywordCandidate{}
	for i, tok := range tokens {
		tok = strings.Trim(tok, "-")
		n := utf8.RuneCountInString(tok)
		if n <= 2 || n >= 10 {
			continue
		}
		lower := strings.ToLower(tok)
		if stopwords[lower] {
			continue
		}
		first, _ := utf8.DecodeRuneInString(tok)
		c, ok := byWord[lower]
		if !ok {
			c = &keywordCandidate{word: lower, first: i}
			byWord[lower] = c
			order = append(order, c)
		}
		c.count++
		if unicode.IsUpper(first) {
			c.capitalized = true
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.capitalized != b.capitalized {
			return a.capitalized
		}
		if a.count != b.count {
			return a.count > b.count
		}
		return a.first < b.first
	})

	title := cases.Title(language.French)
	out := make([]string, 0, maxKeywords)
	for _, c := range order {
		if len(out) == maxKeywords {
			break
		}
		out = append(out, title.String(c.word))
	}
	return out
}
