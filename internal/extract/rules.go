package extract

import (
	"regexp"
	"strings"

	"mapscout/internal/dom"
)

// Field names a contact field recovered by the rule chain.
type Field string

const (
	FieldAddress Field = "address"
	FieldPhone   Field = "phone"
	FieldWebsite Field = "website"
)

// Rank orders competing signals; lower wins.
type Rank int

const (
	RankStructural Rank = iota // data-item-id
	RankLabel                  // "Address:" style text prefix
)

// Rule is one classifier predicate for a field.
type Rule struct {
	Rank  Rank
	Match func(n dom.Node, content string) bool
}

// FieldRules is the ordered rule list for a field plus how to turn a matched
// element into a value.
type FieldRules struct {
	Field    Field
	Prefixes []string // label prefixes stripped from the content
	Rules    []Rule
	Accept   func(cleaned string) bool
	Value    func(n dom.Node, cleaned string) string
}

var phoneRe = regexp.MustCompile(`^[0-9+\-() ]{5,}$`)

// DefaultRules returns the rule table for address, phone and website.
func DefaultRules() []FieldRules {
	return []FieldRules{
		{
			Field:    FieldAddress,
			Prefixes: []string{"Address:"},
			Rules: []Rule{
				{Rank: RankStructural, Match: itemIDIs("address")},
				{Rank: RankLabel, Match: hasPrefix("Address:")},
			},
			Accept: func(s string) bool { return len([]rune(s)) > 5 },
			Value:  cleanedText,
		},
		{
			Field:    FieldPhone,
			Prefixes: []string{"Phone:"},
			Rules: []Rule{
				{Rank: RankStructural, Match: itemIDHasPrefix("phone")},
				{Rank: RankLabel, Match: hasPrefix("Phone:")},
			},
			Accept: validPhone,
			Value:  cleanedText,
		},
		{
			Field:    FieldWebsite,
			Prefixes: []string{"Website:"},
			Rules: []Rule{
				{Rank: RankStructural, Match: itemIDIs("authority")},
				{Rank: RankLabel, Match: hasPrefix("Website:")},
			},
			Accept: func(s string) bool { return s != "" },
			Value: func(n dom.Node, cleaned string) string {
				if n.IsLink() {
					return n.Href
				}
				return cleaned
			},
		},
	}
}

// classify picks the field whose best-ranked rule matches n. Ties go to the
// earlier field in the table.
func classify(table []FieldRules, n dom.Node, content string) (*FieldRules, bool) {
	var best *FieldRules
	bestRank := Rank(-1)
	for i := range table {
		fr := &table[i]
		for _, r := range fr.Rules {
			if !r.Match(n, content) {
				continue
			}
			if best == nil || r.Rank < bestRank {
				best, bestRank = fr, r.Rank
			}
			break
		}
	}
	return best, best != nil
}

func itemIDIs(id string) func(dom.Node, string) bool {
	return func(n dom.Node, _ string) bool {
		return strings.EqualFold(n.ItemID, id)
	}
}

func itemIDHasPrefix(prefix string) func(dom.Node, string) bool {
	return func(n dom.Node, _ string) bool {
		return strings.HasPrefix(strings.ToLower(n.ItemID), prefix)
	}
}

func hasPrefix(label string) func(dom.Node, string) bool {
	return func(_ dom.Node, content string) bool {
		_, ok := cutPrefixFold(content, label)
		return ok
	}
}

func cleanedText(_ dom.Node, cleaned string) string { return cleaned }

func validPhone(s string) bool {
	return phoneRe.MatchString(s) && strings.ContainsAny(s, "0123456789")
}

// stripPrefixes removes the first matching label prefix and trims the rest.
func stripPrefixes(content string, prefixes []string) string {
	for _, p := range prefixes {
		if rest, ok := cutPrefixFold(content, p); ok {
			return strings.TrimSpace(rest)
		}
	}
	return content
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
