package repocheck

import "strings"

// entityPairs are the only entities the check pipeline decodes, applied as
// sequential passes in this order. A general entity decoder would also
// expand numeric and named references the validator needs to see untouched.
var entityPairs = [...][2]string{
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&amp;", "&"},
	{"&quot;", `"`},
	{"&#39;", "'"},
}

// DecodeEntities replaces the common HTML entities in markup with their
// literal characters. Already-plain input is returned unchanged.
func DecodeEntities(markup string) string {
	for _, pair := range entityPairs {
		markup = strings.ReplaceAll(markup, pair[0], pair[1])
	}
	return markup
}
