package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/bradland/pqmashup-go/pkg/mashup/models"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// SectionPath is the inner archive entry holding the section document.
const SectionPath = "Formulas/Section1.m"

var (
	// memberHeader matches `shared Name =` and `shared #"Quoted Name" =`.
	memberHeader = regexp.MustCompile(`\bshared\s+(?:#?"([^"]+)"|(\w+))\s*=`)
	unsafeChars  = regexp.MustCompile(`[^0-9A-Za-z._-]`)
)

// SplitQueries extracts the shared members of a section document in
// source order.
//
// A member body runs from `=` to the first `;` that is followed, after
// optional whitespace, by the keyword `shared` or by the end of input.
// Semicolons elsewhere in a body are kept. This is a textual heuristic:
// a string literal containing `;` directly followed by the text `shared`
// ends the body early.
func SplitQueries(section string) []models.Query {
	section = stripBOM(section)

	var queries []models.Query
	pos := 0
	for pos < len(section) {
		loc := memberHeader.FindStringSubmatchIndex(section[pos:])
		if loc == nil {
			break
		}

		var name string
		if loc[2] >= 0 {
			name = section[pos+loc[2] : pos+loc[3]]
		} else {
			name = section[pos+loc[4] : pos+loc[5]]
		}

		bodyStart := pos + loc[1]
		end, ok := memberEnd(section, bodyStart)
		if !ok {
			break
		}

		queries = append(queries, models.Query{
			Name:     name,
			FileName: SafeFileName(name),
			Body:     strings.TrimSpace(section[bodyStart:end]),
		})
		pos = end + 1
	}

	return queries
}

// memberEnd returns the index of the `;` terminating a body starting at from.
func memberEnd(s string, from int) (int, bool) {
	for i := from; i < len(s); i++ {
		if s[i] != ';' {
			continue
		}
		rest := strings.TrimLeftFunc(s[i+1:], unicode.IsSpace)
		if rest == "" || strings.HasPrefix(rest, "shared") {
			return i, true
		}
	}
	return 0, false
}

// SafeFileName maps a query name to a file name: every character outside
// [0-9A-Za-z._-] becomes '_' and ".m" is appended.
func SafeFileName(name string) string {
	return unsafeChars.ReplaceAllString(name, "_") + ".m"
}

// stripBOM removes a leading byte order mark, decoding UTF-16 if the mark
// says so.
func stripBOM(s string) string {
	out, _, err := transform.String(xunicode.BOMOverride(transform.Nop), s)
	if err != nil {
		return s
	}
	return out
}
