package probe

import (
	"regexp"
	"strings"
)

// ColumnExtractor pulls column names out of the text of a rejected write.
// Stores word these messages differently, so extraction is pluggable.
type ColumnExtractor interface {
	Extract(text string) []string
}

// ExtractorFunc adapts a plain function to ColumnExtractor.
type ExtractorFunc func(text string) []string

// Extract implements ColumnExtractor
func (f ExtractorFunc) Extract(text string) []string {
	return f(text)
}

// PatternExtractor tries each pattern in turn. The first capture group of the
// first pattern that matches holds a comma separated list.
type PatternExtractor struct {
	Patterns []*regexp.Regexp
}

// A list runs to the end of its sentence: ". ", ";" or the end of the line.
var defaultPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)valid columns are:?[ \t]*(.*?)(?:\.(?:\s|$)|;|$)`),
	regexp.MustCompile(`(?im)available columns:?[ \t]*(.*?)(?:\.(?:\s|$)|;|$)`),
	regexp.MustCompile(`(?i)columns:\s*\[([^\]]*)\]`),
}

// joiner separates the last names of an English list, as in "a, b and c".
var joiner = regexp.MustCompile(`(?i)^(?:and|or)\s+|\s+(?:and|or)\s+`)

// NewPatternExtractor returns an extractor for the common "valid columns are:
// a, b, c", "available columns: a, b" and "columns: [a, b]" forms.
func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{Patterns: defaultPatterns}
}

// Extract implements ColumnExtractor
func (e *PatternExtractor) Extract(text string) []string {
	for _, re := range e.Patterns {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if cols := splitColumnList(m[1]); len(cols) > 0 {
			return cols
		}
	}
	return nil
}

// splitColumnList splits a comma separated list of names, strips the quotes
// around each, and drops duplicates while keeping the first occurrence.
// Quoted names are taken verbatim, so they may contain spaces or "and".
func splitColumnList(s string) []string {
	var names []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if quoted(item) {
			names = append(names, item)
			continue
		}
		for _, part := range joiner.Split(item, -1) {
			names = append(names, strings.TrimSpace(part))
		}
	}

	seen := make(map[string]bool, len(names))
	var cols []string
	for _, n := range names {
		name := strings.TrimSpace(strings.Trim(n, "\"'`[]()"))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		cols = append(cols, name)
	}
	return cols
}

func quoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	switch s[0] {
	case '"', '\'', '`':
		return s[len(s)-1] == s[0]
	case '[':
		return s[len(s)-1] == ']'
	}
	return false
}
