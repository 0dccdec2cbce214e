package core

import (
	"regexp"
	"strconv"
	"strings"
)

// FieldKind selects how a labeled section is interpreted
type FieldKind int

const (
	// FieldText keeps the trimmed section text
	FieldText FieldKind = iota
	// FieldNumber extracts the first run of digits
	FieldNumber
	// FieldList collects "- " bulleted lines
	FieldList
)

// Field declares one labeled section and its fallback value
type Field struct {
	Label         string
	Kind          FieldKind
	DefaultText   string
	DefaultNumber int
	DefaultList   []string
}

var digitsPattern = regexp.MustCompile(`\d+`)

// ResponseParser splits free model output on literal section labels.
// Parsing never fails; unmapped fields take their declared defaults.
type ResponseParser struct {
	fields  []Field
	byLabel map[string]Field
	splitRe *regexp.Regexp
}

// NewResponseParser creates a parser for the given labeled fields
func NewResponseParser(fields ...Field) *ResponseParser {
	quoted := make([]string, 0, len(fields))
	byLabel := make(map[string]Field, len(fields))
	for _, f := range fields {
		quoted = append(quoted, regexp.QuoteMeta(f.Label))
		byLabel[f.Label] = f
	}

	return &ResponseParser{
		fields:  fields,
		byLabel: byLabel,
		splitRe: regexp.MustCompile(strings.Join(quoted, "|")),
	}
}

// ParsedResponse is the best-effort section mapping of one response
type ParsedResponse struct {
	parser   *ResponseParser
	sections map[string]string
}

// Parse maps each label to the text accumulated up to the next label.
// A label seen twice starts its section over.
func (p *ResponseParser) Parse(text string) ParsedResponse {
	sections := make(map[string]string)
	if len(p.fields) == 0 {
		return ParsedResponse{parser: p, sections: sections}
	}

	matches := p.splitRe.FindAllStringIndex(text, -1)
	for i, m := range matches {
		label := text[m[0]:m[1]]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		sections[label] = text[m[1]:end]
	}

	return ParsedResponse{parser: p, sections: sections}
}

// Found reports whether the label appeared with non-blank content
func (r ParsedResponse) Found(label string) bool {
	return strings.TrimSpace(r.sections[label]) != ""
}

// Raw returns the untrimmed section text
func (r ParsedResponse) Raw(label string) string {
	return r.sections[label]
}

// Text returns the trimmed section text or the field default
func (r ParsedResponse) Text(label string) string {
	if text := strings.TrimSpace(r.sections[label]); text != "" {
		return text
	}
	return r.parser.byLabel[label].DefaultText
}

// Number returns the first run of digits in the section or the field default
func (r ParsedResponse) Number(label string) int {
	match := digitsPattern.FindString(r.sections[label])
	if match == "" {
		return r.parser.byLabel[label].DefaultNumber
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		// Too many digits for an int; treat as a very large value
		return int(^uint(0) >> 1)
	}
	return n
}

// List returns the bulleted items of the section. A non-empty section with
// no bullets becomes a single item; an empty one yields the field default.
func (r ParsedResponse) List(label string) []string {
	section := strings.TrimSpace(r.sections[label])
	if section == "" {
		return append([]string(nil), r.parser.byLabel[label].DefaultList...)
	}

	var items []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		if item := strings.TrimSpace(strings.TrimPrefix(line, "- ")); item != "" {
			items = append(items, item)
		}
	}

	if len(items) == 0 {
		return []string{section}
	}
	return items
}
