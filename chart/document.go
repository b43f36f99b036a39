package chart

import (
	"strings"
)

// Document is a chart held as its lines. Sections are located by their
// "[Name]" header; a section body runs until the next header.
type Document struct {
	lines []string
}

func Parse(text string) *Document {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return &Document{lines: strings.Split(text, "\n")}
}

// String joins the lines with CRLF, the line ending charts are written with.
func (d *Document) String() string {
	return strings.Join(d.lines, "\r\n")
}

func (d *Document) Lines() []string {
	out := make([]string, len(d.lines))
	copy(out, d.lines)
	return out
}

func (d *Document) Clone() *Document {
	return &Document{lines: d.Lines()}
}

func IsSectionHeader(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "[") && strings.HasSuffix(t, "]")
}

// IsSkippable reports blank lines and // comments.
func IsSkippable(line string) bool {
	t := strings.TrimSpace(line)
	return t == "" || strings.HasPrefix(t, "//")
}

func (d *Document) HeaderIndex(name string) int {
	header := "[" + name + "]"
	for i, l := range d.lines {
		if strings.EqualFold(strings.TrimSpace(l), header) {
			return i
		}
	}
	return -1
}

// Section returns the body bounds [start, end) of the named section.
func (d *Document) Section(name string) (start, end int, ok bool) {
	idx := d.HeaderIndex(name)
	if idx < 0 {
		return 0, 0, false
	}
	start = idx + 1
	end = start
	for end < len(d.lines) && !IsSectionHeader(d.lines[end]) {
		end++
	}
	return start, end, true
}

func (d *Document) HasSection(name string) bool {
	return d.HeaderIndex(name) >= 0
}

// Body returns a copy of the section body, or nil when the section is absent.
func (d *Document) Body(name string) []string {
	start, end, ok := d.Section(name)
	if !ok {
		return nil
	}
	out := make([]string, end-start)
	copy(out, d.lines[start:end])
	return out
}

// SetBody replaces the body of an existing section. It reports false when
// the section does not exist.
func (d *Document) SetBody(name string, body []string) bool {
	start, end, ok := d.Section(name)
	if !ok {
		return false
	}
	lines := make([]string, 0, len(d.lines)-(end-start)+len(body))
	lines = append(lines, d.lines[:start]...)
	lines = append(lines, body...)
	lines = append(lines, d.lines[end:]...)
	d.lines = lines
	return true
}

// InsertSection adds a new section right before the header of the section
// named before, or at the end of the document when that one is missing.
func (d *Document) InsertSection(name, before string, body []string) {
	at := d.HeaderIndex(before)
	if at < 0 {
		at = len(d.lines)
	}
	block := append([]string{"[" + name + "]"}, body...)
	lines := make([]string, 0, len(d.lines)+len(block))
	lines = append(lines, d.lines[:at]...)
	lines = append(lines, block...)
	lines = append(lines, d.lines[at:]...)
	d.lines = lines
}

// Fields splits a record on commas after trimming it.
func Fields(line string) []string {
	return strings.Split(strings.TrimSpace(line), ",")
}
