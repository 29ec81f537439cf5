package readers

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// sectionKind is a section start marker the readers understand
type sectionKind int

const (
	sectionEOF sectionKind = iota
	sectionMeshFormat
	sectionPhysicalNames
	sectionEntities
	sectionNodes
	sectionParametricNodes
	sectionElements
)

var knownSections = map[string]sectionKind{
	"$MeshFormat":      sectionMeshFormat,
	"$PhysicalNames":   sectionPhysicalNames,
	"$Entities":        sectionEntities,
	"$Nodes":           sectionNodes,
	"$ParametricNodes": sectionParametricNodes,
	"$Elements":        sectionElements,
}

const maxLineLength = 16 * 1024 * 1024

// lineScanner reads an MSH file strictly forward, one line at a time,
// and keeps the line number for error messages
type lineScanner struct {
	scanner *bufio.Scanner
	line    int
	ended   bool // end marker consumed by nextData
	pending string
	unread  bool
	diags   *diagnostics
}

func newLineScanner(r io.Reader, diags *diagnostics) *lineScanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)
	return &lineScanner{scanner: scanner, diags: diags}
}

// nextLine returns the next line with surrounding whitespace removed.
// Blank lines are returned as empty strings.
func (s *lineScanner) nextLine() (string, bool) {
	if s.unread {
		s.unread = false
		return s.pending, true
	}
	if !s.scanner.Scan() {
		return "", false
	}
	s.line++
	return strings.TrimSpace(s.scanner.Text()), true
}

// nextDataLine returns the next non-blank line of a section body. It
// returns false at EOF or when the section's end marker comes early.
func (s *lineScanner) nextDataLine(endMarker string) (string, bool) {
	if s.ended {
		return "", false
	}
	for {
		line, ok := s.nextLine()
		if !ok {
			return "", false
		}
		if line == endMarker {
			s.ended = true
			return "", false
		}
		if line != "" {
			return line, true
		}
	}
}

// nextData is nextDataLine split into fields
func (s *lineScanner) nextData(endMarker string) ([]string, bool) {
	line, ok := s.nextDataLine(endMarker)
	if !ok {
		return nil, false
	}
	return strings.Fields(line), true
}

// pushBack makes line the next one returned. The line count is unchanged.
func (s *lineScanner) pushBack(line string) {
	s.pending = line
	s.unread = true
}

// endSection consumes lines through endMarker unless nextData already did
func (s *lineScanner) endSection(endMarker string) {
	if s.ended {
		s.ended = false
		return
	}
	s.closeSection(endMarker)
}

// closeSection consumes lines through endMarker. If another section starts
// first, or the file ends, the gap is reported and the next section is left
// for the caller.
func (s *lineScanner) closeSection(endMarker string) {
	for {
		line, ok := s.nextLine()
		if !ok {
			s.diags.report(MissingEndMarker, s.line, "reached EOF before %s", endMarker)
			return
		}
		if line == endMarker {
			return
		}
		if strings.HasPrefix(line, "$") {
			s.diags.report(MissingEndMarker, s.line, "%s starts before %s", line, endMarker)
			s.pushBack(line)
			return
		}
	}
}

// readCount reads a count line. Blank lines are not skipped here.
func (s *lineScanner) readCount(section string) (int, error) {
	line, ok := s.nextLine()
	if !ok {
		return 0, malformed(s.line, "unexpected EOF reading %s count", section)
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 0 {
		return 0, malformed(s.line, "invalid %s count %q", section, line)
	}
	return n, nil
}

// readHeader reads a section header line of at least minFields integers
func (s *lineScanner) readHeader(section string, minFields int) ([]int, error) {
	line, ok := s.nextLine()
	if !ok {
		return nil, malformed(s.line, "unexpected EOF reading %s header", section)
	}
	fields := strings.Fields(line)
	if len(fields) < minFields {
		return nil, malformed(s.line, "invalid %s header %q", section, line)
	}
	values := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil || v < 0 {
			return nil, malformed(s.line, "invalid %s header %q", section, line)
		}
		values[i] = v
	}
	return values, nil
}

// nextSection advances to the next section start marker. Unknown
// $Name sections are skipped through $EndName and reported; anything
// else found between sections is reported as a stray line.
func (s *lineScanner) nextSection() (sectionKind, string) {
	for {
		line, ok := s.nextLine()
		if !ok {
			return sectionEOF, ""
		}
		if line == "" {
			continue
		}
		if kind, known := knownSections[line]; known {
			return kind, line
		}
		if strings.HasPrefix(line, "$") {
			s.skipSection(line)
			continue
		}
		s.diags.report(StrayLine, s.line, "ignoring %q outside of any section", line)
	}
}

// skipSection consumes lines through the $End marker matching start.
// Reaching EOF first is tolerated.
func (s *lineScanner) skipSection(start string) {
	startLine := s.line
	endMarker := "$End" + strings.TrimPrefix(start, "$")
	if s.skipTo(endMarker) {
		s.diags.report(UnknownSection, startLine, "skipped section %s", start)
		return
	}
	s.diags.report(UnknownSection, startLine, "skipped section %s, reached EOF before %s", start, endMarker)
}

// skipTo consumes lines through endMarker, returning false at EOF
func (s *lineScanner) skipTo(endMarker string) bool {
	for {
		line, ok := s.nextLine()
		if !ok {
			return false
		}
		if line == endMarker {
			return true
		}
	}
}

func (s *lineScanner) err() error {
	return s.scanner.Err()
}
