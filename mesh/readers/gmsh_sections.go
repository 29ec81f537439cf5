package readers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/notargets/mshimport/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// FormatHeader is the $MeshFormat line
type FormatHeader struct {
	Version  float64
	FileType int // 0 = ASCII
	DataSize int
}

// IsLegacy reports whether the file uses the flat 2.x node and element lists
func (h FormatHeader) IsLegacy() bool {
	return h.Version < 4.0
}

// readMeshFormat reads the single header line inside $MeshFormat
func readMeshFormat(sc *lineScanner) (FormatHeader, error) {
	var header FormatHeader
	line, ok := sc.nextLine()
	if !ok {
		return header, fmt.Errorf("%w: unexpected EOF", ErrMalformedHeader)
	}

	parts := strings.Fields(line)
	if len(parts) < 3 {
		return header, fmt.Errorf("%w: line %d: expected version, file type and data size, got %q",
			ErrMalformedHeader, sc.line, line)
	}

	var err error
	if header.Version, err = strconv.ParseFloat(parts[0], 64); err != nil {
		return header, fmt.Errorf("%w: line %d: invalid version %q", ErrMalformedHeader, sc.line, parts[0])
	}
	if header.FileType, err = strconv.Atoi(parts[1]); err != nil {
		return header, fmt.Errorf("%w: line %d: invalid file type %q", ErrMalformedHeader, sc.line, parts[1])
	}
	if header.DataSize, err = strconv.Atoi(parts[2]); err != nil {
		return header, fmt.Errorf("%w: line %d: invalid data size %q", ErrMalformedHeader, sc.line, parts[2])
	}

	sc.closeSection("$EndMeshFormat")
	return header, nil
}

// readPhysicalNames reads physical group names (common to v2.2 and v4).
// Names are quoted and may contain spaces, so records are split with
// shell word rules.
func readPhysicalNames(sc *lineScanner, names mesh.PhysicalNames) error {
	numNames, err := sc.readCount("$PhysicalNames")
	if err != nil {
		return err
	}

	for i := 0; i < numNames; i++ {
		line, ok := sc.nextDataLine("$EndPhysicalNames")
		if !ok {
			return malformed(sc.line, "section ended reading physical name %d of %d", i+1, numNames)
		}

		parts, err := shlex.Split(line)
		if err != nil || len(parts) < 3 {
			return malformed(sc.line, "invalid physical name %q", line)
		}
		dimension, err1 := strconv.Atoi(parts[0])
		tag, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return malformed(sc.line, "invalid physical name %q", line)
		}
		names.Add(dimension, tag, parts[2])
	}

	sc.endSection("$EndPhysicalNames")
	return nil
}

// parseNodeRecord parses "id x y z", ignoring trailing parametric values
func parseNodeRecord(fields []string, line int) (int, r3.Vec, error) {
	if len(fields) < 4 {
		return 0, r3.Vec{}, malformed(line, "node record needs id x y z, got %d fields", len(fields))
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, r3.Vec{}, malformed(line, "invalid node id %q", fields[0])
	}
	coord, err := parseCoordinates(fields[1:4], line)
	return id, coord, err
}

func parseCoordinates(fields []string, line int) (r3.Vec, error) {
	var xyz [3]float64
	for k := 0; k < 3; k++ {
		v, err := strconv.ParseFloat(fields[k], 64)
		if err != nil {
			return r3.Vec{}, malformed(line, "invalid coordinate %q", fields[k])
		}
		xyz[k] = v
	}
	return r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// parseElementNodes reads the node ids of an element of a supported type
func parseElementNodes(fields []string, count, elemID, line int) ([]int, error) {
	if len(fields) < count {
		return nil, malformed(line, "element %d: expected %d nodes, got %d", elemID, count, len(fields))
	}
	nodes := make([]int, count)
	for j := 0; j < count; j++ {
		n, err := strconv.Atoi(fields[j])
		if err != nil {
			return nil, malformed(line, "element %d: invalid node id %q", elemID, fields[j])
		}
		nodes[j] = n
	}
	return nodes, nil
}

func atoi(field string, line int, what string) (int, error) {
	v, err := strconv.Atoi(field)
	if err != nil {
		return 0, malformed(line, "invalid %s %q", what, field)
	}
	return v, nil
}
