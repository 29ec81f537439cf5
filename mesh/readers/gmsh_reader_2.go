package readers

import (
	"github.com/notargets/mshimport/mesh"
)

// grammar reads the version dependent $Nodes and $Elements bodies.
// One is chosen after the $MeshFormat header is read.
type grammar interface {
	readNodes(sc *lineScanner, t *mesh.Tables, endMarker string) error
	readElements(sc *lineScanner, t *mesh.Tables) error
}

func newGrammar(header FormatHeader) grammar {
	if header.IsLegacy() {
		return legacyGrammar{}
	}
	return &blockGrammar{
		header:   header,
		entities: make(entityTable),
	}
}

// legacyGrammar reads the flat node and element lists of format 2.x
type legacyGrammar struct{}

// readNodes reads "N" then N records of "id x y z". Blank lines do not count.
func (legacyGrammar) readNodes(sc *lineScanner, t *mesh.Tables, endMarker string) error {
	numNodes, err := sc.readCount("$Nodes")
	if err != nil {
		return err
	}
	t.DeclaredNodes += numNodes

	for i := 0; i < numNodes; i++ {
		fields, ok := sc.nextData(endMarker)
		if !ok {
			break // short lists surface as a node count mismatch
		}
		id, coord, err := parseNodeRecord(fields, sc.line)
		if err != nil {
			return err
		}
		t.Nodes[id] = coord
	}

	sc.endSection(endMarker)
	return nil
}

// readElements reads "N" then N records of
// "id type numTags tag_1..tag_numTags node_1..node_k".
// The first tag is the physical entity, the second the geometric entity,
// and partition tags after that are ignored.
func (legacyGrammar) readElements(sc *lineScanner, t *mesh.Tables) error {
	numElements, err := sc.readCount("$Elements")
	if err != nil {
		return err
	}
	t.DeclaredElements += numElements

	for i := 0; i < numElements; i++ {
		fields, ok := sc.nextData("$EndElements")
		if !ok {
			break
		}
		if len(fields) < 3 {
			return malformed(sc.line, "element record needs id, type and tag count")
		}

		elemID, err := atoi(fields[0], sc.line, "element id")
		if err != nil {
			return err
		}
		gmshType, err := atoi(fields[1], sc.line, "element type")
		if err != nil {
			return err
		}
		numTags, err := atoi(fields[2], sc.line, "tag count")
		if err != nil {
			return err
		}
		if numTags < 0 || len(fields) < 3+numTags {
			return malformed(sc.line, "element %d: expected %d tags", elemID, numTags)
		}

		// Read tags
		tags := make([]int, numTags)
		for j := 0; j < numTags; j++ {
			if tags[j], err = atoi(fields[3+j], sc.line, "tag"); err != nil {
				return err
			}
		}

		rec := mesh.ElementRecord{Type: mesh.ElementType(gmshType)}
		if numTags > 0 {
			rec.PhysicalEntity = tags[0]
			rec.HasPhysical = true
		}
		if numTags > 1 {
			rec.GeometricEntity = tags[1]
		}

		expectedNodes, supported := rec.Type.NumNodes()
		if !supported {
			sc.diags.report(UnsupportedElementType, sc.line,
				"element %d: type %d not implemented", elemID, gmshType)
		} else {
			rec.Nodes, err = parseElementNodes(fields[3+numTags:], expectedNodes, elemID, sc.line)
			if err != nil {
				return err
			}
		}

		t.Elements[elemID] = rec
	}

	sc.endSection("$EndElements")
	return nil
}
