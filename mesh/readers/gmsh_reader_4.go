package readers

import (
	"github.com/notargets/mshimport/mesh"
)

// entityTable maps entity dimension -> entity tag -> physical tags
type entityTable map[int]map[int][]int

func (e entityTable) add(dim, tag int, physicalTags []int) {
	if e[dim] == nil {
		e[dim] = make(map[int][]int)
	}
	e[dim][tag] = physicalTags
}

// physical returns the first physical tag of an entity, if it has one
func (e entityTable) physical(dim, tag int) (int, bool) {
	tags := e[dim][tag]
	if len(tags) == 0 {
		return 0, false
	}
	return tags[0], true
}

// blockGrammar reads the entity block layout of format 4.x
type blockGrammar struct {
	header   FormatHeader
	entities entityTable
}

// splitNodes reports whether node tags and coordinates come in separate
// runs of lines, as in 4.1. In 4.0 each line is "id x y z".
func (g *blockGrammar) splitNodes() bool {
	return g.header.Version >= 4.1
}

// entityOrder returns the entity dimension and tag from a block header,
// whose first two fields swapped places between 4.0 and 4.1
func (g *blockGrammar) entityOrder(first, second int) (dim, tag int) {
	if g.splitNodes() {
		return first, second
	}
	return second, first
}

// readEntities reads the $Entities section for its physical tags.
// Bounding boxes and bounding entity lists are not needed and skipped.
func (g *blockGrammar) readEntities(sc *lineScanner) error {
	counts, err := sc.readHeader("$Entities", 4)
	if err != nil {
		return err
	}

	// Points carry x y z in 4.1 and a bounding box in 4.0
	pointFields := 6
	if g.splitNodes() {
		pointFields = 3
	}

	for dim := 0; dim < 4; dim++ {
		numFields := 6
		if dim == 0 {
			numFields = pointFields
		}
		for i := 0; i < counts[dim]; i++ {
			fields, ok := sc.nextData("$EndEntities")
			if !ok {
				return malformed(sc.line, "section ended reading dimension %d entity", dim)
			}
			pos := 1 + numFields
			if len(fields) <= pos {
				return malformed(sc.line, "invalid dimension %d entity", dim)
			}
			tag, err := atoi(fields[0], sc.line, "entity tag")
			if err != nil {
				return err
			}
			numPhysTags, err := atoi(fields[pos], sc.line, "physical tag count")
			if err != nil {
				return err
			}
			pos++
			if numPhysTags < 0 || len(fields) < pos+numPhysTags {
				return malformed(sc.line, "entity %d: expected %d physical tags", tag, numPhysTags)
			}
			physicalTags := make([]int, numPhysTags)
			for j := range physicalTags {
				if physicalTags[j], err = atoi(fields[pos+j], sc.line, "physical tag"); err != nil {
					return err
				}
			}
			g.entities.add(dim, tag, physicalTags)
		}
	}

	sc.endSection("$EndEntities")
	return nil
}

// readNodes reads "numEntityBlocks totalNumNodes [minTag maxTag]" and the
// blocks that follow. The last field of each block header is its node count.
func (g *blockGrammar) readNodes(sc *lineScanner, t *mesh.Tables, endMarker string) error {
	header, err := sc.readHeader("$Nodes", 2)
	if err != nil {
		return err
	}
	numEntityBlocks := header[0]
	t.DeclaredNodes += header[1]

	for i := 0; i < numEntityBlocks; i++ {
		blockHeader, ok := sc.nextData(endMarker)
		if !ok {
			break // short files surface as a node count mismatch
		}
		numNodesInBlock, err := atoi(blockHeader[len(blockHeader)-1], sc.line, "block node count")
		if err != nil {
			return err
		}
		if numNodesInBlock < 0 || numNodesInBlock > header[1] {
			return malformed(sc.line, "block node count %d outside 0..%d", numNodesInBlock, header[1])
		}

		if g.splitNodes() {
			err = g.readSplitNodeBlock(sc, t, numNodesInBlock, endMarker)
		} else {
			err = g.readNodeBlock(sc, t, numNodesInBlock, endMarker)
		}
		if err != nil {
			return err
		}
	}

	sc.endSection(endMarker)
	return nil
}

func (g *blockGrammar) readNodeBlock(sc *lineScanner, t *mesh.Tables, numNodes int, endMarker string) error {
	for j := 0; j < numNodes; j++ {
		fields, ok := sc.nextData(endMarker)
		if !ok {
			return nil
		}
		id, coord, err := parseNodeRecord(fields, sc.line)
		if err != nil {
			return err
		}
		t.Nodes[id] = coord
	}
	return nil
}

// readSplitNodeBlock reads numNodes tag lines, then numNodes coordinate
// lines. Parametric coordinates after x y z are ignored.
func (g *blockGrammar) readSplitNodeBlock(sc *lineScanner, t *mesh.Tables, numNodes int, endMarker string) error {
	var nodeTags []int
	for j := 0; j < numNodes; j++ {
		fields, ok := sc.nextData(endMarker)
		if !ok {
			return nil
		}
		tag, err := atoi(fields[0], sc.line, "node tag")
		if err != nil {
			return err
		}
		nodeTags = append(nodeTags, tag)
	}

	for _, tag := range nodeTags {
		fields, ok := sc.nextData(endMarker)
		if !ok {
			return nil
		}
		if len(fields) < 3 {
			return malformed(sc.line, "node %d: expected x y z", tag)
		}
		coord, err := parseCoordinates(fields, sc.line)
		if err != nil {
			return err
		}
		t.Nodes[tag] = coord
	}
	return nil
}

// readElements reads "numEntityBlocks totalNumElements [minTag maxTag]" and
// the blocks that follow. Each block header carries the element type (third
// field) and element count (fourth field); records are "id node_1..node_k".
func (g *blockGrammar) readElements(sc *lineScanner, t *mesh.Tables) error {
	header, err := sc.readHeader("$Elements", 2)
	if err != nil {
		return err
	}
	numEntityBlocks := header[0]
	t.DeclaredElements += header[1]

	for i := 0; i < numEntityBlocks; i++ {
		blockHeader, ok := sc.nextData("$EndElements")
		if !ok {
			break
		}
		if len(blockHeader) < 4 {
			return malformed(sc.line, "element block header needs 4 fields, got %d", len(blockHeader))
		}

		values := make([]int, 4)
		for k := range values {
			if values[k], err = atoi(blockHeader[k], sc.line, "element block header field"); err != nil {
				return err
			}
		}
		entityDim, entityTag := g.entityOrder(values[0], values[1])
		elemType := mesh.ElementType(values[2])
		numElemsInBlock := values[3]
		if numElemsInBlock < 0 || numElemsInBlock > header[1] {
			return malformed(sc.line, "block element count %d outside 0..%d", numElemsInBlock, header[1])
		}

		physicalTag, hasPhysical := g.entities.physical(entityDim, entityTag)
		expectedNodes, supported := elemType.NumNodes()

		for j := 0; j < numElemsInBlock; j++ {
			fields, ok := sc.nextData("$EndElements")
			if !ok {
				break
			}
			elemID, err := atoi(fields[0], sc.line, "element id")
			if err != nil {
				return err
			}

			rec := mesh.ElementRecord{
				Type:            elemType,
				PhysicalEntity:  physicalTag,
				HasPhysical:     hasPhysical,
				GeometricEntity: entityTag,
			}
			if !supported {
				sc.diags.report(UnsupportedElementType, sc.line,
					"element %d: type %d not implemented", elemID, values[2])
			} else {
				rec.Nodes, err = parseElementNodes(fields[1:], expectedNodes, elemID, sc.line)
				if err != nil {
					return err
				}
			}
			t.Elements[elemID] = rec
		}
	}

	sc.endSection("$EndElements")
	return nil
}
