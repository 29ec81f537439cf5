package mesh

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrNodeCountMismatch    = errors.New("node count mismatch")
	ErrElementCountMismatch = errors.New("element count mismatch")
	ErrMissingNode          = errors.New("missing node")
	ErrMissingElement       = errors.New("missing element")
	ErrMissingPhysicalName  = errors.New("missing physical name")
)

// Build assembles the output mesh from parsed tables.
//
// Node ids must run 1..DeclaredNodes and element ids 1..DeclaredElements.
// Lines become edges; triangles and quads become faces, deduplicated by
// vertex set with the first occurrence winning. A dropped duplicate is
// never checked for a surface name. Other element types are
// checked for valid node references but add no geometry.
func Build(t *Tables) (*Mesh, error) {
	if len(t.Nodes) != t.DeclaredNodes {
		return nil, fmt.Errorf("%w: declared %d, parsed %d",
			ErrNodeCountMismatch, t.DeclaredNodes, len(t.Nodes))
	}
	if len(t.Elements) != t.DeclaredElements {
		return nil, fmt.Errorf("%w: declared %d, parsed %d",
			ErrElementCountMismatch, t.DeclaredElements, len(t.Elements))
	}

	m := NewMesh()
	m.Vertices = make([]r3.Vec, 0, t.DeclaredNodes)
	for id := 1; id <= t.DeclaredNodes; id++ {
		coord, ok := t.Nodes[id]
		if !ok {
			return nil, fmt.Errorf("%w: node ids are not contiguous, no node %d", ErrMissingNode, id)
		}
		m.Vertices = append(m.Vertices, coord)
	}

	useNames := t.Names.Count(2) > 0
	for id := 1; id <= t.DeclaredElements; id++ {
		elem, ok := t.Elements[id]
		if !ok {
			return nil, fmt.Errorf("%w: element ids are not contiguous, no element %d", ErrMissingElement, id)
		}

		indices := make([]uint32, len(elem.Nodes))
		for i, nodeID := range elem.Nodes {
			if _, ok := t.Nodes[nodeID]; !ok {
				return nil, fmt.Errorf("%w: element %d references node %d", ErrMissingNode, id, nodeID)
			}
			indices[i] = uint32(nodeID - 1)
		}

		switch elem.Type {
		case Line:
			m.AddEdge(indices[0], indices[1])
		case Triangle, Quad:
			if _, dup := m.FaceMap[NewFaceKey(indices)]; dup {
				m.DuplicateFaces++
				continue
			}
			name, err := surfaceName(t.Names, useNames, id, elem)
			if err != nil {
				return nil, err
			}
			m.AddFace(indices, name)
		}
	}

	return m, nil
}

func surfaceName(names PhysicalNames, useNames bool, id int, elem ElementRecord) (string, error) {
	if !useNames || !elem.HasPhysical {
		return PlaceholderName, nil
	}
	name, ok := names.Lookup(2, elem.PhysicalEntity)
	if !ok {
		return "", fmt.Errorf("%w: element %d has physical entity %d with no dimension 2 name",
			ErrMissingPhysicalName, id, elem.PhysicalEntity)
	}
	return name, nil
}
