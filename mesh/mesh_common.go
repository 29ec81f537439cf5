package mesh

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// ElementType is a Gmsh element type number
type ElementType int

const (
	Line     ElementType = 1
	Triangle ElementType = 2
	Quad     ElementType = 3
	Tet      ElementType = 4
	Hex      ElementType = 5
	Prism    ElementType = 6
	Pyramid  ElementType = 7
	Point    ElementType = 15
)

// elementNodeCounts is the closed set of element types the importer reads.
// Anything else is reported and skipped.
var elementNodeCounts = map[ElementType]int{
	Line:     2, // 2-node line
	Triangle: 3, // 3-node triangle
	Quad:     4, // 4-node quadrangle
	Tet:      4, // 4-node tetrahedron
	Hex:      8, // 8-node hexahedron
	Prism:    6, // 6-node prism
	Pyramid:  5, // 5-node pyramid
	Point:    0, // 1-node point, never imported
}

var elementNames = map[ElementType]string{
	Line:     "Line",
	Triangle: "Triangle",
	Quad:     "Quad",
	Tet:      "Tet",
	Hex:      "Hex",
	Prism:    "Prism",
	Pyramid:  "Pyramid",
	Point:    "Point",
}

// NumNodes returns the node count for the type and whether the type is supported
func (e ElementType) NumNodes() (int, bool) {
	n, ok := elementNodeCounts[e]
	return n, ok
}

// Dimension returns the topological dimension of the element
func (e ElementType) Dimension() int {
	switch e {
	case Point:
		return 0
	case Line:
		return 1
	case Triangle, Quad:
		return 2
	default:
		return 3
	}
}

func (e ElementType) String() string {
	if name, ok := elementNames[e]; ok {
		return name
	}
	return fmt.Sprintf("ElementType(%d)", int(e))
}

// PlaceholderName labels faces when the file declares no surface names
const PlaceholderName = "no_name"

// PhysicalNames maps dimension -> physical number -> name
type PhysicalNames map[int]map[int]string

// Add records a physical name for a dimension
func (p PhysicalNames) Add(dim, num int, name string) {
	if p[dim] == nil {
		p[dim] = make(map[int]string)
	}
	p[dim][num] = name
}

// Lookup returns the name for a physical number in a dimension
func (p PhysicalNames) Lookup(dim, num int) (string, bool) {
	name, ok := p[dim][num]
	return name, ok
}

// Count returns the number of names declared for a dimension
func (p PhysicalNames) Count(dim int) int {
	return len(p[dim])
}

// NodeTable maps 1-based node ids to coordinates
type NodeTable map[int]r3.Vec

// ElementRecord is one parsed element before assembly
type ElementRecord struct {
	Type            ElementType
	PhysicalEntity  int
	HasPhysical     bool  // false for untagged legacy records and untagged 4.x entities
	GeometricEntity int
	Nodes           []int // node ids in file order, nil for unsupported types
}

// ElementTable maps 1-based element ids to records
type ElementTable map[int]ElementRecord

// Tables collects everything the readers parse. DeclaredNodes and
// DeclaredElements are the totals from the section headers.
type Tables struct {
	Names            PhysicalNames
	Nodes            NodeTable
	Elements         ElementTable
	DeclaredNodes    int
	DeclaredElements int
}

// NewTables returns empty tables ready for a reader to fill
func NewTables() *Tables {
	return &Tables{
		Names:    make(PhysicalNames),
		Nodes:    make(NodeTable),
		Elements: make(ElementTable),
	}
}

// FaceKey identifies a face independent of winding
type FaceKey string

// NewFaceKey builds the key from the sorted vertex indices
func NewFaceKey(face []uint32) FaceKey {
	sorted := make([]uint32, len(face))
	copy(sorted, face)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return FaceKey(fmt.Sprintf("%v", sorted))
}

// Mesh is the assembled surface mesh handed to the host application.
// Faces and SurfaceNames are parallel: SurfaceNames[i] labels Faces[i].
type Mesh struct {
	Vertices     []r3.Vec    // indexed by node id - 1
	Edges        [][2]uint32 // 2-node line elements
	Faces        [][]uint32  // unique triangles and quads, file winding
	SurfaceNames []string

	FaceMap        map[FaceKey]int // face key -> index into Faces
	DuplicateFaces int             // faces dropped by deduplication
}

// NewMesh creates an empty mesh
func NewMesh() *Mesh {
	return &Mesh{
		FaceMap: make(map[FaceKey]int),
	}
}

// AddFace appends a face unless one with the same vertex set exists.
// It returns false for a duplicate; the first face and name are kept.
func (m *Mesh) AddFace(face []uint32, name string) bool {
	key := NewFaceKey(face)
	if _, exists := m.FaceMap[key]; exists {
		m.DuplicateFaces++
		return false
	}
	m.FaceMap[key] = len(m.Faces)
	m.Faces = append(m.Faces, face)
	m.SurfaceNames = append(m.SurfaceNames, name)
	return true
}

// AddEdge appends a line element
func (m *Mesh) AddEdge(a, b uint32) {
	m.Edges = append(m.Edges, [2]uint32{a, b})
}
