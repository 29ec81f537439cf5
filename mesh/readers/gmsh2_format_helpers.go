package readers

import (
	"fmt"
	"strings"

	"github.com/notargets/mshimport/mesh"
)

// Gmsh22TestBuilder helps build Gmsh 2.2 format test files
type Gmsh22TestBuilder struct {
	tm *mesh.TestMeshes
}

// NewGmsh22TestBuilder creates a new builder with standard test meshes
func NewGmsh22TestBuilder() *Gmsh22TestBuilder {
	return &Gmsh22TestBuilder{
		tm: mesh.GetStandardTestMeshes(),
	}
}

// BuildUnitSquareTest creates a Gmsh 2.2 file with two named triangles and boundary lines
func (b *Gmsh22TestBuilder) BuildUnitSquareTest() string {
	cm := b.tm.UnitSquare
	return b.BuildFromCompleteMesh(&cm)
}

// BuildCubeSurfaceTest creates a Gmsh 2.2 file with six named quads
func (b *Gmsh22TestBuilder) BuildCubeSurfaceTest() string {
	cm := b.tm.CubeSurface
	return b.BuildFromCompleteMesh(&cm)
}

// BuildFromCompleteMesh creates a complete Gmsh 2.2 format file from a CompleteMesh
func (b *Gmsh22TestBuilder) BuildFromCompleteMesh(cm *mesh.CompleteMesh) string {
	var sections []string

	sections = append(sections, b.buildHeader())
	if len(cm.PhysicalNames) > 0 {
		sections = append(sections, buildPhysicalNames(cm))
	}
	sections = append(sections, b.buildNodes(cm))
	sections = append(sections, b.buildElements(cm))

	return strings.Join(sections, "\n") + "\n"
}

func (b *Gmsh22TestBuilder) buildHeader() string {
	return `$MeshFormat
2.2 0 8
$EndMeshFormat`
}

// buildPhysicalNames is shared by the 2.2 and 4.1 builders
func buildPhysicalNames(cm *mesh.CompleteMesh) string {
	var lines []string
	lines = append(lines, "$PhysicalNames")
	lines = append(lines, fmt.Sprintf("%d", len(cm.PhysicalNames)))
	for _, pn := range cm.PhysicalNames {
		lines = append(lines, fmt.Sprintf("%d %d %q", pn.Dimension, pn.Tag, pn.Name))
	}
	lines = append(lines, "$EndPhysicalNames")
	return strings.Join(lines, "\n")
}

func (b *Gmsh22TestBuilder) buildNodes(cm *mesh.CompleteMesh) string {
	numNodes := len(cm.Nodes.Nodes)

	var lines []string
	lines = append(lines, "$Nodes")
	lines = append(lines, fmt.Sprintf("%d", numNodes))

	// Node lines: id x y z
	for i := 0; i < numNodes; i++ {
		coords := cm.Nodes.Nodes[i]
		lines = append(lines, fmt.Sprintf("%d %g %g %g", i+1, coords[0], coords[1], coords[2]))
	}

	lines = append(lines, "$EndNodes")
	return strings.Join(lines, "\n")
}

func (b *Gmsh22TestBuilder) buildElements(cm *mesh.CompleteMesh) string {
	var lines []string
	lines = append(lines, "$Elements")
	lines = append(lines, fmt.Sprintf("%d", cm.NumElements()))

	elemID := 1
	for _, elemSet := range cm.Elements {
		for i, elem := range elemSet.Elements {
			props := mesh.ElementProps{}
			if i < len(elemSet.Properties) {
				props = elemSet.Properties[i]
			}

			// Format: elem-id elem-type num-tags physical geometric node1 node2 ...
			line := fmt.Sprintf("%d %d 2 %d %d", elemID, int(elemSet.Type), props.PhysicalTag, props.GeometricTag)
			line += " " + strings.Join(nodeIDs(cm, elem), " ")

			lines = append(lines, line)
			elemID++
		}
	}

	lines = append(lines, "$EndElements")
	return strings.Join(lines, "\n")
}

// nodeIDs converts logical node names to 1-based node IDs
func nodeIDs(cm *mesh.CompleteMesh, elem []string) []string {
	ids := make([]string, len(elem))
	for j, nodeName := range elem {
		ids[j] = fmt.Sprintf("%d", cm.Nodes.NodeIDMap[nodeName])
	}
	return ids
}
