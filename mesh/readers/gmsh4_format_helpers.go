package readers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/notargets/mshimport/mesh"
)

// Gmsh4TestBuilder helps build Gmsh 4.x format test files. Version 4.1
// writes node tags and coordinates as separate runs; 4.0 writes "id x y z".
type Gmsh4TestBuilder struct {
	tm      *mesh.TestMeshes
	version string
}

// NewGmsh4TestBuilder creates a new 4.1 builder with standard test meshes
func NewGmsh4TestBuilder() *Gmsh4TestBuilder {
	return &Gmsh4TestBuilder{
		tm:      mesh.GetStandardTestMeshes(),
		version: "4.1",
	}
}

// NewGmsh40TestBuilder creates a builder for the older 4.0 layout
func NewGmsh40TestBuilder() *Gmsh4TestBuilder {
	b := NewGmsh4TestBuilder()
	b.version = "4.0"
	return b
}

func (b *Gmsh4TestBuilder) is41() bool {
	return b.version != "4.0"
}

// BuildUnitSquareTest creates a Gmsh 4.x file with two named triangles and boundary lines
func (b *Gmsh4TestBuilder) BuildUnitSquareTest() string {
	cm := b.tm.UnitSquare
	return b.BuildFromCompleteMesh(&cm)
}

// BuildCubeSurfaceTest creates a Gmsh 4.x file with six named quads
func (b *Gmsh4TestBuilder) BuildCubeSurfaceTest() string {
	cm := b.tm.CubeSurface
	return b.BuildFromCompleteMesh(&cm)
}

// BuildFromCompleteMesh creates a complete Gmsh 4.x format file from a CompleteMesh
func (b *Gmsh4TestBuilder) BuildFromCompleteMesh(cm *mesh.CompleteMesh) string {
	var sections []string

	sections = append(sections, b.buildHeader())
	if len(cm.PhysicalNames) > 0 {
		sections = append(sections, buildPhysicalNames(cm))
	}
	sections = append(sections, b.buildEntities(cm))
	sections = append(sections, b.buildNodes(cm))
	sections = append(sections, b.buildElements(cm))

	return strings.Join(sections, "\n") + "\n"
}

func (b *Gmsh4TestBuilder) buildHeader() string {
	return fmt.Sprintf(`$MeshFormat
%s 0 8
$EndMeshFormat`, b.version)
}

type entityKey struct {
	dim, tag int
}

// entityPhysicals collects the physical tag of every (dim, geometric tag)
// entity used by the element sets
func entityPhysicals(cm *mesh.CompleteMesh) map[entityKey]int {
	entities := make(map[entityKey]int)
	for _, elemSet := range cm.Elements {
		if len(elemSet.Properties) == 0 {
			continue
		}
		props := elemSet.Properties[0]
		key := entityKey{elemSet.Type.Dimension(), props.GeometricTag}
		if _, seen := entities[key]; !seen {
			entities[key] = props.PhysicalTag
		}
	}
	return entities
}

func (b *Gmsh4TestBuilder) buildEntities(cm *mesh.CompleteMesh) string {
	entities := entityPhysicals(cm)
	byDim := make([][]int, 4)
	for key := range entities {
		byDim[key.dim] = append(byDim[key.dim], key.tag)
	}

	var lines []string
	lines = append(lines, "$Entities")
	lines = append(lines, fmt.Sprintf("%d %d %d %d", len(byDim[0]), len(byDim[1]), len(byDim[2]), len(byDim[3])))

	for dim, tags := range byDim {
		sort.Ints(tags)
		for _, tag := range tags {
			physicals := "0"
			if phys := entities[entityKey{dim, tag}]; phys > 0 {
				physicals = fmt.Sprintf("1 %d", phys)
			}
			switch {
			case dim == 0 && b.is41():
				lines = append(lines, fmt.Sprintf("%d 0 0 0 %s", tag, physicals))
			case dim == 0:
				lines = append(lines, fmt.Sprintf("%d 0 0 0 0 0 0 %s", tag, physicals))
			default:
				// bounding box, physical tags, no bounding entities
				lines = append(lines, fmt.Sprintf("%d 0 0 0 1 1 1 %s 0", tag, physicals))
			}
		}
	}

	lines = append(lines, "$EndEntities")
	return strings.Join(lines, "\n")
}

// entityFields orders the entity dimension and tag for a block header
func (b *Gmsh4TestBuilder) entityFields(dim, tag int) string {
	if b.is41() {
		return fmt.Sprintf("%d %d", dim, tag)
	}
	return fmt.Sprintf("%d %d", tag, dim)
}

func (b *Gmsh4TestBuilder) buildNodes(cm *mesh.CompleteMesh) string {
	numNodes := len(cm.Nodes.Nodes)

	var lines []string
	lines = append(lines, "$Nodes")
	if b.is41() {
		lines = append(lines, fmt.Sprintf("1 %d 1 %d", numNodes, numNodes))
	} else {
		lines = append(lines, fmt.Sprintf("1 %d", numNodes))
	}
	lines = append(lines, fmt.Sprintf("%s 0 %d", b.entityFields(2, 1), numNodes))

	if b.is41() {
		for i := 1; i <= numNodes; i++ {
			lines = append(lines, fmt.Sprintf("%d", i))
		}
		for i := 0; i < numNodes; i++ {
			coords := cm.Nodes.Nodes[i]
			lines = append(lines, fmt.Sprintf("%g %g %g", coords[0], coords[1], coords[2]))
		}
	} else {
		for i := 0; i < numNodes; i++ {
			coords := cm.Nodes.Nodes[i]
			lines = append(lines, fmt.Sprintf("%d %g %g %g", i+1, coords[0], coords[1], coords[2]))
		}
	}

	lines = append(lines, "$EndNodes")
	return strings.Join(lines, "\n")
}

func (b *Gmsh4TestBuilder) buildElements(cm *mesh.CompleteMesh) string {
	totalElements := cm.NumElements()
	numBlocks := 0
	for _, elemSet := range cm.Elements {
		if len(elemSet.Elements) > 0 {
			numBlocks++
		}
	}

	var lines []string
	lines = append(lines, "$Elements")
	if b.is41() {
		lines = append(lines, fmt.Sprintf("%d %d 1 %d", numBlocks, totalElements, totalElements))
	} else {
		lines = append(lines, fmt.Sprintf("%d %d", numBlocks, totalElements))
	}

	elemTag := 1
	for _, elemSet := range cm.Elements {
		if len(elemSet.Elements) == 0 {
			continue
		}
		geometricTag := 0
		if len(elemSet.Properties) > 0 {
			geometricTag = elemSet.Properties[0].GeometricTag
		}

		// Block header: entityDim entityTag elementType numElements (4.1)
		lines = append(lines, fmt.Sprintf("%s %d %d",
			b.entityFields(elemSet.Type.Dimension(), geometricTag), int(elemSet.Type), len(elemSet.Elements)))

		for _, elem := range elemSet.Elements {
			lines = append(lines, fmt.Sprintf("%d %s", elemTag, strings.Join(nodeIDs(cm, elem), " ")))
			elemTag++
		}
	}

	lines = append(lines, "$EndElements")
	return strings.Join(lines, "\n")
}
