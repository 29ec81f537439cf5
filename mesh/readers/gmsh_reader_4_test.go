package readers

import (
	"strings"
	"testing"

	"github.com/notargets/mshimport/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const twoBlockSquare41 = `$MeshFormat
4.1 0 8
$EndMeshFormat
$PhysicalNames
2
1 7 "edge"
2 3 "skin"
$EndPhysicalNames
$Entities
0 1 1 0
1 0 0 0 1 0 0 1 7 2 1 2
1 0 0 0 1 1 0 1 3 0
$EndEntities
$Nodes
2 4 1 4
2 1 0 3
1
2
3
0 0 0
1 0 0
1 1 0
1 1 0 1
4
0 1 0
$EndNodes
$Elements
2 3 1 3
1 1 1 1
1 1 2
2 1 2 2
2 1 2 3
3 1 3 4
$EndElements
`

func TestReadGmsh4_TwoBlocks(t *testing.T) {
	res, err := Load(createTempMshFile(t, twoBlockSquare41))
	require.NoError(t, err)

	m := res.Mesh
	assert.Equal(t, []r3.Vec{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}, m.Vertices)
	assert.Equal(t, [][2]uint32{{0, 1}}, m.Edges)
	assert.Equal(t, [][]uint32{{0, 1, 2}, {0, 2, 3}}, m.Faces)
	assert.Equal(t, []string{"skin", "skin"}, m.SurfaceNames)
	assert.Empty(t, res.Diagnostics)
	assert.False(t, res.Header.IsLegacy())
	assert.Equal(t, 4.1, res.Header.Version)
}

func TestReadGmsh4_BlockTotals(t *testing.T) {
	t.Run("NodeTotalMismatch", func(t *testing.T) {
		content := strings.Replace(twoBlockSquare41, "2 4 1 4", "2 5 1 5", 1)
		_, err := readString(t, content)
		assert.ErrorIs(t, err, mesh.ErrNodeCountMismatch)
	})

	t.Run("ElementTotalMismatch", func(t *testing.T) {
		content := strings.Replace(twoBlockSquare41, "2 3 1 3", "2 4 1 4", 1)
		_, err := readString(t, content)
		assert.ErrorIs(t, err, mesh.ErrElementCountMismatch)
	})

	t.Run("BlockShorterThanDeclared", func(t *testing.T) {
		content := strings.Replace(twoBlockSquare41, "2 1 2 2\n", "2 1 2 3\n", 1)
		content = strings.Replace(content, "2 3 1 3", "2 4 1 4", 1)
		_, err := readString(t, content)
		assert.ErrorIs(t, err, mesh.ErrElementCountMismatch)
	})
}

func TestReadGmsh4_WithoutEntities(t *testing.T) {
	start := strings.Index(twoBlockSquare41, "$Entities")
	end := strings.Index(twoBlockSquare41, "$Nodes")
	content := twoBlockSquare41[:start] + twoBlockSquare41[end:]

	res, err := readString(t, content)
	require.NoError(t, err)
	assert.Equal(t, []string{mesh.PlaceholderName, mesh.PlaceholderName}, res.Mesh.SurfaceNames)
}

func TestReadGmsh4_EntityWithoutPhysicalTag(t *testing.T) {
	content := strings.Replace(twoBlockSquare41, "1 0 0 0 1 1 0 1 3 0", "1 0 0 0 1 1 0 0 0", 1)
	res, err := readString(t, content)
	require.NoError(t, err)
	assert.Equal(t, []string{mesh.PlaceholderName, mesh.PlaceholderName}, res.Mesh.SurfaceNames)
}

func TestReadGmsh4_UnnamedPhysicalTag(t *testing.T) {
	content := strings.Replace(twoBlockSquare41, "1 0 0 0 1 1 0 1 3 0", "1 0 0 0 1 1 0 1 8 0", 1)
	res, err := readString(t, content)
	assert.ErrorIs(t, err, mesh.ErrMissingPhysicalName)
	assert.Nil(t, res)
}

func TestReadGmsh4_UnsupportedBlock(t *testing.T) {
	content := strings.Replace(twoBlockSquare41, `2 3 1 3
1 1 1 1
1 1 2
`, `3 5 1 5
1 1 1 1
1 1 2
2 1 99 2
4 1 2 3
5 2 3 4
`, 1)
	res, err := readString(t, content)
	require.NoError(t, err)

	require.Len(t, res.Diagnostics, 2)
	for _, d := range res.Diagnostics {
		assert.Equal(t, UnsupportedElementType, d.Kind)
		assert.Contains(t, d.Message, "type 99")
	}
	assert.Len(t, res.Mesh.Faces, 2)
}

func TestReadGmsh4_SkipsParametricNodes(t *testing.T) {
	content := strings.Replace(twoBlockSquare41, "$Nodes\n",
		"$ParametricNodes\n1\n1 0 0 0 0\n$EndParametricNodes\n$Nodes\n", 1)
	res, err := readString(t, content)
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, UnknownSection, res.Diagnostics[0].Kind)
	assert.Len(t, res.Mesh.Vertices, 4)
}

func TestReadGmsh4_StandardMeshes(t *testing.T) {
	builders := map[string]*Gmsh4TestBuilder{
		"4.1": NewGmsh4TestBuilder(),
		"4.0": NewGmsh40TestBuilder(),
	}
	tm := mesh.GetStandardTestMeshes()
	meshes := map[string]mesh.CompleteMesh{
		"UnitSquare":  tm.UnitSquare,
		"CubeSurface": tm.CubeSurface,
		"TetSurface":  tm.TetSurface,
	}

	for version, builder := range builders {
		for name, cm := range meshes {
			builder, cm := builder, cm
			t.Run(version+"/"+name, func(t *testing.T) {
				res, err := readString(t, builder.BuildFromCompleteMesh(&cm))
				require.NoError(t, err)

				m := res.Mesh
				assert.Len(t, m.Vertices, len(cm.Nodes.Nodes))
				assert.Len(t, m.Faces, cm.ExpectedFaces)
				assert.Len(t, m.Edges, cm.ExpectedEdges)
				assert.Equal(t, cm.ExpectedSurfaceNames, m.SurfaceNames)
				assert.Empty(t, res.Diagnostics)

				for i, coords := range cm.Nodes.Nodes {
					assert.Equal(t, r3.Vec{X: coords[0], Y: coords[1], Z: coords[2]}, m.Vertices[i])
				}
			})
		}
	}
}

// Both format families must assemble the same mesh from the same model
func TestReadGmsh4_MatchesGmsh22(t *testing.T) {
	legacy, err := readString(t, NewGmsh22TestBuilder().BuildCubeSurfaceTest())
	require.NoError(t, err)

	for _, builder := range []*Gmsh4TestBuilder{NewGmsh4TestBuilder(), NewGmsh40TestBuilder()} {
		block, err := readString(t, builder.BuildCubeSurfaceTest())
		require.NoError(t, err)
		assert.Equal(t, legacy.Mesh.Vertices, block.Mesh.Vertices)
		assert.Equal(t, legacy.Mesh.Faces, block.Mesh.Faces)
		assert.Equal(t, legacy.Mesh.SurfaceNames, block.Mesh.SurfaceNames)
	}

	legacy, err = readString(t, NewGmsh22TestBuilder().BuildUnitSquareTest())
	require.NoError(t, err)
	block, err := readString(t, NewGmsh4TestBuilder().BuildUnitSquareTest())
	require.NoError(t, err)
	assert.Equal(t, legacy.Mesh.Edges, block.Mesh.Edges)
	assert.Equal(t, legacy.Mesh.Faces, block.Mesh.Faces)
}

func TestReadGmsh4_Errors(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"ShortNodesHeader", strings.Replace(twoBlockSquare41, "2 4 1 4", "2", 1)},
		{"NegativeBlockCount", strings.Replace(twoBlockSquare41, "2 4 1 4", "-2 4 1 4", 1)},
		{"ShortElementBlockHeader", strings.Replace(twoBlockSquare41, "2 1 2 2\n", "2 1 2\n", 1)},
		{"ShortEntity", strings.Replace(twoBlockSquare41, "1 0 0 0 1 1 0 1 3 0", "1 0 0", 1)},
		{"EntitiesEndEarly", strings.Replace(twoBlockSquare41, "0 1 1 0", "0 1 2 0", 1)},
		{"BadCoordinate", strings.Replace(twoBlockSquare41, "1 1 0\n1 1 0 1", "1 x 0\n1 1 0 1", 1)},
		{"ShortTriangle", strings.Replace(twoBlockSquare41, "3 1 3 4", "3 1 3", 1)},
		{"NegativeNodeBlockCount", strings.Replace(twoBlockSquare41, "2 1 0 3", "2 1 0 -1", 1)},
		{"HugeNodeBlockCount", strings.Replace(twoBlockSquare41, "2 1 0 3", "2 1 0 1000000000000000", 1)},
		{"NegativeElementBlockCount", strings.Replace(twoBlockSquare41, "2 1 2 2\n", "2 1 2 -2\n", 1)},
		{"HugeElementBlockCount", strings.Replace(twoBlockSquare41, "2 1 2 2\n", "2 1 2 1000000000000000\n", 1)},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			res, err := readString(t, tc.content)
			assert.ErrorIs(t, err, ErrMalformedRecord)
			assert.Nil(t, res)
		})
	}
}
