package readers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/notargets/mshimport/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// Helper function to create temporary test files
func createTempMshFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "test.msh")
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	return tmpFile
}

func readString(t *testing.T, content string, opts ...Option) (*Result, error) {
	t.Helper()
	return Read(strings.NewReader(content), opts...)
}

const singleTriangle22 = `$MeshFormat
2.2 0 8
$EndMeshFormat
$PhysicalNames
1
2 1 "top"
$EndPhysicalNames
$Nodes
3
1 0 0 0
2 1 0 0
3 0 1 0
$EndNodes
$Elements
1
1 2 2 1 1 1 2 3
$EndElements
`

func TestReadGmsh22_SingleTriangle(t *testing.T) {
	res, err := Load(createTempMshFile(t, singleTriangle22))
	require.NoError(t, err)

	m := res.Mesh
	assert.Equal(t, []r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}}, m.Vertices)
	assert.Equal(t, [][]uint32{{0, 1, 2}}, m.Faces)
	assert.Equal(t, []string{"top"}, m.SurfaceNames)
	assert.Empty(t, m.Edges)
	assert.Empty(t, res.Diagnostics)

	assert.Equal(t, 2.2, res.Header.Version)
	assert.Equal(t, 0, res.Header.FileType)
	assert.Equal(t, 8, res.Header.DataSize)
	assert.True(t, res.Header.IsLegacy())
}

func TestReadGmsh22_NoPhysicalNames(t *testing.T) {
	content := `$MeshFormat
2.2 0 8
$EndMeshFormat
$Nodes
3
1 0 0 0
2 1 0 0
3 0 1 0
$EndNodes
$Elements
1
1 2 2 1 1 1 2 3
$EndElements
`
	res, err := readString(t, content)
	require.NoError(t, err)
	assert.Equal(t, []string{mesh.PlaceholderName}, res.Mesh.SurfaceNames)
}

func TestReadGmsh22_DeduplicatesReversedTriangle(t *testing.T) {
	content := `$MeshFormat
2.2 0 8
$EndMeshFormat
$PhysicalNames
2
2 1 "front"
2 2 "back"
$EndPhysicalNames
$Nodes
3
1 0 0 0
2 1 0 0
3 0 1 0
$EndNodes
$Elements
2
1 2 2 1 1 1 2 3
2 2 2 2 1 3 2 1
$EndElements
`
	res, err := readString(t, content)
	require.NoError(t, err)
	assert.Equal(t, [][]uint32{{0, 1, 2}}, res.Mesh.Faces)
	assert.Equal(t, []string{"front"}, res.Mesh.SurfaceNames)
	assert.Equal(t, 1, res.Mesh.DuplicateFaces)
}

func TestReadGmsh22_UnsupportedElementType(t *testing.T) {
	content := `$MeshFormat
2.2 0 8
$EndMeshFormat
$Nodes
3
1 0 0 0
2 1 0 0
3 0 1 0
$EndNodes
$Elements
3
1 1 2 0 1 1 2
2 99 2 0 1 1 2 3
3 2 2 0 1 1 2 3
$EndElements
`
	res, err := readString(t, content)
	require.NoError(t, err)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, UnsupportedElementType, res.Diagnostics[0].Kind)
	assert.Equal(t, 13, res.Diagnostics[0].Line)
	assert.Contains(t, res.Diagnostics[0].Message, "type 99")

	assert.Equal(t, [][2]uint32{{0, 1}}, res.Mesh.Edges)
	assert.Equal(t, [][]uint32{{0, 1, 2}}, res.Mesh.Faces)
}

func TestReadGmsh22_SkipsUnknownSections(t *testing.T) {
	content := `$MeshFormat
2.2 0 8
$EndMeshFormat
$Periodic
1
1 2 1
2
1 3
2 4
$EndPeriodic
$Nodes
3
1 0 0 0
2 1 0 0
3 0 1 0
$EndNodes
$NodeData
1
"temperature"
$EndNodeData
$Elements
1
1 2 2 0 1 1 2 3
$EndElements
`
	res, err := readString(t, content)
	require.NoError(t, err)

	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, UnknownSection, res.Diagnostics[0].Kind)
	assert.Contains(t, res.Diagnostics[0].Message, "$Periodic")
	assert.Equal(t, 4, res.Diagnostics[0].Line)
	assert.Contains(t, res.Diagnostics[1].Message, "$NodeData")

	assert.Len(t, res.Mesh.Vertices, 3)
	assert.Len(t, res.Mesh.Faces, 1)
}

func TestReadGmsh22_UnterminatedSectionAtEOF(t *testing.T) {
	content := singleTriangle22 + "$ElementData\n1\n\"stress\"\n"
	res, err := readString(t, content)
	require.NoError(t, err)

	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0].Message, "reached EOF before $EndElementData")
	assert.Len(t, res.Mesh.Faces, 1)
}

func TestReadGmsh22_BlankLinesInData(t *testing.T) {
	content := `$MeshFormat
2.2 0 8
$EndMeshFormat
$PhysicalNames
1

2 1 "top"
$EndPhysicalNames
$Nodes
3
1 0 0 0

2 1 0 0

3 0 1 0
$EndNodes

$Elements
1

1 2 2 1 1 1 2 3
$EndElements
`
	res, err := readString(t, content)
	require.NoError(t, err)
	assert.Len(t, res.Mesh.Vertices, 3)
	assert.Equal(t, []string{"top"}, res.Mesh.SurfaceNames)
	assert.Empty(t, res.Diagnostics)
}

func TestReadGmsh22_ParametricNodes(t *testing.T) {
	content := `$MeshFormat
2.2 0 8
$EndMeshFormat
$ParametricNodes
2
1 0 0 0 0 1 0.0
2 2 0 0 1 1 0.5
$EndParametricNodes
$Elements
1
1 1 2 0 1 1 2
$EndElements
`
	res, err := readString(t, content)
	require.NoError(t, err)
	assert.Equal(t, []r3.Vec{{}, {X: 2}}, res.Mesh.Vertices)
	assert.Equal(t, [][2]uint32{{0, 1}}, res.Mesh.Edges)
}

func TestReadGmsh22_QuotedNamesWithSpaces(t *testing.T) {
	content := strings.Replace(singleTriangle22, `2 1 "top"`, `2 1 "inlet wall #2"`, 1)
	res, err := readString(t, content)
	require.NoError(t, err)
	assert.Equal(t, []string{"inlet wall #2"}, res.Mesh.SurfaceNames)
}

func TestReadGmsh22_StandardMeshes(t *testing.T) {
	builder := NewGmsh22TestBuilder()
	tm := mesh.GetStandardTestMeshes()

	cases := map[string]mesh.CompleteMesh{
		"UnitSquare":  tm.UnitSquare,
		"CubeSurface": tm.CubeSurface,
		"TetSurface":  tm.TetSurface,
	}
	for name, cm := range cases {
		cm := cm
		t.Run(name, func(t *testing.T) {
			res, err := Load(createTempMshFile(t, builder.BuildFromCompleteMesh(&cm)))
			require.NoError(t, err)

			m := res.Mesh
			assert.Len(t, m.Vertices, len(cm.Nodes.Nodes))
			assert.Len(t, m.Faces, cm.ExpectedFaces)
			assert.Len(t, m.Edges, cm.ExpectedEdges)
			assert.Equal(t, cm.ExpectedSurfaceNames, m.SurfaceNames)
			assert.Equal(t, len(m.Faces), len(m.SurfaceNames))
			assert.Empty(t, res.Diagnostics)

			for i, coords := range cm.Nodes.Nodes {
				assert.Equal(t, r3.Vec{X: coords[0], Y: coords[1], Z: coords[2]}, m.Vertices[i])
			}
		})
	}
}

func TestReadGmsh22_CubeWinding(t *testing.T) {
	res, err := readString(t, NewGmsh22TestBuilder().BuildCubeSurfaceTest())
	require.NoError(t, err)
	// floor is origin, y, xy, x
	assert.Equal(t, []uint32{0, 3, 2, 1}, res.Mesh.Faces[0])
	assert.InDelta(t, 6.0, res.Mesh.Statistics().SurfaceArea, 1e-12)
}

func TestReadGmsh22_Errors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    error
	}{
		{
			name:    "NotAnMshFile",
			content: "solid cube\nendsolid\n",
			want:    ErrNotAnMshFile,
		},
		{
			name:    "Empty",
			content: "",
			want:    ErrNotAnMshFile,
		},
		{
			name:    "NonNumericVersion",
			content: strings.Replace(singleTriangle22, "2.2 0 8", "two 0 8", 1),
			want:    ErrMalformedHeader,
		},
		{
			name:    "ShortHeader",
			content: strings.Replace(singleTriangle22, "2.2 0 8", "2.2 0", 1),
			want:    ErrMalformedHeader,
		},
		{
			name:    "BadFileType",
			content: strings.Replace(singleTriangle22, "2.2 0 8", "2.2 ascii 8", 1),
			want:    ErrMalformedHeader,
		},
		{
			name:    "NodeCountMismatch",
			content: strings.Replace(singleTriangle22, "$Nodes\n3\n", "$Nodes\n4\n", 1),
			want:    mesh.ErrNodeCountMismatch,
		},
		{
			name:    "DuplicateNodeID",
			content: strings.Replace(singleTriangle22, "3 0 1 0", "2 0 1 0", 1),
			want:    mesh.ErrNodeCountMismatch,
		},
		{
			name:    "ElementCountMismatch",
			content: strings.Replace(singleTriangle22, "$Elements\n1\n", "$Elements\n2\n", 1),
			want:    mesh.ErrElementCountMismatch,
		},
		{
			name:    "MissingNode",
			content: strings.Replace(singleTriangle22, "1 2 2 1 1 1 2 3", "1 2 2 1 1 1 2 7", 1),
			want:    mesh.ErrMissingNode,
		},
		{
			name:    "MissingPhysicalName",
			content: strings.Replace(singleTriangle22, "1 2 2 1 1 1 2 3", "1 2 2 4 1 1 2 3", 1),
			want:    mesh.ErrMissingPhysicalName,
		},
		{
			name:    "ShortElementRecord",
			content: strings.Replace(singleTriangle22, "1 2 2 1 1 1 2 3", "1 2 2 1 1 1 2", 1),
			want:    ErrMalformedRecord,
		},
		{
			name:    "TooFewTags",
			content: strings.Replace(singleTriangle22, "1 2 2 1 1 1 2 3", "1 2 9 1 1", 1),
			want:    ErrMalformedRecord,
		},
		{
			name:    "BadCoordinate",
			content: strings.Replace(singleTriangle22, "2 1 0 0", "2 one 0 0", 1),
			want:    ErrMalformedRecord,
		},
		{
			name:    "BadNodeCount",
			content: strings.Replace(singleTriangle22, "$Nodes\n3\n", "$Nodes\nthree\n", 1),
			want:    ErrMalformedRecord,
		},
		{
			name:    "UnquotedPhysicalName",
			content: strings.Replace(singleTriangle22, `2 1 "top"`, `2 1 "top`, 1),
			want:    ErrMalformedRecord,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			res, err := readString(t, tc.content)
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, res, "no partial mesh on failure")
		})
	}
}

func TestReadGmsh22_TruncatedNodeList(t *testing.T) {
	content := `$MeshFormat
2.2 0 8
$EndMeshFormat
$Nodes
3
1 0 0 0
2 1 0 0
`
	_, err := readString(t, content)
	assert.ErrorIs(t, err, mesh.ErrNodeCountMismatch)
}

func TestReadGmsh22_StrayLine(t *testing.T) {
	content := strings.Replace(singleTriangle22, "$EndPhysicalNames\n", "$EndPhysicalNames\ngarbage here\n", 1)
	res, err := readString(t, content)
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, StrayLine, res.Diagnostics[0].Kind)
	assert.Equal(t, 8, res.Diagnostics[0].Line)
}

func TestReadGmsh22_CRLF(t *testing.T) {
	content := strings.ReplaceAll(singleTriangle22, "\n", "\r\n")
	res, err := readString(t, content)
	require.NoError(t, err)
	assert.Equal(t, []string{"top"}, res.Mesh.SurfaceNames)
}

func TestReadGmsh22_MissingEndMarkers(t *testing.T) {
	t.Run("EndMeshFormat", func(t *testing.T) {
		content := strings.Replace(singleTriangle22, "$EndMeshFormat\n", "", 1)
		res, err := readString(t, content)
		require.NoError(t, err)

		assert.Len(t, res.Mesh.Vertices, 3)
		assert.Equal(t, []string{"top"}, res.Mesh.SurfaceNames)
		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, MissingEndMarker, res.Diagnostics[0].Kind)
		assert.Equal(t, 3, res.Diagnostics[0].Line)
		assert.Contains(t, res.Diagnostics[0].Message, "$PhysicalNames starts before $EndMeshFormat")
	})

	t.Run("EndNodes", func(t *testing.T) {
		content := strings.Replace(singleTriangle22, "$EndNodes\n", "", 1)
		res, err := readString(t, content)
		require.NoError(t, err)

		assert.Len(t, res.Mesh.Faces, 1)
		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, MissingEndMarker, res.Diagnostics[0].Kind)
		assert.Contains(t, res.Diagnostics[0].Message, "$Elements starts before $EndNodes")
	})

	t.Run("EndElementsAtEOF", func(t *testing.T) {
		content := strings.Replace(singleTriangle22, "$EndElements\n", "", 1)
		res, err := readString(t, content)
		require.NoError(t, err)

		require.Len(t, res.Diagnostics, 1)
		assert.Contains(t, res.Diagnostics[0].Message, "reached EOF before $EndElements")
	})

	t.Run("Strict", func(t *testing.T) {
		content := strings.Replace(singleTriangle22, "$EndMeshFormat\n", "", 1)
		res, err := readString(t, content, WithStrict(true))
		assert.ErrorIs(t, err, ErrDiagnostics)
		assert.Nil(t, res)
	})
}
