package mesh

// TestMeshes provides a collection of standard surface meshes shared by the
// Gmsh 2.2 and 4.1 test file builders
type TestMeshes struct {
	// Node definitions
	SquareNodes NodeSet
	CubeNodes   NodeSet
	TetraNodes  NodeSet

	// Complete mesh definitions
	UnitSquare  CompleteMesh
	CubeSurface CompleteMesh
	TetSurface  CompleteMesh
}

// NodeSet represents a set of nodes with their coordinates
type NodeSet struct {
	Nodes     [][]float64    // Coordinates [N][3]
	NodeMap   map[string]int // Logical name -> array index
	NodeIDMap map[string]int // Logical name -> node ID (1-based)
}

// ElementSet represents a set of elements with connectivity
type ElementSet struct {
	Type       ElementType
	Elements   [][]string     // Connectivity using logical node names
	Properties []ElementProps // Additional properties per element
}

// ElementProps holds additional element properties
type ElementProps struct {
	PhysicalTag  int
	GeometricTag int
}

// PhysicalName is one $PhysicalNames record
type PhysicalName struct {
	Dimension int
	Tag       int
	Name      string
}

// CompleteMesh represents a complete mesh with nodes and elements
type CompleteMesh struct {
	Nodes         NodeSet
	Elements      []ElementSet
	PhysicalNames []PhysicalName

	// Expected assembly results
	ExpectedFaces        int
	ExpectedEdges        int
	ExpectedSurfaceNames []string
}

// NumElements counts the elements across all sets
func (cm *CompleteMesh) NumElements() int {
	n := 0
	for _, set := range cm.Elements {
		n += len(set.Elements)
	}
	return n
}

// GetStandardTestMeshes returns a set of standard test meshes
func GetStandardTestMeshes() *TestMeshes {
	tm := &TestMeshes{}

	tm.SquareNodes = createSquareNodes()
	tm.CubeNodes = createCubeNodes()
	tm.TetraNodes = createTetraNodes()

	tm.UnitSquare = createUnitSquare(tm.SquareNodes)
	tm.CubeSurface = createCubeSurface(tm.CubeNodes)
	tm.TetSurface = createTetSurface(tm.TetraNodes)

	return tm
}

func newNodeSet(nodes [][]float64, nodeMap map[string]int) NodeSet {
	// Node IDs are 1-based
	nodeIDMap := make(map[string]int)
	for name, idx := range nodeMap {
		nodeIDMap[name] = idx + 1
	}
	return NodeSet{
		Nodes:     nodes,
		NodeMap:   nodeMap,
		NodeIDMap: nodeIDMap,
	}
}

func uniformProps(n, physical, geometric int) []ElementProps {
	props := make([]ElementProps, n)
	for i := range props {
		props[i] = ElementProps{PhysicalTag: physical, GeometricTag: geometric}
	}
	return props
}

// Node set creators

func createSquareNodes() NodeSet {
	nodes := [][]float64{
		{0, 0, 0}, // 0: origin
		{1, 0, 0}, // 1: x
		{1, 1, 0}, // 2: xy
		{0, 1, 0}, // 3: y
	}
	return newNodeSet(nodes, map[string]int{
		"origin": 0, "x": 1, "xy": 2, "y": 3,
	})
}

func createCubeNodes() NodeSet {
	nodes := [][]float64{
		{0, 0, 0}, // 0: origin
		{1, 0, 0}, // 1: x
		{1, 1, 0}, // 2: xy
		{0, 1, 0}, // 3: y
		{0, 0, 1}, // 4: z
		{1, 0, 1}, // 5: xz
		{1, 1, 1}, // 6: xyz
		{0, 1, 1}, // 7: yz
	}
	return newNodeSet(nodes, map[string]int{
		"origin": 0, "x": 1, "xy": 2, "y": 3,
		"z": 4, "xz": 5, "xyz": 6, "yz": 7,
	})
}

func createTetraNodes() NodeSet {
	// Standard tetrahedron with vertices at:
	// (0,0,0), (1,0,0), (0,1,0), (0,0,1)
	nodes := [][]float64{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	return newNodeSet(nodes, map[string]int{
		"v0": 0, "v1": 1, "v2": 2, "v3": 3,
	})
}

// Complete mesh creators

// createUnitSquare is two triangles labelled "plate" with four boundary lines
func createUnitSquare(nodes NodeSet) CompleteMesh {
	return CompleteMesh{
		Nodes: nodes,
		Elements: []ElementSet{
			{
				Type: Line,
				Elements: [][]string{
					{"origin", "x"}, {"x", "xy"}, {"xy", "y"}, {"y", "origin"},
				},
				Properties: uniformProps(4, 1, 1),
			},
			{
				Type: Triangle,
				Elements: [][]string{
					{"origin", "x", "xy"},
					{"origin", "xy", "y"},
				},
				Properties: uniformProps(2, 10, 1),
			},
		},
		PhysicalNames: []PhysicalName{
			{Dimension: 1, Tag: 1, Name: "rim"},
			{Dimension: 2, Tag: 10, Name: "plate"},
		},
		ExpectedFaces:        2,
		ExpectedEdges:        4,
		ExpectedSurfaceNames: []string{"plate", "plate"},
	}
}

// createCubeSurface is the six quads of the unit cube, split into three surfaces
func createCubeSurface(nodes NodeSet) CompleteMesh {
	return CompleteMesh{
		Nodes: nodes,
		Elements: []ElementSet{
			{
				Type:       Quad,
				Elements:   [][]string{{"origin", "y", "xy", "x"}},
				Properties: uniformProps(1, 1, 1),
			},
			{
				Type:       Quad,
				Elements:   [][]string{{"z", "xz", "xyz", "yz"}},
				Properties: uniformProps(1, 2, 2),
			},
			{
				Type: Quad,
				Elements: [][]string{
					{"origin", "x", "xz", "z"},
					{"x", "xy", "xyz", "xz"},
					{"xy", "y", "yz", "xyz"},
					{"y", "origin", "z", "yz"},
				},
				Properties: uniformProps(4, 3, 3),
			},
		},
		PhysicalNames: []PhysicalName{
			{Dimension: 2, Tag: 1, Name: "floor"},
			{Dimension: 2, Tag: 2, Name: "lid"},
			{Dimension: 2, Tag: 3, Name: "side walls"},
		},
		ExpectedFaces: 6,
		ExpectedSurfaceNames: []string{
			"floor", "lid", "side walls", "side walls", "side walls", "side walls",
		},
	}
}

// createTetSurface is a single tetrahedron with its four boundary triangles,
// a corner point and no physical names
func createTetSurface(nodes NodeSet) CompleteMesh {
	return CompleteMesh{
		Nodes: nodes,
		Elements: []ElementSet{
			{
				Type:       Point,
				Elements:   [][]string{{"v0"}},
				Properties: uniformProps(1, 0, 1),
			},
			{
				Type: Triangle,
				Elements: [][]string{
					{"v0", "v2", "v1"},
					{"v0", "v1", "v3"},
					{"v1", "v2", "v3"},
					{"v0", "v3", "v2"},
				},
				Properties: uniformProps(4, 5, 1),
			},
			{
				Type:       Tet,
				Elements:   [][]string{{"v0", "v1", "v2", "v3"}},
				Properties: uniformProps(1, 6, 1),
			},
		},
		ExpectedFaces: 4,
		ExpectedSurfaceNames: []string{
			PlaceholderName, PlaceholderName, PlaceholderName, PlaceholderName,
		},
	}
}
