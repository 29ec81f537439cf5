package mesh

import (
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Stats summarizes an assembled mesh
type Stats struct {
	NumVertices    int            `json:"vertices"`
	NumEdges       int            `json:"edges"`
	NumFaces       int            `json:"faces"`
	NumTriangles   int            `json:"triangles"`
	NumQuads       int            `json:"quads"`
	DuplicateFaces int            `json:"duplicateFaces"`
	Surfaces       map[string]int `json:"surfaces,omitempty"` // surface name -> face count
	BoundingBox    [2][3]float64  `json:"boundingBox"`        // min and max corners
	SurfaceArea    float64        `json:"surfaceArea"`
}

// Statistics computes counts, bounds and total face area
func (m *Mesh) Statistics() Stats {
	s := Stats{
		NumVertices:    len(m.Vertices),
		NumEdges:       len(m.Edges),
		NumFaces:       len(m.Faces),
		DuplicateFaces: m.DuplicateFaces,
		Surfaces:       make(map[string]int),
	}

	for i, face := range m.Faces {
		switch len(face) {
		case 3:
			s.NumTriangles++
		case 4:
			s.NumQuads++
		}
		s.Surfaces[m.SurfaceNames[i]]++
		s.SurfaceArea += m.FaceArea(i)
	}

	if len(m.Vertices) > 0 {
		coords := [3][]float64{}
		for _, v := range m.Vertices {
			coords[0] = append(coords[0], v.X)
			coords[1] = append(coords[1], v.Y)
			coords[2] = append(coords[2], v.Z)
		}
		for d := 0; d < 3; d++ {
			s.BoundingBox[0][d] = floats.Min(coords[d])
			s.BoundingBox[1][d] = floats.Max(coords[d])
		}
	}

	return s
}

// FaceArea returns the area of face i, fanned from its first vertex
func (m *Mesh) FaceArea(i int) float64 {
	face := m.Faces[i]
	var area float64
	a := m.Vertices[face[0]]
	for j := 1; j+1 < len(face); j++ {
		b := m.Vertices[face[j]]
		c := m.Vertices[face[j+1]]
		area += 0.5 * r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
	}
	return area
}

// SurfaceNamesSorted returns the distinct surface names in sorted order
func (s Stats) SurfaceNamesSorted() []string {
	names := make([]string, 0, len(s.Surfaces))
	for name := range s.Surfaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fprint writes a human readable summary
func (s Stats) Fprint(w io.Writer) {
	fmt.Fprintf(w, "Mesh Statistics:\n")
	fmt.Fprintf(w, "  Vertices: %d\n", s.NumVertices)
	fmt.Fprintf(w, "  Edges: %d\n", s.NumEdges)
	fmt.Fprintf(w, "  Faces: %d (%d triangles, %d quads)\n", s.NumFaces, s.NumTriangles, s.NumQuads)
	if s.DuplicateFaces > 0 {
		fmt.Fprintf(w, "  Duplicate faces dropped: %d\n", s.DuplicateFaces)
	}
	fmt.Fprintf(w, "  Bounding box: [%g %g %g] - [%g %g %g]\n",
		s.BoundingBox[0][0], s.BoundingBox[0][1], s.BoundingBox[0][2],
		s.BoundingBox[1][0], s.BoundingBox[1][1], s.BoundingBox[1][2])
	fmt.Fprintf(w, "  Surface area: %g\n", s.SurfaceArea)

	fmt.Fprintf(w, "  Surfaces:\n")
	for _, name := range s.SurfaceNamesSorted() {
		fmt.Fprintf(w, "    %s: %d\n", name, s.Surfaces[name])
	}
}
