package planner

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// DensityField exposes the volumetric density a trajectory is optimized
// against. Implementations must be safe for concurrent reads.
type DensityField interface {
	// Density returns the field value at a world-space point. Higher values
	// mean more occupied space.
	Density(p Vec3) float64
}

// EmptyField is a density field with no obstacles.
type EmptyField struct{}

func (EmptyField) Density(Vec3) float64 { return 0 }

// CylinderField is a soft vertical cylinder of radius sqrt(2) centered at
// (0, 1) in the XY plane, useful as a cheap stand-in for a trained scene.
type CylinderField struct{}

func (CylinderField) Density(p Vec3) float64 {
	x, y := p[0], p[1]
	return sigmoid((2 - (x*x + (y-1)*(y-1))) * 8)
}

// GridField samples a dense voxel grid with trilinear interpolation. Points
// outside the grid bounds have zero density.
type GridField struct {
	Dims   [3]int
	Min    Vec3
	Max    Vec3
	Values []float64
}

type gridFieldJSON struct {
	Dims   [3]int     `json:"dims"`
	Min    [3]float64 `json:"min"`
	Max    [3]float64 `json:"max"`
	Values []float64  `json:"values"`
}

// LoadGridField reads a voxel grid from a JSON file. Values are laid out
// x-major: index = (ix*ny + iy)*nz + iz.
func LoadGridField(path string) (*GridField, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading density grid: %w", err)
	}
	var raw gridFieldJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing density grid %q: %w", path, err)
	}
	g := &GridField{Dims: raw.Dims, Min: raw.Min, Max: raw.Max, Values: raw.Values}
	if err := g.validate(); err != nil {
		return nil, fmt.Errorf("density grid %q: %w", path, err)
	}
	return g, nil
}

func (g *GridField) validate() error {
	for i := 0; i < 3; i++ {
		if g.Dims[i] < 2 {
			return fmt.Errorf("dims must be at least 2 per axis, got %v", g.Dims)
		}
		if g.Max[i] <= g.Min[i] {
			return fmt.Errorf("max must exceed min per axis, got min=%v max=%v", g.Min, g.Max)
		}
	}
	want := g.Dims[0] * g.Dims[1] * g.Dims[2]
	if len(g.Values) != want {
		return fmt.Errorf("expected %d values for dims %v, got %d", want, g.Dims, len(g.Values))
	}
	return nil
}

func (g *GridField) at(ix, iy, iz int) float64 {
	return g.Values[(ix*g.Dims[1]+iy)*g.Dims[2]+iz]
}

func (g *GridField) Density(p Vec3) float64 {
	var idx [3]float64
	for i := 0; i < 3; i++ {
		if p[i] < g.Min[i] || p[i] > g.Max[i] {
			return 0
		}
		idx[i] = (p[i] - g.Min[i]) / (g.Max[i] - g.Min[i]) * float64(g.Dims[i]-1)
	}
	ix, iy, iz := int(idx[0]), int(idx[1]), int(idx[2])
	if ix >= g.Dims[0]-1 {
		ix = g.Dims[0] - 2
	}
	if iy >= g.Dims[1]-1 {
		iy = g.Dims[1] - 2
	}
	if iz >= g.Dims[2]-1 {
		iz = g.Dims[2] - 2
	}
	fx, fy, fz := idx[0]-float64(ix), idx[1]-float64(iy), idx[2]-float64(iz)

	c00 := g.at(ix, iy, iz)*(1-fx) + g.at(ix+1, iy, iz)*fx
	c10 := g.at(ix, iy+1, iz)*(1-fx) + g.at(ix+1, iy+1, iz)*fx
	c01 := g.at(ix, iy, iz+1)*(1-fx) + g.at(ix+1, iy, iz+1)*fx
	c11 := g.at(ix, iy+1, iz+1)*(1-fx) + g.at(ix+1, iy+1, iz+1)*fx

	c0 := c00*(1-fy) + c10*fy
	c1 := c01*(1-fy) + c11*fy
	return c0*(1-fz) + c1*fz
}

// Occupancy thresholds the grid into a boolean voxel volume for path search.
func (g *GridField) Occupancy(threshold float64) [][][]bool {
	occ := make([][][]bool, g.Dims[0])
	for ix := range occ {
		occ[ix] = make([][]bool, g.Dims[1])
		for iy := range occ[ix] {
			occ[ix][iy] = make([]bool, g.Dims[2])
			for iz := range occ[ix][iy] {
				occ[ix][iy][iz] = g.at(ix, iy, iz) > threshold
			}
		}
	}
	return occ
}

// Cell maps a world-space point to the nearest voxel index, clamped to the
// grid bounds.
func (g *GridField) Cell(p Vec3) Cell {
	var c Cell
	for i := 0; i < 3; i++ {
		f := (p[i] - g.Min[i]) / (g.Max[i] - g.Min[i]) * float64(g.Dims[i]-1)
		idx := int(math.Round(f))
		if idx < 0 {
			idx = 0
		}
		if idx > g.Dims[i]-1 {
			idx = g.Dims[i] - 1
		}
		c[i] = idx
	}
	return c
}

// CellCenter maps a voxel index to its world-space position.
func (g *GridField) CellCenter(c Cell) Vec3 {
	var p Vec3
	dims := [3]int{c[0], c[1], c[2]}
	for i := 0; i < 3; i++ {
		p[i] = g.Min[i] + (g.Max[i]-g.Min[i])*float64(dims[i])/float64(g.Dims[i]-1)
	}
	return p
}
