package planner

import (
	"encoding/json"
	"fmt"
	"os"
)

// Pose is a homogeneous 4x4 transform, row-major.
type Pose [4][4]float64

type posesFile struct {
	Poses []Pose `json:"poses"`
}

// Poses returns the planned trajectory as homogeneous transforms, one per
// planned state: rotation in the upper-left 3x3 block, position in the
// last column.
func (t *Trajectory) Poses() []Pose {
	f := t.calcEverything()
	poses := make([]Pose, len(f.pos))
	for i := range f.pos {
		var p Pose
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				p[r][c] = f.rot[i][r][c]
			}
			p[r][3] = f.pos[i][r]
		}
		p[3][3] = 1
		poses[i] = p
	}
	return poses
}

// SavePoses writes the planned poses as JSON to path.
func (t *Trajectory) SavePoses(path string) error {
	data, err := json.MarshalIndent(posesFile{Poses: t.Poses()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding poses: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing poses to %q: %w", path, err)
	}
	return nil
}

// LoadPoses reads a pose sequence previously written by SavePoses.
func LoadPoses(path string) ([]Pose, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading poses: %w", err)
	}
	var f posesFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing poses %q: %w", path, err)
	}
	return f.Poses, nil
}
