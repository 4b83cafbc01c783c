package boundary

import (
	"github.com/notargets/gomlmg/fab"
	"github.com/notargets/gomlmg/geometry"
)

// Ghost cell status in a boundary mask
const (
	Covered       = 0 // Holds valid data of this level, possibly through a periodic image
	NotCovered    = 1 // Inside the domain with no box of this level, a coarse fine interface
	OutsideDomain = 2
)

// Masks has one integer fab per face and box, over the ghost slab grown by one transverse cell
type Masks [geometry.NumFaces][]*fab.IArrayBox

func (m Masks) Array(face geometry.Orientation, b int) fab.Array4[int] { return m[face][b].Array() }

func BuildMasks(geom *geometry.Geometry, grids geometry.BoxArray, sched fab.Scheduler) (m Masks) {
	shifts := geom.Periodicity().Shifts()
	for face := range m {
		m[face] = make([]*fab.IArrayBox, len(grids))
	}
	sched.Run(len(grids), func(b int) {
		for face := geometry.Orientation(0); face < geometry.NumFaces; face++ {
			var (
				slab = grids[b].AdjCell(face, 1).GrowTransverse(face.Dir(), 1)
				f    = fab.NewIArrayBox(slab, 1)
				a    = f.Array()
			)
			slab.ForEach(func(i, j int) {
				a.Set(i, j, 0, cellStatus(geom, grids, shifts, geometry.IntVect{i, j}))
			})
			m[face][b] = f
		}
	})
	return
}

func cellStatus(geom *geometry.Geometry, grids geometry.BoxArray, shifts []geometry.IntVect,
	iv geometry.IntVect) int {
	if !geom.InsideDomain(iv) {
		return OutsideDomain
	}
	for _, s := range shifts {
		if grids.FindCell(iv.Sub(s)) >= 0 {
			return Covered
		}
	}
	return NotCovered
}

// BuildCCMask marks valid cells and ghost cells covered by this level with 1, every other ghost 0
func BuildCCMask(geom *geometry.Geometry, grids geometry.BoxArray, sched fab.Scheduler) (mask *fab.IMultiFab) {
	var (
		shifts = geom.Periodicity().Shifts()
	)
	mask = fab.NewIMultiFab(grids, 1, 1)
	sched.Run(len(grids), func(b int) {
		var (
			a   = mask.Array(b)
			vbx = mask.ValidBox(b)
		)
		mask.FabBox(b).ForEach(func(i, j int) {
			iv := geometry.IntVect{i, j}
			if vbx.Contains(iv) || cellStatus(geom, grids, shifts, iv) == Covered {
				a.Set(i, j, 0, 1)
			} else {
				a.Set(i, j, 0, 0)
			}
		})
	})
	return
}
