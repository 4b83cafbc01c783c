package boundary

import (
	"fmt"

	"github.com/notargets/gomlmg/fab"
	"github.com/notargets/gomlmg/geometry"
	"github.com/notargets/gomlmg/types"
)

// BoundCond is the condition applied at one face of one box for one component
type BoundCond struct {
	Type types.LinOpBCType
	Loc  float64 // Distance from the boundary to the plane of the adjacent cell centers
}

type FaceConds [geometry.NumFaces]BoundCond

// SetBoxBC classifies each face of bx. Faces on the non periodic domain edge take the caller's
// type with zero distance, every other face is an internal Dirichlet face.
func SetBoxBC(bx geometry.Box, geom *geometry.Geometry, dx [Dim]float64, lo, hi [Dim]types.LinOpBCType,
	ratio int, interiorLoc [Dim]float64) (fc FaceConds) {
	for face := geometry.Orientation(0); face < geometry.NumFaces; face++ {
		var (
			d      = face.Dir()
			onEdge bool
			bct    types.LinOpBCType
		)
		if face.IsLow() {
			onEdge, bct = bx.Lo[d] == geom.Domain.Lo[d], lo[d]
		} else {
			onEdge, bct = bx.Hi[d] == geom.Domain.Hi[d], hi[d]
		}
		if onEdge && !geom.IsPeriodic(d) {
			switch bct {
			case types.LO_Dirichlet, types.LO_Neumann, types.LO_ReflectOdd:
				fc[face] = BoundCond{Type: bct}
			default:
				panic(fmt.Errorf("unsupported boundary condition %v on %v face of %v", bct, face, bx))
			}
			continue
		}
		loc := interiorLoc[d]
		if ratio > 0 {
			loc = 0.5 * float64(ratio) * dx[d]
		}
		fc[face] = BoundCond{Type: types.LO_Dirichlet, Loc: loc}
	}
	return
}

// BndryCondLoc holds the condition table for every box and component of one level
type BndryCondLoc struct {
	Grids geometry.BoxArray
	NComp int
	Sched fab.Scheduler
	conds [][]FaceConds // [box][comp]
}

func NewBndryCondLoc(grids geometry.BoxArray, ncomp int, sched fab.Scheduler) (bl *BndryCondLoc) {
	bl = &BndryCondLoc{
		Grids: grids,
		NComp: ncomp,
		Sched: sched,
		conds: make([][]FaceConds, len(grids)),
	}
	for i := range bl.conds {
		bl.conds[i] = make([]FaceConds, ncomp)
	}
	return
}

// SetLOBndryConds fills the table. lo and hi carry one entry per component.
func (bl *BndryCondLoc) SetLOBndryConds(geom *geometry.Geometry, dx [Dim]float64, lo, hi [][Dim]types.LinOpBCType,
	ratio int, interiorLoc [Dim]float64) {
	if len(lo) < bl.NComp || len(hi) < bl.NComp {
		panic(fmt.Errorf("boundary types given for %d/%d components, need %d", len(lo), len(hi), bl.NComp))
	}
	bl.Sched.Run(len(bl.Grids), func(b int) {
		for n := 0; n < bl.NComp; n++ {
			bl.conds[b][n] = SetBoxBC(bl.Grids[b], geom, dx, lo[n], hi[n], ratio, interiorLoc)
		}
	})
}

func (bl *BndryCondLoc) Get(box, comp int) FaceConds { return bl.conds[box][comp] }

// MLMGBndry carries boundary conditions and boundary values for one AMR level
type MLMGBndry struct {
	Geom  *geometry.Geometry
	Grids geometry.BoxArray
	NComp int
	Cond  *BndryCondLoc
	Sched fab.Scheduler

	masks  Masks
	values [geometry.NumFaces][]*fab.FArrayBox // Ghost slab of each box face, same extent as the masks
}

func NewMLMGBndry(geom *geometry.Geometry, grids geometry.BoxArray, ncomp int, sched fab.Scheduler) (mb *MLMGBndry) {
	mb = &MLMGBndry{
		Geom:  geom,
		Grids: grids,
		NComp: ncomp,
		Cond:  NewBndryCondLoc(grids, ncomp, sched),
		Sched: sched,
		masks: BuildMasks(geom, grids, sched),
	}
	for face := range mb.values {
		mb.values[face] = make([]*fab.FArrayBox, len(grids))
		for b, bx := range grids {
			o := geometry.Orientation(face)
			mb.values[face][b] = fab.NewFArrayBox(bx.AdjCell(o, 1).GrowTransverse(o.Dir(), 1), ncomp)
		}
	}
	return
}

func (mb *MLMGBndry) SetLOBndryConds(lo, hi [][Dim]types.LinOpBCType, ratio int, interiorLoc [Dim]float64) {
	mb.Cond.SetLOBndryConds(mb.Geom, mb.Geom.CellSize(), lo, hi, ratio, interiorLoc)
}

// SetBndryValues copies the ghost values of mf that lie outside the domain into the boundary
// slabs. A nil mf zeroes them.
func (mb *MLMGBndry) SetBndryValues(mf *fab.MultiFab, scomp, bcomp, ncomp int) {
	if mf != nil && (len(mf.BA) != len(mb.Grids) || mf.NGrow < 1) {
		panic(fmt.Errorf("boundary data must share the level layout and carry a ghost cell"))
	}
	mb.eachSlab(func(face geometry.Orientation, b int, v fab.Array4[float64], m fab.Array4[int]) {
		var src fab.Array4[float64]
		if mf != nil {
			src = mf.Array(b)
		}
		v.Box().ForEach(func(i, j int) {
			if m.At(i, j, 0) != OutsideDomain {
				return
			}
			for n := 0; n < ncomp; n++ {
				val := 0.
				if src.Ok() && src.Contains(i, j) {
					val = src.At(i, j, scomp+n)
				}
				v.Set(i, j, bcomp+n, val)
			}
		})
	})
}

// SetCoarseFineValues fills the slab cells not covered by this level with the value of the
// coarse cell underneath them
func (mb *MLMGBndry) SetCoarseFineValues(crse *fab.MultiFab, scomp, bcomp, ncomp int, ratio geometry.IntVect) {
	mb.eachSlab(func(face geometry.Orientation, b int, v fab.Array4[float64], m fab.Array4[int]) {
		v.Box().ForEach(func(i, j int) {
			if m.At(i, j, 0) != NotCovered {
				return
			}
			civ := geometry.IntVect{i, j}.Coarsen(ratio)
			for n := 0; n < ncomp; n++ {
				if val, ok := crse.ValueAt(civ, scomp+n); ok {
					v.Set(i, j, bcomp+n, val)
				}
			}
		})
	})
}

func (mb *MLMGBndry) eachSlab(fn func(face geometry.Orientation, b int, v fab.Array4[float64], m fab.Array4[int])) {
	mb.Sched.Run(len(mb.Grids), func(b int) {
		for face := geometry.Orientation(0); face < geometry.NumFaces; face++ {
			fn(face, b, mb.values[face][b].Array(), mb.masks[face][b].Array())
		}
	})
}

// Values is the boundary value slab on one face of box b
func (mb *MLMGBndry) Values(face geometry.Orientation, b int) fab.Array4[float64] {
	return mb.values[face][b].Array()
}

func (mb *MLMGBndry) Masks() Masks { return mb.masks }
