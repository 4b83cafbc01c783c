package boundary

import (
	"fmt"

	"github.com/notargets/gomlmg/fab"
	"github.com/notargets/gomlmg/geometry"
	"github.com/notargets/gomlmg/types"
	"github.com/notargets/gomlmg/utils"
)

const MaxOrderLimit = 4

// CheckMaxOrder panics for a stencil order outside 1..4
func CheckMaxOrder(maxorder int) {
	if maxorder < 1 || maxorder > MaxOrderLimit {
		panic(fmt.Errorf("boundary stencil order %d outside [1,%d]", maxorder, MaxOrderLimit))
	}
}

// dirichletNodes places the boundary at -bcl/dx and the interior cell centers at 0.5, 1.5, 2.5
func dirichletNodes(bcl, dxinv float64) [MaxOrderLimit]float64 {
	return [MaxOrderLimit]float64{-bcl * dxinv, 0.5, 1.5, 2.5}
}

// DirichletCoef returns the extrapolation weights to the ghost center at -0.5, boundary value first
func DirichletCoef(blen, maxorder int, bcl, dxinv float64) []float64 {
	CheckMaxOrder(maxorder)
	x := dirichletNodes(bcl, dxinv)
	return utils.PolyInterpCoeff(-0.5, x[:min(blen+1, maxorder)])
}

func ApplyBCRegularX(side geometry.Side, slab geometry.Box, blen int, phi fab.Array4[float64], mask fab.Array4[int],
	bct types.LinOpBCType, bcl float64, bcval fab.Array4[float64], maxorder int, dxinv float64, inhomog bool,
	icomp int) {
	applyBCRegular(0, side, slab, blen, phi, mask, bct, bcl, bcval, maxorder, dxinv, inhomog, icomp)
}

func ApplyBCRegularY(side geometry.Side, slab geometry.Box, blen int, phi fab.Array4[float64], mask fab.Array4[int],
	bct types.LinOpBCType, bcl float64, bcval fab.Array4[float64], maxorder int, dxinv float64, inhomog bool,
	icomp int) {
	applyBCRegular(1, side, slab, blen, phi, mask, bct, bcl, bcval, maxorder, dxinv, inhomog, icomp)
}

// applyBCRegular fills the one cell thick ghost slab of a box wherever the mask says the ghost is not
// valid data of this level
func applyBCRegular(dir int, side geometry.Side, slab geometry.Box, blen int, phi fab.Array4[float64],
	mask fab.Array4[int], bct types.LinOpBCType, bcl float64, bcval fab.Array4[float64], maxorder int,
	dxinv float64, inhomog bool, icomp int) {
	var (
		s    = 1 - 2*int(side)
		step = geometry.BaseVector(dir).Scale(s)
	)
	switch bct {
	case types.LO_Neumann, types.LO_ReflectOdd:
		sign := 1.
		if bct == types.LO_ReflectOdd {
			sign = -1
		}
		slab.ForEach(func(i, j int) {
			if mask.At(i, j, 0) > 0 {
				phi.Set(i, j, icomp, sign*phi.At(i+step[0], j+step[1], icomp))
			}
		})
	case types.LO_Dirichlet:
		coef := DirichletCoef(blen, maxorder, bcl, dxinv)
		slab.ForEach(func(i, j int) {
			if mask.At(i, j, 0) <= 0 {
				return
			}
			var tmp float64
			for m := 1; m < len(coef); m++ {
				tmp += phi.At(i+m*step[0], j+m*step[1], icomp) * coef[m]
			}
			if inhomog {
				tmp += bcval.At(i, j, icomp) * coef[0]
			}
			phi.Set(i, j, icomp, tmp)
		})
	}
}

func ApplyBCEBX(side geometry.Side, slab geometry.Box, blen int, phi fab.Array4[float64], ccmask fab.Array4[int],
	area fab.Array4[float64], bct types.LinOpBCType, bcl float64, bcval fab.Array4[float64], maxorder int,
	dxinv float64, inhomog bool, icomp int) {
	applyBCEB(0, side, slab, blen, phi, ccmask, area, bct, bcl, bcval, maxorder, dxinv, inhomog, icomp)
}

func ApplyBCEBY(side geometry.Side, slab geometry.Box, blen int, phi fab.Array4[float64], ccmask fab.Array4[int],
	area fab.Array4[float64], bct types.LinOpBCType, bcl float64, bcval fab.Array4[float64], maxorder int,
	dxinv float64, inhomog bool, icomp int) {
	applyBCEB(1, side, slab, blen, phi, ccmask, area, bct, bcl, bcval, maxorder, dxinv, inhomog, icomp)
}

// applyBCEB fills ghosts next to cut cell boxes. The Dirichlet stencil walks inward through open
// faces: a closed face ends it, any partly open face caps it at linear.
func applyBCEB(dir int, side geometry.Side, slab geometry.Box, blen int, phi fab.Array4[float64],
	ccmask fab.Array4[int], area fab.Array4[float64], bct types.LinOpBCType, bcl float64,
	bcval fab.Array4[float64], maxorder int, dxinv float64, inhomog bool, icomp int) {
	var (
		s    = 1 - 2*int(side)
		step = geometry.BaseVector(dir).Scale(s)
		fill = func(i, j int) bool {
			return ccmask.At(i, j, 0) == 0 && ccmask.At(i+step[0], j+step[1], 0) == 1
		}
	)
	switch bct {
	case types.LO_Neumann, types.LO_ReflectOdd:
		sign := 1.
		if bct == types.LO_ReflectOdd {
			sign = -1
		}
		slab.ForEach(func(i, j int) {
			if fill(i, j) {
				phi.Set(i, j, icomp, sign*phi.At(i+step[0], j+step[1], icomp))
			}
		})
	case types.LO_Dirichlet:
		CheckMaxOrder(maxorder)
		var (
			nx    = min(blen+1, maxorder)
			x     = dirichletNodes(bcl, dxinv)
			coefs [MaxOrderLimit + 1][]float64
		)
		for order := 2; order <= nx; order++ {
			coefs[order] = utils.PolyInterpCoeff(-0.5, x[:order])
		}
		slab.ForEach(func(i, j int) {
			if !fill(i, j) {
				return
			}
			var (
				order  = 1
				hasCut bool
				start  = geometry.IntVect{i, j}
			)
			if side == geometry.Low {
				start = start.Shift(dir, 1)
			}
			for r := 0; r <= nx-2; r++ {
				fc := start.Add(step.Scale(r))
				a := area.At(fc[0], fc[1], 0)
				if a <= 0 {
					break
				}
				order++
				if a < 1 {
					hasCut = true
				}
			}
			if hasCut {
				order = min(order, 2)
			}
			if order == 1 {
				v := 0.
				if inhomog {
					v = bcval.At(i, j, icomp)
				}
				phi.Set(i, j, icomp, v)
				return
			}
			coef := coefs[order]
			var tmp float64
			for m := 1; m < order; m++ {
				tmp += phi.At(i+m*step[0], j+m*step[1], icomp) * coef[m]
			}
			if inhomog {
				tmp += bcval.At(i, j, icomp) * coef[0]
			}
			phi.Set(i, j, icomp, tmp)
		})
	}
}

// CompInterpCoef0X stores, on the first interior column bbox, the weight the ghost fill puts on that
// interior cell. The smoother uses it to keep its diagonal consistent with the boundary.
func CompInterpCoef0X(side geometry.Side, bbox geometry.Box, blen int, f fab.Array4[float64], mask fab.Array4[int],
	bct types.LinOpBCType, bcl float64, maxorder int, dxinv float64, icomp int) {
	compInterpCoef0(0, side, bbox, blen, f, mask, bct, bcl, maxorder, dxinv, icomp)
}

func CompInterpCoef0Y(side geometry.Side, bbox geometry.Box, blen int, f fab.Array4[float64], mask fab.Array4[int],
	bct types.LinOpBCType, bcl float64, maxorder int, dxinv float64, icomp int) {
	compInterpCoef0(1, side, bbox, blen, f, mask, bct, bcl, maxorder, dxinv, icomp)
}

func compInterpCoef0(dir int, side geometry.Side, bbox geometry.Box, blen int, f fab.Array4[float64],
	mask fab.Array4[int], bct types.LinOpBCType, bcl float64, maxorder int, dxinv float64, icomp int) {
	var (
		s    = 1 - 2*int(side)
		back = geometry.BaseVector(dir).Scale(-s)
		c1   float64
	)
	switch bct {
	case types.LO_Neumann:
		c1 = 1
	case types.LO_ReflectOdd:
		c1 = -1
	case types.LO_Dirichlet:
		if coef := DirichletCoef(blen, maxorder, bcl, dxinv); len(coef) > 1 {
			c1 = coef[1]
		}
	}
	bbox.ForEach(func(i, j int) {
		v := c1
		if bct != types.LO_Neumann && mask.At(i+back[0], j+back[1], 0) <= 0 {
			v = 0
		}
		f.Set(i, j, icomp, v)
	})
}

// InterpCoefs holds the CompInterpCoef0 output for every face and box of one level
type InterpCoefs [geometry.NumFaces][]*fab.FArrayBox

func (c InterpCoefs) Array(face geometry.Orientation, b int) fab.Array4[float64] { return c[face][b].Array() }

func BuildInterpCoefs(cond *BndryCondLoc, masks Masks, maxorder int, dxinv [Dim]float64) (c InterpCoefs) {
	var (
		grids = cond.Grids
	)
	for face := range c {
		c[face] = make([]*fab.FArrayBox, len(grids))
	}
	cond.Sched.Run(len(grids), func(b int) {
		for face := geometry.Orientation(0); face < geometry.NumFaces; face++ {
			var (
				d    = face.Dir()
				bbox = grids[b].BndryCells(face)
				f    = fab.NewFArrayBox(bbox, cond.NComp)
				m    = masks.Array(face, b)
			)
			for n := 0; n < cond.NComp; n++ {
				bc := cond.Get(b, n)[face]
				compInterpCoef0(d, face.Side(), bbox, grids[b].Length(d), f.Array(), m, bc.Type, bc.Loc,
					maxorder, dxinv[d], n)
			}
			c[face][b] = f
		}
	})
	return
}
