package linop

import (
	"github.com/james-bowman/sparse"

	"github.com/notargets/gomlmg/fab"
	"github.com/notargets/gomlmg/geometry"
	"github.com/notargets/gomlmg/types"
)

// stencilReach bounds the distance between a cell and any cell its row of the operator touches,
// including the interior points of the highest order boundary extrapolation
const stencilReach = 3

// Indexer numbers the valid cells of one level box by box, row major within each box
type Indexer struct {
	Grids  geometry.BoxArray
	offset []int
	n      int
}

func NewIndexer(grids geometry.BoxArray) (ix *Indexer) {
	ix = &Indexer{
		Grids:  grids,
		offset: make([]int, len(grids)),
	}
	for b, bx := range grids {
		ix.offset[b] = ix.n
		ix.n += bx.NumPts()
	}
	return
}

func (ix *Indexer) Len() int { return ix.n }

// Index of cell (i,j) in box b
func (ix *Indexer) Index(b, i, j int) int {
	bx := ix.Grids[b]
	return ix.offset[b] + (j-bx.Lo[1])*bx.Length(0) + (i - bx.Lo[0])
}

// Gather copies component comp of the valid region of mf into a vector
func (ix *Indexer) Gather(mf *fab.MultiFab, comp int) (v []float64) {
	v = make([]float64, ix.n)
	for b, bx := range ix.Grids {
		a := mf.Array(b)
		bx.ForEach(func(i, j int) { v[ix.Index(b, i, j)] = a.At(i, j, comp) })
	}
	return
}

// Scatter writes v into component comp of the valid region of mf
func (ix *Indexer) Scatter(v []float64, mf *fab.MultiFab, comp int) {
	for b, bx := range ix.Grids {
		a := mf.Array(b)
		bx.ForEach(func(i, j int) { a.Set(i, j, comp, v[ix.Index(b, i, j)]) })
	}
}

// Assemble builds the matrix of the homogeneous operator on one level for component comp. Columns
// are probed in groups of cells far enough apart that their stencils never overlap, so each probe
// recovers many columns at once.
func (op *MLEBABecLap) Assemble(amrlev, mglev, comp int) (m *sparse.CSR) {
	var (
		ml     = op.levels[amrlev][mglev]
		ix     = NewIndexer(ml.Grids)
		domain = ml.Geom.Domain
		stride [Dim]int
		in     = op.Make(amrlev, mglev, 1)
		out    = op.Make(amrlev, mglev, 0)
		dok    = sparse.NewDOK(ix.Len(), ix.Len())
	)
	for d := 0; d < Dim; d++ {
		stride[d] = 2*stencilReach + 1
		if ml.Geom.IsPeriodic(d) && domain.Length(d)%stride[d] != 0 {
			stride[d] = domain.Length(d)
		}
	}
	color := func(iv geometry.IntVect) (c [Dim]int) {
		for d := 0; d < Dim; d++ {
			c[d] = mod(iv[d]-domain.Lo[d], stride[d])
		}
		return
	}
	for cy := 0; cy < stride[1]; cy++ {
		for cx := 0; cx < stride[0]; cx++ {
			probe := [Dim]int{cx, cy}
			in.SetVal(0)
			for b, bx := range ml.Grids {
				a := in.Array(b)
				bx.ForEach(func(i, j int) {
					if color(geometry.IntVect{i, j}) == probe {
						a.Set(i, j, comp, 1)
					}
				})
			}
			op.Apply(amrlev, mglev, out, in, types.Homogeneous, types.Correction)
			for b, bx := range ml.Grids {
				y := out.Array(b)
				bx.ForEach(func(i, j int) {
					v := y.At(i, j, comp)
					if v == 0 {
						return
					}
					if col, ok := op.probedColumn(ml.Geom, ml.Grids, ix, geometry.IntVect{i, j}, probe, color); ok {
						dok.Set(ix.Index(b, i, j), col, v)
					}
				})
			}
		}
	}
	m = dok.ToCSR()
	return
}

// probedColumn finds the probed cell within reach of row cell iv
func (op *MLEBABecLap) probedColumn(geom *geometry.Geometry, grids geometry.BoxArray, ix *Indexer,
	iv geometry.IntVect, probe [Dim]int, color func(geometry.IntVect) [Dim]int) (col int, ok bool) {
	for dj := -stencilReach; dj <= stencilReach; dj++ {
		for di := -stencilReach; di <= stencilReach; di++ {
			c := wrap(geom, geometry.IntVect{iv[0] + di, iv[1] + dj})
			if !geom.Domain.Contains(c) || color(c) != probe {
				continue
			}
			if b := grids.FindCell(c); b >= 0 {
				return ix.Index(b, c[0], c[1]), true
			}
		}
	}
	return
}

func wrap(geom *geometry.Geometry, iv geometry.IntVect) geometry.IntVect {
	for d := 0; d < Dim; d++ {
		if geom.IsPeriodic(d) {
			iv[d] = geom.Domain.Lo[d] + mod(iv[d]-geom.Domain.Lo[d], geom.Domain.Length(d))
		}
	}
	return iv
}

func mod(a, n int) int { return ((a % n) + n) % n }
