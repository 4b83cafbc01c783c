package fab

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gomlmg/geometry"
)

type MultiFab struct {
	FabArray[float64]
}

type IMultiFab struct {
	FabArray[int]
}

func NewMultiFab(ba geometry.BoxArray, ncomp, ngrow int) *MultiFab {
	return NewMultiFabType(ba, geometry.CellType(), ncomp, ngrow)
}

// NewFaceMultiFab holds values on the faces normal to dir
func NewFaceMultiFab(ba geometry.BoxArray, dir, ncomp, ngrow int) *MultiFab {
	return NewMultiFabType(ba, geometry.FaceType(dir), ncomp, ngrow)
}

func NewMultiFabType(ba geometry.BoxArray, ixType geometry.IndexType, ncomp, ngrow int) *MultiFab {
	return &MultiFab{FabArray: *NewFabArray[float64](ba, ixType, ncomp, ngrow)}
}

func NewIMultiFab(ba geometry.BoxArray, ncomp, ngrow int) *IMultiFab {
	return &IMultiFab{FabArray: *NewFabArray[int](ba, geometry.CellType(), ncomp, ngrow)}
}

// Like allocates a zeroed MultiFab with the same layout
func (mf *MultiFab) Like() *MultiFab {
	return NewMultiFabType(mf.BA, mf.IxType, mf.NComp, mf.NGrow)
}

func Copy(dst, src *MultiFab, scomp, dcomp, ncomp, ngrow int) {
	dst.CopyFrom(&src.FabArray, scomp, dcomp, ncomp, ngrow)
}

// Sum adds component comp over the valid region
func (mf *MultiFab) Sum(comp int) (sum float64) {
	for i, f := range mf.Fabs {
		var (
			a   = f.Array()
			vbx = mf.ValidBox(i)
		)
		for j := vbx.Lo[1]; j <= vbx.Hi[1]; j++ {
			sum += floats.Sum(a.Row(vbx.Lo[0], vbx.Hi[0], j, comp))
		}
	}
	return
}

// Norm0 is the max absolute value of component comp over the valid region
func (mf *MultiFab) Norm0(comp int) (nrm float64) {
	for i, f := range mf.Fabs {
		var (
			a   = f.Array()
			vbx = mf.ValidBox(i)
		)
		for j := vbx.Lo[1]; j <= vbx.Hi[1]; j++ {
			nrm = math.Max(nrm, floats.Norm(a.Row(vbx.Lo[0], vbx.Hi[0], j, comp), math.Inf(1)))
		}
	}
	return
}

// Saxpy adds alpha*x to mf over the valid region
func (mf *MultiFab) Saxpy(alpha float64, x *MultiFab, scomp, dcomp, ncomp int) {
	for i, f := range mf.Fabs {
		var (
			a   = f.Array()
			b   = x.Fabs[i].Array()
			vbx = mf.ValidBox(i)
		)
		for n := 0; n < ncomp; n++ {
			for j := vbx.Lo[1]; j <= vbx.Hi[1]; j++ {
				floats.AddScaled(a.Row(vbx.Lo[0], vbx.Hi[0], j, dcomp+n), alpha,
					b.Row(vbx.Lo[0], vbx.Hi[0], j, scomp+n))
			}
		}
	}
}

// Scale multiplies the valid region of components [comp, comp+ncomp) by s
func (mf *MultiFab) Scale(s float64, comp, ncomp int) {
	for i, f := range mf.Fabs {
		var (
			a   = f.Array()
			vbx = mf.ValidBox(i)
		)
		for n := comp; n < comp+ncomp; n++ {
			for j := vbx.Lo[1]; j <= vbx.Hi[1]; j++ {
				floats.Scale(s, a.Row(vbx.Lo[0], vbx.Hi[0], j, n))
			}
		}
	}
}
