package fab

import (
	"fmt"

	"github.com/notargets/gomlmg/geometry"
)

// FabArray is one fab per box of a BoxArray, each grown by NGrow ghost cells
type FabArray[T Number] struct {
	BA     geometry.BoxArray // cell centered boxes
	IxType geometry.IndexType
	NComp  int
	NGrow  int
	Fabs   []*BaseFab[T]
}

func NewFabArray[T Number](ba geometry.BoxArray, ixType geometry.IndexType, ncomp, ngrow int) (fa *FabArray[T]) {
	fa = &FabArray[T]{
		BA:     ba,
		IxType: ixType,
		NComp:  ncomp,
		NGrow:  ngrow,
		Fabs:   make([]*BaseFab[T], len(ba)),
	}
	for i := range ba {
		fa.Fabs[i] = NewBaseFab[T](fa.FabBox(i), ncomp)
	}
	return
}

func (fa *FabArray[T]) Size() int { return len(fa.BA) }

func (fa *FabArray[T]) ValidBox(i int) geometry.Box { return fa.BA[i].Convert(fa.IxType) }

func (fa *FabArray[T]) FabBox(i int) geometry.Box { return fa.ValidBox(i).Grow(fa.NGrow) }

func (fa *FabArray[T]) Array(i int) Array4[T] { return fa.Fabs[i].Array() }

func (fa *FabArray[T]) SetVal(v T) {
	for _, f := range fa.Fabs {
		f.SetVal(v)
	}
}

// SetValComp sets components [comp, comp+ncomp) on the valid region grown by ngrow
func (fa *FabArray[T]) SetValComp(v T, comp, ncomp, ngrow int) {
	for i, f := range fa.Fabs {
		f.SetValBox(v, fa.ValidBox(i).Grow(ngrow), comp, ncomp)
	}
}

// CopyFrom copies between fab arrays built on the same boxes
func (fa *FabArray[T]) CopyFrom(src *FabArray[T], scomp, dcomp, ncomp, ngrow int) {
	if len(src.BA) != len(fa.BA) || src.IxType != fa.IxType {
		panic(fmt.Errorf("copy between incompatible fab arrays"))
	}
	if scomp+ncomp > src.NComp || dcomp+ncomp > fa.NComp {
		panic(fmt.Errorf("copy of components [%d,%d) into [%d,%d) exceeds %d/%d components",
			scomp, scomp+ncomp, dcomp, dcomp+ncomp, src.NComp, fa.NComp))
	}
	for i, f := range fa.Fabs {
		bx, ok := fa.ValidBox(i).Grow(ngrow).Intersect(src.Fabs[i].Box)
		if ok {
			f.CopyFrom(src.Fabs[i], bx, scomp, dcomp, ncomp)
		}
	}
}

// FillBoundary fills ghost cells from the valid regions of neighbouring boxes and periodic images
func (fa *FabArray[T]) FillBoundary(period geometry.Periodicity) {
	if fa.NGrow == 0 {
		return
	}
	shifts := period.Shifts()
	DefaultScheduler().Run(fa.Size(), func(i int) {
		var (
			dst = fa.Fabs[i]
			gbx = fa.FabBox(i)
			vbx = fa.ValidBox(i)
		)
		for j := range fa.Fabs {
			for _, s := range shifts {
				if j == i && s.IsZero() {
					continue
				}
				sbx := fa.ValidBox(j).Shift(s)
				isect, ok := gbx.Intersect(sbx)
				if !ok {
					continue
				}
				fa.copyGhosts(dst, fa.Fabs[j], isect, vbx, s)
			}
		}
	})
}

func (fa *FabArray[T]) copyGhosts(dst, src *BaseFab[T], region, valid geometry.Box, shift geometry.IntVect) {
	var (
		d = dst.Array()
		s = src.Array()
	)
	for n := 0; n < fa.NComp; n++ {
		region.ForEach(func(i, j int) {
			if valid.Contains(geometry.IntVect{i, j}) {
				return
			}
			d.Set(i, j, n, s.At(i-shift[0], j-shift[1], n))
		})
	}
}

// ParallelCopy copies the valid region of src into the valid region of fa wherever they overlap
func (fa *FabArray[T]) ParallelCopy(src *FabArray[T], scomp, dcomp, ncomp int) {
	if src.IxType != fa.IxType {
		panic(fmt.Errorf("parallel copy between different index types"))
	}
	DefaultScheduler().Run(fa.Size(), func(i int) {
		vbx := fa.ValidBox(i)
		for j := range src.Fabs {
			if isect, ok := vbx.Intersect(src.ValidBox(j)); ok {
				fa.Fabs[i].CopyFrom(src.Fabs[j], isect, scomp, dcomp, ncomp)
			}
		}
	})
}

// ValueAt looks up the valid value at iv, reporting whether any box holds it
func (fa *FabArray[T]) ValueAt(iv geometry.IntVect, comp int) (v T, ok bool) {
	for i, f := range fa.Fabs {
		if fa.ValidBox(i).Contains(iv) {
			return f.Array().At(iv[0], iv[1], comp), true
		}
	}
	return
}
