package fab

import (
	"fmt"

	"github.com/notargets/gomlmg/geometry"
)

type Number interface {
	~int | ~float64
}

// BaseFab is a multi-component array over a box, first direction fastest, component slowest
type BaseFab[T Number] struct {
	Box   geometry.Box
	NComp int
	Data  []T
}

type FArrayBox = BaseFab[float64]

type IArrayBox = BaseFab[int]

func NewBaseFab[T Number](bx geometry.Box, ncomp int) *BaseFab[T] {
	if !bx.Ok() || ncomp < 1 {
		panic(fmt.Errorf("cannot allocate fab on %v with %d components", bx, ncomp))
	}
	return &BaseFab[T]{
		Box:   bx,
		NComp: ncomp,
		Data:  make([]T, bx.NumPts()*ncomp),
	}
}

func NewFArrayBox(bx geometry.Box, ncomp int) *FArrayBox { return NewBaseFab[float64](bx, ncomp) }

func NewIArrayBox(bx geometry.Box, ncomp int) *IArrayBox { return NewBaseFab[int](bx, ncomp) }

func (f *BaseFab[T]) Array() Array4[T] {
	nx := f.Box.Length(0)
	return Array4[T]{
		p:       f.Data,
		lo:      f.Box.Lo,
		hi:      f.Box.Hi,
		jstride: nx,
		nstride: nx * f.Box.Length(1),
		NComp:   f.NComp,
	}
}

func (f *BaseFab[T]) SetVal(v T) {
	for i := range f.Data {
		f.Data[i] = v
	}
}

// SetValBox sets components [comp, comp+ncomp) over the part of bx inside the fab
func (f *BaseFab[T]) SetValBox(v T, bx geometry.Box, comp, ncomp int) {
	var (
		a      = f.Array()
		r, ok  = f.Box.Intersect(bx)
		ncLast = comp + ncomp
	)
	if !ok {
		return
	}
	for n := comp; n < ncLast; n++ {
		r.ForEach(func(i, j int) { a.Set(i, j, n, v) })
	}
}

// CopyShifted sets f(iv) = src(iv - shift) for iv in dstBox
func (f *BaseFab[T]) CopyShifted(src *BaseFab[T], dstBox geometry.Box, shift geometry.IntVect,
	scomp, dcomp, ncomp int) {
	var (
		d = f.Array()
		s = src.Array()
	)
	for n := 0; n < ncomp; n++ {
		dstBox.ForEach(func(i, j int) {
			d.Set(i, j, dcomp+n, s.At(i-shift[0], j-shift[1], scomp+n))
		})
	}
}

func (f *BaseFab[T]) CopyFrom(src *BaseFab[T], bx geometry.Box, scomp, dcomp, ncomp int) {
	f.CopyShifted(src, bx, geometry.IntVect{}, scomp, dcomp, ncomp)
}

// Array4 is an indexed view of a fab's storage
type Array4[T Number] struct {
	p       []T
	lo, hi  geometry.IntVect
	jstride int
	nstride int
	NComp   int
}

func (a Array4[T]) index(i, j, n int) int {
	return (i - a.lo[0]) + (j-a.lo[1])*a.jstride + n*a.nstride
}

func (a Array4[T]) At(i, j, n int) T { return a.p[a.index(i, j, n)] }

func (a Array4[T]) Set(i, j, n int, v T) { a.p[a.index(i, j, n)] = v }

func (a Array4[T]) Add(i, j, n int, v T) { a.p[a.index(i, j, n)] += v }

func (a Array4[T]) Contains(i, j int) bool {
	return i >= a.lo[0] && i <= a.hi[0] && j >= a.lo[1] && j <= a.hi[1]
}

// Ok is false for the zero view, which stands in for an absent field
func (a Array4[T]) Ok() bool { return a.p != nil }

func (a Array4[T]) Box() geometry.Box { return geometry.NewBox(a.lo, a.hi) }

// Row returns the contiguous run of values for i in [ilo, ihi] at (j, n)
func (a Array4[T]) Row(ilo, ihi, j, n int) []T {
	k := a.index(ilo, j, n)
	return a.p[k : k+ihi-ilo+1]
}
