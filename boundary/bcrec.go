package boundary

import (
	"github.com/notargets/gomlmg/geometry"
	"github.com/notargets/gomlmg/types"
)

const Dim = geometry.SpaceDim

// BCRec records one physical boundary type per face: low faces first, then high faces
type BCRec struct {
	bc [geometry.NumFaces]types.BCType
}

// NewBCRec returns a record with every face unset
func NewBCRec() (b BCRec) {
	for i := range b.bc {
		b.bc[i] = types.BC_Bogus
	}
	return
}

func NewBCRecLoHi(lo, hi [Dim]types.BCType) (b BCRec) {
	for d := 0; d < Dim; d++ {
		b.bc[d] = lo[d]
		b.bc[d+Dim] = hi[d]
	}
	return
}

// NewBCRecFromDomain gives each face of bx the reference type when bx touches the domain edge
// there, and IntDir otherwise
func NewBCRecFromDomain(bx, domain geometry.Box, ref BCRec) (b BCRec) {
	SetBC(bx, domain, ref, &b)
	return
}

func SetBC(bx, domain geometry.Box, ref BCRec, b *BCRec) {
	for d := 0; d < Dim; d++ {
		if bx.Lo[d] <= domain.Lo[d] {
			b.bc[d] = ref.bc[d]
		} else {
			b.bc[d] = types.BC_IntDir
		}
		if bx.Hi[d] >= domain.Hi[d] {
			b.bc[d+Dim] = ref.bc[d+Dim]
		} else {
			b.bc[d+Dim] = types.BC_IntDir
		}
	}
}

func (b *BCRec) SetLo(dir int, v types.BCType) { b.bc[dir] = v }

func (b *BCRec) SetHi(dir int, v types.BCType) { b.bc[dir+Dim] = v }

func (b *BCRec) Set(face geometry.Orientation, v types.BCType) {
	if face.IsLow() {
		b.SetLo(face.Dir(), v)
	} else {
		b.SetHi(face.Dir(), v)
	}
}

func (b BCRec) LoDir(dir int) types.BCType { return b.bc[dir] }

func (b BCRec) HiDir(dir int) types.BCType { return b.bc[dir+Dim] }

func (b BCRec) Get(face geometry.Orientation) types.BCType {
	if face.IsLow() {
		return b.LoDir(face.Dir())
	}
	return b.HiDir(face.Dir())
}

// Lo returns a copy of the low face types
func (b BCRec) Lo() (lo [Dim]types.BCType) {
	copy(lo[:], b.bc[:Dim])
	return
}

func (b BCRec) Hi() (hi [Dim]types.BCType) {
	copy(hi[:], b.bc[Dim:])
	return
}

func (b BCRec) Vect() [geometry.NumFaces]types.BCType { return b.bc }

func (b BCRec) Equal(o BCRec) bool { return b.bc == o.bc }
