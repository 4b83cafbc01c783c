package eb

import (
	"github.com/notargets/gomlmg/fab"
	"github.com/notargets/gomlmg/geometry"
)

// CellFlag classifies a cell against the embedded boundary
type CellFlag int

const (
	Regular CellFlag = iota
	SingleValued
	MultiValued
	Covered
)

func (f CellFlag) IsRegular() bool { return f == Regular }

func (f CellFlag) IsSingleValued() bool { return f == SingleValued }

func (f CellFlag) IsMultiValued() bool { return f == MultiValued }

func (f CellFlag) IsCovered() bool { return f == Covered }

func (f CellFlag) String() string {
	return [...]string{"Regular", "SingleValued", "MultiValued", "Covered"}[f]
}

// FabType summarises the flags of a whole region and selects the kernel path
type FabType uint8

const (
	FabUndefined FabType = iota
	FabRegular
	FabSingleValued
	FabMultiValued
	FabCovered
)

func (t FabType) String() string {
	return [...]string{"undefined", "regular", "singlevalued", "multivalued", "covered"}[t]
}

type FlagFab = fab.BaseFab[CellFlag]

type FlagArray = fab.Array4[CellFlag]

// GetType classifies the part of bx held by the flag fab
func GetType(flags *FlagFab, bx geometry.Box) FabType {
	var (
		nregular, ncovered, nmulti, ntotal int
		a                                  = flags.Array()
	)
	r, ok := flags.Box.Intersect(bx)
	if !ok {
		return FabUndefined
	}
	r.ForEach(func(i, j int) {
		switch a.At(i, j, 0) {
		case Regular:
			nregular++
		case Covered:
			ncovered++
		case MultiValued:
			nmulti++
		}
		ntotal++
	})
	switch {
	case nmulti > 0:
		return FabMultiValued
	case nregular == ntotal:
		return FabRegular
	case ncovered == ntotal:
		return FabCovered
	}
	return FabSingleValued
}
