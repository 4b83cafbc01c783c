package geometry

import (
	"fmt"

	"github.com/notargets/gomlmg/types"
)

// Geometry ties an index-space domain to physical coordinates
type Geometry struct {
	Domain   Box
	ProbLo   [SpaceDim]float64
	ProbHi   [SpaceDim]float64
	Coord    types.CoordSys
	Periodic [SpaceDim]bool
}

func NewGeometry(domain Box, probLo, probHi [SpaceDim]float64, coord types.CoordSys,
	periodic [SpaceDim]bool) (g *Geometry) {
	if !domain.Ok() || !domain.Typ.CellCentered() {
		panic(fmt.Errorf("invalid domain box %v", domain))
	}
	for d := 0; d < SpaceDim; d++ {
		if probHi[d] <= probLo[d] {
			panic(fmt.Errorf("problem extent in direction %d is empty: [%g, %g]",
				d, probLo[d], probHi[d]))
		}
	}
	g = &Geometry{
		Domain:   domain,
		ProbLo:   probLo,
		ProbHi:   probHi,
		Coord:    coord,
		Periodic: periodic,
	}
	return
}

func (g *Geometry) CellSize() (dx [SpaceDim]float64) {
	for d := 0; d < SpaceDim; d++ {
		dx[d] = (g.ProbHi[d] - g.ProbLo[d]) / float64(g.Domain.Length(d))
	}
	return
}

func (g *Geometry) InvCellSize() (dxi [SpaceDim]float64) {
	dx := g.CellSize()
	for d := 0; d < SpaceDim; d++ {
		dxi[d] = 1. / dx[d]
	}
	return
}

func (g *Geometry) IsPeriodic(dir int) bool { return g.Periodic[dir] }

func (g *Geometry) IsAnyPeriodic() bool { return g.Periodic[0] || g.Periodic[1] }

func (g *Geometry) IsRZ() bool { return g.Coord == types.RZ }

// Coarsen returns the geometry of the same physical region at a coarser resolution
func (g *Geometry) Coarsen(ratio IntVect) *Geometry {
	c := *g
	c.Domain = g.Domain.Coarsen(ratio)
	return &c
}

func (g *Geometry) Refine(ratio IntVect) *Geometry {
	f := *g
	f.Domain = g.Domain.Refine(ratio)
	return &f
}

// CellCenter is the physical location of the center of cell iv
func (g *Geometry) CellCenter(iv IntVect) (x [SpaceDim]float64) {
	dx := g.CellSize()
	for d := 0; d < SpaceDim; d++ {
		x[d] = g.ProbLo[d] + (float64(iv[d]-g.Domain.Lo[d])+0.5)*dx[d]
	}
	return
}

// InsideDomain treats periodic directions as unbounded
func (g *Geometry) InsideDomain(iv IntVect) bool {
	for d := 0; d < SpaceDim; d++ {
		if g.Periodic[d] {
			continue
		}
		if iv[d] < g.Domain.Lo[d] || iv[d] > g.Domain.Hi[d] {
			return false
		}
	}
	return true
}

func (g *Geometry) Periodicity() (p Periodicity) {
	for d := 0; d < SpaceDim; d++ {
		if g.Periodic[d] {
			p.Period[d] = g.Domain.Length(d)
		}
	}
	return
}

// Periodicity holds the period length of each periodic direction, zero otherwise
type Periodicity struct {
	Period IntVect
}

func NonPeriodic() Periodicity { return Periodicity{} }

func (p Periodicity) IsAnyPeriodic() bool { return !p.Period.IsZero() }

// Shifts lists the image offsets to search, the zero shift first
func (p Periodicity) Shifts() (shifts []IntVect) {
	var (
		r [SpaceDim][]int
	)
	for d := 0; d < SpaceDim; d++ {
		r[d] = []int{0}
		if p.Period[d] != 0 {
			r[d] = append(r[d], -p.Period[d], p.Period[d])
		}
	}
	for _, sj := range r[1] {
		for _, si := range r[0] {
			shifts = append(shifts, IntVect{si, sj})
		}
	}
	return
}
