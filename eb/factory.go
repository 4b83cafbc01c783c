package eb

import (
	"github.com/notargets/gomlmg/fab"
	"github.com/notargets/gomlmg/geometry"
)

// IndexSpace supplies cut-cell geometry for any resolution of the problem domain
type IndexSpace interface {
	// Fill sets flags and fractions on every cell of the factory fabs, ghosts included
	Fill(f *Factory)
}

// AllRegular is an index space with no embedded boundary
type AllRegular struct{}

func (AllRegular) Fill(*Factory) {}

// Factory holds the read-only cut-cell data of one level
type Factory struct {
	Geom  *geometry.Geometry
	Grids geometry.BoxArray
	NGrow int

	Flags     *fab.FabArray[CellFlag]
	VolFrac   *fab.MultiFab
	AreaFrac  [geometry.SpaceDim]*fab.MultiFab
	FaceCent  [geometry.SpaceDim]*fab.MultiFab // Transverse centroid offset, cell units
	BndryArea *fab.MultiFab                    // Cut face area over cell face area
	BndryCent *fab.MultiFab                    // Cut face centroid relative to the cell center, cell units

	fabTypes []FabType
}

func NewFactory(is IndexSpace, geom *geometry.Geometry, grids geometry.BoxArray, ngrow int) (f *Factory) {
	f = &Factory{
		Geom:      geom,
		Grids:     grids,
		NGrow:     ngrow,
		Flags:     fab.NewFabArray[CellFlag](grids, geometry.CellType(), 1, ngrow),
		VolFrac:   fab.NewMultiFab(grids, 1, ngrow),
		BndryArea: fab.NewMultiFab(grids, 1, ngrow),
		BndryCent: fab.NewMultiFab(grids, geometry.SpaceDim, ngrow),
	}
	f.VolFrac.SetVal(1)
	for d := 0; d < geometry.SpaceDim; d++ {
		f.AreaFrac[d] = fab.NewFaceMultiFab(grids, d, 1, ngrow)
		f.AreaFrac[d].SetVal(1)
		f.FaceCent[d] = fab.NewFaceMultiFab(grids, d, 1, ngrow)
	}
	is.Fill(f)
	f.fabTypes = make([]FabType, len(grids))
	for i := range grids {
		f.fabTypes[i] = GetType(f.Flags.Fabs[i], f.Flags.ValidBox(i))
	}
	return
}

// FabType classifies the valid region of box i
func (f *Factory) FabType(i int) FabType { return f.fabTypes[i] }

func (f *Factory) FlagArray(i int) FlagArray { return f.Flags.Array(i) }

func (f *Factory) IsAllRegular() bool {
	for _, t := range f.fabTypes {
		if t != FabRegular {
			return false
		}
	}
	return true
}
