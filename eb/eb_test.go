package eb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gomlmg/eb"
	"github.com/notargets/gomlmg/eb/ebtest"
	"github.com/notargets/gomlmg/fab"
	"github.com/notargets/gomlmg/geometry"
	"github.com/notargets/gomlmg/types"
)

var sched = fab.NewScheduler(types.Static, 3)

func newGeom(nx, ny int) *geometry.Geometry {
	return geometry.NewGeometry(geometry.NewBox(geometry.IntVect{0, 0}, geometry.IntVect{nx - 1, ny - 1}),
		[2]float64{0, 0}, [2]float64{1, float64(ny) / float64(nx)}, types.Cartesian, [2]bool{})
}

func TestGetType(t *testing.T) {
	bx := geometry.NewBox(geometry.IntVect{0, 0}, geometry.IntVect{3, 3})
	flags := fab.NewBaseFab[eb.CellFlag](bx, 1)
	assert.Equal(t, eb.FabRegular, eb.GetType(flags, bx))
	flags.Array().Set(1, 1, 0, eb.SingleValued)
	assert.Equal(t, eb.FabSingleValued, eb.GetType(flags, bx))
	flags.SetVal(eb.Covered)
	assert.Equal(t, eb.FabCovered, eb.GetType(flags, bx))
	flags.Array().Set(0, 0, 0, eb.Regular)
	assert.Equal(t, eb.FabSingleValued, eb.GetType(flags, bx))
	flags.Array().Set(3, 3, 0, eb.MultiValued)
	assert.Equal(t, eb.FabMultiValued, eb.GetType(flags, bx))
	assert.Equal(t, eb.FabUndefined, eb.GetType(flags, bx.Shift(geometry.IntVect{10, 0})))
	assert.Equal(t, "singlevalued", eb.FabSingleValued.String())
	assert.True(t, eb.Covered.IsCovered())
}

func TestPlaneFactory(t *testing.T) {
	var (
		geom = newGeom(8, 4)
		ba   = geometry.NewBoxArray(geom.Domain, 4)
	)
	{
		f := eb.NewFactory(eb.AllRegular{}, geom, ba, 2)
		assert.True(t, f.IsAllRegular())
		assert.Equal(t, 1., f.VolFrac.Array(0).At(-2, -2, 0))
	}
	// Wall through the middle of cell 2, dx = 1/8
	f := eb.NewFactory(ebtest.Plane{X0: 2.5 / 8}, geom, ba, 2)
	require.Equal(t, 2, len(ba))
	assert.Equal(t, eb.FabSingleValued, f.FabType(0))
	assert.Equal(t, eb.FabRegular, f.FabType(1))
	assert.False(t, f.IsAllRegular())
	var (
		flags = f.FlagArray(0)
		vf    = f.VolFrac.Array(0)
		apx   = f.AreaFrac[0].Array(0)
		apy   = f.AreaFrac[1].Array(0)
		bc    = f.BndryCent.Array(0)
	)
	assert.Equal(t, eb.Covered, flags.At(1, 0, 0))
	assert.Equal(t, eb.SingleValued, flags.At(2, 0, 0))
	assert.Equal(t, eb.Regular, flags.At(3, 0, 0))
	assert.InDelta(t, 0.5, vf.At(2, 1, 0), 1.e-14)
	assert.Equal(t, 0., apx.At(2, 0, 0))
	assert.Equal(t, 1., apx.At(3, 0, 0))
	assert.InDelta(t, 0.5, apy.At(2, 3, 0), 1.e-14)
	assert.InDelta(t, 0., bc.At(2, 0, 0), 1.e-14)
	assert.InDelta(t, 1., f.BndryArea.Array(0).At(2, 0, 0), 1.e-14)
	assert.InDelta(t, 0.25, f.FaceCent[1].Array(0).At(2, 0, 0), 1.e-14)
}

func TestAverageDownConstant(t *testing.T) {
	var (
		geom = newGeom(16, 16)
		ba   = geometry.NewBoxArray(geom.Domain, 8)
	)
	for _, factory := range []*eb.Factory{nil, eb.NewFactory(ebtest.Plane{X0: 0.3}, geom, ba, 1)} {
		for _, r := range []int{2, 4, 8} {
			var (
				ratio = geometry.Uniform(r)
				cba   = ba.Coarsen(ratio)
				fine  [2]*fab.MultiFab
				crse  [2]*fab.MultiFab
			)
			for d := 0; d < 2; d++ {
				fine[d] = fab.NewFaceMultiFab(ba, d, 2, 1)
				fine[d].SetVal(3.25)
				crse[d] = fab.NewFaceMultiFab(cba, d, 2, 1)
			}
			eb.AverageDownFaces(sched, fine, crse, factory, 0, 2, ratio)
			for d := 0; d < 2; d++ {
				for b := range cba {
					a := crse[d].Array(b)
					crse[d].ValidBox(b).ForEach(func(i, j int) {
						assert.InDelta(t, 3.25, a.At(i, j, 0), 1.e-14)
						assert.InDelta(t, 3.25, a.At(i, j, 1), 1.e-14)
					})
				}
			}
			cf := fab.NewMultiFab(ba, 1, 0)
			cf.SetVal(-1.5)
			cc := fab.NewMultiFab(cba, 1, 0)
			eb.AverageDown(sched, cf, cc, factory, 0, 1, ratio)
			assert.InDelta(t, -1.5*float64(cba.NumPts()), cc.Sum(0), 1.e-12)
			assert.InDelta(t, 1.5, cc.Norm0(0), 1.e-14)
		}
	}
}

func TestAverageDownWeights(t *testing.T) {
	var (
		geom = newGeom(4, 2)
		ba   = geometry.BoxArray{geom.Domain}
		f    = eb.NewFactory(ebtest.Plane{X0: 0.375}, geom, ba, 1) // cell 1 is half covered
		fine = fab.NewMultiFab(ba, 1, 0)
		cba  = ba.Coarsen(geometry.Uniform(2))
		crse = fab.NewMultiFab(cba, 1, 0)
	)
	a := fine.Array(0)
	geom.Domain.ForEach(func(i, j int) { a.Set(i, j, 0, float64(i)) })
	eb.AverageDown(sched, fine, crse, f, 0, 1, geometry.Uniform(2))
	// Cell 0 is covered, cell 1 carries weight 0.5, so only cell 1 counts
	assert.InDelta(t, 1., crse.Array(0).At(0, 0, 0), 1.e-14)
	assert.InDelta(t, 2.5, crse.Array(0).At(1, 0, 0), 1.e-14)

	eb.AverageDown(sched, fine, crse, nil, 0, 1, geometry.Uniform(2))
	assert.InDelta(t, 0.5, crse.Array(0).At(0, 0, 0), 1.e-14)

	{ // Boundary averages only see cut cells
		febf := fab.NewMultiFab(ba, 1, 0)
		febf.SetVal(7)
		cebf := fab.NewMultiFab(cba, 1, 0)
		eb.AverageDownBoundaries(sched, febf, cebf, f, 0, 1, geometry.Uniform(2))
		assert.InDelta(t, 7., cebf.Array(0).At(0, 0, 0), 1.e-14)
		assert.Equal(t, 0., cebf.Array(0).At(1, 0, 0))
	}
	{ // Coarse layout that differs from the coarsened fine layout goes through a copy
		other := fab.NewMultiFab(geometry.BoxArray{geometry.NewBox(geometry.IntVect{-2, -2}, geometry.IntVect{3, 3})}, 1, 0)
		other.SetVal(-9)
		eb.AverageDown(sched, fine, other, nil, 0, 1, geometry.Uniform(2))
		oa := other.Array(0)
		assert.InDelta(t, 2.5, oa.At(1, 0, 0), 1.e-14)
		assert.Equal(t, -9., oa.At(-1, 0, 0))
	}
}
