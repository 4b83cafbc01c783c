package kernels_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gomlmg/boundary"
	"github.com/notargets/gomlmg/eb"
	"github.com/notargets/gomlmg/eb/ebtest"
	"github.com/notargets/gomlmg/fab"
	"github.com/notargets/gomlmg/geometry"
	"github.com/notargets/gomlmg/kernels"
	"github.com/notargets/gomlmg/types"
)

var (
	bx = geometry.NewBox(geometry.IntVect{0, 0}, geometry.IntVect{7, 7})
)

func newArray(b geometry.Box, ncomp int, fn func(i, j, n int) float64) kernels.Array {
	a := fab.NewFArrayBox(b, ncomp).Array()
	if fn != nil {
		for n := 0; n < ncomp; n++ {
			b.ForEach(func(i, j int) { a.Set(i, j, n, fn(i, j, n)) })
		}
	}
	return a
}

// faceCoefs returns smoothly varying positive b coefficients on both face directions
func faceCoefs(ncomp int) (b kernels.FaceArrays) {
	for d := 0; d < 2; d++ {
		dd := float64(d)
		b[d] = newArray(bx.Grow(1).SurroundingNodes(d), ncomp, func(i, j, n int) float64 {
			return 1 + 0.1*float64(i) + 0.05*float64(j)*(dd+1) + 0.2*float64(n)
		})
	}
	return
}

func noMasks() (m kernels.FaceMasks) {
	for face := range m {
		m[face] = fab.NewIArrayBox(bx.Grow(1), 1).Array()
	}
	return
}

func TestAdotxConstant(t *testing.T) {
	var (
		ncomp = 2
		x     = newArray(bx.Grow(1), ncomp, func(i, j, n int) float64 { return 3.5 + float64(n) })
		a     = newArray(bx, 1, func(i, j, n int) float64 { return 1 + 0.01*float64(i*j) })
		b     = faceCoefs(ncomp)
		dxinv = [2]float64{8, 8}
	)
	check := func(y kernels.Array) {
		bx.ForEach(func(i, j int) {
			for n := 0; n < ncomp; n++ {
				assert.InDelta(t, 0.7*a.At(i, j, 0)*(3.5+float64(n)), y.At(i, j, n), 1.e-12)
			}
		})
	}
	y := newArray(bx, ncomp, nil)
	kernels.AdotxABec(bx, ncomp, y, x, a, b, dxinv, 0.7, 2.3)
	check(y)
	kernels.AdotxABecM(bx, ncomp, y, x, a, b, dxinv, 0.7, 2.3, 0.125, 0)
	check(y)
}

func TestAdotxQuadratic(t *testing.T) {
	var (
		one  = faceCoefsConst(1)
		a    = newArray(bx, 1, nil)
		y    = newArray(bx, 1, nil)
		unit = [2]float64{1, 1}
	)
	{ // -d2/dx2 of x^2 is -2
		x := newArray(bx.Grow(1), 1, func(i, j, n int) float64 { return float64(i * i) })
		kernels.AdotxABec(bx, 1, y, x, a, one, unit, 0, 1)
		bx.ForEach(func(i, j int) { assert.InDelta(t, -2., y.At(i, j, 0), 1.e-12) })
	}
	{ // (1/r) d/dr(r d/dr) of r^2 is 4, exact for the volume weighted form
		x := newArray(bx.Grow(1), 1, func(i, j, n int) float64 {
			r := float64(i) + 0.5
			return r * r
		})
		kernels.AdotxABecM(bx, 1, y, x, a, one, unit, 0, 1, 1, 0)
		bx.ForEach(func(i, j int) { assert.InDelta(t, -4., y.At(i, j, 0), 1.e-12) })
	}
}

func faceCoefsConst(v float64) (b kernels.FaceArrays) {
	for d := 0; d < 2; d++ {
		b[d] = newArray(bx.Grow(1).SurroundingNodes(d), 1, func(i, j, n int) float64 { return v })
	}
	return
}

func TestNormalize(t *testing.T) {
	var (
		b = faceCoefsConst(1)
		a = newArray(bx, 1, func(i, j, n int) float64 { return 2 })
		x = newArray(bx, 1, func(i, j, n int) float64 { return 6 })
	)
	kernels.NormalizeABec(bx, 1, x, a, b, [2]float64{1, 1}, 1, 1)
	bx.ForEach(func(i, j int) { assert.InDelta(t, 1., x.At(i, j, 0), 1.e-14) })
	// Radial diagonal: (rel + rer)/rc = 2 in x, 2 in y
	kernels.NormalizeABecM(bx, 1, x, a, b, [2]float64{1, 1}, 1, 2, 1, 0)
	bx.ForEach(func(i, j int) { assert.InDelta(t, 1./10, x.At(i, j, 0), 1.e-14) })
}

func TestGsrbFixedPoint(t *testing.T) {
	var (
		rng   = rand.New(rand.NewSource(7))
		ncomp = 2
		b     = faceCoefs(ncomp)
		a     = newArray(bx, 1, func(i, j, n int) float64 { return 1 })
		dxinv = [2]float64{8, 8}
	)
	for _, radial := range []bool{false, true} {
		var (
			phi = newArray(bx.Grow(1), ncomp, func(i, j, n int) float64 { return rng.Float64() })
			rhs = newArray(bx, ncomp, nil)
			m   = noMasks()
			f   kernels.FaceCoefs
		)
		{ // Homogeneous linear Dirichlet on the low x face
			m[0] = fab.NewIArrayBox(bx.AdjCellLo(0, 1).GrowTransverse(0, 1), 1).Array()
			f[0] = newArray(bx.BndryCells(geometry.NewOrientation(0, geometry.Low)), ncomp,
				func(i, j, n int) float64 { return -1 })
			bx.AdjCellLo(0, 1).ForEach(func(i, j int) {
				m[0].Set(i, j, 0, boundary.OutsideDomain)
				for n := 0; n < ncomp; n++ {
					phi.Set(i, j, n, -phi.At(i+1, j, n))
				}
			})
		}
		want := newArray(bx, ncomp, func(i, j, n int) float64 { return phi.At(i, j, n) })
		if radial {
			kernels.AdotxABecM(bx, ncomp, rhs, phi, a, b, dxinv, 0.5, 1, 0.125, 0)
		} else {
			kernels.AdotxABec(bx, ncomp, rhs, phi, a, b, dxinv, 0.5, 1)
		}
		for redblack := 0; redblack < 2; redblack++ {
			if radial {
				kernels.GsrbABecM(bx, ncomp, phi, rhs, a, b, m, f, dxinv, 0.5, 1, redblack, 0.125, 0)
			} else {
				kernels.GsrbABec(bx, ncomp, phi, rhs, a, b, m, f, dxinv, 0.5, 1, redblack)
			}
		}
		bx.ForEach(func(i, j int) {
			for n := 0; n < ncomp; n++ {
				assert.InDelta(t, want.At(i, j, n), phi.At(i, j, n), 1.e-12)
			}
		})
	}
}

func TestFlux(t *testing.T) {
	var (
		sol = newArray(bx.Grow(1), 1, func(i, j, n int) float64 { return float64(i + 2*j) })
		b   = faceCoefsConst(3)
		fbx = bx.SurroundingNodes(0)
		fby = bx.SurroundingNodes(1)
		fx  = newArray(fbx, 1, nil)
		fy  = newArray(fby, 1, nil)
	)
	kernels.FluxX(fbx, 1, fx, sol, b[0], 0.5)
	kernels.FluxY(fby, 1, fy, sol, b[1], 0.5)
	fbx.ForEach(func(i, j int) { assert.Equal(t, -1.5, fx.At(i, j, 0)) })
	fby.ForEach(func(i, j int) { assert.Equal(t, -3., fy.At(i, j, 0)) })
	{ // Only the two bounding faces are written
		fx := newArray(fbx, 1, func(i, j, n int) float64 { return 99 })
		kernels.FluxXFace(fbx, 1, fx, sol, b[0], 0.5, bx.Length(0))
		assert.Equal(t, -1.5, fx.At(0, 3, 0))
		assert.Equal(t, -1.5, fx.At(8, 3, 0))
		assert.Equal(t, 99., fx.At(4, 3, 0))
		fy := newArray(fby, 1, func(i, j, n int) float64 { return 99 })
		kernels.FluxYFaceM(fby, 1, fy, sol, b[1], 0.5, bx.Length(1), 1, 0)
		assert.Equal(t, -3*1.5, fy.At(1, 0, 0))
		assert.Equal(t, 99., fy.At(1, 4, 0))
	}
	kernels.FluxXM(fbx, 1, fx, sol, b[0], 0.5, 1, 0)
	assert.Equal(t, -1.5*2, fx.At(2, 0, 0))
	assert.Equal(t, 0., fx.At(0, 0, 0))
	{
		gx := newArray(fbx, 1, nil)
		kernels.GradX(fbx, 1, gx, sol, 4)
		assert.Equal(t, 4., gx.At(3, 3, 0))
		gy := newArray(fby, 1, nil)
		kernels.GradY(fby, 1, gy, sol, 4)
		assert.Equal(t, 8., gy.At(3, 3, 0))
	}
}

// plane builds the cut cell views of a single 8x8 box with a wall through column 2
func plane(t *testing.T) (cc kernels.CutCells, f *eb.Factory) {
	geom := geometry.NewGeometry(bx, [2]float64{0, 0}, [2]float64{1, 1}, types.Cartesian, [2]bool{})
	f = eb.NewFactory(ebtest.Plane{X0: 2.5 / 8}, geom, geometry.BoxArray{bx}, 2)
	assert.Equal(t, eb.FabSingleValued, f.FabType(0))
	cc = kernels.NewCutCells(f, boundary.BuildCCMask(geom, geometry.BoxArray{bx}, fab.DefaultScheduler()), 0)
	return
}

// fullCells claims every cell is cut while every fraction is one
func fullCells() kernels.CutCells {
	var (
		g     = bx.Grow(2)
		flags = fab.NewBaseFab[eb.CellFlag](g, 1)
		ccm   = fab.NewIArrayBox(g, 1)
		one   = func(i, j, n int) float64 { return 1 }
	)
	flags.SetVal(eb.SingleValued)
	ccm.SetVal(1)
	return kernels.CutCells{
		Flag:  flags.Array(),
		VFrac: newArray(g, 1, one),
		Apx:   newArray(g.SurroundingNodes(0), 1, one),
		Apy:   newArray(g.SurroundingNodes(1), 1, one),
		Fcx:   newArray(g.SurroundingNodes(0), 1, nil),
		Fcy:   newArray(g.SurroundingNodes(1), 1, nil),
		BArea: newArray(g, 1, nil),
		BCent: newArray(g, 2, nil),
		CCM:   ccm.Array(),
	}
}

func TestCutMatchesRegular(t *testing.T) {
	var (
		rng   = rand.New(rand.NewSource(3))
		ncomp = 2
		cc    = fullCells()
		b     = faceCoefs(ncomp)
		a     = newArray(bx, 1, func(i, j, n int) float64 { return 1 + rng.Float64() })
		x     = newArray(bx.Grow(1), ncomp, func(i, j, n int) float64 { return rng.Float64() })
		y0    = newArray(bx, ncomp, nil)
		y1    = newArray(bx, ncomp, nil)
		dxinv = [2]float64{8, 8}
	)
	kernels.AdotxABec(bx, ncomp, y0, x, a, b, dxinv, 0.3, 1.7)
	for _, centroid := range []bool{false, true} {
		kernels.AdotxEB(bx, ncomp, y1, x, a, b, cc, kernels.EBDirichlet{}, dxinv, 0.3, 1.7, centroid)
		bx.ForEach(func(i, j int) {
			for n := 0; n < ncomp; n++ {
				assert.InDelta(t, y0.At(i, j, n), y1.At(i, j, n), 1.e-10)
			}
		})
	}
	{
		z0 := newArray(bx, ncomp, func(i, j, n int) float64 { return 1 })
		z1 := newArray(bx, ncomp, func(i, j, n int) float64 { return 1 })
		kernels.NormalizeABec(bx, ncomp, z0, a, b, dxinv, 0.3, 1.7)
		kernels.NormalizeEB(bx, ncomp, z1, a, b, cc, kernels.EBDirichlet{}, dxinv, 0.3, 1.7)
		bx.ForEach(func(i, j int) { assert.InDelta(t, z0.At(i, j, 1), z1.At(i, j, 1), 1.e-14) })
	}
	{ // One red and one black sweep agree
		var (
			p0  = newArray(bx.Grow(1), ncomp, func(i, j, n int) float64 { return x.At(i, j, n) })
			p1  = newArray(bx.Grow(1), ncomp, func(i, j, n int) float64 { return x.At(i, j, n) })
			rhs = newArray(bx, ncomp, func(i, j, n int) float64 { return rng.Float64() })
			m   = noMasks()
		)
		for rb := 0; rb < 2; rb++ {
			kernels.GsrbABec(bx, ncomp, p0, rhs, a, b, m, kernels.FaceCoefs{}, dxinv, 0.3, 1.7, rb)
			kernels.GsrbEB(bx, ncomp, p1, rhs, a, b, m, kernels.FaceCoefs{}, cc, kernels.EBDirichlet{}, dxinv,
				0.3, 1.7, rb, false)
		}
		bx.ForEach(func(i, j int) { assert.InDelta(t, p0.At(i, j, 0), p1.At(i, j, 0), 1.e-12) })
	}
}

func TestPlaneOperator(t *testing.T) {
	var (
		cc, _ = plane(t)
		b     = faceCoefsConst(1)
		a     = newArray(bx, 1, func(i, j, n int) float64 { return 1 })
		dxinv = [2]float64{8, 8}
		g     = bx.Grow(2)
		y     = newArray(bx, 1, nil)
	)
	{ // No flux for a constant without a wall condition, zero in covered cells
		x := newArray(bx.Grow(1), 1, func(i, j, n int) float64 { return 2 })
		kernels.AdotxEB(bx, 1, y, x, a, b, cc, kernels.EBDirichlet{}, dxinv, 0.5, 1, false)
		assert.Equal(t, 0., y.At(1, 3, 0))
		assert.InDelta(t, 1., y.At(2, 3, 0), 1.e-12)
		assert.InDelta(t, 1., y.At(5, 3, 0), 1.e-12)
	}
	ebd := kernels.EBDirichlet{
		Phi:  newArray(g, 1, nil),
		Beta: newArray(g, 1, func(i, j, n int) float64 { return 1 }),
	}
	{ // The diagonal seen by normalize is the response to a unit spike
		for _, cell := range [][2]int{{2, 3}, {3, 3}, {2, 0}} {
			var (
				i, j = cell[0], cell[1]
				x    = newArray(bx.Grow(1), 1, func(ii, jj, n int) float64 {
					if ii == i && jj == j {
						return 1
					}
					return 0
				})
				z = newArray(bx, 1, func(i, j, n int) float64 { return 1 })
			)
			kernels.AdotxEB(bx, 1, y, x, a, b, cc, ebd, dxinv, 0.5, 1, false)
			kernels.NormalizeEB(bx, 1, z, a, b, cc, ebd, dxinv, 0.5, 1)
			assert.InDelta(t, 1/y.At(i, j, 0), z.At(i, j, 0), 1.e-12, "cell %v", cell)
		}
	}
	{ // A wall held at the cell value carries no flux; a wall below it pulls the operator up
		x := newArray(bx.Grow(1), 1, func(i, j, n int) float64 { return 2 })
		wall := ebd
		wall.Inhomog = true
		wall.Phi = newArray(g, 1, func(i, j, n int) float64 { return 2 })
		kernels.AdotxEB(bx, 1, y, x, a, b, cc, wall, dxinv, 0.5, 1, false)
		assert.InDelta(t, 1., y.At(2, 3, 0), 1.e-10)
		kernels.AdotxEB(bx, 1, y, x, a, b, cc, ebd, dxinv, 0.5, 1, false)
		assert.Greater(t, y.At(2, 3, 0), 1.)

		feb := newArray(bx, 1, nil)
		kernels.EBFlux(bx, 1, feb, x, cc, ebd, 8, 1)
		assert.Greater(t, feb.At(2, 3, 0), 0.)
		assert.Equal(t, 0., feb.At(3, 3, 0))
		kernels.EBFlux(bx, 1, feb, x, cc, wall, 8, 1)
		assert.InDelta(t, 0., feb.At(2, 3, 0), 1.e-12)
	}
}

func TestGsrbPlaneFixedPoint(t *testing.T) {
	var (
		rng   = rand.New(rand.NewSource(11))
		cc, _ = plane(t)
		b     = faceCoefsConst(1)
		a     = newArray(bx, 1, func(i, j, n int) float64 { return 1 })
		dxinv = [2]float64{8, 8}
		g     = bx.Grow(2)
		ebd   = kernels.EBDirichlet{
			Phi:     newArray(g, 1, func(i, j, n int) float64 { return 0.5 }),
			Beta:    newArray(g, 1, func(i, j, n int) float64 { return 1 }),
			Inhomog: true,
		}
		phi = newArray(bx.Grow(1), 1, func(i, j, n int) float64 { return rng.Float64() })
		rhs = newArray(bx, 1, nil)
	)
	kernels.SetCovered(bx, 1, phi, cc.Flag, 0)
	want := newArray(bx, 1, func(i, j, n int) float64 { return phi.At(i, j, n) })
	for _, centroid := range []bool{false, true} {
		kernels.AdotxEB(bx, 1, rhs, phi, a, b, cc, ebd, dxinv, 0.5, 1, centroid)
		for rb := 0; rb < 2; rb++ {
			kernels.GsrbEB(bx, 1, phi, rhs, a, b, noMasks(), kernels.FaceCoefs{}, cc, ebd, dxinv, 0.5, 1, rb,
				centroid)
		}
		bx.ForEach(func(i, j int) { assert.InDelta(t, want.At(i, j, 0), phi.At(i, j, 0), 1.e-10) })
	}
}

func TestGradEB(t *testing.T) {
	var (
		cc, _ = plane(t)
		sol   = newArray(bx.Grow(1), 1, func(i, j, n int) float64 { return float64(i) })
		fbx   = bx.SurroundingNodes(0)
		fby   = bx.SurroundingNodes(1)
		gx    = newArray(fbx, 1, nil)
		gy    = newArray(fby, 1, nil)
	)
	kernels.GradXEB(fbx, 1, gx, sol, cc, 8)
	assert.Equal(t, 0., gx.At(2, 3, 0))
	assert.Equal(t, 8., gx.At(3, 3, 0))
	kernels.GradXEB0(fbx, 1, gx, sol, cc.Apx, 8)
	assert.Equal(t, 0., gx.At(1, 3, 0))
	assert.Equal(t, 8., gx.At(4, 3, 0))
	// Cut y faces of a field varying only in x blend toward the neighbor column
	kernels.GradYEB(fby, 1, gy, sol, cc, 8)
	assert.Equal(t, 0., gy.At(2, 3, 0))
	kernels.GradYEB0(fby, 1, gy, sol, cc.Apy, 8)
	assert.Equal(t, 0., gy.At(2, 3, 0))
	assert.Equal(t, 0., gy.At(1, 3, 0))

	fx := newArray(fbx, 1, nil)
	kernels.FluxXEB(fbx, 1, fx, sol, faceCoefsConst(2)[0], cc, 0.5, false)
	assert.Equal(t, 0., fx.At(2, 3, 0))
	assert.Equal(t, -1., fx.At(5, 3, 0))
	fy := newArray(fby, 1, nil)
	kernels.FluxYEB(fby, 1, fy, sol, faceCoefsConst(2)[1], cc, 0.5, true)
	assert.False(t, math.IsNaN(fy.At(2, 3, 0)))
}

func TestInterp(t *testing.T) {
	var (
		cbx  = bx.Coarsen(geometry.Uniform(2))
		crse = newArray(cbx, 1, func(i, j, n int) float64 { return float64(10*i + j) })
		fine = newArray(bx, 1, func(i, j, n int) float64 { return 1 })
		cc   = fullCells()
	)
	kernels.InterpAdd(bx, 1, fine, crse, geometry.Uniform(2))
	assert.Equal(t, 1., fine.At(0, 0, 0))
	assert.Equal(t, 1.+31, fine.At(7, 2, 0))
	cc.Flag.Set(7, 2, 0, eb.Covered)
	kernels.InterpAddEB(bx, 1, fine, crse, cc.Flag, geometry.Uniform(2))
	assert.Equal(t, 1.+31, fine.At(7, 2, 0))
	assert.Equal(t, 1.+62, fine.At(7, 3, 0))
}
