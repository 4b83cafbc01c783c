package kernels

import (
	"math"

	"github.com/notargets/gomlmg/eb"
	"github.com/notargets/gomlmg/fab"
	"github.com/notargets/gomlmg/geometry"
)

// CutCells is the embedded boundary geometry of one box
type CutCells struct {
	Flag     eb.FlagArray
	VFrac    Array
	Apx, Apy Array
	Fcx, Fcy Array // Transverse face centroid offsets
	BArea    Array
	BCent    Array // Cut face centroid, two components
	CCM      IArray
}

// NewCutCells gathers the views of box b from a factory and the cell mask of its level
func NewCutCells(f *eb.Factory, ccm *fab.IMultiFab, b int) CutCells {
	return CutCells{
		Flag:  f.FlagArray(b),
		VFrac: f.VolFrac.Array(b),
		Apx:   f.AreaFrac[0].Array(b),
		Apy:   f.AreaFrac[1].Array(b),
		Fcx:   f.FaceCent[0].Array(b),
		Fcy:   f.FaceCent[1].Array(b),
		BArea: f.BndryArea.Array(b),
		BCent: f.BndryCent.Array(b),
		CCM:   ccm.Array(b),
	}
}

// EBDirichlet is the Dirichlet data on the cut faces of one box. A zero Beta means no condition.
type EBDirichlet struct {
	Phi     Array
	Beta    Array
	Inhomog bool
}

func (d EBDirichlet) active() bool { return d.Beta.Ok() }

// ebGhost places the interpolation point a distance dg from the cut face centroid along the
// normal into the fluid, returning the weights of the four cells used for it
type ebGhost struct {
	dg     float64
	ii, jj int
	c      [4]float64 // (i,j), (ii,j), (i,jj), (ii,jj)
}

func newEBGhost(cc CutCells, i, j int) (g ebGhost) {
	var (
		kappa = cc.VFrac.At(i, j, 0)
		anrmx = cc.Apx.At(i, j, 0) - cc.Apx.At(i+1, j, 0)
		anrmy = cc.Apy.At(i, j, 0) - cc.Apy.At(i, j+1, 0)
		anorm = math.Hypot(anrmx, anrmy)
	)
	anrmx /= anorm
	anrmy /= anorm
	dxEB := math.Max(0.3, (kappa*kappa-0.25)/(2*kappa))
	if math.Abs(anrmx) > math.Abs(anrmy) {
		g.dg = dxEB / math.Abs(anrmx)
	} else {
		g.dg = dxEB / math.Abs(anrmy)
	}
	var (
		gx = cc.BCent.At(i, j, 0) - g.dg*anrmx
		gy = cc.BCent.At(i, j, 1) - g.dg*anrmy
		sx = math.Copysign(1, anrmx)
		sy = math.Copysign(1, anrmy)
	)
	g.ii, g.jj = i-int(sx), j-int(sy)
	gxy := gx * gy * sx * sy
	g.c = [4]float64{
		1 + gx*sx + gy*sy + gxy,
		-gx*sx - gxy,
		-gy*sy - gxy,
		gxy,
	}
	return
}

func (g ebGhost) value(x Array, i, j, n int) float64 {
	return g.c[0]*x.At(i, j, n) + g.c[1]*x.At(g.ii, j, n) + g.c[2]*x.At(i, g.jj, n) + g.c[3]*x.At(g.ii, g.jj, n)
}

// dphidn is the normal derivative at the cut face in cell units
func (g ebGhost) dphidn(x Array, d EBDirichlet, i, j, n int) float64 {
	var phib float64
	if d.Inhomog {
		phib = d.Phi.At(i, j, n)
	}
	return (phib - g.value(x, i, j, n)) / g.dg
}

// faceFrac returns the transverse neighbor and blending weight used to move a cut face value from
// the face center to its centroid. The weight is zero when neither neighbor cell is usable.
func faceFrac(cc CutCells, ap, fc Array, dir, i, j int) (it, jt int, frac float64) {
	a := ap.At(i, j, 0)
	if a == 0 || a == 1 {
		return i, j, 0
	}
	var (
		c  = fc.At(i, j, 0)
		s  = int(math.Copysign(1, c))
		im = i
		jm = j
	)
	if dir == 0 {
		jt, it, im = j+s, i, i-1
		jm = jt
	} else {
		it, jt, jm = i+s, j, j-1
		im = it
	}
	if cc.CCM.At(im, jm, 0) != 0 || cc.CCM.At(it, jt, 0) != 0 {
		frac = math.Abs(c)
	}
	return
}

// faceGrad is b times the undivided difference across face (i,j) normal to dir, blended toward the
// centroid of a cut face. onCentroid selects whether b is already a centroid value.
func faceGrad(cc CutCells, x, b Array, dir, i, j, n int, onCentroid bool) (flux float64) {
	var (
		ap, fc = cc.Apx, cc.Fcx
		di, dj = 1, 0
	)
	if dir == 1 {
		ap, fc, di, dj = cc.Apy, cc.Fcy, 0, 1
	}
	it, jt, frac := faceFrac(cc, ap, fc, dir, i, j)
	var (
		d0 = x.At(i, j, n) - x.At(i-di, j-dj, n)
		b0 = b.At(i, j, n)
	)
	if frac == 0 {
		return b0 * d0
	}
	d1 := x.At(it, jt, n) - x.At(it-di, jt-dj, n)
	if onCentroid {
		return b0 * ((1-frac)*d0 + frac*d1)
	}
	return (1-frac)*b0*d0 + frac*b.At(it, jt, n)*d1
}

// faceWeight is the weight faceGrad puts on the cell above face (i,j), from the geometry and b only
func faceWeight(cc CutCells, b Array, dir, i, j, n int) float64 {
	ap, fc := cc.Apx, cc.Fcx
	if dir == 1 {
		ap, fc = cc.Apy, cc.Fcy
	}
	_, _, frac := faceFrac(cc, ap, fc, dir, i, j)
	return b.At(i, j, n) * (1 - frac)
}

// AdotxEB applies the operator on a box with cut cells. Covered cells get zero.
func AdotxEB(bx geometry.Box, ncomp int, y, x, a Array, b FaceArrays, cc CutCells, ebd EBDirichlet,
	dxinv [2]float64, alpha, beta float64, betaOnCentroid bool) {
	var (
		dhx = beta * dxinv[0] * dxinv[0]
		dhy = beta * dxinv[1] * dxinv[1]
		dh  = beta * dxinv[0] * dxinv[1]
	)
	for n := 0; n < ncomp; n++ {
		bx.ForEach(func(i, j int) {
			flag := cc.Flag.At(i, j, 0)
			switch {
			case flag.IsCovered():
				y.Set(i, j, n, 0)
			case flag.IsRegular():
				y.Set(i, j, n, regularAdotx(i, j, n, x, a, b, dhx, dhy, alpha))
			default:
				y.Set(i, j, n, alpha*a.At(i, j, 0)*x.At(i, j, n)+
					cutDivergence(i, j, n, x, b, cc, ebd, dhx, dhy, dh, betaOnCentroid))
			}
		})
	}
}

func regularAdotx(i, j, n int, x, a Array, b FaceArrays, dhx, dhy, alpha float64) float64 {
	var (
		bX, bY = b[0], b[1]
		xc     = x.At(i, j, n)
	)
	return alpha*a.At(i, j, 0)*xc -
		dhx*(bX.At(i+1, j, n)*(x.At(i+1, j, n)-xc)-bX.At(i, j, n)*(xc-x.At(i-1, j, n))) -
		dhy*(bY.At(i, j+1, n)*(x.At(i, j+1, n)-xc)-bY.At(i, j, n)*(xc-x.At(i, j-1, n)))
}

// cutDivergence is -beta*div(b grad x) of a cut cell, including the cut face flux
func cutDivergence(i, j, n int, x Array, b FaceArrays, cc CutCells, ebd EBDirichlet,
	dhx, dhy, dh float64, betaOnCentroid bool) float64 {
	var (
		kappa = cc.VFrac.At(i, j, 0)
		apxm  = cc.Apx.At(i, j, 0)
		apxp  = cc.Apx.At(i+1, j, 0)
		apym  = cc.Apy.At(i, j, 0)
		apyp  = cc.Apy.At(i, j+1, 0)
	)
	fxm := faceGrad(cc, x, b[0], 0, i, j, n, betaOnCentroid)
	fxp := faceGrad(cc, x, b[0], 0, i+1, j, n, betaOnCentroid)
	fym := faceGrad(cc, x, b[1], 1, i, j, n, betaOnCentroid)
	fyp := faceGrad(cc, x, b[1], 1, i, j+1, n, betaOnCentroid)
	var feb float64
	if ebd.active() {
		g := newEBGhost(cc, i, j)
		feb = g.dphidn(x, ebd, i, j, n) * cc.BArea.At(i, j, 0) * ebd.Beta.At(i, j, n)
	}
	return (1 / kappa) * (dhx*(apxm*fxm-apxp*fxp) + dhy*(apym*fym-apyp*fyp) - dh*feb)
}

// cutDiagonal is the coefficient of x(i,j) in cutDivergence, and the part of it that couples to
// each box edge ghost through cf0..cf3
func cutDiagonal(i, j, n int, b FaceArrays, cc CutCells, ebd EBDirichlet,
	dhx, dhy, dh float64) (diag float64, edge [geometry.NumFaces]float64) {
	var (
		kappa = cc.VFrac.At(i, j, 0)
		apxm  = cc.Apx.At(i, j, 0)
		apxp  = cc.Apx.At(i+1, j, 0)
		apym  = cc.Apy.At(i, j, 0)
		apyp  = cc.Apy.At(i, j+1, 0)
	)
	var (
		sxm = faceWeight(cc, b[0], 0, i, j, n)
		sxp = faceWeight(cc, b[0], 0, i+1, j, n)
		sym = faceWeight(cc, b[1], 1, i, j, n)
		syp = faceWeight(cc, b[1], 1, i, j+1, n)
	)
	edge = [geometry.NumFaces]float64{
		dhx * apxm * sxm / kappa,
		dhy * apym * sym / kappa,
		dhx * apxp * sxp / kappa,
		dhy * apyp * syp / kappa,
	}
	diag = edge[0] + edge[1] + edge[2] + edge[3]
	if ebd.active() {
		g := newEBGhost(cc, i, j)
		diag += (1 / kappa) * (-dh) * (-g.c[0] / g.dg * cc.BArea.At(i, j, 0) * ebd.Beta.At(i, j, n))
	}
	return
}

// NormalizeEB divides x by the diagonal of the cut cell operator, skipping covered cells
func NormalizeEB(bx geometry.Box, ncomp int, x, a Array, b FaceArrays, cc CutCells, ebd EBDirichlet,
	dxinv [2]float64, alpha, beta float64) {
	var (
		dhx = beta * dxinv[0] * dxinv[0]
		dhy = beta * dxinv[1] * dxinv[1]
		dh  = beta * dxinv[0] * dxinv[1]
	)
	for n := 0; n < ncomp; n++ {
		bx.ForEach(func(i, j int) {
			flag := cc.Flag.At(i, j, 0)
			switch {
			case flag.IsCovered():
			case flag.IsRegular():
				diag := alpha*a.At(i, j, 0) +
					dhx*(b[0].At(i, j, n)+b[0].At(i+1, j, n)) + dhy*(b[1].At(i, j, n)+b[1].At(i, j+1, n))
				x.Set(i, j, n, x.At(i, j, n)/diag)
			default:
				diag, _ := cutDiagonal(i, j, n, b, cc, ebd, dhx, dhy, dh)
				x.Set(i, j, n, x.At(i, j, n)/(alpha*a.At(i, j, 0)+diag))
			}
		})
	}
}

// GsrbEB relaxes one color of a box with cut cells in residual form. Covered cells are zeroed.
func GsrbEB(vbx geometry.Box, ncomp int, phi, rhs, a Array, b FaceArrays, m FaceMasks, f FaceCoefs,
	cc CutCells, ebd EBDirichlet, dxinv [2]float64, alpha, beta float64, redblack int, betaOnCentroid bool) {
	var (
		dhx = beta * dxinv[0] * dxinv[0]
		dhy = beta * dxinv[1] * dxinv[1]
		dh  = beta * dxinv[0] * dxinv[1]
	)
	for n := 0; n < ncomp; n++ {
		vbx.ForEach(func(i, j int) {
			if (i+j+redblack)%2 != 0 {
				return
			}
			flag := cc.Flag.At(i, j, 0)
			if flag.IsCovered() {
				phi.Set(i, j, n, 0)
				return
			}
			var (
				cf     = edgeFactors(vbx, i, j, n, m, f)
				aa     = alpha * a.At(i, j, 0)
				ax     float64
				gamma  float64
				delta  float64
				diag   float64
				weight [geometry.NumFaces]float64
			)
			if flag.IsRegular() {
				ax = regularAdotx(i, j, n, phi, a, b, dhx, dhy, alpha)
				weight = [geometry.NumFaces]float64{
					dhx * b[0].At(i, j, n), dhy * b[1].At(i, j, n),
					dhx * b[0].At(i+1, j, n), dhy * b[1].At(i, j+1, n),
				}
				diag = weight[0] + weight[1] + weight[2] + weight[3]
			} else {
				ax = aa*phi.At(i, j, n) + cutDivergence(i, j, n, phi, b, cc, ebd, dhx, dhy, dh, betaOnCentroid)
				diag, weight = cutDiagonal(i, j, n, b, cc, ebd, dhx, dhy, dh)
			}
			gamma = aa + diag
			for face := range cf {
				delta += weight[face] * cf[face]
			}
			phi.Add(i, j, n, (rhs.At(i, j, n)-ax)/(gamma-delta))
		})
	}
}

// FluxXEB sets the x face flux of a box with cut cells, zero on closed faces
func FluxXEB(fbx geometry.Box, ncomp int, fx, sol, bX Array, cc CutCells, fac float64, betaOnCentroid bool) {
	fluxEB(0, fbx, ncomp, fx, sol, bX, cc, fac, betaOnCentroid)
}

func FluxYEB(fbx geometry.Box, ncomp int, fy, sol, bY Array, cc CutCells, fac float64, betaOnCentroid bool) {
	fluxEB(1, fbx, ncomp, fy, sol, bY, cc, fac, betaOnCentroid)
}

func fluxEB(dir int, fbx geometry.Box, ncomp int, f, sol, b Array, cc CutCells, fac float64, betaOnCentroid bool) {
	ap := cc.Apx
	if dir == 1 {
		ap = cc.Apy
	}
	for n := 0; n < ncomp; n++ {
		fbx.ForEach(func(i, j int) {
			if ap.At(i, j, 0) == 0 {
				f.Set(i, j, n, 0)
				return
			}
			g := faceGrad(cc, sol, b, dir, i, j, n, betaOnCentroid)
			f.Set(i, j, n, -fac*g)
		})
	}
}

// GradXEB is the x gradient at face centroids: zero on closed faces, blended toward the centroid on
// cut faces
func GradXEB(fbx geometry.Box, ncomp int, gx, sol Array, cc CutCells, dxi float64) {
	gradEB(0, fbx, ncomp, gx, sol, cc, dxi)
}

func GradYEB(fbx geometry.Box, ncomp int, gy, sol Array, cc CutCells, dyi float64) {
	gradEB(1, fbx, ncomp, gy, sol, cc, dyi)
}

func gradEB(dir int, fbx geometry.Box, ncomp int, g, sol Array, cc CutCells, dxi float64) {
	var (
		ap     = cc.Apx
		di, dj = 1, 0
	)
	if dir == 1 {
		ap, di, dj = cc.Apy, 0, 1
	}
	for n := 0; n < ncomp; n++ {
		fbx.ForEach(func(i, j int) {
			switch a := ap.At(i, j, 0); {
			case a == 0:
				g.Set(i, j, n, 0)
			case a == 1:
				g.Set(i, j, n, dxi*(sol.At(i, j, n)-sol.At(i-di, j-dj, n)))
			default:
				var (
					fc     = cc.Fcx
					it, jt int
					frac   float64
				)
				if dir == 1 {
					fc = cc.Fcy
				}
				it, jt, frac = faceFrac(cc, ap, fc, dir, i, j)
				d0 := sol.At(i, j, n) - sol.At(i-di, j-dj, n)
				d1 := sol.At(it, jt, n) - sol.At(it-di, jt-dj, n)
				g.Set(i, j, n, dxi*((1-frac)*d0+frac*d1))
			}
		})
	}
}

// GradXEB0 is the x gradient at face centers, zero on closed faces
func GradXEB0(fbx geometry.Box, ncomp int, gx, sol, apx Array, dxi float64) {
	for n := 0; n < ncomp; n++ {
		fbx.ForEach(func(i, j int) {
			v := 0.
			if apx.At(i, j, 0) > 0 {
				v = dxi * (sol.At(i, j, n) - sol.At(i-1, j, n))
			}
			gx.Set(i, j, n, v)
		})
	}
}

func GradYEB0(fbx geometry.Box, ncomp int, gy, sol, apy Array, dyi float64) {
	for n := 0; n < ncomp; n++ {
		fbx.ForEach(func(i, j int) {
			v := 0.
			if apy.At(i, j, 0) > 0 {
				v = dyi * (sol.At(i, j, n) - sol.At(i, j-1, n))
			}
			gy.Set(i, j, n, v)
		})
	}
}

// EBFlux is the flux through the cut face of each cut cell, zero elsewhere
func EBFlux(bx geometry.Box, ncomp int, feb, phi Array, cc CutCells, ebd EBDirichlet, dxi, beta float64) {
	for n := 0; n < ncomp; n++ {
		bx.ForEach(func(i, j int) {
			if !cc.Flag.At(i, j, 0).IsSingleValued() {
				feb.Set(i, j, n, 0)
				return
			}
			g := newEBGhost(cc, i, j)
			feb.Set(i, j, n, -beta*ebd.Beta.At(i, j, n)*g.dphidn(phi, ebd, i, j, n)*dxi)
		})
	}
}
