// Package kernels holds the per-box loops of the alpha*A - beta*div(B grad) operator
package kernels

import (
	"github.com/notargets/gomlmg/fab"
	"github.com/notargets/gomlmg/geometry"
)

type (
	Array  = fab.Array4[float64]
	IArray = fab.Array4[int]
)

// FaceMasks and FaceCoefs are indexed by orientation (xlo, ylo, xhi, yhi), FaceArrays by direction
type (
	FaceMasks  [geometry.NumFaces]IArray
	FaceCoefs  [geometry.NumFaces]Array
	FaceArrays [geometry.SpaceDim]Array
)

// radial supplies the face and center radii of column i, all 1 when off
type radial struct {
	on      bool
	dx, xlo float64
}

// newRadial places column i between xlo + i*dx and xlo + (i+1)*dx, where xlo is the physical
// position of index zero
func newRadial(dx, xlo float64) radial { return radial{on: true, dx: dx, xlo: xlo} }

func (r radial) radii(i int) (rel, rer, rc float64) {
	if !r.on {
		return 1, 1, 1
	}
	rel = r.xlo + float64(i)*r.dx
	rer = rel + r.dx
	rc = rel + 0.5*r.dx
	return
}

func (r radial) face(i int) float64 {
	if !r.on {
		return 1
	}
	return r.xlo + float64(i)*r.dx
}

// AdotxABec sets y = alpha*a*x - beta*div(b grad x) on bx
func AdotxABec(bx geometry.Box, ncomp int, y, x, a Array, b FaceArrays, dxinv [2]float64, alpha, beta float64) {
	adotx(radial{}, bx, ncomp, y, x, a, b, dxinv, alpha, beta)
}

// AdotxABecM is the axisymmetric form with x as the radius, per unit volume
func AdotxABecM(bx geometry.Box, ncomp int, y, x, a Array, b FaceArrays, dxinv [2]float64, alpha, beta,
	dx, probxlo float64) {
	adotx(newRadial(dx, probxlo), bx, ncomp, y, x, a, b, dxinv, alpha, beta)
}

func adotx(r radial, bx geometry.Box, ncomp int, y, x, a Array, b FaceArrays, dxinv [2]float64, alpha, beta float64) {
	var (
		dhx    = beta * dxinv[0] * dxinv[0]
		dhy    = beta * dxinv[1] * dxinv[1]
		bX, bY = b[0], b[1]
	)
	for n := 0; n < ncomp; n++ {
		bx.ForEach(func(i, j int) {
			rel, rer, rc := r.radii(i)
			xc := x.At(i, j, n)
			y.Set(i, j, n, alpha*a.At(i, j, 0)*xc-
				(dhx*(rer*bX.At(i+1, j, n)*(x.At(i+1, j, n)-xc)-rel*bX.At(i, j, n)*(xc-x.At(i-1, j, n)))+
					dhy*rc*(bY.At(i, j+1, n)*(x.At(i, j+1, n)-xc)-bY.At(i, j, n)*(xc-x.At(i, j-1, n))))/rc)
		})
	}
}

// NormalizeABec divides x by the operator diagonal
func NormalizeABec(bx geometry.Box, ncomp int, x, a Array, b FaceArrays, dxinv [2]float64, alpha, beta float64) {
	normalize(radial{}, bx, ncomp, x, a, b, dxinv, alpha, beta)
}

func NormalizeABecM(bx geometry.Box, ncomp int, x, a Array, b FaceArrays, dxinv [2]float64, alpha, beta,
	dx, probxlo float64) {
	normalize(newRadial(dx, probxlo), bx, ncomp, x, a, b, dxinv, alpha, beta)
}

func normalize(r radial, bx geometry.Box, ncomp int, x, a Array, b FaceArrays, dxinv [2]float64, alpha, beta float64) {
	var (
		dhx    = beta * dxinv[0] * dxinv[0]
		dhy    = beta * dxinv[1] * dxinv[1]
		bX, bY = b[0], b[1]
	)
	for n := 0; n < ncomp; n++ {
		bx.ForEach(func(i, j int) {
			rel, rer, rc := r.radii(i)
			diag := alpha*a.At(i, j, 0) +
				(dhx*(rel*bX.At(i, j, n)+rer*bX.At(i+1, j, n))+
					dhy*rc*(bY.At(i, j, n)+bY.At(i, j+1, n)))/rc
			x.Set(i, j, n, x.At(i, j, n)/diag)
		})
	}
}

// edgeFactors returns the boundary weights cf0..cf3 of cell (i,j), nonzero only on the edge of the
// valid box vbx and where the ghost beyond was filled by a boundary condition
func edgeFactors(vbx geometry.Box, i, j, n int, m FaceMasks, f FaceCoefs) (cf [geometry.NumFaces]float64) {
	if i == vbx.Lo[0] && m[0].At(i-1, j, 0) > 0 {
		cf[0] = f[0].At(i, j, n)
	}
	if j == vbx.Lo[1] && m[1].At(i, j-1, 0) > 0 {
		cf[1] = f[1].At(i, j, n)
	}
	if i == vbx.Hi[0] && m[2].At(i+1, j, 0) > 0 {
		cf[2] = f[2].At(i, j, n)
	}
	if j == vbx.Hi[1] && m[3].At(i, j+1, 0) > 0 {
		cf[3] = f[3].At(i, j, n)
	}
	return
}

// GsrbABec relaxes the cells of color redblack in place. Cells of one color are visited in order so
// updates within the box are seen immediately.
func GsrbABec(vbx geometry.Box, ncomp int, phi, rhs, a Array, b FaceArrays, m FaceMasks, f FaceCoefs,
	dxinv [2]float64, alpha, beta float64, redblack int) {
	gsrb(radial{}, vbx, ncomp, phi, rhs, a, b, m, f, dxinv, alpha, beta, redblack)
}

func GsrbABecM(vbx geometry.Box, ncomp int, phi, rhs, a Array, b FaceArrays, m FaceMasks, f FaceCoefs,
	dxinv [2]float64, alpha, beta float64, redblack int, dx, probxlo float64) {
	gsrb(newRadial(dx, probxlo), vbx, ncomp, phi, rhs, a, b, m, f, dxinv, alpha, beta, redblack)
}

func gsrb(r radial, vbx geometry.Box, ncomp int, phi, rhs, a Array, b FaceArrays, m FaceMasks, f FaceCoefs,
	dxinv [2]float64, alpha, beta float64, redblack int) {
	var (
		dhx    = beta * dxinv[0] * dxinv[0]
		dhy    = beta * dxinv[1] * dxinv[1]
		bX, bY = b[0], b[1]
	)
	for n := 0; n < ncomp; n++ {
		vbx.ForEach(func(i, j int) {
			if (i+j+redblack)%2 != 0 {
				return
			}
			var (
				rel, rer, rc = r.radii(i)
				cf           = edgeFactors(vbx, i, j, n, m, f)
				bxm, bxp     = rel * bX.At(i, j, n), rer * bX.At(i+1, j, n)
				bym, byp     = rc * bY.At(i, j, n), rc * bY.At(i, j+1, n)
				gamma        = alpha*a.At(i, j, 0) + (dhx*(bxm+bxp)+dhy*(bym+byp))/rc
				delta        = (dhx*(bxm*cf[0]+bxp*cf[2]) + dhy*(bym*cf[1]+byp*cf[3])) / rc
				rho          = (dhx*(bxm*phi.At(i-1, j, n)+bxp*phi.At(i+1, j, n)) +
					dhy*(bym*phi.At(i, j-1, n)+byp*phi.At(i, j+1, n))) / rc
			)
			phi.Set(i, j, n, (rhs.At(i, j, n)+rho-phi.At(i, j, n)*delta)/(gamma-delta))
		})
	}
}

// FluxX sets fx = -fac*bX*d(sol)/dx on the x faces of fbx, fac being beta/dx
func FluxX(fbx geometry.Box, ncomp int, fx, sol, bX Array, fac float64) {
	fluxX(radial{}, fbx, ncomp, fx, sol, bX, fac)
}

func FluxXM(fbx geometry.Box, ncomp int, fx, sol, bX Array, fac, dx, probxlo float64) {
	fluxX(newRadial(dx, probxlo), fbx, ncomp, fx, sol, bX, fac)
}

func fluxX(r radial, fbx geometry.Box, ncomp int, fx, sol, bX Array, fac float64) {
	for n := 0; n < ncomp; n++ {
		fbx.ForEach(func(i, j int) {
			fx.Set(i, j, n, -fac*r.face(i)*bX.At(i, j, n)*(sol.At(i, j, n)-sol.At(i-1, j, n)))
		})
	}
}

func FluxY(fbx geometry.Box, ncomp int, fy, sol, bY Array, fac float64) {
	fluxY(radial{}, fbx, ncomp, fy, sol, bY, fac)
}

func FluxYM(fbx geometry.Box, ncomp int, fy, sol, bY Array, fac, dx, probxlo float64) {
	fluxY(newRadial(dx, probxlo), fbx, ncomp, fy, sol, bY, fac)
}

func fluxY(r radial, fbx geometry.Box, ncomp int, fy, sol, bY Array, fac float64) {
	for n := 0; n < ncomp; n++ {
		fbx.ForEach(func(i, j int) {
			_, _, rc := r.radii(i)
			fy.Set(i, j, n, -fac*rc*bY.At(i, j, n)*(sol.At(i, j, n)-sol.At(i, j-1, n)))
		})
	}
}

// FluxXFace computes only the two bounding faces lo and lo+xlen of the face box
func FluxXFace(fbx geometry.Box, ncomp int, fx, sol, bX Array, fac float64, xlen int) {
	fluxX(radial{}, endFaces(fbx, 0), ncomp, fx, sol, bX, fac)
	fluxX(radial{}, endFaces(fbx, 0).ShiftDir(0, xlen), ncomp, fx, sol, bX, fac)
}

func FluxXFaceM(fbx geometry.Box, ncomp int, fx, sol, bX Array, fac float64, xlen int, dx, probxlo float64) {
	r := newRadial(dx, probxlo)
	fluxX(r, endFaces(fbx, 0), ncomp, fx, sol, bX, fac)
	fluxX(r, endFaces(fbx, 0).ShiftDir(0, xlen), ncomp, fx, sol, bX, fac)
}

func FluxYFace(fbx geometry.Box, ncomp int, fy, sol, bY Array, fac float64, ylen int) {
	fluxY(radial{}, endFaces(fbx, 1), ncomp, fy, sol, bY, fac)
	fluxY(radial{}, endFaces(fbx, 1).ShiftDir(1, ylen), ncomp, fy, sol, bY, fac)
}

func FluxYFaceM(fbx geometry.Box, ncomp int, fy, sol, bY Array, fac float64, ylen int, dx, probxlo float64) {
	r := newRadial(dx, probxlo)
	fluxY(r, endFaces(fbx, 1), ncomp, fy, sol, bY, fac)
	fluxY(r, endFaces(fbx, 1).ShiftDir(1, ylen), ncomp, fy, sol, bY, fac)
}

// endFaces is the single layer of faces at the low end of fbx in dir
func endFaces(fbx geometry.Box, dir int) geometry.Box {
	fbx.Hi[dir] = fbx.Lo[dir]
	return fbx
}

// GradX sets gx = d(sol)/dx on the x faces of fbx
func GradX(fbx geometry.Box, ncomp int, gx, sol Array, dxi float64) {
	for n := 0; n < ncomp; n++ {
		fbx.ForEach(func(i, j int) {
			gx.Set(i, j, n, dxi*(sol.At(i, j, n)-sol.At(i-1, j, n)))
		})
	}
}

func GradY(fbx geometry.Box, ncomp int, gy, sol Array, dyi float64) {
	for n := 0; n < ncomp; n++ {
		fbx.ForEach(func(i, j int) {
			gy.Set(i, j, n, dyi*(sol.At(i, j, n)-sol.At(i, j-1, n)))
		})
	}
}
