package linop

import (
	"fmt"

	"github.com/notargets/gomlmg/eb"
	"github.com/notargets/gomlmg/fab"
	"github.com/notargets/gomlmg/geometry"
	"github.com/notargets/gomlmg/kernels"
	"github.com/notargets/gomlmg/types"
)

// Restriction averages the residual on multigrid level cmglev-1 into crse on level cmglev
func (op *MLEBABecLap) Restriction(amrlev, cmglev int, crse, fine *fab.MultiFab) {
	eb.AverageDown(op.sched, fine, crse, op.levels[amrlev][cmglev-1].Fact, 0, op.NComp,
		geometry.Uniform(op.Info.MGCoarsenRatio))
}

// Interpolation adds the coarse correction on level fmglev+1 to fine, leaving covered cells alone
func (op *MLEBABecLap) Interpolation(amrlev, fmglev int, fine, crse *fab.MultiFab) {
	var (
		ml    = op.levels[amrlev][fmglev]
		ratio = geometry.Uniform(op.Info.MGCoarsenRatio)
	)
	op.sched.Run(len(ml.Grids), func(b int) {
		vbx := ml.Grids[b]
		switch ml.Fact.FabType(b) {
		case eb.FabCovered:
		case eb.FabRegular:
			kernels.InterpAdd(vbx, op.NComp, fine.Array(b), crse.Array(b), ratio)
		default:
			kernels.InterpAddEB(vbx, op.NComp, fine.Array(b), crse.Array(b), ml.Fact.FlagArray(b), ratio)
		}
	})
}

// AverageDownSolutionRHS restricts the solution and right hand side of AMR level camrlev+1 onto
// the region of camrlev it covers
func (op *MLEBABecLap) AverageDownSolutionRHS(camrlev int, crseSol, crseRHS, fineSol, fineRHS *fab.MultiFab) {
	var (
		fact  = op.levels[camrlev+1][0].Fact
		ratio = geometry.Uniform(op.amrRatio[camrlev])
	)
	eb.AverageDown(op.sched, fineSol, crseSol, fact, 0, op.NComp, ratio)
	eb.AverageDown(op.sched, fineRHS, crseRHS, fact, 0, op.NComp, ratio)
}

// GetFluxes computes -beta*B*grad(sol) on the faces of every box of AMR level amrlev using the
// inhomogeneous boundary conditions. With faceOnly set, regular boxes get only their two end faces
// in each direction; cut and covered boxes are always filled.
func (op *MLEBABecLap) GetFluxes(amrlev int, flux [Dim]*fab.MultiFab, sol *fab.MultiFab, faceOnly bool) {
	var (
		ml    = op.levels[amrlev][0]
		dxinv = ml.Geom.InvCellSize()
		onCen = op.betaLoc == types.FaceCentroid
	)
	op.checkRadial(ml)
	op.ApplyBC(amrlev, 0, sol, types.Inhomogeneous, types.Solution, false)
	op.sched.Run(len(ml.Grids), func(b int) {
		var (
			vbx   = ml.Grids[b]
			ftype = ml.Fact.FabType(b)
			x     = sol.Array(b)
			bb    = ml.bArrays(b)
		)
		if ftype == eb.FabMultiValued {
			panic(multiValued(vbx))
		}
		for d := 0; d < Dim; d++ {
			var (
				fbx = flux[d].ValidBox(b)
				f   = flux[d].Array(b)
				fac = op.beta * dxinv[d]
			)
			switch ftype {
			case eb.FabCovered:
				flux[d].Fabs[b].SetValBox(0, fbx, 0, op.NComp)
			case eb.FabRegular:
				if faceOnly {
					op.faceFluxes(ml, d, fbx, f, x, bb[d], fac, vbx.Length(d))
					continue
				}
				switch {
				case d == 0 && ml.Geom.IsRZ():
					kernels.FluxXM(fbx, op.NComp, f, x, bb[0], fac, ml.Geom.CellSize()[0], probXLo(ml.Geom))
				case d == 0:
					kernels.FluxX(fbx, op.NComp, f, x, bb[0], fac)
				case ml.Geom.IsRZ():
					kernels.FluxYM(fbx, op.NComp, f, x, bb[1], fac, ml.Geom.CellSize()[0], probXLo(ml.Geom))
				default:
					kernels.FluxY(fbx, op.NComp, f, x, bb[1], fac)
				}
			default:
				cc := kernels.NewCutCells(ml.Fact, ml.CCMask, b)
				if d == 0 {
					kernels.FluxXEB(fbx, op.NComp, f, x, bb[0], cc, fac, onCen)
				} else {
					kernels.FluxYEB(fbx, op.NComp, f, x, bb[1], cc, fac, onCen)
				}
			}
		}
	})
}

func (op *MLEBABecLap) faceFluxes(ml *mgLevel, d int, fbx geometry.Box, f, x, b kernels.Array, fac float64, n int) {
	var (
		dx      = ml.Geom.CellSize()[0]
		probxlo = probXLo(ml.Geom)
	)
	switch {
	case d == 0 && ml.Geom.IsRZ():
		kernels.FluxXFaceM(fbx, op.NComp, f, x, b, fac, n, dx, probxlo)
	case d == 0:
		kernels.FluxXFace(fbx, op.NComp, f, x, b, fac, n)
	case ml.Geom.IsRZ():
		kernels.FluxYFaceM(fbx, op.NComp, f, x, b, fac, n, dx, probxlo)
	default:
		kernels.FluxYFace(fbx, op.NComp, f, x, b, fac, n)
	}
}

// GetEBFluxes is the flux through the embedded boundary of each cut cell, zero without EB Dirichlet
func (op *MLEBABecLap) GetEBFluxes(amrlev int, ebflux, sol *fab.MultiFab) {
	if op.ebd == nil {
		ebflux.SetVal(0)
		return
	}
	var (
		ml = op.levels[amrlev][0]
	)
	op.ApplyBC(amrlev, 0, sol, types.Inhomogeneous, types.Solution, false)
	op.sched.Run(len(ml.Grids), func(b int) {
		vbx := ml.Grids[b]
		switch ml.Fact.FabType(b) {
		case eb.FabCovered, eb.FabRegular:
			ebflux.Fabs[b].SetValBox(0, vbx, 0, op.NComp)
		case eb.FabSingleValued:
			kernels.EBFlux(vbx, op.NComp, ebflux.Array(b), sol.Array(b), kernels.NewCutCells(ml.Fact, ml.CCMask, b),
				op.ebDirichletArrays(amrlev, 0, b, true), ml.Geom.InvCellSize()[0], op.beta)
		default:
			panic(multiValued(vbx))
		}
	})
}

// CompGrad fills grad with the face gradient of sol, located at face centroids when loc says so
func (op *MLEBABecLap) CompGrad(amrlev int, grad [Dim]*fab.MultiFab, sol *fab.MultiFab, loc types.Location) {
	var (
		ml    = op.levels[amrlev][0]
		dxinv = ml.Geom.InvCellSize()
	)
	op.ApplyBC(amrlev, 0, sol, types.Inhomogeneous, types.Solution, false)
	op.sched.Run(len(ml.Grids), func(b int) {
		var (
			vbx   = ml.Grids[b]
			ftype = ml.Fact.FabType(b)
			x     = sol.Array(b)
		)
		for d := 0; d < Dim; d++ {
			var (
				fbx = grad[d].ValidBox(b)
				g   = grad[d].Array(b)
			)
			switch ftype {
			case eb.FabCovered:
				grad[d].Fabs[b].SetValBox(0, fbx, 0, op.NComp)
			case eb.FabRegular:
				if d == 0 {
					kernels.GradX(fbx, op.NComp, g, x, dxinv[0])
				} else {
					kernels.GradY(fbx, op.NComp, g, x, dxinv[1])
				}
			case eb.FabSingleValued:
				switch {
				case op.phiOnCentroid:
					panic(fmt.Errorf("gradient of a solution given at cell centroids is not supported"))
				case loc == types.FaceCentroid:
					cc := kernels.NewCutCells(ml.Fact, ml.CCMask, b)
					if d == 0 {
						kernels.GradXEB(fbx, op.NComp, g, x, cc, dxinv[0])
					} else {
						kernels.GradYEB(fbx, op.NComp, g, x, cc, dxinv[1])
					}
				default:
					ap := ml.Fact.AreaFrac[d].Array(b)
					if d == 0 {
						kernels.GradXEB0(fbx, op.NComp, g, x, ap, dxinv[0])
					} else {
						kernels.GradYEB0(fbx, op.NComp, g, x, ap, dxinv[1])
					}
				}
			default:
				panic(multiValued(vbx))
			}
		}
	})
}
