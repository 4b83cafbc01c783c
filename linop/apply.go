package linop

import (
	"fmt"

	"github.com/notargets/gomlmg/boundary"
	"github.com/notargets/gomlmg/eb"
	"github.com/notargets/gomlmg/fab"
	"github.com/notargets/gomlmg/geometry"
	"github.com/notargets/gomlmg/kernels"
	"github.com/notargets/gomlmg/types"
)

// ApplyBC fills the ghost cells of in around every box that is not covered. Homogeneous mode
// treats all boundary values as zero; inhomogeneous mode is only valid on the finest MG level.
func (op *MLEBABecLap) ApplyBC(amrlev, mglev int, in *fab.MultiFab, bcMode types.BCMode,
	stateMode types.StateMode, skipFillBoundary bool) {
	var (
		ml       = op.levels[amrlev][mglev]
		inhomog  = bcMode == types.Inhomogeneous
		dxinv    = ml.Geom.InvCellSize()
		maxorder = op.Info.MaxOrder
	)
	if inhomog && mglev > 0 {
		panic(fmt.Errorf("inhomogeneous boundary conditions on multigrid level %d", mglev))
	}
	if inhomog && op.levelBC[amrlev] == nil {
		panic(fmt.Errorf("inhomogeneous boundary conditions on AMR level %d without boundary data", amrlev))
	}
	if op.lobc == nil {
		panic(fmt.Errorf("SetDomainBC must be called before applying boundary conditions"))
	}
	if in.NGrow < 1 {
		panic(fmt.Errorf("boundary conditions need a ghost cell"))
	}
	boundary.CheckMaxOrder(maxorder)
	if !skipFillBoundary {
		in.FillBoundary(ml.Geom.Periodicity())
	}
	op.sched.Run(len(ml.Grids), func(b int) {
		var (
			vbx   = ml.Grids[b]
			ftype = ml.Fact.FabType(b)
			phi   = in.Array(b)
		)
		if ftype == eb.FabCovered {
			return
		}
		for face := geometry.Orientation(0); face < geometry.NumFaces; face++ {
			var (
				dir  = face.Dir()
				slab = vbx.AdjCell(face, 1)
				blen = vbx.Length(dir)
			)
			if ftype != eb.FabRegular {
				slab = slab.GrowTransverse(dir, 1)
			}
			for n := 0; n < op.NComp; n++ {
				var (
					bc    = ml.Cond.Get(b, n)[face]
					bcval fab.Array4[float64]
				)
				if inhomog {
					bcval = op.bndry[amrlev].Values(face, b)
				}
				if ftype == eb.FabRegular {
					apply := boundary.ApplyBCRegularX
					if dir == 1 {
						apply = boundary.ApplyBCRegularY
					}
					apply(face.Side(), slab, blen, phi, ml.Masks.Array(face, b), bc.Type, bc.Loc, bcval,
						maxorder, dxinv[dir], inhomog, n)
				} else {
					apply := boundary.ApplyBCEBX
					if dir == 1 {
						apply = boundary.ApplyBCEBY
					}
					apply(face.Side(), slab, blen, phi, ml.CCMask.Array(b), ml.Fact.AreaFrac[dir].Array(b),
						bc.Type, bc.Loc, bcval, maxorder, dxinv[dir], inhomog, n)
				}
			}
		}
	})
}

// ebDirichletArrays is the EB Dirichlet data of box b, inactive when none is configured
func (op *MLEBABecLap) ebDirichletArrays(amrlev, mglev, b int, inhomog bool) (d kernels.EBDirichlet) {
	if op.ebd == nil {
		return
	}
	d.Beta = op.ebd.beta[amrlev][mglev].Array(b)
	if mglev == 0 {
		d.Phi = op.ebd.phi[amrlev].Array(b)
		d.Inhomog = inhomog
	}
	return
}

func (ml *mgLevel) bArrays(b int) kernels.FaceArrays {
	return kernels.FaceArrays{ml.B[0].Array(b), ml.B[1].Array(b)}
}

func (ml *mgLevel) faceMasks(b int) (m kernels.FaceMasks) {
	for face := geometry.Orientation(0); face < geometry.NumFaces; face++ {
		m[face] = ml.Masks.Array(face, b)
	}
	return
}

func (ml *mgLevel) faceCoefs(b int) (f kernels.FaceCoefs) {
	for face := geometry.Orientation(0); face < geometry.NumFaces; face++ {
		f[face] = ml.Coefs.Array(face, b)
	}
	return
}

// probXLo is the physical x position of index zero, used by the radial kernels
func probXLo(g *geometry.Geometry) float64 {
	return g.ProbLo[0] - float64(g.Domain.Lo[0])*g.CellSize()[0]
}

func multiValued(bx geometry.Box) error {
	return fmt.Errorf("multivalued cells are not supported in box %v", bx)
}

// Apply sets out = L(in) on the valid region after filling the ghosts of in
func (op *MLEBABecLap) Apply(amrlev, mglev int, out, in *fab.MultiFab, bcMode types.BCMode,
	stateMode types.StateMode) {
	op.ApplyBC(amrlev, mglev, in, bcMode, stateMode, false)
	op.fapply(amrlev, mglev, out, in, bcMode == types.Inhomogeneous && stateMode == types.Solution)
}

func (op *MLEBABecLap) fapply(amrlev, mglev int, out, in *fab.MultiFab, ebInhomog bool) {
	var (
		ml    = op.levels[amrlev][mglev]
		dxinv = ml.Geom.InvCellSize()
		onCen = op.betaLoc == types.FaceCentroid
	)
	op.checkRadial(ml)
	op.sched.Run(len(ml.Grids), func(b int) {
		var (
			vbx = ml.Grids[b]
			y   = out.Array(b)
			x   = in.Array(b)
			a   = ml.A.Array(b)
		)
		switch ml.Fact.FabType(b) {
		case eb.FabCovered:
			out.Fabs[b].SetValBox(0, vbx, 0, op.NComp)
		case eb.FabRegular:
			if ml.Geom.IsRZ() {
				kernels.AdotxABecM(vbx, op.NComp, y, x, a, ml.bArrays(b), dxinv, op.alpha, op.beta,
					ml.Geom.CellSize()[0], probXLo(ml.Geom))
			} else {
				kernels.AdotxABec(vbx, op.NComp, y, x, a, ml.bArrays(b), dxinv, op.alpha, op.beta)
			}
		case eb.FabSingleValued:
			kernels.AdotxEB(vbx, op.NComp, y, x, a, ml.bArrays(b), kernels.NewCutCells(ml.Fact, ml.CCMask, b),
				op.ebDirichletArrays(amrlev, mglev, b, ebInhomog), dxinv, op.alpha, op.beta, onCen)
		default:
			panic(multiValued(vbx))
		}
	})
}

// Normalize divides mf by the diagonal of the operator
func (op *MLEBABecLap) Normalize(amrlev, mglev int, mf *fab.MultiFab) {
	var (
		ml    = op.levels[amrlev][mglev]
		dxinv = ml.Geom.InvCellSize()
	)
	op.checkRadial(ml)
	op.sched.Run(len(ml.Grids), func(b int) {
		var (
			vbx = ml.Grids[b]
			x   = mf.Array(b)
			a   = ml.A.Array(b)
		)
		switch ml.Fact.FabType(b) {
		case eb.FabCovered:
		case eb.FabRegular:
			if ml.Geom.IsRZ() {
				kernels.NormalizeABecM(vbx, op.NComp, x, a, ml.bArrays(b), dxinv, op.alpha, op.beta,
					ml.Geom.CellSize()[0], probXLo(ml.Geom))
			} else {
				kernels.NormalizeABec(vbx, op.NComp, x, a, ml.bArrays(b), dxinv, op.alpha, op.beta)
			}
		case eb.FabSingleValued:
			kernels.NormalizeEB(vbx, op.NComp, x, a, ml.bArrays(b), kernels.NewCutCells(ml.Fact, ml.CCMask, b),
				op.ebDirichletArrays(amrlev, mglev, b, false), dxinv, op.alpha, op.beta)
		default:
			panic(multiValued(vbx))
		}
	})
}

// Smooth performs one red-black Gauss-Seidel sweep of L(sol) = rhs, refreshing the ghosts of sol
// before each colour
func (op *MLEBABecLap) Smooth(amrlev, mglev int, sol, rhs *fab.MultiFab, bcMode types.BCMode,
	skipFillBoundary bool) {
	for redblack := 0; redblack < 2; redblack++ {
		op.ApplyBC(amrlev, mglev, sol, bcMode, types.Solution, skipFillBoundary)
		op.fsmooth(amrlev, mglev, sol, rhs, redblack, bcMode == types.Inhomogeneous)
		skipFillBoundary = false
	}
}

func (op *MLEBABecLap) fsmooth(amrlev, mglev int, sol, rhs *fab.MultiFab, redblack int, ebInhomog bool) {
	var (
		ml    = op.levels[amrlev][mglev]
		dxinv = ml.Geom.InvCellSize()
		onCen = op.betaLoc == types.FaceCentroid
	)
	op.checkRadial(ml)
	op.sched.Run(len(ml.Grids), func(b int) {
		var (
			vbx = ml.Grids[b]
			phi = sol.Array(b)
			r   = rhs.Array(b)
			a   = ml.A.Array(b)
		)
		switch ml.Fact.FabType(b) {
		case eb.FabCovered:
			sol.Fabs[b].SetValBox(0, vbx, 0, op.NComp)
		case eb.FabRegular:
			if ml.Geom.IsRZ() {
				kernels.GsrbABecM(vbx, op.NComp, phi, r, a, ml.bArrays(b), ml.faceMasks(b), ml.faceCoefs(b),
					dxinv, op.alpha, op.beta, redblack, ml.Geom.CellSize()[0], probXLo(ml.Geom))
			} else {
				kernels.GsrbABec(vbx, op.NComp, phi, r, a, ml.bArrays(b), ml.faceMasks(b), ml.faceCoefs(b),
					dxinv, op.alpha, op.beta, redblack)
			}
		case eb.FabSingleValued:
			kernels.GsrbEB(vbx, op.NComp, phi, r, a, ml.bArrays(b), ml.faceMasks(b), ml.faceCoefs(b),
				kernels.NewCutCells(ml.Fact, ml.CCMask, b), op.ebDirichletArrays(amrlev, mglev, b, ebInhomog),
				dxinv, op.alpha, op.beta, redblack, onCen)
		default:
			panic(multiValued(vbx))
		}
	})
}

// Residual sets resid = rhs - L(x)
func (op *MLEBABecLap) Residual(amrlev, mglev int, resid, x, rhs *fab.MultiFab, bcMode types.BCMode,
	stateMode types.StateMode) {
	op.Apply(amrlev, mglev, resid, x, bcMode, stateMode)
	resid.Scale(-1, 0, op.NComp)
	resid.Saxpy(1, rhs, 0, 0, op.NComp)
}

// ResidualNorm is the max norm over components of rhs - L(x)
func (op *MLEBABecLap) ResidualNorm(amrlev, mglev int, x, rhs *fab.MultiFab, bcMode types.BCMode) (nrm float64) {
	resid := op.Make(amrlev, mglev, 0)
	op.Residual(amrlev, mglev, resid, x, rhs, bcMode, types.Solution)
	for n := 0; n < op.NComp; n++ {
		nrm = max(nrm, resid.Norm0(n))
	}
	return
}
