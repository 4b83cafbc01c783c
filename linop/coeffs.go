package linop

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/notargets/gomlmg/eb"
	"github.com/notargets/gomlmg/fab"
	"github.com/notargets/gomlmg/geometry"
	"github.com/notargets/gomlmg/types"
)

// SetScalars sets alpha and beta. A zero alpha also clears A on every level.
func (op *MLEBABecLap) SetScalars(alpha, beta float64) {
	op.alpha, op.beta = alpha, beta
	if alpha == 0 {
		for _, ladder := range op.levels {
			ladder[0].A.SetVal(0)
		}
	}
	op.needsUpdate = true
}

// SetACoeffs copies the first component of mf over the valid region of level amrlev
func (op *MLEBABecLap) SetACoeffs(amrlev int, mf *fab.MultiFab) {
	fab.Copy(op.levels[amrlev][0].A, mf, 0, 0, 1, 0)
	op.needsUpdate = true
}

func (op *MLEBABecLap) SetACoeffsScalar(amrlev int, a float64) {
	op.levels[amrlev][0].A.SetVal(a)
	op.needsUpdate = true
}

// SetBCoeffs copies face coefficients located at loc. A single component is broadcast to all.
func (op *MLEBABecLap) SetBCoeffs(amrlev int, beta [Dim]*fab.MultiFab, loc types.Location) {
	var (
		ml = op.levels[amrlev][0]
	)
	for d := 0; d < Dim; d++ {
		nc := beta[d].NComp
		if nc != 1 && nc != op.NComp {
			panic(fmt.Errorf("B coefficients in direction %d have %d components, need 1 or %d",
				d, nc, op.NComp))
		}
		for n := 0; n < op.NComp; n++ {
			scomp := n
			if nc == 1 {
				scomp = 0
			}
			fab.Copy(ml.B[d], beta[d], scomp, n, 1, 0)
		}
	}
	op.betaLoc = loc
	op.needsUpdate = true
}

func (op *MLEBABecLap) SetBCoeffsScalar(amrlev int, b float64) {
	for d := 0; d < Dim; d++ {
		op.levels[amrlev][0].B[d].SetVal(b)
	}
	op.betaLoc = types.FaceCenter
	op.needsUpdate = true
}

// SetBCoeffsVector sets a constant B per component
func (op *MLEBABecLap) SetBCoeffsVector(amrlev int, b []float64) {
	if len(b) != op.NComp {
		panic(fmt.Errorf("B vector has %d entries, need %d", len(b), op.NComp))
	}
	for d := 0; d < Dim; d++ {
		for n, v := range b {
			op.levels[amrlev][0].B[d].SetValComp(v, n, 1, 1)
		}
	}
	op.betaLoc = types.FaceCenter
	op.needsUpdate = true
}

// SetEBDirichlet imposes phi on the embedded boundary of level amrlev with flux coefficient beta
func (op *MLEBABecLap) SetEBDirichlet(amrlev int, phi, beta *fab.MultiFab) {
	op.setEBDirichlet(amrlev, phi, fieldBeta(beta, op.NComp))
}

func (op *MLEBABecLap) SetEBDirichletScalar(amrlev int, phi *fab.MultiFab, beta float64) {
	op.setEBDirichlet(amrlev, phi, func(int, int, int, int) float64 { return beta })
}

func (op *MLEBABecLap) SetEBDirichletVector(amrlev int, phi *fab.MultiFab, beta []float64) {
	op.setEBDirichlet(amrlev, phi, vectorBeta(beta, op.NComp))
}

// SetEBHomogDirichlet imposes a zero value on the embedded boundary
func (op *MLEBABecLap) SetEBHomogDirichlet(amrlev int, beta *fab.MultiFab) {
	op.setEBDirichlet(amrlev, nil, fieldBeta(beta, op.NComp))
}

func (op *MLEBABecLap) SetEBHomogDirichletScalar(amrlev int, beta float64) {
	op.setEBDirichlet(amrlev, nil, func(int, int, int, int) float64 { return beta })
}

func (op *MLEBABecLap) SetEBHomogDirichletVector(amrlev int, beta []float64) {
	op.setEBDirichlet(amrlev, nil, vectorBeta(beta, op.NComp))
}

type betaFunc func(b, i, j, n int) float64

func fieldBeta(beta *fab.MultiFab, ncomp int) betaFunc {
	if beta.NComp != 1 && beta.NComp != ncomp {
		panic(fmt.Errorf("EB beta has %d components, need 1 or %d", beta.NComp, ncomp))
	}
	return func(b, i, j, n int) float64 {
		if beta.NComp == 1 {
			n = 0
		}
		return beta.Array(b).At(i, j, n)
	}
}

func vectorBeta(beta []float64, ncomp int) betaFunc {
	if len(beta) != ncomp {
		panic(fmt.Errorf("EB beta vector has %d entries, need %d", len(beta), ncomp))
	}
	return func(b, i, j, n int) float64 { return beta[n] }
}

func (op *MLEBABecLap) allocEBDirichlet() {
	if op.ebd != nil {
		return
	}
	ngrow := 0
	if op.phiOnCentroid {
		ngrow = 1
	}
	op.ebd = &ebDirichlet{
		phi:  make([]*fab.MultiFab, len(op.levels)),
		beta: make([][]*fab.MultiFab, len(op.levels)),
	}
	for amrlev, ladder := range op.levels {
		op.ebd.phi[amrlev] = fab.NewMultiFab(ladder[0].Grids, op.NComp, ngrow)
		op.ebd.beta[amrlev] = make([]*fab.MultiFab, len(ladder))
		for mglev, ml := range ladder {
			op.ebd.beta[amrlev][mglev] = fab.NewMultiFab(ml.Grids, op.NComp, 0)
		}
	}
}

func (op *MLEBABecLap) setEBDirichlet(amrlev int, phi *fab.MultiFab, beta betaFunc) {
	if phi != nil && phi.NComp != op.NComp {
		panic(fmt.Errorf("EB Dirichlet value has %d components, need %d", phi.NComp, op.NComp))
	}
	op.allocEBDirichlet()
	var (
		ml   = op.levels[amrlev][0]
		dst  = op.ebd.phi[amrlev]
		dstB = op.ebd.beta[amrlev][0]
	)
	op.checkRadial(ml)
	op.sched.Run(len(ml.Grids), func(b int) {
		var (
			vbx  = ml.Grids[b]
			v    = dst.Array(b)
			bb   = dstB.Array(b)
			flag = ml.Fact.FlagArray(b)
		)
		if t := ml.Fact.FabType(b); t == eb.FabMultiValued {
			panic(fmt.Errorf("multivalued cells are not supported in box %v", vbx))
		}
		for n := 0; n < op.NComp; n++ {
			vbx.ForEach(func(i, j int) {
				if !flag.At(i, j, 0).IsSingleValued() {
					v.Set(i, j, n, 0)
					bb.Set(i, j, n, 0)
					return
				}
				val := 0.
				if phi != nil {
					val = phi.Array(b).At(i, j, n)
				}
				v.Set(i, j, n, val)
				bb.Set(i, j, n, beta(b, i, j, n))
			})
		}
	})
	if op.phiOnCentroid {
		dst.FillBoundary(ml.Geom.Periodicity())
	}
	op.needsUpdate = true
}

// AverageDownCoeffs fills every coarser level's coefficients from the finest data, first down
// each AMR level's ladder and then across to the next coarser AMR level
func (op *MLEBABecLap) AverageDownCoeffs() {
	for amrlev := len(op.levels) - 1; amrlev > 0; amrlev-- {
		op.averageDownCoeffsSameAmrLevel(amrlev)
		op.averageDownCoeffsToCoarseAmrLevel(amrlev)
	}
	op.averageDownCoeffsSameAmrLevel(0)
	for _, ladder := range op.levels {
		for _, ml := range ladder {
			for d := 0; d < Dim; d++ {
				ml.B[d].FillBoundary(ml.Geom.Periodicity())
			}
		}
	}
}

func (op *MLEBABecLap) averageDownCoeffsSameAmrLevel(amrlev int) {
	var (
		ladder = op.levels[amrlev]
		ratio  = geometry.Uniform(op.Info.MGCoarsenRatio)
	)
	for mglev := 1; mglev < len(ladder); mglev++ {
		fine, crse := ladder[mglev-1], ladder[mglev]
		if op.alpha == 0 {
			crse.A.SetVal(0)
		} else {
			eb.AverageDown(op.sched, fine.A, crse.A, fine.Fact, 0, 1, ratio)
		}
		eb.AverageDownFaces(op.sched, fine.B, crse.B, fine.Fact, 0, op.NComp, ratio)
		if op.ebd != nil {
			eb.AverageDownBoundaries(op.sched, op.ebd.beta[amrlev][mglev-1], op.ebd.beta[amrlev][mglev],
				fine.Fact, 0, op.NComp, ratio)
		}
	}
	op.Log.WithFields(logrus.Fields{"amrlev": amrlev, "mglevels": len(ladder)}).
		Debug("averaged coefficients down the multigrid ladder")
}

func (op *MLEBABecLap) averageDownCoeffsToCoarseAmrLevel(flev int) {
	var (
		fine   = op.levels[flev][len(op.levels[flev])-1]
		crse   = op.levels[flev-1][0]
		remain = op.amrRatio[flev-1]
	)
	for i := 1; i < len(op.levels[flev]); i++ {
		remain /= op.Info.MGCoarsenRatio
	}
	ratio := geometry.Uniform(remain)
	if op.alpha != 0 {
		eb.AverageDown(op.sched, fine.A, crse.A, fine.Fact, 0, 1, ratio)
	}
	eb.AverageDownFaces(op.sched, fine.B, crse.B, fine.Fact, 0, op.NComp, ratio)
	if op.ebd != nil {
		eb.AverageDownBoundaries(op.sched, op.ebd.beta[flev][len(op.levels[flev])-1], op.ebd.beta[flev-1][0],
			fine.Fact, 0, op.NComp, ratio)
	}
	op.Log.WithFields(logrus.Fields{"amrlev": flev, "ratio": remain}).
		Debug("averaged coefficients to the coarser AMR level")
}

// PrepareForSolve brings the coefficient hierarchy up to date and checks for singularity
func (op *MLEBABecLap) PrepareForSolve() {
	op.AverageDownCoeffs()
	if op.ebd != nil {
		for amrlev := len(op.levels) - 1; amrlev > 0; amrlev-- {
			eb.AverageDownBoundaries(op.sched, op.ebd.phi[amrlev], op.ebd.phi[amrlev-1], op.levels[amrlev][0].Fact,
				0, op.NComp, geometry.Uniform(op.amrRatio[amrlev-1]))
		}
	}
	op.checkSingular()
	op.needsUpdate = false
}

// Update redoes the preparation only when a setter has run since the last one
func (op *MLEBABecLap) Update() {
	if !op.needsUpdate {
		return
	}
	op.PrepareForSolve()
}

// checkSingular flags each AMR level that covers its domain when the operator has no Dirichlet
// condition anywhere and nothing anchors the constant mode
func (op *MLEBABecLap) checkSingular() {
	for i := range op.isSingular {
		op.isSingular[i] = false
	}
	if op.ebd != nil {
		return
	}
	for n := range op.lobc {
		for d := 0; d < Dim; d++ {
			if op.lobc[n][d] == types.LO_Dirichlet || op.hibc[n][d] == types.LO_Dirichlet {
				return
			}
		}
	}
	for amrlev, ladder := range op.levels {
		ml := ladder[0]
		if ml.Grids.NumPts() != ml.Geom.Domain.NumPts() {
			continue
		}
		if op.alpha == 0 {
			op.isSingular[amrlev] = true
		} else {
			bottom := ladder[len(ladder)-1].A
			op.isSingular[amrlev] = bottom.Sum(0) <= bottom.Norm0(0)*1.e-12
		}
		if op.isSingular[amrlev] {
			op.Log.WithFields(logrus.Fields{"amrlev": amrlev, "alpha": op.alpha}).
				Debug("operator is singular")
		}
	}
}
