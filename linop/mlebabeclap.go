// Package linop assembles the cut-cell alpha*A - beta*div(B grad) operator over a hierarchy of
// AMR levels, each with its own ladder of multigrid levels
package linop

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/notargets/gomlmg/boundary"
	"github.com/notargets/gomlmg/eb"
	"github.com/notargets/gomlmg/fab"
	"github.com/notargets/gomlmg/geometry"
	"github.com/notargets/gomlmg/types"
)

const Dim = geometry.SpaceDim

type Info struct {
	MaxOrder           int            // Order of the Dirichlet ghost extrapolation, 1..4
	MGCoarsenRatio     int            // Refinement between neighbouring multigrid levels
	MaxCoarseningLevel int            // Upper bound on multigrid levels below each AMR level
	Schedule           types.Schedule // How boxes are spread over workers
	NumWorkers         int            // Zero means one per CPU
}

func DefaultInfo() Info {
	return Info{
		MaxOrder:           2,
		MGCoarsenRatio:     2,
		MaxCoarseningLevel: 30,
		Schedule:           types.Dynamic,
	}
}

// mgLevel is one multigrid level of one AMR level
type mgLevel struct {
	Geom   *geometry.Geometry
	Grids  geometry.BoxArray
	Fact   *eb.Factory
	A      *fab.MultiFab
	B      [Dim]*fab.MultiFab
	CCMask *fab.IMultiFab
	Masks  boundary.Masks
	Cond   *boundary.BndryCondLoc
	Coefs  boundary.InterpCoefs
}

// ebDirichlet is allocated by the first EB Dirichlet setter
type ebDirichlet struct {
	phi  []*fab.MultiFab   // Boundary value per AMR level, finest MG level only
	beta [][]*fab.MultiFab // Coefficient per AMR and MG level
}

type MLEBABecLap struct {
	Log   logrus.FieldLogger
	Info  Info
	NComp int

	levels   [][]*mgLevel // [amrlev][mglev]
	amrRatio []int        // Refinement from amrlev to amrlev+1
	bndry    []*boundary.MLMGBndry
	levelBC  []*fab.MultiFab
	sched    fab.Scheduler

	lobc, hibc    [][Dim]types.LinOpBCType
	crseBC        *fab.MultiFab
	crseRatio     int
	alpha, beta   float64
	betaLoc       types.Location
	phiOnCentroid bool
	ebd           *ebDirichlet
	needsUpdate   bool
	isSingular    []bool
}

// NewMLEBABecLap builds the operator over the AMR levels given by geoms and grids. Each level is
// coarsened into a multigrid ladder, and every level starts with A = 0, B = 1, alpha = 0, beta = 1.
func NewMLEBABecLap(geoms []*geometry.Geometry, grids []geometry.BoxArray, info Info,
	is eb.IndexSpace, ncomp int) (op *MLEBABecLap) {
	var (
		nlev = len(geoms)
	)
	if nlev == 0 || len(grids) != nlev {
		panic(fmt.Errorf("need matching geometries and grids, have %d and %d", nlev, len(grids)))
	}
	if ncomp < 1 {
		panic(fmt.Errorf("number of components must be positive, have %d", ncomp))
	}
	if info.MGCoarsenRatio == 0 {
		info.MGCoarsenRatio = 2
	}
	if info.MaxOrder == 0 {
		info.MaxOrder = 2
	}
	boundary.CheckMaxOrder(info.MaxOrder)
	if is == nil {
		is = eb.AllRegular{}
	}
	op = &MLEBABecLap{
		Log:        logrus.StandardLogger(),
		Info:       info,
		NComp:      ncomp,
		levels:     make([][]*mgLevel, nlev),
		amrRatio:   make([]int, nlev-1),
		bndry:      make([]*boundary.MLMGBndry, nlev),
		levelBC:    make([]*fab.MultiFab, nlev),
		sched:      fab.NewScheduler(info.Schedule, info.NumWorkers),
		crseRatio:  -1,
		beta:       1,
		betaLoc:    types.FaceCenter,
		isSingular: make([]bool, nlev),
	}
	for lev := 1; lev < nlev; lev++ {
		rr := geoms[lev].Domain.Length(0) / geoms[lev-1].Domain.Length(0)
		if rr < 2 || geoms[lev-1].Domain.Refine(geometry.Uniform(rr)) != geoms[lev].Domain {
			panic(fmt.Errorf("AMR level %d domain %v is not a refinement of %v",
				lev, geoms[lev].Domain, geoms[lev-1].Domain))
		}
		op.amrRatio[lev-1] = rr
	}
	for lev := 0; lev < nlev; lev++ {
		op.levels[lev] = op.buildLadder(lev, geoms[lev], grids[lev], is)
		op.bndry[lev] = boundary.NewMLMGBndry(geoms[lev], grids[lev], ncomp, op.sched)
		op.Log.WithFields(logrus.Fields{"amrlev": lev, "mglevels": len(op.levels[lev]),
			"boxes": len(grids[lev])}).Debug("built multigrid ladder")
	}
	return
}

// buildLadder coarsens AMR level lev while its boxes allow. Above level 0 the ladder stops once
// the remaining ratio to the next coarser AMR level is the multigrid ratio.
func (op *MLEBABecLap) buildLadder(lev int, geom *geometry.Geometry, grids geometry.BoxArray,
	is eb.IndexSpace) (ladder []*mgLevel) {
	var (
		rr     = op.Info.MGCoarsenRatio
		ratio  = geometry.Uniform(rr)
		remain = 0
	)
	if lev > 0 {
		remain = op.amrRatio[lev-1]
	}
	ladder = append(ladder, op.newMGLevel(geom, grids, is))
	for len(ladder)-1 < op.Info.MaxCoarseningLevel {
		if lev > 0 && remain <= rr {
			break
		}
		if !grids.CoarsenableBy(ratio) || !geom.Domain.CoarsenableBy(ratio) {
			break
		}
		cgrids := grids.Coarsen(ratio)
		if !minWidth(cgrids, 2) {
			break
		}
		geom, grids = geom.Coarsen(ratio), cgrids
		ladder = append(ladder, op.newMGLevel(geom, grids, is))
		if lev > 0 {
			remain /= rr
		}
	}
	return
}

func minWidth(ba geometry.BoxArray, w int) bool {
	for _, bx := range ba {
		for d := 0; d < Dim; d++ {
			if bx.Length(d) < w {
				return false
			}
		}
	}
	return true
}

func (op *MLEBABecLap) newMGLevel(geom *geometry.Geometry, grids geometry.BoxArray,
	is eb.IndexSpace) (ml *mgLevel) {
	ml = &mgLevel{
		Geom:   geom,
		Grids:  grids,
		Fact:   eb.NewFactory(is, geom, grids, 2),
		A:      fab.NewMultiFab(grids, 1, 0),
		CCMask: boundary.BuildCCMask(geom, grids, op.sched),
		Masks:  boundary.BuildMasks(geom, grids, op.sched),
		Cond:   boundary.NewBndryCondLoc(grids, op.NComp, op.sched),
	}
	for d := 0; d < Dim; d++ {
		ml.B[d] = fab.NewFaceMultiFab(grids, d, op.NComp, 1)
		ml.B[d].SetVal(1)
	}
	return
}

func (op *MLEBABecLap) NumAMRLevels() int { return len(op.levels) }

func (op *MLEBABecLap) NumMGLevels(amrlev int) int { return len(op.levels[amrlev]) }

func (op *MLEBABecLap) Geom(amrlev, mglev int) *geometry.Geometry { return op.levels[amrlev][mglev].Geom }

func (op *MLEBABecLap) Grids(amrlev, mglev int) geometry.BoxArray { return op.levels[amrlev][mglev].Grids }

func (op *MLEBABecLap) Factory(amrlev, mglev int) *eb.Factory { return op.levels[amrlev][mglev].Fact }

// ACoeffs and BCoeffs expose the coefficient fields of one level, read only
func (op *MLEBABecLap) ACoeffs(amrlev, mglev int) *fab.MultiFab { return op.levels[amrlev][mglev].A }

func (op *MLEBABecLap) BCoeffs(amrlev, mglev int) [Dim]*fab.MultiFab { return op.levels[amrlev][mglev].B }

// Make allocates a cell field shaped like the given level
func (op *MLEBABecLap) Make(amrlev, mglev, ngrow int) *fab.MultiFab {
	return fab.NewMultiFab(op.levels[amrlev][mglev].Grids, op.NComp, ngrow)
}

func (op *MLEBABecLap) SetMaxOrder(maxorder int) {
	boundary.CheckMaxOrder(maxorder)
	op.Info.MaxOrder = maxorder
	if op.lobc != nil {
		op.defineBC()
	}
}

// SetPhiOnCentroid declares that EB Dirichlet values are given at cell centroids
func (op *MLEBABecLap) SetPhiOnCentroid() { op.phiOnCentroid = true }

// SetDomainBC sets the boundary type of every domain face, one entry per component. Periodic
// directions of the geometry must be declared periodic and only those.
func (op *MLEBABecLap) SetDomainBC(lo, hi [][Dim]types.LinOpBCType) {
	if len(lo) != op.NComp || len(hi) != op.NComp {
		panic(fmt.Errorf("domain boundary given for %d/%d components, operator has %d",
			len(lo), len(hi), op.NComp))
	}
	geom := op.levels[0][0].Geom
	for n := range lo {
		for d := 0; d < Dim; d++ {
			plo, phi := lo[n][d] == types.LO_Periodic, hi[n][d] == types.LO_Periodic
			if plo != geom.IsPeriodic(d) || phi != geom.IsPeriodic(d) {
				panic(fmt.Errorf("component %d direction %d: periodic boundary types %v/%v do not match the geometry",
					n, d, lo[n][d], hi[n][d]))
			}
		}
	}
	op.lobc, op.hibc = lo, hi
	op.defineBC()
}

// SetCoarseFineBC supplies the data beyond the coarse-fine boundary of AMR level 0 when it does
// not cover the whole domain. It must precede SetLevelBC(0, ...).
func (op *MLEBABecLap) SetCoarseFineBC(crse *fab.MultiFab, ratio int) {
	op.crseBC, op.crseRatio = crse, ratio
	if op.lobc != nil {
		op.defineBC()
	}
}

// defineBC rebuilds the per box condition tables and Gauss-Seidel correction coefficients
func (op *MLEBABecLap) defineBC() {
	var interiorLoc [Dim]float64
	for amrlev, ladder := range op.levels {
		ratio := op.crseRatio
		if amrlev > 0 {
			ratio = op.amrRatio[amrlev-1]
		}
		// every MG level keeps the cell size of its AMR level for the boundary distance
		dx := ladder[0].Geom.CellSize()
		for _, ml := range ladder {
			ml.Cond.SetLOBndryConds(ml.Geom, dx, op.lobc, op.hibc, ratio, interiorLoc)
			ml.Coefs = boundary.BuildInterpCoefs(ml.Cond, ml.Masks, op.Info.MaxOrder, ml.Geom.InvCellSize())
		}
		op.bndry[amrlev].SetLOBndryConds(op.lobc, op.hibc, ratio, interiorLoc)
	}
}

// SetLevelBC records the boundary values of AMR level amrlev from the ghost cells of mf; nil means
// zero. Levels above 0 take their coarse-fine values from the data given to the level below.
func (op *MLEBABecLap) SetLevelBC(amrlev int, mf *fab.MultiFab) {
	if op.lobc == nil {
		panic(fmt.Errorf("SetDomainBC must be called before SetLevelBC"))
	}
	var (
		br = op.bndry[amrlev]
	)
	br.SetBndryValues(mf, 0, 0, op.NComp)
	switch {
	case amrlev == 0 && op.crseBC != nil:
		br.SetCoarseFineValues(op.crseBC, 0, 0, op.NComp, geometry.Uniform(op.crseRatio))
	case amrlev > 0:
		crse := op.levelBC[amrlev-1]
		if crse == nil {
			panic(fmt.Errorf("level %d boundary requires the data of level %d", amrlev, amrlev-1))
		}
		br.SetCoarseFineValues(crse, 0, 0, op.NComp, geometry.Uniform(op.amrRatio[amrlev-1]))
	}
	if mf == nil {
		mf = op.Make(amrlev, 0, 1)
	}
	op.levelBC[amrlev] = mf
}

func (op *MLEBABecLap) NeedsUpdate() bool { return op.needsUpdate }

func (op *MLEBABecLap) IsSingular(amrlev int) bool { return op.isSingular[amrlev] }

// IsBottomSingular reports the singularity of the coarsest AMR level
func (op *MLEBABecLap) IsBottomSingular() bool { return op.isSingular[0] }

func (op *MLEBABecLap) dxinv(amrlev, mglev int) [2]float64 {
	return op.levels[amrlev][mglev].Geom.InvCellSize()
}

func (op *MLEBABecLap) checkRadial(ml *mgLevel) {
	if ml.Geom.IsRZ() && !ml.Fact.IsAllRegular() {
		panic(fmt.Errorf("axisymmetric coordinates are not supported with an embedded boundary"))
	}
}
