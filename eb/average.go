package eb

import (
	"github.com/notargets/gomlmg/fab"
	"github.com/notargets/gomlmg/geometry"
)

// AverageDown sets crse to the volume-fraction weighted average of fine over each coarse cell.
// A nil factory weights every fine cell equally.
func AverageDown(sched fab.Scheduler, fine, crse *fab.MultiFab, fineFact *Factory, scomp, ncomp int,
	ratio geometry.IntVect) {
	target := coarsenedTarget(crse, fine.BA, ratio, geometry.CellType(), ncomp)
	sched.Run(target.Size(), func(b int) {
		var (
			f  = fine.Array(b)
			c  = target.Array(b)
			vf fab.Array4[float64]
		)
		if fineFact != nil {
			vf = fineFact.VolFrac.Array(b)
		}
		for n := 0; n < ncomp; n++ {
			target.ValidBox(b).ForEach(func(ic, jc int) {
				var sum, vtot, plain float64
				for jj := 0; jj < ratio[1]; jj++ {
					for ii := 0; ii < ratio[0]; ii++ {
						i, j := ic*ratio[0]+ii, jc*ratio[1]+jj
						w := 1.
						if vf.Ok() {
							w = vf.At(i, j, 0)
						}
						v := f.At(i, j, scomp+n)
						sum += w * v
						vtot += w
						plain += v
					}
				}
				if vtot > 0 {
					c.Set(ic, jc, targetComp(target, crse, scomp)+n, sum/vtot)
				} else {
					c.Set(ic, jc, targetComp(target, crse, scomp)+n, plain/float64(ratio[0]*ratio[1]))
				}
			})
		}
	})
	finishTarget(target, crse, scomp, ncomp)
}

// AverageDownFaces averages each coarse face over the fine faces it covers, weighted by area fraction
func AverageDownFaces(sched fab.Scheduler, fine, crse [geometry.SpaceDim]*fab.MultiFab, fineFact *Factory,
	scomp, ncomp int, ratio geometry.IntVect) {
	for d := 0; d < geometry.SpaceDim; d++ {
		var (
			dir    = d
			t      = 1 - d
			target = coarsenedTarget(crse[d], fine[d].BA, ratio, geometry.FaceType(d), ncomp)
		)
		sched.Run(target.Size(), func(b int) {
			var (
				f  = fine[dir].Array(b)
				c  = target.Array(b)
				ap fab.Array4[float64]
			)
			if fineFact != nil {
				ap = fineFact.AreaFrac[dir].Array(b)
			}
			for n := 0; n < ncomp; n++ {
				target.ValidBox(b).ForEach(func(ic, jc int) {
					var (
						sum, atot, plain float64
						cv               = geometry.IntVect{ic, jc}
						fv               = cv.Mul(ratio)
					)
					for m := 0; m < ratio[t]; m++ {
						iv := fv.Shift(t, m)
						w := 1.
						if ap.Ok() {
							w = ap.At(iv[0], iv[1], 0)
						}
						v := f.At(iv[0], iv[1], scomp+n)
						sum += w * v
						atot += w
						plain += v
					}
					if atot > 0 {
						c.Set(ic, jc, targetComp(target, crse[dir], scomp)+n, sum/atot)
					} else {
						c.Set(ic, jc, targetComp(target, crse[dir], scomp)+n, plain/float64(ratio[t]))
					}
				})
			}
		})
		finishTarget(target, crse[d], scomp, ncomp)
	}
}

// AverageDownBoundaries averages a field living on cut faces, weighted by cut face area
func AverageDownBoundaries(sched fab.Scheduler, fine, crse *fab.MultiFab, fineFact *Factory, scomp, ncomp int,
	ratio geometry.IntVect) {
	if fineFact == nil {
		crse.SetValComp(0, scomp, ncomp, 0)
		return
	}
	target := coarsenedTarget(crse, fine.BA, ratio, geometry.CellType(), ncomp)
	sched.Run(target.Size(), func(b int) {
		var (
			f  = fine.Array(b)
			c  = target.Array(b)
			ba = fineFact.BndryArea.Array(b)
		)
		for n := 0; n < ncomp; n++ {
			target.ValidBox(b).ForEach(func(ic, jc int) {
				var sum, atot float64
				for jj := 0; jj < ratio[1]; jj++ {
					for ii := 0; ii < ratio[0]; ii++ {
						i, j := ic*ratio[0]+ii, jc*ratio[1]+jj
						w := ba.At(i, j, 0)
						sum += w * f.At(i, j, scomp+n)
						atot += w
					}
				}
				v := 0.
				if atot > 0 {
					v = sum / atot
				}
				c.Set(ic, jc, targetComp(target, crse, scomp)+n, v)
			})
		}
	})
	finishTarget(target, crse, scomp, ncomp)
}

// coarsenedTarget returns crse itself when its boxes are the coarsened fine boxes, otherwise a
// temporary on the coarsened fine layout that finishTarget copies into crse
func coarsenedTarget(crse *fab.MultiFab, fineBA geometry.BoxArray, ratio geometry.IntVect,
	ixType geometry.IndexType, ncomp int) *fab.MultiFab {
	cba := fineBA.Coarsen(ratio)
	if sameBoxes(cba, crse.BA) {
		return crse
	}
	return fab.NewMultiFabType(cba, ixType, ncomp, 0)
}

func targetComp(target, crse *fab.MultiFab, scomp int) int {
	if target == crse {
		return scomp
	}
	return 0
}

func finishTarget(target, crse *fab.MultiFab, scomp, ncomp int) {
	if target != crse {
		crse.ParallelCopy(&target.FabArray, 0, scomp, ncomp)
	}
}

func sameBoxes(a, b geometry.BoxArray) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
