package kernels

import (
	"github.com/notargets/gomlmg/eb"
	"github.com/notargets/gomlmg/geometry"
)

// InterpAdd adds the value of the coarse cell under each fine cell of bx
func InterpAdd(bx geometry.Box, ncomp int, fine, crse Array, ratio geometry.IntVect) {
	for n := 0; n < ncomp; n++ {
		bx.ForEach(func(i, j int) {
			fine.Add(i, j, n, crse.At(geometry.CoarsenIndex(i, ratio[0]), geometry.CoarsenIndex(j, ratio[1]), n))
		})
	}
}

// InterpAddEB is InterpAdd leaving covered fine cells untouched
func InterpAddEB(bx geometry.Box, ncomp int, fine, crse Array, flag eb.FlagArray, ratio geometry.IntVect) {
	for n := 0; n < ncomp; n++ {
		bx.ForEach(func(i, j int) {
			if flag.At(i, j, 0).IsCovered() {
				return
			}
			fine.Add(i, j, n, crse.At(geometry.CoarsenIndex(i, ratio[0]), geometry.CoarsenIndex(j, ratio[1]), n))
		})
	}
}

// SetCovered writes v into every covered cell of bx
func SetCovered(bx geometry.Box, ncomp int, x Array, flag eb.FlagArray, v float64) {
	for n := 0; n < ncomp; n++ {
		bx.ForEach(func(i, j int) {
			if flag.At(i, j, 0).IsCovered() {
				x.Set(i, j, n, v)
			}
		})
	}
}
