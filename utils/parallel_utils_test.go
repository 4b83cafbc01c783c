package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	getHisto := func(K, Np int) (histo map[int]int) {
		pm := NewPartitionMap(Np, K)
		histo = make(map[int]int)
		for np := 0; np < pm.ParallelDegree; np++ {
			kMin, kMax := pm.GetBucketRange(np)
			histo[kMax-kMin]++
		}
		return
	}
	assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
	assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
	assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
	for n := 1; n < 500; n++ {
		for _, np := range []int{1, 3, 7, 32} {
			pm := NewPartitionMap(np, n)
			// Buckets are contiguous, cover [0, n) and differ in size by at most one
			next, small, large := 0, n, 0
			for bn := 0; bn < pm.ParallelDegree; bn++ {
				kMin, kMax := pm.GetBucketRange(bn)
				assert.Equal(t, next, kMin)
				small, large = min(small, kMax-kMin), max(large, kMax-kMin)
				next = kMax
			}
			assert.Equal(t, n, next)
			assert.LessOrEqual(t, large-small, 1)
		}
	}
	assert.Equal(t, 1, NewPartitionMap(0, 5).ParallelDegree)
}

func TestPolyInterpCoeff(t *testing.T) {
	// Ghost at -0.5, cell centers at 0.5 and 1.5, wall value at 0
	c := PolyInterpCoeff(-0.5, []float64{0, 0.5, 1.5})
	assert.InDeltaSlice(t, []float64{8. / 3, -2, 1. / 3}, c, 1.e-14)
	// Quadratics are reproduced exactly
	f := func(x float64) float64 { return 3*x*x - x + 2 }
	var sum float64
	for j, x := range []float64{0, 0.5, 1.5} {
		sum += c[j] * f(x)
	}
	assert.InDelta(t, f(-0.5), sum, 1.e-13)
}
