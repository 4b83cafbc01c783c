package fab

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gomlmg/geometry"
	"github.com/notargets/gomlmg/types"
)

func TestBaseFab(t *testing.T) {
	bx := geometry.NewBox(geometry.IntVect{-1, -1}, geometry.IntVect{2, 1})
	f := NewFArrayBox(bx, 2)
	assert.Equal(t, 24, len(f.Data))
	a := f.Array()
	a.Set(-1, -1, 0, 1)
	a.Set(2, 1, 1, 2)
	a.Add(2, 1, 1, 3)
	assert.Equal(t, 1., f.Data[0])
	assert.Equal(t, 5., f.Data[23])
	assert.Equal(t, 5., a.At(2, 1, 1))
	assert.True(t, a.Contains(-1, 1))
	assert.False(t, a.Contains(3, 1))
	assert.Equal(t, []float64{0, 0, 0, 5}, a.Row(-1, 2, 1, 1))
	{
		f.SetValBox(7, geometry.NewBox(geometry.IntVect{0, 0}, geometry.IntVect{5, 5}), 1, 1)
		assert.Equal(t, 7., a.At(0, 0, 1))
		assert.Equal(t, 7., a.At(2, 1, 1))
		assert.Equal(t, 0., a.At(-1, 0, 1))
		assert.Equal(t, 0., a.At(0, 0, 0))
	}
	assert.False(t, Array4[float64]{}.Ok())
	assert.Panics(t, func() { NewIArrayBox(bx, 0) })
}

func TestFillBoundary(t *testing.T) {
	var (
		domain = geometry.NewBox(geometry.IntVect{0, 0}, geometry.IntVect{7, 3})
		ba     = geometry.NewBoxArray(domain, 4)
		mf     = NewMultiFab(ba, 1, 1)
	)
	require.Equal(t, 2, len(ba))
	for b := range ba {
		a := mf.Array(b)
		mf.ValidBox(b).ForEach(func(i, j int) { a.Set(i, j, 0, float64(10*i+j)) })
	}
	{ // Same-level neighbours only
		mf.FillBoundary(geometry.NonPeriodic())
		a0, a1 := mf.Array(0), mf.Array(1)
		assert.Equal(t, 40., a0.At(4, 0, 0))
		assert.Equal(t, 33., a1.At(3, 3, 0))
		assert.Equal(t, 0., a0.At(-1, 0, 0))
		assert.Equal(t, 0., a0.At(0, 4, 0))
	}
	{ // Periodic in x wraps the far box into the low ghosts
		p := geometry.Periodicity{Period: geometry.IntVect{8, 0}}
		mf.FillBoundary(p)
		a0, a1 := mf.Array(0), mf.Array(1)
		assert.Equal(t, 72., a0.At(-1, 2, 0))
		assert.Equal(t, 1., a1.At(8, 1, 0))
		assert.Equal(t, 0., a0.At(-1, -1, 0))
	}
	{ // Doubly periodic fills corners
		p := geometry.Periodicity{Period: geometry.IntVect{8, 4}}
		mf.FillBoundary(p)
		assert.Equal(t, 73., mf.Array(0).At(-1, -1, 0))
		assert.Equal(t, 0., mf.Array(1).At(8, 4, 0))
	}
}

func TestReductions(t *testing.T) {
	var (
		domain = geometry.NewBox(geometry.IntVect{0, 0}, geometry.IntVect{3, 3})
		ba     = geometry.NewBoxArray(domain, 2)
		x      = NewMultiFab(ba, 1, 1)
		y      = NewMultiFab(ba, 1, 1)
	)
	x.SetVal(-2)
	y.SetVal(1)
	assert.Equal(t, -32., x.Sum(0))
	assert.Equal(t, 2., x.Norm0(0))
	y.Saxpy(3, x, 0, 0, 1)
	assert.Equal(t, -80., y.Sum(0))
	y.Scale(-0.5, 0, 1)
	assert.Equal(t, 2.5, y.Norm0(0))
	// Ghost cells are untouched
	assert.Equal(t, 1., y.Array(0).At(-1, -1, 0))

	z := x.Like()
	Copy(z, x, 0, 0, 1, 1)
	assert.Equal(t, -2., z.Array(3).At(4, 4, 0))

	v, ok := x.ValueAt(geometry.IntVect{3, 3}, 0)
	assert.True(t, ok)
	assert.Equal(t, -2., v)
	_, ok = x.ValueAt(geometry.IntVect{4, 3}, 0)
	assert.False(t, ok)
}

func TestParallelCopy(t *testing.T) {
	var (
		domain = geometry.NewBox(geometry.IntVect{0, 0}, geometry.IntVect{7, 7})
		src    = NewMultiFab(geometry.NewBoxArray(domain, 4), 1, 0)
		dst    = NewMultiFab(geometry.BoxArray{domain}, 1, 0)
	)
	for b := range src.BA {
		src.Fabs[b].SetVal(float64(b + 1))
	}
	dst.ParallelCopy(&src.FabArray, 0, 0, 1)
	assert.Equal(t, 16.*(1+2+3+4), dst.Sum(0))
	assert.Equal(t, 4., dst.Array(0).At(7, 7, 0))
}

func TestScheduler(t *testing.T) {
	for _, policy := range []types.Schedule{types.Dynamic, types.Static} {
		var (
			s     = NewScheduler(policy, 3)
			count int64
			seen  = make([]int64, 10)
		)
		s.Run(10, func(i int) {
			atomic.AddInt64(&count, 1)
			atomic.AddInt64(&seen[i], 1)
		})
		assert.Equal(t, int64(10), count)
		for _, c := range seen {
			assert.Equal(t, int64(1), c)
		}
		task := s.Launch(4, func(i int) {
			if i == 2 {
				panic("bad box")
			}
		})
		err := task.Wait()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "box 2: bad box")
		assert.Panics(t, func() {
			s.Run(1, func(int) { panic("again") })
		})
		assert.NoError(t, s.Launch(0, func(int) {}).Wait())
	}
}
