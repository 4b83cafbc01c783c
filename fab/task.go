package fab

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/notargets/gomlmg/types"
	"github.com/notargets/gomlmg/utils"
)

// Scheduler spreads per-box work over a pool of goroutines
type Scheduler struct {
	Policy  types.Schedule
	Workers int
}

func NewScheduler(policy types.Schedule, workers int) Scheduler {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return Scheduler{Policy: policy, Workers: workers}
}

func DefaultScheduler() Scheduler { return NewScheduler(types.Dynamic, 0) }

// Task is the handle for a batch of submitted per-box work
type Task struct {
	g *errgroup.Group
}

// Wait blocks until every box of the batch is done and returns the first failure
func (t *Task) Wait() error { return t.g.Wait() }

// MustWait re-raises a failed box on the calling goroutine
func (t *Task) MustWait() {
	if err := t.Wait(); err != nil {
		panic(err)
	}
}

// Launch runs fn(i) for i in [0, n)
func (s Scheduler) Launch(n int, fn func(i int)) (t *Task) {
	var (
		workers = s.Workers
	)
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	t = &Task{g: new(errgroup.Group)}
	if n == 0 {
		return
	}
	switch s.Policy {
	case types.Static:
		pm := utils.NewPartitionMap(min(workers, n), n)
		for bn := 0; bn < pm.ParallelDegree; bn++ {
			kMin, kMax := pm.GetBucketRange(bn)
			t.g.Go(func() error {
				for i := kMin; i < kMax; i++ {
					if err := runOne(i, fn); err != nil {
						return err
					}
				}
				return nil
			})
		}
	default:
		t.g.SetLimit(workers)
		for i := 0; i < n; i++ {
			t.g.Go(func() error { return runOne(i, fn) })
		}
	}
	return
}

// Run launches and waits
func (s Scheduler) Run(n int, fn func(i int)) { s.Launch(n, fn).MustWait() }

func runOne(i int, fn func(i int)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("box %d: %v", i, r)
		}
	}()
	fn(i)
	return
}
