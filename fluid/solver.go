package fluid

import (
	"runtime"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// parallelThreshold is the minimum cell count to plan splats in parallel.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 4096

// workChunk is a range of source cells for a worker to plan.
type workChunk struct {
	g          *Grid
	start, end int
	impulse    mgl32.Vec3
}

// Solver advances grids using a persistent worker pool.
//
// Planning (gravity, target position, corner weights) reads only the previous
// generation and runs in parallel. The plans are then applied on the calling
// goroutine in row-major order, so results are bit-identical to Grid.Update.
type Solver struct {
	plans      []splat
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// NewSolver creates a solver. workers <= 0 uses GOMAXPROCS.
// Workers are started lazily on the first parallel step.
func NewSolver(workers int) *Solver {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Solver{numWorkers: workers}
}

// Workers returns the configured worker count.
func (s *Solver) Workers() int { return s.numWorkers }

// Step advances g by dt seconds. It is equivalent to g.Update(dt).
func (s *Solver) Step(g *Grid, dt float32) {
	n := g.Len()
	if s.numWorkers == 1 || n < parallelThreshold {
		g.Update(dt)
		return
	}

	g.swap()
	impulse := Gravity.Mul(dt)

	if cap(s.plans) < n {
		s.plans = make([]splat, n)
	}
	s.plans = s.plans[:n]

	// Phase A: plan every source cell (parallel, read-only on previous)
	s.dispatch(g, n, impulse)

	// Phase B: apply plans in source order (single-threaded, deterministic)
	for i := range s.plans {
		g.apply(&s.plans[i])
	}
}

// dispatch splits [0, n) into chunks and waits for the workers to plan them.
func (s *Solver) dispatch(g *Grid, n int, impulse mgl32.Vec3) {
	if !s.running {
		s.startWorkers()
	}

	chunkSize := (n + s.numWorkers - 1) / s.numWorkers

	chunksDispatched := 0
	for w := 0; w < s.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		s.workChan <- workChunk{g: g, start: start, end: end, impulse: impulse}
		chunksDispatched++
	}

	for i := 0; i < chunksDispatched; i++ {
		<-s.doneChan
	}
}

// startWorkers launches persistent worker goroutines.
func (s *Solver) startWorkers() {
	s.workChan = make(chan workChunk, s.numWorkers)
	s.doneChan = make(chan struct{}, s.numWorkers)
	s.stopChan = make(chan struct{})
	s.running = true

	for i := 0; i < s.numWorkers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

// worker plans chunks until stopped.
func (s *Solver) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopChan:
			return
		case chunk, ok := <-s.workChan:
			if !ok {
				return
			}
			for i := chunk.start; i < chunk.end; i++ {
				chunk.g.plan(i, chunk.impulse, &s.plans[i])
			}
			s.doneChan <- struct{}{}
		}
	}
}

// Close stops the worker pool. The solver may be reused afterwards; workers
// restart on the next parallel step.
func (s *Solver) Close() {
	if !s.running {
		return
	}
	close(s.stopChan)
	s.wg.Wait()
	close(s.workChan)
	close(s.doneChan)
	s.running = false
}
