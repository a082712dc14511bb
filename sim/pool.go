package sim

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/murmur/kernel"
)

// chunkFunc processes agents [start, end) using a worker's scratch.
type chunkFunc func(start, end int, scratch *kernel.Scratch)

// workChunk represents a range of agents for a worker to process.
type workChunk struct {
	start, end int
	fn         chunkFunc
}

// pool is a set of persistent workers. Each run call is one full pass:
// it returns only after every chunk has finished, which is the barrier
// between the velocity and position passes.
type pool struct {
	numWorkers int
	threshold  int
	scratches  []*kernel.Scratch

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// newPool sizes a pool for count agents. workers <= 0 means GOMAXPROCS.
// Passes over fewer than threshold agents run inline on the caller.
func newPool(workers, threshold, count int) *pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	scratches := make([]*kernel.Scratch, workers)
	for i := range scratches {
		scratches[i] = kernel.NewScratch(count)
	}
	return &pool{
		numWorkers: workers,
		threshold:  threshold,
		scratches:  scratches,
	}
}

// start launches the worker goroutines.
func (p *pool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// stop signals all workers to exit and waits for them.
func (p *pool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *pool) worker(id int) {
	defer p.wg.Done()
	scratch := p.scratches[id]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.fn(chunk.start, chunk.end, scratch)
			p.doneChan <- struct{}{}
		}
	}
}

// run applies fn to [0, n) and returns once every agent is done.
func (p *pool) run(n int, fn chunkFunc) {
	if n == 0 {
		return
	}
	if n < p.threshold || p.numWorkers == 1 {
		fn(0, n, p.scratches[0])
		return
	}

	if !p.running {
		p.start()
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		p.workChan <- workChunk{start: start, end: end, fn: fn}
		dispatched++
	}

	// Barrier
	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}
