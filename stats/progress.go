package stats

import (
	"sync/atomic"
	"time"

	"github.com/omniscale/tubemap/log"
)

type counter struct {
	total int64
	last  int64
}

func (c *counter) add(n int) { atomic.AddInt64(&c.total, int64(n)) }

// rate returns the elements per second since the last call.
func (c *counter) rate(d time.Duration) (int64, int64) {
	total := atomic.LoadInt64(&c.total)
	rps := int64(float64(total-c.last) / d.Seconds())
	c.last = total
	return rps, total
}

// Progress periodically logs the number of parsed elements.
type Progress struct {
	nodes     counter
	ways      counter
	relations counter
	done      chan struct{}
	stopped   chan struct{}
}

func NewProgress(interval time.Duration) *Progress {
	p := &Progress{done: make(chan struct{}), stopped: make(chan struct{})}
	go p.run(interval)
	return p
}

func (p *Progress) AddNodes(n int)     { p.nodes.add(n) }
func (p *Progress) AddWays(n int)      { p.ways.add(n) }
func (p *Progress) AddRelations(n int) { p.relations.add(n) }

func (p *Progress) run(interval time.Duration) {
	defer close(p.stopped)
	tick := time.NewTicker(interval)
	defer tick.Stop()
	last := time.Now()
	for {
		select {
		case <-p.done:
			p.print(time.Since(last))
			return
		case now := <-tick.C:
			p.print(now.Sub(last))
			last = now
		}
	}
}

func (p *Progress) print(d time.Duration) {
	if d <= 0 {
		d = time.Millisecond
	}
	nps, n := p.nodes.rate(d)
	wps, w := p.ways.rate(d)
	rps, r := p.relations.rate(d)
	log.Printf("[progress] Nodes: %7d/s (%10d) Ways: %7d/s (%9d) Relations: %6d/s (%8d)",
		nps, n, wps, w, rps, r)
}

// Stop stops the reporting and logs the final counts.
func (p *Progress) Stop() {
	close(p.done)
	<-p.stopped
	ParsedElements.WithLabelValues("node").Add(float64(atomic.LoadInt64(&p.nodes.total)))
	ParsedElements.WithLabelValues("way").Add(float64(atomic.LoadInt64(&p.ways.total)))
	ParsedElements.WithLabelValues("relation").Add(float64(atomic.LoadInt64(&p.relations.total)))
}
