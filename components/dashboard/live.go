package dashboard

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// RandomWalk moves the last price by up to one dollar either way.
func RandomWalk(last float64) float64 {
	return last + (rand.Float64()-0.5)*2
}

// tickerLoop runs a callback on every tick until halted.
type tickerLoop struct {
	ticker clockwork.Ticker
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// startLoop must be called with d.mu held; the callback runs without it.
func (d *Driver) startLoop(interval time.Duration, tick func(context.Context)) *tickerLoop {
	loop := &tickerLoop{
		ticker: d.clock.NewTicker(interval),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go loop.run(tick)
	return loop
}

func (l *tickerLoop) run(tick func(context.Context)) {
	defer close(l.done)
	for {
		select {
		case <-l.stop:
			return
		case <-l.ticker.Chan():
			select {
			case <-l.stop:
				return
			default:
			}
			tick(context.Background())
		}
	}
}

// halt is safe on a nil or already halted loop.
func (l *tickerLoop) halt() {
	if l == nil {
		return
	}
	l.once.Do(func() {
		l.ticker.Stop()
		close(l.stop)
	})
}
