package session

import (
	"sync"
	"time"
)

const DefaultTickInterval = time.Second

// ticker calls onTick every interval until halted. At most one ticker runs
// per session.
type ticker struct {
	stop chan struct{}
}

func startTicker(wg *sync.WaitGroup, interval time.Duration, onTick func()) *ticker {
	t := &ticker{stop: make(chan struct{})}

	wg.Add(1)
	go func() {
		defer wg.Done()
		tk := time.NewTicker(interval)
		defer tk.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-tk.C:
				onTick()
			}
		}
	}()

	return t
}

// halt does not wait for the goroutine to exit.
func (t *ticker) halt() {
	close(t.stop)
}
