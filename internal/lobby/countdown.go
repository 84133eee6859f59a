package lobby

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// RunCountdown calls tick with from, from-1, ... 0, one second apart, then
// calls done. It returns early without calling done when ctx ends.
func RunCountdown(ctx context.Context, clock clockwork.Clock, from int, tick func(remaining int), done func()) {
	tick(from)
	if from <= 0 {
		done()
		return
	}
	t := clock.NewTicker(time.Second)
	defer t.Stop()
	for remaining := from - 1; remaining >= 0; remaining-- {
		select {
		case <-ctx.Done():
			return
		case <-t.Chan():
		}
		tick(remaining)
	}
	done()
}
