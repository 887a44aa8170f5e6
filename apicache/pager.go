package apicache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultDebounce is the window visibility signals are coalesced over
// before a next-page fetch is issued.
const DefaultDebounce = 100 * time.Millisecond

// AutoPager drives an InfiniteQuery from visibility signals. The
// browser original observes a sentinel element near the end of the
// list; here the consumer calls Notify whenever its sentinel becomes
// visible. Signals inside the debounce window coalesce into one fetch,
// and a fetch is only issued when a next page exists and none is in
// flight. Stop tears the worker down; it is safe to call more than
// once.
type AutoPager[T any] struct {
	query    *InfiniteQuery[T]
	debounce time.Duration
	logger   zerolog.Logger

	signals chan struct{}
	cancel  context.CancelFunc
	stop    sync.Once
	done    chan struct{}
}

// NewAutoPager starts the pager worker. ctx bounds every fetch the
// pager issues; cancelling it stops the worker as Stop does.
// debounce <= 0 selects DefaultDebounce.
func NewAutoPager[T any](ctx context.Context, query *InfiniteQuery[T], debounce time.Duration, logger zerolog.Logger) *AutoPager[T] {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &AutoPager[T]{
		query:    query,
		debounce: debounce,
		logger:   logger.With().Str("component", "apicache.pager").Logger(),
		signals:  make(chan struct{}, 1),
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go p.run(ctx)
	return p
}

// Notify signals that the sentinel became visible. It never blocks;
// signals arriving while one is already pending collapse into it.
func (p *AutoPager[T]) Notify() {
	select {
	case p.signals <- struct{}{}:
	default:
	}
}

// Stop shuts the worker down and waits for it to exit.
func (p *AutoPager[T]) Stop() {
	p.stop.Do(func() {
		p.cancel()
		<-p.done
	})
}

func (p *AutoPager[T]) run(ctx context.Context) {
	defer close(p.done)

	timer := time.NewTimer(p.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	armed := false

	for {
		select {
		case <-ctx.Done():
			if armed && !timer.Stop() {
				<-timer.C
			}
			return

		case <-p.signals:
			// Re-arm the debounce window; rapid signals keep pushing
			// the fetch out until they quiet down.
			if armed && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(p.debounce)
			armed = true

		case <-timer.C:
			armed = false
			if !p.query.HasNextPage() || p.query.InFlight() {
				continue
			}
			if err := p.query.FetchNext(ctx); err != nil {
				p.logger.Warn().Err(err).Msg("next page fetch failed")
			}
		}
	}
}
