package resource

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/matthewbaird/taskform/internal/reactive"
	"github.com/matthewbaird/taskform/internal/types"
)

// Result is the outcome of one Load, handed to every ResultHandler.
type Result struct {
	Key     string
	Options []types.OptionNode
	Cached  bool
	Err     error
}

// ResultHandler receives Load results after the cache and the published
// options have been updated (or, on failure, left alone).
type ResultHandler func(Result)

// LogFailures is the default handler: a failed fetch is logged and otherwise
// dropped. The cache and the published options keep their previous state,
// so the picker shows stale or empty options and the user gets no feedback.
// Install another handler with WithResultHandler to surface failures.
func LogFailures(r Result) {
	if r.Err != nil {
		log.Printf("loader: fetch for %s failed, keeping previous options: %v", r.Key, r.Err)
	}
}

// Loader fetches option trees per program type and caches them for the
// lifetime of an editing session. Successful results are published to a Ref
// that field descriptors observe.
//
// Concurrent loads of the same key share one fetch. Loads of different keys
// are independent and may complete in any order; the published options
// follow whichever completes last unless WithCurrentKey is set.
type Loader struct {
	store    Store
	group    singleflight.Group
	options  *reactive.Ref[[]types.OptionNode]
	handlers []ResultHandler
	current  func() string
	wg       sync.WaitGroup

	mu    sync.Mutex
	cache map[string][]types.OptionNode
}

// Option configures a Loader.
type Option func(*Loader)

// WithResultHandler adds a handler for Load results. Handlers replace the
// default LogFailures handler.
func WithResultHandler(h ResultHandler) Option {
	return func(l *Loader) { l.handlers = append(l.handlers, h) }
}

// WithCurrentKey makes the Loader publish a result only while its key is
// still the one current reports. Results for other keys are cached but not
// published.
func WithCurrentKey(current func() string) Option {
	return func(l *Loader) { l.current = current }
}

// NewLoader creates a Loader with an empty cache and empty published options.
func NewLoader(store Store, opts ...Option) *Loader {
	l := &Loader{
		store:   store,
		options: reactive.NewRef([]types.OptionNode{}),
		cache:   make(map[string][]types.OptionNode),
	}
	for _, opt := range opts {
		opt(l)
	}
	if len(l.handlers) == 0 {
		l.handlers = []ResultHandler{LogFailures}
	}
	return l
}

// Options returns the published option sequence.
func (l *Loader) Options() *reactive.Ref[[]types.OptionNode] {
	return l.options
}

// Cached returns the cached sequence for key.
func (l *Loader) Cached(key string) ([]types.OptionNode, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	nodes, ok := l.cache[key]
	return nodes, ok
}

// Load returns the option tree for key, fetching it at most once per
// session. On failure nothing is cached or published and the error is
// returned and reported.
func (l *Loader) Load(ctx context.Context, key string) ([]types.OptionNode, error) {
	if nodes, ok := l.Cached(key); ok {
		l.publish(key, nodes)
		l.report(Result{Key: key, Options: nodes, Cached: true})
		return nodes, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		// A flight for key may have finished between the check above and here.
		if nodes, ok := l.Cached(key); ok {
			return nodes, nil
		}
		raw, err := l.store.Query(ctx, types.ResourceFile, key)
		if err != nil {
			return nil, err
		}
		nodes := Options(Normalize(raw))
		l.mu.Lock()
		l.cache[key] = nodes
		l.mu.Unlock()
		return nodes, nil
	})
	if err != nil {
		l.report(Result{Key: key, Err: err})
		return nil, fmt.Errorf("loading %s options: %w", key, err)
	}

	nodes := v.([]types.OptionNode)
	l.publish(key, nodes)
	l.report(Result{Key: key, Options: nodes})
	return nodes, nil
}

// Prefetch starts Load in the background and returns immediately. The
// result reaches the published options and the result handlers.
func (l *Loader) Prefetch(ctx context.Context, key string) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		_, _ = l.Load(ctx, key)
	}()
}

// Wait blocks until every Prefetch started so far has finished.
func (l *Loader) Wait() {
	l.wg.Wait()
}

func (l *Loader) publish(key string, nodes []types.OptionNode) {
	if l.current != nil && l.current() != key {
		return
	}
	l.options.Set(nodes)
}

func (l *Loader) report(r Result) {
	for _, h := range l.handlers {
		h(r)
	}
}
