// Package hook wraps the typed client with the per-entity data-access
// contract used by interactive front ends: a loading flag, the last error
// message, non-throwing results and notices for every write.
package hook

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/fibradoc/fibradoc/pkg/client"
	"github.com/fibradoc/fibradoc/pkg/types"
)

// Operation names a hook call.
type Operation string

const (
	OpList   Operation = "list"
	OpGet    Operation = "get"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

func (op Operation) verb() string {
	switch op {
	case OpCreate:
		return "criar"
	case OpUpdate:
		return "atualizar"
	case OpDelete:
		return "excluir"
	case OpGet:
		return "carregar"
	default:
		return "listar"
	}
}

// Level is the severity of a Notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is the localized outcome of a write.
type Notice struct {
	Level     Level
	Entity    string
	Operation Operation
	Message   string
}

// Notifier receives write notices. Implementations must not block.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notice) { f(n) }

// Result is the outcome of Get, Create, Update and Delete. Data is nil when
// Failure is set, and always nil for Delete.
type Result[T any] struct {
	Data    *T
	Message string
	Failure *Failure
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool { return r.Failure == nil }

// ListResult is the outcome of List. Items is empty when Failure is set.
type ListResult[T any] struct {
	Items      []T
	Pagination types.Pagination
	Failure    *Failure
}

// OK reports whether the call succeeded.
func (r ListResult[T]) OK() bool { return r.Failure == nil }

// Resource is the data source a Hook drives. *client.Resource implements it.
type Resource[T, C, P any] interface {
	Entity() types.Entity
	List(ctx context.Context, opts client.ListOptions) (types.Page[T], error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, req C) (types.Mutation[T], error)
	Update(ctx context.Context, id string, req P) (types.Mutation[T], error)
	Delete(ctx context.Context, id string) (string, error)
}

// Option configures a Hook.
type Option func(*options)

type options struct {
	notifier Notifier
	guard    *Guard
	logger   zerolog.Logger
}

// WithNotifier sends write notices to n. Without it hooks are headless.
func WithNotifier(n Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithGuard shares an in-flight guard between hooks.
func WithGuard(g *Guard) Option {
	return func(o *options) { o.guard = g }
}

// WithLogger logs failed calls at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Hook exposes CRUD over one entity collection. It is safe for concurrent
// use.
type Hook[T, C, P any] struct {
	res    Resource[T, C, P]
	entity types.Entity
	opts   options

	loading atomic.Int32
	mu      sync.Mutex
	lastErr string
}

// New wraps res.
func New[T, C, P any](res Resource[T, C, P], opts ...Option) *Hook[T, C, P] {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.guard == nil {
		o.guard = NewGuard(DefaultGuardTTL)
	}
	return &Hook[T, C, P]{res: res, entity: res.Entity(), opts: o}
}

// IsLoading reports whether any call is in flight.
func (h *Hook[T, C, P]) IsLoading() bool {
	return h.loading.Load() > 0
}

// LastError returns the message of the most recent failure, or "" when the
// most recent call succeeded.
func (h *Hook[T, C, P]) LastError() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastErr
}

// List fetches one page.
func (h *Hook[T, C, P]) List(ctx context.Context, opts client.ListOptions) ListResult[T] {
	defer h.begin()()

	page, err := h.res.List(ctx, opts)
	if err != nil {
		f := h.fail(OpList, err)
		return ListResult[T]{Items: []T{}, Failure: f}
	}
	h.record(nil)
	return ListResult[T]{Items: page.Items, Pagination: page.Pagination}
}

// Get fetches one entity.
func (h *Hook[T, C, P]) Get(ctx context.Context, id string) Result[T] {
	defer h.begin()()

	item, err := h.res.Get(ctx, id)
	if err != nil {
		return Result[T]{Failure: h.fail(OpGet, err)}
	}
	h.record(nil)
	return Result[T]{Data: &item}
}

// Create posts a new entity. An identical create already in flight fails
// with KindDuplicate.
func (h *Hook[T, C, P]) Create(ctx context.Context, req C) Result[T] {
	return h.write(ctx, OpCreate, payloadID(req), func(ctx context.Context) (types.Mutation[T], error) {
		return h.res.Create(ctx, req)
	})
}

// Update patches an entity.
func (h *Hook[T, C, P]) Update(ctx context.Context, id string, req P) Result[T] {
	return h.write(ctx, OpUpdate, id, func(ctx context.Context) (types.Mutation[T], error) {
		return h.res.Update(ctx, id, req)
	})
}

// Delete removes an entity.
func (h *Hook[T, C, P]) Delete(ctx context.Context, id string) Result[T] {
	return h.write(ctx, OpDelete, id, func(ctx context.Context) (types.Mutation[T], error) {
		msg, err := h.res.Delete(ctx, id)
		return types.Mutation[T]{Message: msg}, err
	})
}

func (h *Hook[T, C, P]) write(
	ctx context.Context,
	op Operation,
	id string,
	call func(context.Context) (types.Mutation[T], error),
) Result[T] {
	defer h.begin()()

	release, ok := h.opts.guard.Acquire(h.entity.Path, op, id)
	if !ok {
		f := &Failure{Kind: KindDuplicate, Message: DuplicateMessage}
		h.record(f)
		h.notify(op, LevelError, f.Message)
		return Result[T]{Failure: f}
	}
	defer release()

	m, err := call(ctx)
	if err != nil {
		f := h.fail(op, err)
		msg := h.entity.Noun.Failed(op.verb())
		if f.FromServer() {
			msg = f.Message
		}
		h.notify(op, LevelError, msg)
		return Result[T]{Failure: f}
	}
	h.record(nil)

	if m.Message == "" {
		m.Message = h.successMessage(op)
	}
	h.notify(op, LevelSuccess, m.Message)
	return Result[T]{Data: m.Item, Message: m.Message}
}

func (h *Hook[T, C, P]) begin() func() {
	h.loading.Add(1)
	return func() { h.loading.Add(-1) }
}

func (h *Hook[T, C, P]) fail(op Operation, err error) *Failure {
	f := classify(err)
	h.record(f)
	h.opts.logger.Debug().
		Err(err).
		Str("entity", h.entity.Path).
		Str("operation", string(op)).
		Str("kind", string(f.Kind)).
		Int("status", f.Status).
		Msg("request failed")
	return f
}

func (h *Hook[T, C, P]) record(f *Failure) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f == nil {
		h.lastErr = ""
		return
	}
	h.lastErr = f.Message
}

func (h *Hook[T, C, P]) notify(op Operation, level Level, msg string) {
	if h.opts.notifier == nil {
		return
	}
	h.opts.notifier.Notify(Notice{
		Level:     level,
		Entity:    h.entity.Path,
		Operation: op,
		Message:   msg,
	})
}

func (h *Hook[T, C, P]) successMessage(op Operation) string {
	switch op {
	case OpCreate:
		return h.entity.Noun.Created()
	case OpDelete:
		return h.entity.Noun.Deleted()
	default:
		return h.entity.Noun.Updated()
	}
}
