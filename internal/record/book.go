package record

import (
	"github.com/google/uuid"

	"github.com/syntrixbase/wordlog/internal/kv"
)

// WordFilter decides whether a word may be recorded.
type WordFilter interface {
	Allow(word string) (bool, error)
}

// Book is the entry point to the word log stored in a kv.Store.
type Book struct {
	store     kv.Store
	clock     Clock
	filter    WordFilter
	threshold int
	maxSets   int
	newID     func() string
}

// Option configures a Book.
type Option func(*Book)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(b *Book) {
		if c != nil {
			b.clock = c
		}
	}
}

// WithRolloverThreshold sets the word count that closes the latest set.
// Non-positive values keep the default.
func WithRolloverThreshold(n int) Option {
	return func(b *Book) {
		if n > 0 {
			b.threshold = n
		}
	}
}

// WithMaxSets sets how many sets a catalog retains. Non-positive values keep
// the default.
func WithMaxSets(n int) Option {
	return func(b *Book) {
		if n > 0 {
			b.maxSets = n
		}
	}
}

// WithWordFilter rejects words the filter does not allow.
func WithWordFilter(f WordFilter) Option {
	return func(b *Book) {
		b.filter = f
	}
}

// NewBook creates a Book on store.
func NewBook(store kv.Store, opts ...Option) *Book {
	b := &Book{
		store:     store,
		clock:     systemClock{},
		threshold: DefaultRolloverThreshold,
		maxSets:   DefaultMaxSets,
		newID: func() string {
			return uuid.Must(uuid.NewV7()).String()
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Area returns the handle for one area. An empty name yields a handle whose
// operations fail with ErrInvalidArea.
func (b *Book) Area(name string) *Area {
	return &Area{
		book:       b,
		name:       name,
		catalogKey: name + catalogSuffix,
	}
}

func (b *Book) newSet() *RecordSet {
	return &RecordSet{ID: b.newID(), Data: []Record{}}
}

// Area is the handle for one independent word log.
type Area struct {
	book       *Book
	name       string
	catalogKey string
}

// Name returns the area name.
func (a *Area) Name() string { return a.name }

// CatalogKey returns the key the area's catalog is stored under.
func (a *Area) CatalogKey() string { return a.catalogKey }

func (a *Area) validate() error {
	if a.name == "" {
		return ErrInvalidArea
	}
	return nil
}
