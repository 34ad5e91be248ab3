package record

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/syntrixbase/wordlog/internal/kv"
)

// Clear removes every set of the area and its catalog.
func (a *Area) Clear(ctx context.Context) error {
	if err := a.validate(); err != nil {
		return err
	}
	values, err := a.book.store.Get(ctx, a.catalogKey)
	if err != nil {
		return fmt.Errorf("load catalog of %q: %w", a.name, err)
	}
	raw, ok := values[a.catalogKey]
	if !ok {
		return nil
	}

	keys := []string{a.catalogKey}
	if cat, ok := decodeCatalog(raw); ok {
		keys = append(cat.Data, a.catalogKey)
	}
	if err := a.book.store.Remove(ctx, keys...); err != nil {
		return fmt.Errorf("clear %q: %w", a.name, err)
	}
	return nil
}

// Words returns every word of the area, most recent set, day and word first.
// Sets that cannot be loaded are skipped.
func (a *Area) Words(ctx context.Context) ([]string, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	cat, err := a.loadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog of %q: %w", a.name, err)
	}
	words := []string{}
	if cat == nil {
		return words, nil
	}

	sets, err := a.loadSets(ctx, cat.Data)
	if err != nil {
		return nil, fmt.Errorf("load record sets of %q: %w", a.name, err)
	}
	for _, id := range cat.Data {
		set, ok := sets[id]
		if !ok {
			continue
		}
		for _, rec := range set.Data {
			words = append(words, rec.Data...)
		}
	}
	return words, nil
}

// Page returns the set at index (0 is the most recent) together with the
// number of sets. ok is false when the area is empty, index is out of range
// or the set is missing.
func (a *Area) Page(ctx context.Context, index int) (Page, bool, error) {
	if err := a.validate(); err != nil {
		return Page{}, false, err
	}
	cat, err := a.loadCatalog(ctx)
	if err != nil {
		return Page{}, false, fmt.Errorf("load catalog of %q: %w", a.name, err)
	}
	if cat == nil || index < 0 || index >= len(cat.Data) {
		return Page{}, false, nil
	}

	id := cat.Data[index]
	sets, err := a.loadSets(ctx, []string{id})
	if err != nil {
		return Page{}, false, fmt.Errorf("load record set %s: %w", id, err)
	}
	set, ok := sets[id]
	if !ok {
		return Page{}, false, nil
	}
	return Page{RecordSet: *set, PageCount: cat.PageCount()}, true, nil
}

// WordCount returns the number of words recorded in the area's live sets.
func (a *Area) WordCount(ctx context.Context) (int, error) {
	if err := a.validate(); err != nil {
		return 0, err
	}
	cat, err := a.loadCatalog(ctx)
	if err != nil {
		return 0, fmt.Errorf("load catalog of %q: %w", a.name, err)
	}
	if cat == nil {
		return 0, nil
	}
	return cat.WordCount, nil
}

// Summary holds the area totals kept in its catalog.
type Summary struct {
	WordCount int `json:"wordCount"`
	PageCount int `json:"pageCount"`
}

// Summary reads the word and page counts from the catalog alone, so sets
// missing from storage do not change the result.
func (a *Area) Summary(ctx context.Context) (Summary, error) {
	if err := a.validate(); err != nil {
		return Summary{}, err
	}
	cat, err := a.loadCatalog(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load catalog of %q: %w", a.name, err)
	}
	if cat == nil {
		return Summary{}, nil
	}
	return Summary{WordCount: cat.WordCount, PageCount: cat.PageCount()}, nil
}

// Listen calls fn on every catalog change of the area until ctx is done.
// A nil fn registers nothing.
func (a *Area) Listen(ctx context.Context, fn func(Event)) error {
	if err := a.validate(); err != nil {
		return err
	}
	if fn == nil {
		return nil
	}
	return a.book.store.Subscribe(ctx, a.catalogKey, func(c kv.Change) {
		ev := Event{Area: a.name, Timestamp: c.Timestamp, Cleared: c.Deleted}
		if ev.Timestamp.IsZero() {
			ev.Timestamp = time.Now()
		}
		if !c.Deleted {
			cat, ok := decodeCatalog(c.Value)
			if !ok {
				slog.Warn("Ignoring undecodable catalog change", "area", a.name)
				return
			}
			ev.Catalog = *cat
		}
		fn(ev)
	})
}
