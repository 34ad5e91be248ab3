package record

import (
	"context"
	"fmt"
	"strings"
)

// Add records word in today's record of the area. A word already present
// today moves to the front without being counted again. The catalog and the
// latest set are written in one Set call; sets evicted past the cap are
// removed afterwards.
func (a *Area) Add(ctx context.Context, word string) error {
	if err := a.validate(); err != nil {
		return err
	}
	if f := a.book.filter; f != nil {
		ok, err := f.Allow(word)
		if err != nil {
			return fmt.Errorf("evaluate word filter: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: %q", ErrWordRejected, word)
		}
	}

	cat, latest, err := a.resolveLatestSet(ctx)
	if err != nil {
		return fmt.Errorf("resolve latest set of %q: %w", a.name, err)
	}

	latest, evicted, err := a.resolveTodayRecord(ctx, cat, latest)
	if err != nil {
		return fmt.Errorf("resolve today's record of %q: %w", a.name, err)
	}

	today := &latest.Data[0]
	words, existed := moveToFront(today.Data, word)
	today.Data = words
	if !existed {
		latest.WordCount++
		cat.WordCount++
	}
	cat.Timestamp = a.book.clock.Now().UnixMilli()

	catRaw, err := encode(cat)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	setRaw, err := encode(latest)
	if err != nil {
		return fmt.Errorf("encode record set: %w", err)
	}

	if err := a.book.store.Set(ctx, map[string][]byte{
		a.catalogKey: catRaw,
		latest.ID:    setRaw,
	}); err != nil {
		return fmt.Errorf("persist %q: %w", a.name, err)
	}

	if len(evicted) > 0 {
		if err := a.book.store.Remove(ctx, evicted...); err != nil {
			return fmt.Errorf("evict record set %s: %w", strings.Join(evicted, ","), err)
		}
	}
	return nil
}
