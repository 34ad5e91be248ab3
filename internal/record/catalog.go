package record

import (
	"context"
	"log/slog"
)

// loadCatalog returns the stored catalog, or nil when it is absent or
// undecodable.
func (a *Area) loadCatalog(ctx context.Context) (*Catalog, error) {
	values, err := a.book.store.Get(ctx, a.catalogKey)
	if err != nil {
		return nil, err
	}
	raw, ok := values[a.catalogKey]
	if !ok {
		return nil, nil
	}
	cat, ok := decodeCatalog(raw)
	if !ok {
		slog.Warn("Ignoring undecodable catalog", "area", a.name)
		return nil, nil
	}
	return cat, nil
}

// loadSets fetches the given set ids in one read. Missing and undecodable
// sets are absent from the result.
func (a *Area) loadSets(ctx context.Context, ids []string) (map[string]*RecordSet, error) {
	out := make(map[string]*RecordSet, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	values, err := a.book.store.Get(ctx, ids...)
	if err != nil {
		return nil, err
	}
	for id, raw := range values {
		if set, ok := decodeSet(raw); ok {
			out[id] = set
		}
	}
	return out, nil
}

// resolveLatestSet returns the area's catalog and its most recent set.
// A missing catalog yields a fresh catalog referencing a fresh set. A missing
// latest set triggers a repair: unresolvable ids are dropped, the word count
// is recomputed from the surviving sets and a fresh set is put in front.
// Nothing is written.
func (a *Area) resolveLatestSet(ctx context.Context) (*Catalog, *RecordSet, error) {
	cat, err := a.loadCatalog(ctx)
	if err != nil {
		return nil, nil, err
	}

	if cat == nil || len(cat.Data) == 0 {
		set := a.book.newSet()
		return &Catalog{Data: []string{set.ID}}, set, nil
	}

	latestID := cat.Data[0]
	sets, err := a.loadSets(ctx, []string{latestID})
	if err != nil {
		return nil, nil, err
	}
	if latest, ok := sets[latestID]; ok {
		return cat, latest, nil
	}

	rest := cat.Data[1:]
	sets, err = a.loadSets(ctx, rest)
	if err != nil {
		return nil, nil, err
	}

	fresh := a.book.newSet()
	ids := make([]string, 0, len(rest)+1)
	ids = append(ids, fresh.ID)
	total := 0
	for _, id := range rest {
		set, ok := sets[id]
		if !ok {
			continue
		}
		ids = append(ids, id)
		total += set.WordCount
	}

	slog.Warn("Repaired catalog with missing record sets",
		"area", a.name,
		"missing_latest", latestID,
		"dropped", len(cat.Data)-(len(ids)-1),
		"word_count", total,
	)

	cat.Data = ids
	cat.WordCount = total
	return cat, fresh, nil
}
