package record

import (
	"context"
	"log/slog"
)

// resolveTodayRecord makes latest.Data[0] today's record, rolling over to a
// new set when latest is full. Rollover is only considered at a day change.
// Afterwards the catalog is trimmed to maxSets whenever it holds more ids,
// which also applies a lowered cap to existing catalogs. It returns the new
// latest set and the ids to remove once the write succeeded.
func (a *Area) resolveTodayRecord(ctx context.Context, cat *Catalog, latest *RecordSet) (*RecordSet, []string, error) {
	today := DateKey(a.book.clock.Now())

	if len(latest.Data) == 0 || latest.Data[0].Date != today {
		if latest.WordCount >= a.book.threshold {
			latest = a.book.newSet()
			cat.Data = prepend(cat.Data, latest.ID)
			slog.Debug("Started new record set", "area", a.name, "set", latest.ID)
		}
		latest.Data = prepend(latest.Data, Record{Date: today, Data: []string{}})
	}

	if len(cat.Data) <= a.book.maxSets {
		return latest, nil, nil
	}
	evicted, err := a.evictOldest(ctx, cat)
	if err != nil {
		return nil, nil, err
	}
	return latest, evicted, nil
}

// evictOldest trims cat down to maxSets ids, subtracting the real word count
// of each dropped set. Sets already gone count as zero.
func (a *Area) evictOldest(ctx context.Context, cat *Catalog) ([]string, error) {
	keep := a.book.maxSets
	evicted := append([]string(nil), cat.Data[keep:]...)

	sets, err := a.loadSets(ctx, evicted)
	if err != nil {
		return nil, err
	}
	for _, id := range evicted {
		if set, ok := sets[id]; ok {
			cat.WordCount -= set.WordCount
		}
	}
	if cat.WordCount < 0 {
		cat.WordCount = 0
	}
	cat.Data = cat.Data[:keep]

	slog.Info("Evicting record sets", "area", a.name, "sets", evicted)
	return evicted, nil
}
