// Package record keeps a bounded, per-area log of words grouped into daily
// records, which are grouped into record sets indexed by a catalog.
//
// Layout in the key-value store:
//
//	<area>Cat  -> Catalog    (set ids, most recent first)
//	<set id>   -> RecordSet  (daily records, most recent first)
package record

import (
	"errors"
	"time"
)

const (
	// DefaultRolloverThreshold is the word count at which the latest set is
	// closed and a new one started on the next day change.
	DefaultRolloverThreshold = 500

	// DefaultMaxSets is the number of sets a catalog retains.
	DefaultMaxSets = 20

	catalogSuffix = "Cat"
)

var (
	// ErrInvalidArea is returned for an empty area name.
	ErrInvalidArea = errors.New("area name must not be empty")

	// ErrWordRejected is returned when the word filter refuses a word.
	ErrWordRejected = errors.New("word rejected by filter")
)

// Record holds one calendar day's words, most recently touched first.
type Record struct {
	Date string   `json:"date"`
	Data []string `json:"data"`
}

// RecordSet is a bucket of daily records, most recent day first.
type RecordSet struct {
	ID        string   `json:"id"`
	Data      []Record `json:"data"`
	WordCount int      `json:"wordCount"`
}

// Catalog indexes an area's record sets.
type Catalog struct {
	Data      []string `json:"data"`
	WordCount int      `json:"wordCount"`
	Timestamp int64    `json:"timestamp"` // unix ms of the last write
}

// Page is a single record set together with the number of sets in the area.
type Page struct {
	RecordSet RecordSet `json:"recordSet"`
	PageCount int       `json:"pageCount"`
}

// Event is delivered to listeners when an area's catalog changes.
type Event struct {
	Area      string
	Catalog   Catalog
	Cleared   bool
	Timestamp time.Time
}

// PageCount returns the number of sets the catalog references.
func (c *Catalog) PageCount() int {
	return len(c.Data)
}
