// Package directory lists entities the way the directory screens show them:
// fetched once, then filtered by free text and sorted by a named key.
package directory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	DefaultLanguage = language.English

	// errors
	ErrUnknownSortKey = errors.New("unknown sort key")
)

type (
	// Field returns the text of an entity shown (and searched) on its card.
	Field[T any] func(item T) string

	// Fetcher loads every entity of a directory.
	Fetcher[T any] func(ctx context.Context) ([]T, error)

	Options[T any] struct {
		Fetch    Fetcher[T]
		Fields   []Field[T]          // searchable fields
		SortKeys map[string]Field[T] // named sort keys
		Language language.Tag        // collation language; DefaultLanguage when unset
	}

	Directory[T any] struct {
		opts  Options[T]
		mu    sync.RWMutex
		items []T
	}
)

func New[T any](opts Options[T]) *Directory[T] {
	if opts.Language == language.Und {
		opts.Language = DefaultLanguage
	}
	return &Directory[T]{opts: opts}
}

// Load replaces the directory's items with a fresh fetch.
func (d *Directory[T]) Load(ctx context.Context) error {
	items, err := d.opts.Fetch(ctx)
	if err != nil {
		return errors.Wrap(err, "fetching directory")
	}
	d.mu.Lock()
	d.items = items
	d.mu.Unlock()
	return nil
}

// Items returns a copy of the loaded items, in fetch order.
func (d *Directory[T]) Items() []T {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]T(nil), d.items...)
}

// Add appends a newly created item.
func (d *Directory[T]) Add(item T) {
	d.mu.Lock()
	d.items = append(d.items, item)
	d.mu.Unlock()
}

// View filters the items by query, then sorts them by sortKey.
// An empty sortKey keeps fetch order.
func (d *Directory[T]) View(query, sortKey string) ([]T, error) {
	var key Field[T]
	if sortKey != "" {
		var ok bool
		if key, ok = d.opts.SortKeys[sortKey]; !ok {
			return nil, errors.Wrap(ErrUnknownSortKey, sortKey)
		}
	}

	items := Filter(d.Items(), query, d.opts.Fields...)
	if key != nil {
		items = Sort(items, key, d.opts.Language)
	}
	return items, nil
}

// Filter keeps the items where one of fields contains query, ignoring case.
// A blank query keeps everything.
func Filter[T any](items []T, query string, fields ...Field[T]) []T {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}
	caser := cases.Fold()
	needle := caser.String(query)

	res := make([]T, 0, len(items))
	for _, item := range items {
		for _, field := range fields {
			if strings.Contains(caser.String(field(item)), needle) {
				res = append(res, item)
				break
			}
		}
	}
	return res
}

// Sort returns a stably sorted copy of items, comparing keys with the collation rules of tag.
func Sort[T any](items []T, key Field[T], tag language.Tag) []T {
	res := append([]T(nil), items...)
	col := collate.New(tag)
	sort.SliceStable(res, func(i, j int) bool {
		return col.CompareString(key(res[i]), key(res[j])) < 0
	})
	return res
}
