package inmemdb

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/core/attendance"
	"github.com/classtrack/classtrack/core/class"
	"github.com/classtrack/classtrack/core/user"
)

// DB keeps every table in memory behind a single lock, so cascading deletes stay atomic.
type DB struct {
	mutex       sync.RWMutex
	users       map[string]*user.User
	classes     map[string]*class.Class
	attendances map[string]*attendance.Record
}

func Open() *DB {
	return &DB{
		users:       make(map[string]*user.User),
		classes:     make(map[string]*class.Class),
		attendances: make(map[string]*attendance.Record),
	}
}

// sortBy stably sorts items by ordering, then by creation time and id.
func sortBy[T any](items []T, ordering []core.DBOrdering, field func(item T, name string) (string, bool), createdAt func(T) time.Time, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		for _, ord := range ordering {
			a, ok := field(items[i], ord.Field)
			if !ok {
				continue
			}
			b, _ := field(items[j], ord.Field)
			if a == b {
				continue
			}
			if ord.Ascending {
				return a < b
			}
			return a > b
		}
		if ti, tj := createdAt(items[i]), createdAt(items[j]); !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return id(items[i]) < id(items[j])
	})
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func inSlice(s string, slice []string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
