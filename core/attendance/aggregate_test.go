package attendance

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/classtrack/core/class"
)

func makeEntries(classID, className string, counts map[string]int) []Entry {
	var entries []Entry
	n := 0
	for name, count := range counts {
		for i := 0; i < count; i++ {
			n++
			entries = append(entries, Entry{
				RecordID:  fmt.Sprintf("%s-%d", classID, n),
				UserID:    "id-" + name,
				UserName:  name,
				ClassID:   classID,
				ClassName: className,
			})
		}
	}
	return entries
}

func TestAggregate(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		got := Aggregate(nil)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("counts per user", func(t *testing.T) {
		entries := makeEntries("c1", "Maths", map[string]int{"A": 3, "B": 4, "C": 4, "D": 2})
		got := Aggregate(entries)
		require.Len(t, got, 4)

		sum := 0
		for _, tally := range got {
			sum += tally.Count
		}
		assert.Equal(t, len(entries), sum)
		assert.Equal(t, Tally{UserID: "id-A", Name: "A", Count: 3}, got["id-A"])
		assert.Equal(t, 4, got["id-B"].Count)
		assert.Equal(t, 4, got["id-C"].Count)
		assert.Equal(t, 2, got["id-D"].Count)
	})

	t.Run("users without records are absent", func(t *testing.T) {
		got := Aggregate(makeEntries("c1", "Maths", map[string]int{"A": 1}))
		_, ok := got["id-B"]
		assert.False(t, ok)
	})

	t.Run("order does not matter", func(t *testing.T) {
		entries := []Entry{
			{RecordID: "1", UserID: "u1", UserName: "A"},
			{RecordID: "2", UserID: "u2", UserName: "B"},
			{RecordID: "3", UserID: "u1", UserName: "A"},
		}
		reversed := []Entry{entries[2], entries[1], entries[0]}
		assert.Equal(t, Aggregate(entries), Aggregate(reversed))
	})
}

func TestStanding(t *testing.T) {
	tests := []struct {
		name         string
		standing     Standing
		wantCritical bool
		wantRatio    float64
		wantProgress float64
	}{
		{name: "3 of 10", standing: Standing{Count: 3, Threshold: 10}, wantRatio: .3, wantProgress: .3},
		{name: "4 of 10", standing: Standing{Count: 4, Threshold: 10}, wantRatio: .4, wantProgress: .4},
		{name: "2 of 10", standing: Standing{Count: 2, Threshold: 10}, wantRatio: .2, wantProgress: .2},
		{name: "none", standing: Standing{Count: 0, Threshold: 10}},
		{name: "at threshold", standing: Standing{Count: 10, Threshold: 10}, wantCritical: true, wantRatio: 1, wantProgress: 1},
		{name: "over threshold", standing: Standing{Count: 15, Threshold: 10}, wantCritical: true, wantRatio: 1.5, wantProgress: 1},
		{name: "zero threshold no count", standing: Standing{Count: 0, Threshold: 0}},
		{name: "zero threshold with count", standing: Standing{Count: 2, Threshold: 0}, wantCritical: true},
		{name: "negative threshold", standing: Standing{Count: 1, Threshold: -3}, wantCritical: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCritical, tt.standing.Critical())
			assert.InDelta(t, tt.wantRatio, tt.standing.Ratio(), 1e-9)
			assert.InDelta(t, tt.wantProgress, tt.standing.Progress(), 1e-9)
		})
	}
}

func TestClassReport(t *testing.T) {
	maths := class.Class{ID: "c1", Name: "Maths", MaxAbsences: 10}
	entries := append(
		makeEntries("c1", "Maths", map[string]int{"Dan": 2, "Bea": 4, "Ana": 3, "Cyd": 10}),
		makeEntries("c2", "Physics", map[string]int{"Ana": 7})...,
	)

	rows := ClassReport(maths, entries)
	require.Len(t, rows, 4)

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
		assert.Equal(t, 10, row.Threshold)
	}
	assert.Equal(t, []string{"Ana", "Bea", "Cyd", "Dan"}, names)
	assert.Equal(t, 3, rows[0].Count) // Physics records not counted
	assert.False(t, rows[0].Critical())
	assert.True(t, rows[2].Critical())

	assert.Empty(t, ClassReport(class.Class{ID: "c3", MaxAbsences: 10}, entries))
}

func TestSubjectSummary(t *testing.T) {
	classes := []class.Class{
		{ID: "c1", Name: "Physics", MaxAbsences: 5},
		{ID: "c2", Name: "Maths", MaxAbsences: 10},
		{ID: "c3", Name: "Biology", MaxAbsences: 10},
	}
	entries := append(
		makeEntries("c1", "Physics", map[string]int{"Ana": 5}),
		makeEntries("c2", "Maths", map[string]int{"Ana": 3})...,
	)
	entries = append(entries, makeEntries("c9", "Unknown", map[string]int{"Ana": 1})...)

	rows := SubjectSummary(classes, entries)
	require.Len(t, rows, 2)
	assert.Equal(t, SubjectStanding{ClassID: "c2", ClassName: "Maths", Standing: Standing{Count: 3, Threshold: 10}}, rows[0])
	assert.Equal(t, SubjectStanding{ClassID: "c1", ClassName: "Physics", Standing: Standing{Count: 5, Threshold: 5}}, rows[1])
	assert.True(t, rows[1].Critical())
}

func TestDigest(t *testing.T) {
	maths := class.Class{ID: "c1", Name: "Maths", MaxAbsences: 3}
	physics := class.Class{ID: "c2", Name: "Physics", MaxAbsences: 10}
	entries := append(
		makeEntries("c1", "Maths", map[string]int{"Ana": 3, "Bea": 1}),
		makeEntries("c2", "Physics", map[string]int{"Ana": 2})...,
	)
	reports := []Report{
		{Class: maths, Rows: ClassReport(maths, entries)},
		{Class: physics, Rows: ClassReport(physics, entries)},
	}

	digest := Digest(reports)
	require.Len(t, digest, 1)
	assert.Equal(t, maths, digest[0].Class)
	require.Len(t, digest[0].Rows, 1)
	assert.Equal(t, "Ana", digest[0].Rows[0].Name)

	assert.Empty(t, Digest(nil))
}
