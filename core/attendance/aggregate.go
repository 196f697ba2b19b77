package attendance

import (
	"golang.org/x/text/language"

	"github.com/classtrack/classtrack/core/class"
	"github.com/classtrack/classtrack/core/directory"
)

// Tally is the number of entries recorded for one user.
type Tally struct {
	UserID string
	Name   string
	Count  int
}

// Aggregate counts entries per user id. The name of a user is taken from its first entry.
func Aggregate(entries []Entry) map[string]Tally {
	tallies := make(map[string]Tally)
	for _, e := range entries {
		t, ok := tallies[e.UserID]
		if !ok {
			t = Tally{UserID: e.UserID, Name: e.UserName}
		}
		t.Count++
		tallies[e.UserID] = t
	}
	return tallies
}

// Standing compares an absence count with the threshold at which it becomes critical.
type Standing struct {
	Count     int `json:"count"`
	Threshold int `json:"threshold"`
}

func (s Standing) Critical() bool {
	if s.Threshold <= 0 {
		return s.Count > 0
	}
	return s.Count >= s.Threshold
}

// Ratio is Count/Threshold; it exceeds 1 once the threshold is passed.
func (s Standing) Ratio() float64 {
	if s.Threshold <= 0 {
		return 0
	}
	return float64(s.Count) / float64(s.Threshold)
}

// Progress is Ratio clamped to [0, 1].
func (s Standing) Progress() float64 {
	r := s.Ratio()
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}

// StudentStanding is a row of a class report.
type StudentStanding struct {
	UserID string
	Name   string
	Standing
}

// SubjectStanding is a row of a student summary.
type SubjectStanding struct {
	ClassID   string
	ClassName string
	Standing
}

// Report is the absence report of one class.
type Report struct {
	Class class.Class
	Rows  []StudentStanding
}

// ClassReport builds one row per student found in entries, measured against the class threshold.
// Entries of other classes are ignored. Rows are sorted by name.
func ClassReport(cls class.Class, entries []Entry) []StudentStanding {
	classEntries := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.ClassID == cls.ID {
			classEntries = append(classEntries, e)
		}
	}

	tallies := Aggregate(classEntries)
	rows := make([]StudentStanding, 0, len(tallies))
	for _, t := range tallies {
		rows = append(rows, StudentStanding{
			UserID:   t.UserID,
			Name:     t.Name,
			Standing: Standing{Count: t.Count, Threshold: cls.MaxAbsences},
		})
	}
	// map iteration is random: break name ties on user id
	rows = directory.Sort(rows, func(r StudentStanding) string { return r.UserID }, language.Und)
	return directory.Sort(rows, func(r StudentStanding) string { return r.Name }, directory.DefaultLanguage)
}

// SubjectSummary builds one row per class in which the entries of a single student were recorded.
// Entries of classes missing from classes are ignored. Rows are sorted by class name.
func SubjectSummary(classes []class.Class, entries []Entry) []SubjectStanding {
	byID := make(map[string]class.Class, len(classes))
	for _, cls := range classes {
		byID[cls.ID] = cls
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, e := range entries {
		if _, ok := byID[e.ClassID]; !ok {
			continue
		}
		if counts[e.ClassID] == 0 {
			order = append(order, e.ClassID)
		}
		counts[e.ClassID]++
	}

	rows := make([]SubjectStanding, 0, len(order))
	for _, id := range order {
		cls := byID[id]
		rows = append(rows, SubjectStanding{
			ClassID:   cls.ID,
			ClassName: cls.Name,
			Standing:  Standing{Count: counts[id], Threshold: cls.MaxAbsences},
		})
	}
	return directory.Sort(rows, func(r SubjectStanding) string { return r.ClassName }, directory.DefaultLanguage)
}

// Digest keeps the critical rows of each report, dropping reports left empty.
func Digest(reports []Report) []Report {
	digest := make([]Report, 0)
	for _, rep := range reports {
		var critical []StudentStanding
		for _, row := range rep.Rows {
			if row.Critical() {
				critical = append(critical, row)
			}
		}
		if len(critical) > 0 {
			digest = append(digest, Report{Class: rep.Class, Rows: critical})
		}
	}
	return digest
}
