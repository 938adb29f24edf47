// Package catalog filters an in-memory snapshot of notes and derives the
// facet lists (courses, lecturers, tags) offered to the user.
package catalog

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/hcissey0/lecture-notes-app/internal/model"
)

// AllOption disables a course, lecturer or tag filter.
const AllOption = "all"

type Filters struct {
	SearchTerm string `json:"search_term"`
	Course     string `json:"course"`
	Lecturer   string `json:"lecturer"`
	Tag        string `json:"tag"`
}

// DefaultFilters matches every note.
func DefaultFilters() Filters {
	return Filters{Course: AllOption, Lecturer: AllOption, Tag: AllOption}
}

// normalized treats empty selections as AllOption.
func (f Filters) normalized() Filters {
	if f.Course == "" {
		f.Course = AllOption
	}
	if f.Lecturer == "" {
		f.Lecturer = AllOption
	}
	if f.Tag == "" {
		f.Tag = AllOption
	}
	return f
}

// Filter returns the notes matching every active filter, in input order.
func Filter(notes []*model.Note, f Filters) []*model.Note {
	f = f.normalized()
	fold := cases.Fold()
	term := fold.String(f.SearchTerm)

	out := make([]*model.Note, 0, len(notes))
	for _, n := range notes {
		if f.Course != AllOption && n.Course != f.Course {
			continue
		}
		if f.Lecturer != AllOption && n.Lecturer != f.Lecturer {
			continue
		}
		if f.Tag != AllOption && !n.HasTag(f.Tag) {
			continue
		}
		if term != "" && !matchesSearch(fold, n, term) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// matchesSearch reports whether the folded term occurs in the title,
// course, lecturer or any tag.
func matchesSearch(fold cases.Caser, n *model.Note, term string) bool {
	if strings.Contains(fold.String(n.Title), term) ||
		strings.Contains(fold.String(n.Course), term) ||
		strings.Contains(fold.String(n.Lecturer), term) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(fold.String(tag), term) {
			return true
		}
	}
	return false
}

func DistinctCourses(notes []*model.Note) []string {
	return distinct(notes, func(n *model.Note) []string { return []string{n.Course} })
}

func DistinctLecturers(notes []*model.Note) []string {
	return distinct(notes, func(n *model.Note) []string { return []string{n.Lecturer} })
}

func DistinctTags(notes []*model.Note) []string {
	return distinct(notes, func(n *model.Note) []string { return n.Tags })
}

// distinct collects values in first-seen order.
func distinct(notes []*model.Note, values func(*model.Note) []string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, n := range notes {
		for _, v := range values(n) {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}
