package catalog

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/hcissey0/lecture-notes-app/internal/model"
)

func note(id, title, course, lecturer string, tags ...string) *model.Note {
	return &model.Note{ID: id, Title: title, Course: course, Lecturer: lecturer, Tags: tags}
}

func ids(notes []*model.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.ID)
	}
	return out
}

var fixture = []*model.Note{
	note("1", "Limits and Continuity", "MATH101", "Dr. Lee", "calculus", "week1"),
	note("2", "Sorting", "CS101", "Prof. Mensah", "algorithms"),
	note("3", "Derivatives", "MATH101", "Dr. Okafor", "calculus"),
	note("4", "Graphs", "CS201", "Prof. Mensah", "algorithms", "exam"),
}

func TestFilter_DefaultsKeepEverything(t *testing.T) {
	got := Filter(fixture, DefaultFilters())
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(got))

	got = Filter(fixture, Filters{})
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(got))
}

func TestFilter_Criteria(t *testing.T) {
	tests := []struct {
		name string
		f    Filters
		want []string
	}{
		{"course", Filters{Course: "MATH101"}, []string{"1", "3"}},
		{"lecturer", Filters{Lecturer: "Prof. Mensah"}, []string{"2", "4"}},
		{"tag", Filters{Tag: "calculus"}, []string{"1", "3"}},
		{"course and tag", Filters{Course: "CS201", Tag: "algorithms"}, []string{"4"}},
		{"search title case-insensitive", Filters{SearchTerm: "SORT"}, []string{"2"}},
		{"search lecturer", Filters{SearchTerm: "okafor"}, []string{"3"}},
		{"search tag", Filters{SearchTerm: "exa"}, []string{"4"}},
		{"search course", Filters{SearchTerm: "cs"}, []string{"2", "4"}},
		{"search and course", Filters{SearchTerm: "calc", Course: "MATH101", Lecturer: AllOption}, []string{"1", "3"}},
		{"no match", Filters{Course: "PHYS100"}, []string{}},
		{"tag is exact", Filters{Tag: "calc"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(fixture, tt.f)))
		})
	}
}

func TestFilter_EmptyInput(t *testing.T) {
	got := Filter(nil, Filters{SearchTerm: "x"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDistinct(t *testing.T) {
	notes := []*model.Note{
		note("1", "t", "B", "y", "a", "b"),
		note("2", "t", "A", "x", "b", "c"),
		note("3", "t", "B", "y"),
	}
	assert.Equal(t, []string{"a", "b", "c"}, DistinctTags(notes))
	assert.Equal(t, []string{"B", "A"}, DistinctCourses(notes))
	assert.Equal(t, []string{"y", "x"}, DistinctLecturers(notes))
	assert.Equal(t, []string{}, DistinctTags(nil))
}

func noteGen() *rapid.Generator[*model.Note] {
	word := rapid.SampledFrom([]string{"alpha", "Beta", "gamma", "DELTA", "ab", "Ga"})
	return rapid.Custom(func(t *rapid.T) *model.Note {
		return &model.Note{
			ID:       rapid.StringMatching(`[a-z0-9]{8}`).Draw(t, "id"),
			Title:    word.Draw(t, "title") + " " + word.Draw(t, "title2"),
			Course:   rapid.SampledFrom([]string{"MATH101", "CS101", "PHYS"}).Draw(t, "course"),
			Lecturer: rapid.SampledFrom([]string{"Lee", "Mensah", "Okafor"}).Draw(t, "lecturer"),
			Tags:     rapid.SliceOfN(word, 0, 3).Draw(t, "tags"),
		}
	})
}

func filtersGen() *rapid.Generator[Filters] {
	return rapid.Custom(func(t *rapid.T) Filters {
		return Filters{
			SearchTerm: rapid.SampledFrom([]string{"", "a", "GA", "beta", "ma", "zzz"}).Draw(t, "term"),
			Course:     rapid.SampledFrom([]string{AllOption, "MATH101", "CS101"}).Draw(t, "course"),
			Lecturer:   rapid.SampledFrom([]string{AllOption, "Lee", "Okafor"}).Draw(t, "lecturer"),
			Tag:        rapid.SampledFrom([]string{AllOption, "alpha", "Beta"}).Draw(t, "tag"),
		}
	})
}

// Output is an order-preserving subsequence of the input.
func TestFilter_PreservesOrder_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		notes := rapid.SliceOfN(noteGen(), 0, 20).Draw(t, "notes")
		f := filtersGen().Draw(t, "filters")

		out := Filter(notes, f)

		i := 0
		for _, n := range out {
			for i < len(notes) && notes[i] != n {
				i++
			}
			if i == len(notes) {
				t.Fatalf("output is not an ordered subsequence of the input")
			}
			i++
		}
	})
}

// A specific course keeps exactly the notes of that course.
func TestFilter_CourseExact_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		notes := rapid.SliceOfN(noteGen(), 0, 20).Draw(t, "notes")
		course := rapid.SampledFrom([]string{"MATH101", "CS101", "PHYS"}).Draw(t, "course")

		out := Filter(notes, Filters{Course: course})

		want := 0
		for _, n := range notes {
			if n.Course == course {
				want++
			}
		}
		if len(out) != want {
			t.Fatalf("got %d notes for %s, want %d", len(out), course, want)
		}
		for _, n := range out {
			if n.Course != course {
				t.Fatalf("note %s has course %s", n.ID, n.Course)
			}
		}
	})
}

// With other filters at "all", a note is kept iff the lower-cased term
// occurs in its title, course, lecturer or a tag.
func TestFilter_SearchIff_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		notes := rapid.SliceOfN(noteGen(), 0, 20).Draw(t, "notes")
		term := rapid.SampledFrom([]string{"a", "GA", "beta", "ma", "zzz", "lee"}).Draw(t, "term")

		kept := make(map[*model.Note]bool)
		for _, n := range Filter(notes, Filters{SearchTerm: term}) {
			kept[n] = true
		}

		lower := strings.ToLower(term)
		for _, n := range notes {
			match := strings.Contains(strings.ToLower(n.Title), lower) ||
				strings.Contains(strings.ToLower(n.Course), lower) ||
				strings.Contains(strings.ToLower(n.Lecturer), lower)
			for _, tag := range n.Tags {
				match = match || strings.Contains(strings.ToLower(tag), lower)
			}
			if match != kept[n] {
				t.Fatalf("note %+v: match=%v kept=%v", n, match, kept[n])
			}
		}
	})
}

// Distinct tags contain every tag once, in first-seen order.
func TestDistinctTags_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		notes := rapid.SliceOfN(noteGen(), 0, 20).Draw(t, "notes")

		got := DistinctTags(notes)

		var want []string
		seen := map[string]bool{}
		for _, n := range notes {
			for _, tag := range n.Tags {
				if !seen[tag] {
					seen[tag] = true
					want = append(want, tag)
				}
			}
		}
		require.Equal(t, fmt.Sprint(want), fmt.Sprint(got))
	})
}
