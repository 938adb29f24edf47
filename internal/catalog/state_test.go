package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState_DerivesFacets(t *testing.T) {
	s := NewState(fixture)

	assert.Equal(t, DefaultFilters(), s.Filters)
	assert.Equal(t, []string{"MATH101", "CS101", "CS201"}, s.Courses)
	assert.Equal(t, []string{"Dr. Lee", "Prof. Mensah", "Dr. Okafor"}, s.Lecturers)
	assert.Equal(t, []string{"calculus", "week1", "algorithms", "exam"}, s.Tags)
	assert.Len(t, s.Visible(), 4)
}

func TestReduce_FiltersAndReset(t *testing.T) {
	s := NewState(fixture)

	s1 := Reduce(s, SelectCourse{Course: "MATH101"})
	s2 := Reduce(s1, SetSearchTerm{Term: "deriv"})

	assert.Equal(t, []string{"1", "3"}, ids(s1.Visible()))
	assert.Equal(t, []string{"3"}, ids(s2.Visible()))
	// earlier states are untouched
	assert.Equal(t, AllOption, s.Filters.Course)
	assert.Equal(t, "", s1.Filters.SearchTerm)

	s3 := Reduce(s2, SelectTag{Tag: ""})
	assert.Equal(t, AllOption, s3.Filters.Tag)

	s4 := Reduce(Reduce(s2, SelectLecturer{Lecturer: "Dr. Okafor"}), ResetFilters{})
	assert.Equal(t, DefaultFilters(), s4.Filters)
	assert.Len(t, s4.Visible(), 4)
}

func TestReduce_NoteMutationsRecomputeFacets(t *testing.T) {
	s := NewState(fixture)

	added := Reduce(s, UpsertNote{Note: note("5", "Optics", "PHYS100", "Dr. Boateng", "light")})
	require.Len(t, added.Notes, 5)
	assert.Equal(t, "5", added.Notes[0].ID)
	assert.Contains(t, added.Courses, "PHYS100")
	assert.Contains(t, added.Tags, "light")
	assert.Len(t, s.Notes, 4)

	renamed := Reduce(added, UpsertNote{Note: note("5", "Optics II", "PHYS200", "Dr. Boateng")})
	require.Len(t, renamed.Notes, 5)
	assert.Equal(t, "Optics II", renamed.Notes[0].Title)
	assert.NotContains(t, renamed.Courses, "PHYS100")
	assert.NotContains(t, renamed.Tags, "light")

	removed := Reduce(renamed, RemoveNote{ID: "2"})
	assert.Equal(t, []string{"5", "1", "3", "4"}, ids(removed.Notes))

	replaced := Reduce(removed, ReplaceNotes{Notes: fixture[:1]})
	assert.Equal(t, []string{"MATH101"}, replaced.Courses)
	assert.Equal(t, []string{"calculus", "week1"}, replaced.Tags)

	assert.Equal(t, s, Reduce(s, UpsertNote{}))
}

func TestReduce_FiltersSurviveNoteChanges(t *testing.T) {
	s := Reduce(NewState(fixture), SelectTag{Tag: "algorithms"})
	s = Reduce(s, RemoveNote{ID: "4"})

	assert.Equal(t, "algorithms", s.Filters.Tag)
	assert.Equal(t, []string{"2"}, ids(s.Visible()))
}
