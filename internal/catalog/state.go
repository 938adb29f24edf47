package catalog

import "github.com/hcissey0/lecture-notes-app/internal/model"

// State is an immutable snapshot of the browsable notes, the active
// filters and the facets derived from the notes. Advance it with Reduce.
type State struct {
	Notes     []*model.Note `json:"-"`
	Filters   Filters       `json:"filters"`
	Courses   []string      `json:"courses"`
	Lecturers []string      `json:"lecturers"`
	Tags      []string      `json:"tags"`
}

func NewState(notes []*model.Note) State {
	return withNotes(State{Filters: DefaultFilters()}, notes)
}

// Visible returns the notes that pass the current filters.
func (s State) Visible() []*model.Note {
	return Filter(s.Notes, s.Filters)
}

// Action is a state transition accepted by Reduce.
type Action interface {
	apply(State) State
}

type SetSearchTerm struct{ Term string }

type SelectCourse struct{ Course string }

type SelectLecturer struct{ Lecturer string }

type SelectTag struct{ Tag string }

type ResetFilters struct{}

// ReplaceNotes swaps in a freshly fetched snapshot.
type ReplaceNotes struct{ Notes []*model.Note }

// UpsertNote replaces the note with the same ID or prepends a new one.
type UpsertNote struct{ Note *model.Note }

type RemoveNote struct{ ID string }

// Reduce returns the state that results from applying a to s. s is not
// modified.
func Reduce(s State, a Action) State {
	return a.apply(s)
}

func (a SetSearchTerm) apply(s State) State {
	s.Filters.SearchTerm = a.Term
	return s
}

func (a SelectCourse) apply(s State) State {
	s.Filters.Course = orAll(a.Course)
	return s
}

func (a SelectLecturer) apply(s State) State {
	s.Filters.Lecturer = orAll(a.Lecturer)
	return s
}

func (a SelectTag) apply(s State) State {
	s.Filters.Tag = orAll(a.Tag)
	return s
}

func (ResetFilters) apply(s State) State {
	s.Filters = DefaultFilters()
	return s
}

func (a ReplaceNotes) apply(s State) State {
	return withNotes(s, a.Notes)
}

func (a UpsertNote) apply(s State) State {
	if a.Note == nil {
		return s
	}
	notes := make([]*model.Note, 0, len(s.Notes)+1)
	replaced := false
	for _, n := range s.Notes {
		if n.ID == a.Note.ID {
			notes = append(notes, a.Note)
			replaced = true
			continue
		}
		notes = append(notes, n)
	}
	if !replaced {
		notes = append([]*model.Note{a.Note}, notes...)
	}
	return withNotes(s, notes)
}

func (a RemoveNote) apply(s State) State {
	notes := make([]*model.Note, 0, len(s.Notes))
	for _, n := range s.Notes {
		if n.ID != a.ID {
			notes = append(notes, n)
		}
	}
	return withNotes(s, notes)
}

// withNotes stores a private copy of notes and recomputes the facets.
func withNotes(s State, notes []*model.Note) State {
	s.Notes = append([]*model.Note(nil), notes...)
	s.Courses = DistinctCourses(s.Notes)
	s.Lecturers = DistinctLecturers(s.Notes)
	s.Tags = DistinctTags(s.Notes)
	return s
}

func orAll(v string) string {
	if v == "" {
		return AllOption
	}
	return v
}
