package client

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// SortState tracks the column sort of a paged listing. Toggling the same field
// cycles asc, desc, unsorted; toggling another field starts again at asc.
type SortState struct {
	Field     string
	Direction string
	Page      int
}

func (s *SortState) Toggle(field string) {
	if s.Field != field {
		s.Field = field
		s.Direction = SortAsc
		s.Page = 0
		return
	}

	switch s.Direction {
	case SortAsc:
		s.Direction = SortDesc
	default:
		s.Field = ""
		s.Direction = ""
		s.Page = 0
	}
}

// Params renders the state as sort query values ("field,dir")
func (s SortState) Params() []string {
	if s.Field == "" {
		return nil
	}
	return []string{s.Field + "," + s.Direction}
}
