package catalog

import (
	"maps"
	"slices"
)

// Selection tracks the rows picked in bulk mode.
type Selection struct {
	bulk bool
	ids  map[int64]struct{}
}

func NewSelection() *Selection {
	return &Selection{ids: map[int64]struct{}{}}
}

func (s *Selection) Bulk() bool {
	return s.bulk
}

// ToggleBulk flips bulk mode. Leaving it drops the selection.
func (s *Selection) ToggleBulk() bool {
	s.bulk = !s.bulk
	if !s.bulk {
		s.Clear()
	}

	return s.bulk
}

// Toggle flips the selection of id and reports whether it is now selected.
// Outside bulk mode nothing can be selected.
func (s *Selection) Toggle(id int64) bool {
	if !s.bulk {
		return false
	}

	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}

	s.ids[id] = struct{}{}

	return true
}

func (s *Selection) Selected(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

// IDs returns the selected ids in ascending order.
func (s *Selection) IDs() []int64 {
	return slices.Sorted(maps.Keys(s.ids))
}

func (s *Selection) Len() int {
	return len(s.ids)
}

func (s *Selection) Clear() {
	clear(s.ids)
}
