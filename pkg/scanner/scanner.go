package scanner

import (
	"sidx/pkg/iface/stateif"
	"sidx/pkg/model"
)

// mergeScanner is a lazy k-way merge over pre-sorted cell runs. Sources are
// listed in precedence order: when heads share one identity, the earliest
// source supplies the cell and every tied head is consumed. An optional
// include filter drops cells during advance, so Seek never skips a filter's
// side effects.
type mergeScanner struct {
	cmp     model.Comparator
	sources [][]*model.Cell
	idx     []int
	include func(*model.Cell) bool
	next    *model.Cell
}

func newMergeScanner(cmp model.Comparator, include func(*model.Cell) bool, sources ...[]*model.Cell) *mergeScanner {
	s := &mergeScanner{
		cmp:     cmp,
		sources: sources,
		idx:     make([]int, len(sources)),
		include: include,
	}
	s.advance()
	return s
}

func (s *mergeScanner) advance() {
	for {
		win := -1
		for i := range s.sources {
			if s.idx[i] >= len(s.sources[i]) {
				continue
			}
			head := s.sources[i][s.idx[i]]
			if win < 0 || s.cmp.Compare(head, s.sources[win][s.idx[win]]) < 0 {
				win = i
			}
		}
		if win < 0 {
			s.next = nil
			return
		}
		chosen := s.sources[win][s.idx[win]]
		for i := range s.sources {
			if s.idx[i] >= len(s.sources[i]) {
				continue
			}
			if s.cmp.Compare(s.sources[i][s.idx[i]], chosen) == 0 {
				s.idx[i]++
			}
		}
		if s.include != nil && !s.include(chosen) {
			continue
		}
		s.next = chosen
		return
	}
}

func (s *mergeScanner) Peek() *model.Cell {
	return s.next
}

func (s *mergeScanner) Next() *model.Cell {
	cell := s.next
	if cell != nil {
		s.advance()
	}
	return cell
}

func (s *mergeScanner) Seek(target *model.Cell) bool {
	for s.next != nil && s.cmp.Compare(s.next, target) < 0 {
		s.advance()
	}
	return s.next != nil
}

var _ stateif.Scanner = (*mergeScanner)(nil)
