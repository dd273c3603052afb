package knot

import (
	"github.com/Paintersrp/knot/internal/filter"
	"github.com/Paintersrp/knot/internal/storage"
)

type Focus int

const (
	FocusCategories Focus = iota
	FocusNotes
)

func (f Focus) String() string {
	switch f {
	case FocusCategories:
		return "categories"
	case FocusNotes:
		return "notes"
	}
	return "unknown"
}

type filterState struct {
	active bool
	pane   Focus
	query  string
	// prior is the name selected in pane when filtering started.
	prior string
}

// Nav is the cursor state of the two lists. Positions index the visible
// (possibly filtered) views, which in turn index the authoritative lists.
// A position is -1 exactly when its view is empty.
type Nav struct {
	categories []storage.Category
	notes      []storage.Note

	catView  []int
	noteView []int

	cat   int
	note  int
	focus Focus

	filter filterState
}

func NewNav() Nav {
	return Nav{cat: -1, note: -1}
}

func (n *Nav) Focus() Focus { return n.focus }

// SwitchFocus toggles between the panes. Selections are untouched.
func (n *Nav) SwitchFocus() {
	if n.focus == FocusCategories {
		n.focus = FocusNotes
	} else {
		n.focus = FocusCategories
	}
}

// MoveUp and MoveDown move the focused pane's cursor, clamped to its visible
// list. They report whether the selected category changed.
func (n *Nav) MoveUp() bool   { return n.move(-1) }
func (n *Nav) MoveDown() bool { return n.move(1) }

func (n *Nav) move(delta int) bool {
	l := n.viewLen(n.focus)
	if l == 0 {
		return false
	}

	p := n.pos(n.focus)
	next := min(max(*p+delta, 0), l-1)
	if next == *p {
		return false
	}
	*p = next
	return n.focus == FocusCategories
}

// SelectCategory selects visible category i, clamped. It reports whether the
// selection changed.
func (n *Nav) SelectCategory(i int) bool {
	return n.selectAt(FocusCategories, i)
}

func (n *Nav) SelectNote(i int) bool {
	return n.selectAt(FocusNotes, i)
}

func (n *Nav) selectAt(f Focus, i int) bool {
	l := n.viewLen(f)
	if l == 0 {
		return false
	}
	p := n.pos(f)
	next := min(max(i, 0), l-1)
	if next == *p {
		return false
	}
	*p = next
	return true
}

// SelectCategoryNamed selects the visible category called name.
func (n *Nav) SelectCategoryNamed(name string) bool {
	i := n.findVisible(FocusCategories, name)
	if i < 0 {
		return false
	}
	n.cat = i
	return true
}

func (n *Nav) SelectNoteNamed(name string) bool {
	i := n.findVisible(FocusNotes, name)
	if i < 0 {
		return false
	}
	n.note = i
	return true
}

// SetCategories replaces the category list. The selected category is kept
// by name when it is still listed; otherwise the position is clamped. It
// reports whether the selected category changed.
func (n *Nav) SetCategories(cats []storage.Category) bool {
	prev := n.selectedName(FocusCategories)

	n.categories = cats
	n.rebuild(FocusCategories)
	if i := n.findVisible(FocusCategories, prev); i >= 0 {
		n.cat = i
	}
	n.clamp(FocusCategories)

	return n.selectedName(FocusCategories) != prev
}

// SetNotes replaces the notes of the selected category. With keep the
// previously selected note stays selected if it is still listed and the
// position is clamped otherwise. Without keep the list is treated as a new
// category: the first note is selected and a notes filter is dropped.
func (n *Nav) SetNotes(notes []storage.Note, keep bool) {
	prev := n.selectedName(FocusNotes)

	if !keep && n.filter.pane == FocusNotes {
		n.filter = filterState{}
	}

	n.notes = notes
	n.rebuild(FocusNotes)
	switch {
	case !keep:
		n.note = 0
	case prev != "":
		if i := n.findVisible(FocusNotes, prev); i >= 0 {
			n.note = i
		}
	}
	n.clamp(FocusNotes)
}

func (n *Nav) SelectedCategory() (storage.Category, bool) {
	if n.cat < 0 || n.cat >= len(n.catView) {
		return storage.Category{}, false
	}
	return n.categories[n.catView[n.cat]], true
}

func (n *Nav) SelectedNote() (storage.Note, bool) {
	if n.note < 0 || n.note >= len(n.noteView) {
		return storage.Note{}, false
	}
	return n.notes[n.noteView[n.note]], true
}

// CategoryIndex and NoteIndex are positions in the visible lists, -1 for
// no selection.
func (n *Nav) CategoryIndex() int { return n.cat }
func (n *Nav) NoteIndex() int     { return n.note }

func (n *Nav) VisibleCategories() []storage.Category {
	out := make([]storage.Category, len(n.catView))
	for i, idx := range n.catView {
		out[i] = n.categories[idx]
	}
	return out
}

func (n *Nav) VisibleNotes() []storage.Note {
	out := make([]storage.Note, len(n.noteView))
	for i, idx := range n.noteView {
		out[i] = n.notes[idx]
	}
	return out
}

// CategoryPosition maps visible position i to the category's position in
// the full listing, which determines its palette color.
func (n *Nav) CategoryPosition(i int) int {
	if i < 0 || i >= len(n.catView) {
		return -1
	}
	return n.catView[i]
}

func (n *Nav) FilterActive() bool  { return n.filter.active }
func (n *Nav) FilterPane() Focus   { return n.filter.pane }
func (n *Nav) FilterQuery() string { return n.filter.query }

// StartFilter activates an empty filter scoped to the focused pane.
func (n *Nav) StartFilter() {
	n.clearFilterState()
	n.filter = filterState{active: true, pane: n.focus, prior: n.selectedName(n.focus)}
}

// SetFilterQuery re-runs the filter. The selected item stays selected while
// it matches; otherwise the first match is selected. It reports whether the
// selected category changed.
func (n *Nav) SetFilterQuery(query string) bool {
	if !n.filter.active {
		return false
	}

	prevCat := n.selectedName(FocusCategories)
	pane := n.filter.pane
	prev := n.selectedName(pane)

	n.filter.query = query
	n.rebuild(pane)

	p := n.pos(pane)
	if i := n.findVisible(pane, prev); i >= 0 {
		*p = i
	} else {
		*p = 0
	}
	n.clamp(pane)

	return n.selectedName(FocusCategories) != prevCat
}

// CommitFilter ends filtering with the first match selected. With retain the
// filtered view stays in place; otherwise the full list returns with the
// match still selected. Without any match it behaves like CancelFilter.
func (n *Nav) CommitFilter(retain bool) bool {
	if !n.filter.active {
		return false
	}

	pane := n.filter.pane
	if n.viewLen(pane) == 0 {
		return n.CancelFilter()
	}

	prevCat := n.selectedName(FocusCategories)
	p := n.pos(pane)
	*p = 0
	if !retain {
		first := n.selectedName(pane)
		n.filter = filterState{}
		n.rebuild(pane)
		*p = n.findVisible(pane, first)
	}
	n.clamp(pane)

	return n.selectedName(FocusCategories) != prevCat
}

// CancelFilter drops the filter and restores the selection from before it
// started, or the first item when that is gone.
func (n *Nav) CancelFilter() bool {
	if !n.filter.active {
		return false
	}

	prevCat := n.selectedName(FocusCategories)
	pane, prior := n.filter.pane, n.filter.prior

	n.filter = filterState{}
	n.rebuild(pane)

	p := n.pos(pane)
	*p = n.findVisible(pane, prior)
	if *p < 0 {
		*p = 0
	}
	n.clamp(pane)

	return n.selectedName(FocusCategories) != prevCat
}

// ClearFilter drops any filter, keeping the current selection.
func (n *Nav) ClearFilter() bool {
	if !n.filter.active {
		return false
	}
	prevCat := n.selectedName(FocusCategories)
	n.clearFilterState()
	return n.selectedName(FocusCategories) != prevCat
}

func (n *Nav) clearFilterState() {
	if !n.filter.active {
		return
	}

	pane := n.filter.pane
	prev := n.selectedName(pane)
	n.filter = filterState{}
	n.rebuild(pane)
	if i := n.findVisible(pane, prev); i >= 0 {
		*n.pos(pane) = i
	}
	n.clamp(pane)
}

func (n *Nav) pos(f Focus) *int {
	if f == FocusCategories {
		return &n.cat
	}
	return &n.note
}

func (n *Nav) viewLen(f Focus) int {
	if f == FocusCategories {
		return len(n.catView)
	}
	return len(n.noteView)
}

func (n *Nav) rebuild(f Focus) {
	query := ""
	if n.filter.active && n.filter.pane == f {
		query = n.filter.query
	}

	if f == FocusCategories {
		n.catView = filter.Apply(query, n.categories, func(c storage.Category) string { return c.Name })
		return
	}
	n.noteView = filter.Apply(query, n.notes, func(nt storage.Note) string { return nt.Title })
}

func (n *Nav) clamp(f Focus) {
	p := n.pos(f)
	l := n.viewLen(f)
	switch {
	case l == 0:
		*p = -1
	case *p < 0:
		*p = 0
	case *p >= l:
		*p = l - 1
	}
}

func (n *Nav) selectedName(f Focus) string {
	if f == FocusCategories {
		if c, ok := n.SelectedCategory(); ok {
			return c.Name
		}
		return ""
	}
	if nt, ok := n.SelectedNote(); ok {
		return nt.Name
	}
	return ""
}

func (n *Nav) findVisible(f Focus, name string) int {
	if name == "" {
		return -1
	}
	if f == FocusCategories {
		for i, idx := range n.catView {
			if n.categories[idx].Name == name {
				return i
			}
		}
		return -1
	}
	for i, idx := range n.noteView {
		if n.notes[idx].Name == name {
			return i
		}
	}
	return -1
}
