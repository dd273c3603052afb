package knot

// ModeKind names the active interpretation of key input.
type ModeKind int

const (
	ModeNormal ModeKind = iota
	ModeFiltering
	ModeCreatingNote
	ModeCreatingCategory
	ModeConfirmingDelete
	ModeZen
)

func (k ModeKind) String() string {
	switch k {
	case ModeNormal:
		return "NORMAL"
	case ModeFiltering:
		return "FILTER"
	case ModeCreatingNote:
		return "NEW NOTE"
	case ModeCreatingCategory:
		return "NEW CATEGORY"
	case ModeConfirmingDelete:
		return "DELETE"
	case ModeZen:
		return "ZEN"
	}
	return "UNKNOWN"
}

// mode is implemented only by the types below. Model.handleKey switches on
// the concrete type, so each mode has exactly one key handler.
type mode interface {
	kind() ModeKind
}

type normalMode struct{}

type zenMode struct{}

type filteringMode struct{}

type creatingNoteMode struct {
	category string
}

type creatingCategoryMode struct{}

type confirmDeleteMode struct {
	target deleteTarget
}

// deleteTarget is captured when `d` is pressed so the confirmation acts on
// what the user saw, even if the lists refresh in between.
type deleteTarget struct {
	pane     Focus
	category string
	note     string
	path     string
	position int
}

func (t deleteTarget) label() string {
	if t.pane == FocusNotes {
		return t.category + "/" + t.note
	}
	return t.category
}

func (normalMode) kind() ModeKind           { return ModeNormal }
func (zenMode) kind() ModeKind              { return ModeZen }
func (filteringMode) kind() ModeKind        { return ModeFiltering }
func (creatingNoteMode) kind() ModeKind     { return ModeCreatingNote }
func (creatingCategoryMode) kind() ModeKind { return ModeCreatingCategory }
func (confirmDeleteMode) kind() ModeKind    { return ModeConfirmingDelete }
