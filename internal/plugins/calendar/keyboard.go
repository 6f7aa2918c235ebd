package calendar

// Key is a keyboard key name as reported by KeyboardEvent.key.
type Key string

const (
	KeyLeft   Key = "ArrowLeft"
	KeyRight  Key = "ArrowRight"
	KeyUp     Key = "ArrowUp"
	KeyDown   Key = "ArrowDown"
	KeyHome   Key = "Home"
	KeyEnd    Key = "End"
	KeyEnter  Key = "Enter"
	KeySpace  Key = "Space"
	KeyEscape Key = "Escape"
)

// ParseKey normalizes browser key names. The space bar arrives as " ".
func ParseKey(s string) Key {
	switch s {
	case " ", "Spacebar":
		return KeySpace
	case "Esc":
		return KeyEscape
	}
	return Key(s)
}

// GridFocus is the keyboard focus over the 42 month cells. A nil Index
// means no cell has focus yet.
type GridFocus struct {
	Index *int `json:"index,omitempty"`
}

// Focused returns the focused index.
func (f GridFocus) Focused() (int, bool) {
	if f.Index == nil {
		return 0, false
	}
	return *f.Index, true
}

// Focus moves focus to i, clamped to the grid.
func (f GridFocus) Focus(i int) GridFocus {
	i = clampIndex(i)
	return GridFocus{Index: &i}
}

// Blur clears focus.
func (f GridFocus) Blur() GridFocus {
	return GridFocus{}
}

// HandleKey applies one key press. selected is true for Enter and Space,
// which pick the focused cell without moving focus. Keys are ignored while
// nothing is focused.
func (f GridFocus) HandleKey(k Key) (next GridFocus, selected bool) {
	i, ok := f.Focused()
	if !ok {
		return f, false
	}

	switch k {
	case KeyLeft:
		i--
	case KeyRight:
		i++
	case KeyUp:
		i -= DaysPerWeek
	case KeyDown:
		i += DaysPerWeek
	case KeyHome:
		i = rowStart(i)
	case KeyEnd:
		i = rowStart(i) + DaysPerWeek - 1
	case KeyEnter, KeySpace:
		return f, true
	default:
		return f, false
	}
	return f.Focus(i), false
}

func rowStart(i int) int {
	return DaysPerWeek * (i / DaysPerWeek)
}

func clampIndex(i int) int {
	return min(max(i, 0), GridCells-1)
}
