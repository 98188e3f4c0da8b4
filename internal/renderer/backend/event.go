package backend

// EventType identifies what an Event carries.
type EventType int

const (
	// EventNone is returned once the backend has shut down.
	EventNone EventType = iota
	EventKey
	EventResize
	EventInterrupt
	// EventOther is anything the editor ignores, such as mouse or focus.
	EventOther
)

// Event is one input event. Key, Rune and Mod are set for EventKey;
// Width and Height, in cells, for EventResize.
type Event struct {
	Type EventType

	Key  Key
	Rune rune
	Mod  ModMask

	Width, Height int
}

// Key is an editing key. Printable input arrives as KeyRune.
type Key int

const (
	KeyNone Key = iota
	KeyRune
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyCtrlA
	KeyCtrlC
	KeyCtrlQ
	KeyCtrlS
	KeyCtrlY
	KeyCtrlZ
)

// ModMask is a set of held modifier keys.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has reports whether mod is held.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}
