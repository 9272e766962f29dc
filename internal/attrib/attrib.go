// Package attrib encodes the per-surface window manager state that is
// persisted on client windows: the ICCCM WM_STATE value and the attribute
// record that lets a restarted window manager restore shade, maximize,
// stick, workspace and layer.
package attrib

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb"
)

// State is the ICCCM window state.
type State uint32

const (
	StateWithdrawn State = 0
	StateNormal    State = 1
	StateIconic    State = 3
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateWithdrawn:
		return "withdrawn"
	case StateNormal:
		return "normal"
	case StateIconic:
		return "iconic"
	default:
		return fmt.Sprintf("state(%d)", uint32(s))
	}
}

// Flag selects which attribute fields are meaningful.
type Flag uint32

const (
	FlagShaded      Flag = 1 << 0
	FlagMaxHoriz    Flag = 1 << 1
	FlagMaxVert     Flag = 1 << 2
	FlagOmnipresent Flag = 1 << 3
	FlagWorkspace   Flag = 1 << 4
	FlagStack       Flag = 1 << 5
	FlagDecoration  Flag = 1 << 6
)

// Word counts of the persisted records.
const (
	AttributesWords = 8
	HintsWords      = 5
)

// ErrShortRecord is returned when a persisted record does not have the
// expected number of words.
var ErrShortRecord = errors.New("attribute record has wrong length")

// Attributes is the record written by the window manager to every client
// surface it manages.
type Attributes struct {
	Flags     Flag
	Attrib    Flag
	Workspace uint32
	Stack     uint32
	PremaxX   int32
	PremaxY   int32
	PremaxW   uint32
	PremaxH   uint32
}

// Has reports whether f is marked meaningful and set.
func (a Attributes) Has(f Flag) bool {
	return a.Flags&f != 0 && a.Attrib&f != 0
}

// Set marks f meaningful and sets or clears its value.
func (a *Attributes) Set(f Flag, on bool) {
	a.Flags |= f
	if on {
		a.Attrib |= f
	} else {
		a.Attrib &^= f
	}
}

// Clear forgets f entirely.
func (a *Attributes) Clear(f Flag) {
	a.Flags &^= f
	a.Attrib &^= f
}

// Words returns the record as 32-bit property words.
func (a Attributes) Words() []uint32 {
	return []uint32{
		uint32(a.Flags),
		uint32(a.Attrib),
		a.Workspace,
		a.Stack,
		uint32(a.PremaxX),
		uint32(a.PremaxY),
		a.PremaxW,
		a.PremaxH,
	}
}

// AttributesFromWords decodes a record read back from a property.
func AttributesFromWords(w []uint32) (Attributes, error) {
	if len(w) != AttributesWords {
		return Attributes{}, fmt.Errorf("%w: got %d words, want %d", ErrShortRecord, len(w), AttributesWords)
	}
	return Attributes{
		Flags:     Flag(w[0]),
		Attrib:    Flag(w[1]),
		Workspace: w[2],
		Stack:     w[3],
		PremaxX:   int32(w[4]),
		PremaxY:   int32(w[5]),
		PremaxW:   w[6],
		PremaxH:   w[7],
	}, nil
}

// Hints is the record a client may set to request attribute changes.
type Hints struct {
	Flags      Flag
	Attrib     Flag
	Workspace  uint32
	Stack      uint32
	Decoration uint32
}

// Words returns the hints as 32-bit property words.
func (h Hints) Words() []uint32 {
	return []uint32{uint32(h.Flags), uint32(h.Attrib), h.Workspace, h.Stack, h.Decoration}
}

// HintsFromWords decodes a hints record.
func HintsFromWords(w []uint32) (Hints, error) {
	if len(w) != HintsWords {
		return Hints{}, fmt.Errorf("%w: got %d words, want %d", ErrShortRecord, len(w), HintsWords)
	}
	return Hints{
		Flags:      Flag(w[0]),
		Attrib:     Flag(w[1]),
		Workspace:  w[2],
		Stack:      w[3],
		Decoration: w[4],
	}, nil
}

// Encode packs 32-bit words into wire bytes.
func Encode(words []uint32) []byte {
	buf := make([]byte, 4*len(words))
	for i, v := range words {
		xgb.Put32(buf[i*4:], v)
	}
	return buf
}

// Decode unpacks wire bytes into 32-bit words. Trailing bytes that do not
// form a full word are an error.
func Decode(buf []byte) ([]uint32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of words", ErrShortRecord, len(buf))
	}
	words := make([]uint32, len(buf)/4)
	for i := range words {
		words[i] = xgb.Get32(buf[i*4:])
	}
	return words, nil
}
