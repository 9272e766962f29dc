package window

import "time"

// FocusPolicy decides when pointer movement moves the input focus.
type FocusPolicy int

const (
	ClickToFocus FocusPolicy = iota
	SloppyFocus
	SemiSloppyFocus
)

// String returns the string representation of the focus policy
func (p FocusPolicy) String() string {
	switch p {
	case ClickToFocus:
		return "click"
	case SloppyFocus:
		return "sloppy"
	case SemiSloppyFocus:
		return "semi-sloppy"
	default:
		return "unknown"
	}
}

// Theme holds the decoration sizes frames are laid out with.
type Theme struct {
	BorderWidth  int
	TitleHeight  int
	HandleHeight int
}

// Options are the user preferences the window core consults.
type Options struct {
	FocusPolicy       FocusPolicy
	FocusNew          bool
	AutoRaise         bool
	AutoRaiseDelay    time.Duration
	ClickRaises       bool
	OpaqueMove        bool
	WorkspaceWarping  bool
	EdgeSnapThreshold int
	ShowPosition      bool
	DefaultLayer      int
	MenuLayer         int
	NumLayers         int
	Theme             Theme
}

// DefaultOptions returns the preferences used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		FocusPolicy:    ClickToFocus,
		FocusNew:       true,
		AutoRaiseDelay: 250 * time.Millisecond,
		ClickRaises:    true,
		OpaqueMove:     true,
		DefaultLayer:   8,
		MenuLayer:      0,
		NumLayers:      13,
		Theme: Theme{
			BorderWidth:  1,
			TitleHeight:  18,
			HandleHeight: 6,
		},
	}
}

func (o Options) sloppy() bool {
	return o.FocusPolicy != ClickToFocus
}
