package player

import "context"

// Status is the media status a side reports
type Status int

const (
	StatusNoMedia Status = iota
	StatusLoading
	StatusPlaying
	StatusEndOfMedia
	StatusInvalidMedia
)

func (s Status) String() string {
	switch s {
	case StatusNoMedia:
		return "no-media"
	case StatusLoading:
		return "loading"
	case StatusPlaying:
		return "playing"
	case StatusEndOfMedia:
		return "end-of-media"
	case StatusInvalidMedia:
		return "invalid-media"
	default:
		return "unknown"
	}
}

// MediaPlayer is one playback slot. Status must reflect a Load as soon as
// Load returns.
type MediaPlayer interface {
	SetCaption(ctx context.Context, text string) error
	SetMuted(ctx context.Context, muted bool) error
	Load(ctx context.Context, path string) error
	Play(ctx context.Context) error
	Status() Status
}

// Selection is what the selection dialog hands to the player. Values are
// passed through unvalidated.
type Selection struct {
	LeftFolder   string
	RightFolder  string
	LeftCaption  string
	RightCaption string
}
