package player

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"sbs-player/clips"
)

// side holds the per-slot state owned by the controller
type side struct {
	name       string
	folder     string
	caption    string
	candidates []string
	muted      bool
	current    string
	player     MediaPlayer
}

// Controller keeps two sides looping: both start together and both restart
// with fresh random picks once both have reached end of media.
type Controller struct {
	left, right *side
	extensions  []string
	rng         *rand.Rand
	logger      *slog.Logger
	changes     chan struct{}
	onCycle     func(left, right string)
}

// Option configures a Controller
type Option func(*Controller)

// WithRand sets the random source used for picks
func WithRand(rng *rand.Rand) Option {
	return func(c *Controller) { c.rng = rng }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithExtensions overrides the recognized video extensions
func WithExtensions(exts []string) Option {
	return func(c *Controller) { c.extensions = exts }
}

// NewController creates a controller for the two given players
func NewController(left, right MediaPlayer, opts ...Option) *Controller {
	c := &Controller{
		left:       &side{name: "left", player: left},
		right:      &side{name: "right", player: right},
		extensions: []string{".mp4", ".avi", ".mkv"},
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:     slog.Default(),
		changes:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnCycle registers a hook called after every joint start with the chosen
// files. It runs on the goroutine driving the controller.
func (c *Controller) OnCycle(fn func(left, right string)) {
	c.onCycle = fn
}

// PlayVideos sets captions, builds both candidate lists, mutes both sides
// and starts the first cycle. Captions are not touched again afterwards.
// started is false when either folder has no clips.
func (c *Controller) PlayVideos(ctx context.Context, sel Selection) (started bool, err error) {
	c.left.folder, c.left.caption = sel.LeftFolder, sel.LeftCaption
	c.right.folder, c.right.caption = sel.RightFolder, sel.RightCaption

	for _, s := range c.sides() {
		if err := s.player.SetCaption(ctx, s.caption); err != nil {
			return false, fmt.Errorf("%s caption: %w", s.name, err)
		}
	}

	for _, s := range c.sides() {
		files, err := clips.Scan(s.folder, c.extensions)
		if err != nil {
			return false, fmt.Errorf("%s folder: %w", s.name, err)
		}
		s.candidates = files
		c.logger.Info("scanned folder", "side", s.name, "folder", s.folder, "clips", len(files))
	}

	for _, s := range c.sides() {
		if err := s.player.SetMuted(ctx, true); err != nil {
			return false, fmt.Errorf("%s mute: %w", s.name, err)
		}
		s.muted = true
		c.logger.Debug("side ready", "side", s.name, "clips", len(s.candidates), "muted", s.muted)
	}

	return c.PlayNextVideos(ctx)
}

// PlayNextVideos picks one clip per side and starts both. When either
// candidate list is empty it does nothing and reports false.
func (c *Controller) PlayNextVideos(ctx context.Context) (bool, error) {
	if len(c.left.candidates) == 0 || len(c.right.candidates) == 0 {
		c.logger.Debug("not starting cycle, a side has no clips",
			"left", len(c.left.candidates), "right", len(c.right.candidates))
		return false, nil
	}

	for _, s := range c.sides() {
		path, _ := clips.Pick(c.rng, s.candidates)
		if err := s.player.Load(ctx, path); err != nil {
			return false, fmt.Errorf("%s load %q: %w", s.name, path, err)
		}
		s.current = path
	}

	for _, s := range c.sides() {
		if err := s.player.Play(ctx); err != nil {
			return false, fmt.Errorf("%s play: %w", s.name, err)
		}
	}

	c.logger.Info("started cycle", "left", c.left.current, "right", c.right.current)
	if c.onCycle != nil {
		c.onCycle(c.left.current, c.right.current)
	}
	return true, nil
}

// CheckVideosFinished restarts both sides when both currently report end
// of media. It reads live status rather than any notification payload.
func (c *Controller) CheckVideosFinished(ctx context.Context) (bool, error) {
	if !bothEnded(c.left.player.Status(), c.right.player.Status()) {
		return false, nil
	}
	return c.PlayNextVideos(ctx)
}

func bothEnded(left, right Status) bool {
	return left == StatusEndOfMedia && right == StatusEndOfMedia
}

// StatusChanged notifies the controller that a side's status moved. It never
// blocks and may be called from any goroutine; bursts collapse into one check.
func (c *Controller) StatusChanged() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

// Run handles status notifications until ctx is done
func (c *Controller) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.changes:
			if _, err := c.CheckVideosFinished(ctx); err != nil {
				c.logger.Warn("restart failed", "err", err)
			}
		}
	}
}

// Captions returns the captions set by PlayVideos
func (c *Controller) Captions() (left, right string) {
	return c.left.caption, c.right.caption
}

// Muted reports whether PlayVideos has muted each side
func (c *Controller) Muted() (left, right bool) {
	return c.left.muted, c.right.muted
}

// Current returns the clips most recently started on each side
func (c *Controller) Current() (left, right string) {
	return c.left.current, c.right.current
}

func (c *Controller) sides() [2]*side {
	return [2]*side{c.left, c.right}
}
