package overlay

import (
	"sync"
	"time"
)

// State is the presentation state of a dismissible overlay.
type State int

const (
	// Unmounted means the overlay renders nothing.
	Unmounted State = iota
	// MountedHidden means the overlay is in the tree but at its closed
	// transform, so a transition can animate from it.
	MountedHidden
	// MountedVisible means the overlay is fully open.
	MountedVisible
)

func (s State) String() string {
	switch s {
	case Unmounted:
		return "unmounted"
	case MountedHidden:
		return "mounted-hidden"
	case MountedVisible:
		return "mounted-visible"
	}
	return "unknown"
}

const (
	// DefaultShowDelay is long enough for a render commit before the
	// animated property toggles.
	DefaultShowDelay = 20 * time.Millisecond
	// DefaultHideDelay matches the closing transition duration.
	DefaultHideDelay = 250 * time.Millisecond
)

// Scheduler schedules a callback after a delay and returns a cancel
// function. Cancel must be a no-op if the callback already ran.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Controller derives presentation timing for one overlay from an external
// open flag. It never owns the flag itself; the parent does. OnChange is
// invoked with the controller lock held and must not call back in.
type Controller struct {
	mu        sync.Mutex
	state     State
	gen       uint64
	cancel    func()
	sched     Scheduler
	showDelay time.Duration
	hideDelay time.Duration
	onChange  func(State)
}

// New builds a controller. A nil scheduler uses real timers; a nil
// onChange is allowed.
func New(sched Scheduler, onChange func(State)) *Controller {
	if sched == nil {
		sched = timerScheduler{}
	}
	return &Controller{
		sched:     sched,
		showDelay: DefaultShowDelay,
		hideDelay: DefaultHideDelay,
		onChange:  onChange,
	}
}

// SetDelays overrides the show and hide delays. Zero values keep the
// defaults.
func (c *Controller) SetDelays(show, hide time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if show > 0 {
		c.showDelay = show
	}
	if hide > 0 {
		c.hideDelay = hide
	}
}

// State returns the current presentation state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetOpen reacts to the parent's open flag flipping. Any pending delayed
// transition is cancelled first so a stale timer can never force a wrong
// state.
func (c *Controller) SetOpen(open bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPending()

	if open {
		switch c.state {
		case Unmounted:
			c.setState(MountedHidden)
			c.schedule(c.showDelay, MountedVisible)
		case MountedHidden:
			// Closing was in progress; keep the mount and animate back in.
			c.schedule(c.showDelay, MountedVisible)
		}
		return
	}

	switch c.state {
	case MountedVisible:
		c.setState(MountedHidden)
		c.schedule(c.hideDelay, Unmounted)
	case MountedHidden:
		c.schedule(c.hideDelay, Unmounted)
	}
}

// Stop cancels any pending transition. Call on teardown of the enclosing
// view.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPending()
}

func (c *Controller) schedule(d time.Duration, next State) {
	c.gen++
	gen := c.gen
	c.cancel = c.sched.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.gen {
			return
		}
		c.cancel = nil
		c.setState(next)
	})
}

func (c *Controller) cancelPending() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	c.state = s
	if c.onChange != nil {
		c.onChange(s)
	}
}
