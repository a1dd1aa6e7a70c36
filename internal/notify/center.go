package notify

import (
	"time"

	"sourcebot/internal/types"
)

// MaxNotifications caps the queue; the oldest entry falls off on overflow.
const MaxNotifications = 50

// Auto-play is deliberately delayed: the orchestrator may announce a
// notification slightly before its audio asset is fully written. voice_ready
// needs the shortest grace because the asset already exists by then.
const (
	AutoPlayDelayVoiceReady = 500 * time.Millisecond
	AutoPlayDelayHistory    = time.Second
	AutoPlayDelayStream     = 1500 * time.Millisecond
)

const (
	ToastDurationCritical = 12 * time.Second
	ToastDurationDefault  = 6 * time.Second
)

// Toast describes the transient banner requested for an arrival.
type Toast struct {
	Title    string
	Message  string
	Priority types.Priority
	Duration time.Duration
}

// AutoPlay asks the caller to play a notification's voice after a delay.
type AutoPlay struct {
	NotificationID string
	Delay          time.Duration
}

// Effects are the side effects one inbound payload asks for. The center owns
// only queue state; the UI layer turns effects into scheduled commands.
type Effects struct {
	Toast    *Toast
	AutoPlay *AutoPlay
}

// Center owns the notification queue, the unread counter, and the connection
// flag. It is driven entirely from the UI loop; no internal locking.
type Center struct {
	base      string
	queue     []types.Notification
	unread    int
	connected bool
}

func NewCenter(notifyBase string) *Center {
	return &Center{base: notifyBase}
}

// Notifications returns the queue, newest first.
func (c *Center) Notifications() []types.Notification {
	if c == nil {
		return nil
	}
	return c.queue
}

func (c *Center) Len() int {
	if c == nil {
		return 0
	}
	return len(c.queue)
}

func (c *Center) UnreadCount() int {
	if c == nil {
		return 0
	}
	return c.unread
}

func (c *Center) Connected() bool {
	return c != nil && c.connected
}

func (c *Center) SetConnected(connected bool) {
	if c == nil {
		return
	}
	c.connected = connected
}

// SeedHistory replaces the queue with the normalized prefetch and marks every
// entry unread. If an urgent entry already carries voice, one auto-play is
// requested.
func (c *Center) SeedHistory(raw []map[string]any) (AutoPlay, bool) {
	if c == nil {
		return AutoPlay{}, false
	}
	queue := make([]types.Notification, 0, len(raw))
	for _, entry := range raw {
		queue = append(queue, types.NormalizeNotification(entry, c.base))
	}
	if len(queue) > MaxNotifications {
		queue = queue[:MaxNotifications]
	}
	c.queue = queue
	c.unread = len(queue)

	for _, n := range queue {
		if n.VoiceAvailable && n.Priority.Urgent() {
			return AutoPlay{NotificationID: n.ID, Delay: AutoPlayDelayHistory}, true
		}
	}
	return AutoPlay{}, false
}

// HandleEvent dispatches one stream payload. voice_ready events update an
// existing entry in place; a voice_ready for an unknown id is a no-op.
// Anything else is a new notification: prepended, capped, counted, toasted.
func (c *Center) HandleEvent(raw map[string]any) Effects {
	if c == nil || len(raw) == 0 {
		return Effects{}
	}

	if event, ok := types.VoiceReadyFromPayload(raw); ok {
		return c.applyVoiceReady(event)
	}

	n := types.NormalizeNotification(raw, c.base)
	c.upsert(n)
	c.unread++

	effects := Effects{Toast: toastFor(n)}
	if n.VoiceAvailable && n.Priority.Urgent() {
		effects.AutoPlay = &AutoPlay{NotificationID: n.ID, Delay: AutoPlayDelayStream}
	}
	return effects
}

func (c *Center) applyVoiceReady(event types.VoiceReady) Effects {
	if event.NotificationID == "" {
		return Effects{}
	}
	for i := range c.queue {
		if c.queue[i].ID != event.NotificationID {
			continue
		}
		c.queue[i].VoiceAvailable = true
		c.queue[i].VoiceURL = types.ResolveVoiceURL(event.VoiceURL, event.NotificationID, c.base)
		if c.queue[i].Priority.Urgent() {
			return Effects{AutoPlay: &AutoPlay{NotificationID: event.NotificationID, Delay: AutoPlayDelayVoiceReady}}
		}
		return Effects{}
	}
	return Effects{}
}

// upsert prepends a new entry or replaces an existing one in place, keeping
// at most one entry per id.
func (c *Center) upsert(n types.Notification) {
	for i := range c.queue {
		if c.queue[i].ID == n.ID {
			c.queue[i] = n
			return
		}
	}
	c.queue = append([]types.Notification{n}, c.queue...)
	if len(c.queue) > MaxNotifications {
		c.queue = c.queue[:MaxNotifications]
	}
}

// Find returns the notification with the given id.
func (c *Center) Find(id string) (types.Notification, bool) {
	if c == nil {
		return types.Notification{}, false
	}
	for _, n := range c.queue {
		if n.ID == id {
			return n, true
		}
	}
	return types.Notification{}, false
}

// ApplyApproval records a successful approval response. The POST has already
// succeeded; failures never reach this method.
func (c *Center) ApplyApproval(id string, approved bool) bool {
	if c == nil {
		return false
	}
	for i := range c.queue {
		if c.queue[i].ID != id {
			continue
		}
		if approved {
			c.queue[i].Status = types.NotificationStatusApproved
		} else {
			c.queue[i].Status = types.NotificationStatusRejected
		}
		c.queue[i].RequiresApproval = false
		return true
	}
	return false
}

// MarkAsRead zeroes the unread counter; the queue is untouched.
func (c *Center) MarkAsRead() {
	if c == nil {
		return
	}
	c.unread = 0
}

func (c *Center) ClearAll() {
	if c == nil {
		return
	}
	c.queue = nil
	c.unread = 0
}

func toastFor(n types.Notification) *Toast {
	duration := ToastDurationDefault
	if n.Priority == types.PriorityCritical {
		duration = ToastDurationCritical
	}
	return &Toast{
		Title:    n.Title,
		Message:  n.Message,
		Priority: n.Priority,
		Duration: duration,
	}
}
