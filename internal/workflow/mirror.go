package workflow

import (
	"time"

	"sourcebot/internal/types"
)

// RefreshInterval is the polling cadence while the workflow is active.
const RefreshInterval = 3 * time.Second

// Mirror holds the single client-side copy of the orchestrator state. Every
// command response and refresh tick replaces the state wholesale; whichever
// response completes last wins. The refresh generation counter keeps exactly
// one polling chain alive: bumping it orphans any scheduled tick.
type Mirror struct {
	state      *types.WorkflowState
	loading    bool
	lastErr    string
	refreshGen int
	refreshing bool
}

func NewMirror() *Mirror {
	return &Mirror{}
}

func (m *Mirror) State() *types.WorkflowState {
	if m == nil {
		return nil
	}
	return m.state
}

func (m *Mirror) Status() types.WorkflowStatus {
	if m == nil || m.state == nil {
		return types.StatusIdle
	}
	return m.state.Status
}

func (m *Mirror) Loading() bool {
	return m != nil && m.loading
}

func (m *Mirror) SetLoading(loading bool) {
	if m == nil {
		return
	}
	m.loading = loading
}

func (m *Mirror) LastError() string {
	if m == nil {
		return ""
	}
	return m.lastErr
}

// Apply replaces the mirror and clears the last error.
func (m *Mirror) Apply(state *types.WorkflowState) {
	if m == nil || state == nil {
		return
	}
	m.state = state
	m.lastErr = ""
}

// Fail records an error without touching the mirrored state.
func (m *Mirror) Fail(message string) {
	if m == nil {
		return
	}
	m.lastErr = message
}

// ShouldRefresh reports whether the polling loop belongs on.
func (m *Mirror) ShouldRefresh() bool {
	return m != nil && m.state != nil && m.state.Status.Active()
}

// StartRefresh begins a new polling chain if one is due and none is running.
// The returned generation tags every tick of the chain.
func (m *Mirror) StartRefresh() (gen int, ok bool) {
	if m == nil || m.refreshing || !m.ShouldRefresh() {
		return 0, false
	}
	m.refreshGen++
	m.refreshing = true
	return m.refreshGen, true
}

// ContinueRefresh reports whether a tick from the given chain is still
// current. A stale generation means the chain was cancelled; a terminal
// status ends the chain.
func (m *Mirror) ContinueRefresh(gen int) bool {
	if m == nil || !m.refreshing || gen != m.refreshGen {
		return false
	}
	if !m.ShouldRefresh() {
		m.refreshing = false
		return false
	}
	return true
}

// CancelRefresh orphans any scheduled tick. Called when the user issues a
// command and on teardown; the caller restarts the chain afterwards if the
// status still warrants it.
func (m *Mirror) CancelRefresh() {
	if m == nil {
		return
	}
	m.refreshGen++
	m.refreshing = false
}
