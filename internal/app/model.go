package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sourcebot/internal/audio"
	"sourcebot/internal/client"
	"sourcebot/internal/config"
	"sourcebot/internal/logging"
	"sourcebot/internal/notify"
	"sourcebot/internal/types"
	"sourcebot/internal/workflow"
)

const (
	maxEventsPerTick   = 64
	minContentHeight   = 6
	goalInputHeight    = 3
	collapsedDraftRows = 3
)

// Draft email statuses local to this session. The orchestrator does not track
// per-email delivery; marking one sent is announced through the notification
// service instead.
const (
	draftStatusDraft    = "draft"
	draftStatusApproved = "approved"
	draftStatusSent     = "sent"
)

type Model struct {
	cfg      config.Config
	api      *client.Client
	notifier *client.NotifyClient
	mirror   *workflow.Mirror
	center   *notify.Center
	player   *audio.Player
	stream   *client.StreamConsumer
	log      *logging.Logger

	goalInput textarea.Model
	viewport  viewport.Model
	loader    spinner.Model

	width  int
	height int
	status string

	toastText     string
	toastPriority types.Priority
	toastUntil    time.Time

	inputFocused   bool
	notifOpen      bool
	notifIndex     int
	draftIndex     int
	draftsExpanded bool
	draftStatus    map[string]string
	report         string
	showReport     bool
}

func NewModel(cfg config.Config, log *logging.Logger) *Model {
	vp := viewport.New(40, minContentHeight)

	goalInput := textarea.New()
	goalInput.Placeholder = "Describe a sourcing goal, e.g. find 5 suppliers of stainless fasteners under £2/unit"
	goalInput.SetHeight(goalInputHeight)
	goalInput.CharLimit = 2000
	goalInput.ShowLineNumbers = false

	loader := spinner.New()
	loader.Spinner = spinner.Line
	loader.Style = lipgloss.NewStyle()

	if log == nil {
		log = logging.Nop()
	}

	return &Model{
		cfg:         cfg,
		api:         client.New(cfg.OrchestratorBaseURL()),
		notifier:    client.NewNotify(cfg.NotifyBaseURL()),
		mirror:      workflow.NewMirror(),
		center:      notify.NewCenter(cfg.NotifyBaseURL()),
		player:      audio.NewPlayer(),
		log:         log,
		goalInput:   goalInput,
		viewport:    vp,
		loader:      loader,
		draftStatus: map[string]string{},
	}
}

func Run(cfg config.Config, log *logging.Logger) error {
	model := NewModel(cfg, log)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	model.teardown()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		fetchStateCmd(m.api),
		fetchHistoryCmd(m.notifier),
		openStreamCmd(m.notifier),
		tickCmd(),
	)
}

func (m *Model) teardown() {
	if m.stream != nil {
		m.stream.Close()
		m.stream = nil
	}
	m.mirror.CancelRefresh()
	m.player.Stop()
	_ = m.log.Close()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		cmds := m.consumeStreamTick()
		if m.mirror.Loading() {
			m.loader, _ = m.loader.Update(spinner.TickMsg{Time: time.Time(msg), ID: m.loader.ID()})
		}
		cmds = append(cmds, tickCmd())
		return m, tea.Batch(cmds...)

	case refreshTickMsg:
		if m.mirror.ContinueRefresh(msg.gen) {
			return m, tea.Batch(fetchStateCmd(m.api), refreshTickCmd(msg.gen))
		}
		return m, nil

	case workflowStateMsg:
		if msg.err != nil {
			m.mirror.Fail(msg.err.Error())
			m.log.Warn("state refresh failed", logging.F("error", msg.err))
			m.syncViewport()
			return m, nil
		}
		m.mirror.Apply(msg.state)
		m.syncViewport()
		return m, m.maybeStartRefresh()

	case goalSubmittedMsg:
		if msg.err != nil {
			return m, m.failCommand("submit goal", msg.err)
		}
		m.goalInput.Reset()
		m.inputFocused = false
		m.goalInput.Blur()
		// Research kicks off automatically once the goal is accepted; the
		// delay gives the planner a head start.
		return m, tea.Batch(
			m.applyCommandResponse(msg.message, "goal submitted", msg.state),
			researchDelayCmd(),
		)

	case researchDelayMsg:
		m.mirror.CancelRefresh()
		m.mirror.SetLoading(true)
		return m, startResearchCmd(m.api)

	case researchStartedMsg:
		if msg.err != nil {
			return m, m.failCommand("start research", msg.err)
		}
		return m, m.applyCommandResponse(msg.message, "research started", msg.state)

	case findingsDecisionMsg:
		if msg.err != nil {
			return m, m.failCommand("findings decision", msg.err)
		}
		fallback := "findings rejected"
		if msg.approved {
			fallback = "findings approved, drafting outreach"
		}
		return m, m.applyCommandResponse(msg.message, fallback, msg.state)

	case workflowResetMsg:
		if msg.err != nil {
			return m, m.failCommand("reset", msg.err)
		}
		m.goalInput.Reset()
		m.draftStatus = map[string]string{}
		m.draftIndex = 0
		m.draftsExpanded = false
		m.report = ""
		m.showReport = false
		return m, m.applyCommandResponse(msg.message, "workflow reset", msg.state)

	case historyMsg:
		if msg.err != nil {
			m.log.Warn("history prefetch failed", logging.F("error", msg.err))
			m.showErrorToast("notification history unavailable: " + msg.err.Error())
			return m, nil
		}
		if play, ok := m.center.SeedHistory(msg.entries); ok {
			return m, autoPlayCmd(play.NotificationID, play.Delay)
		}
		return m, nil

	case streamOpenedMsg:
		m.stream = msg.stream
		return m, nil

	case notificationDecisionMsg:
		if msg.err != nil {
			m.showErrorToast("approval failed: " + msg.err.Error())
			return m, nil
		}
		m.center.ApplyApproval(msg.id, msg.approved)
		if msg.approved {
			m.showInfoToast("notification approved")
		} else {
			m.showInfoToast("notification rejected")
		}
		return m, nil

	case autoPlayMsg:
		n, ok := m.center.Find(msg.id)
		if !ok || !n.VoiceAvailable || n.VoiceURL == "" {
			return m, nil
		}
		return m, fetchVoiceCmd(m.notifier, n.ID, n.VoiceURL, true)

	case voiceFetchedMsg:
		// Auto-play failures stay quiet; only user-initiated plays toast.
		if msg.err != nil {
			m.log.Warn("voice fetch failed", logging.F("id", msg.id), logging.F("error", msg.err))
			if !msg.auto {
				m.showErrorToast("voice unavailable: " + msg.err.Error())
			}
			return m, nil
		}
		if err := m.player.Play(msg.data); err != nil {
			m.log.Warn("voice playback failed", logging.F("error", err))
			if !msg.auto {
				m.showErrorToast(err.Error())
			}
			return m, nil
		}
		m.status = "playing voice briefing"
		return m, nil

	case textReportMsg:
		if msg.err != nil {
			m.showErrorToast("report unavailable: " + msg.err.Error())
			return m, nil
		}
		m.report = msg.report
		m.showReport = true
		m.syncViewport()
		return m, nil

	case notificationPostedMsg:
		if msg.err != nil {
			m.log.Warn("outbound notification failed", logging.F("error", msg.err))
			m.showErrorToast("notify service: " + msg.err.Error())
		}
		return m, nil

	case clipboardResultMsg:
		if msg.err != nil {
			m.showErrorToast("copy failed: " + msg.err.Error())
			return m, nil
		}
		m.showInfoToast(msg.success)
		return m, nil
	}

	return m, nil
}

// maybeStartRefresh starts the polling chain when the mirrored status calls
// for one and none is running.
func (m *Model) maybeStartRefresh() tea.Cmd {
	if gen, ok := m.mirror.StartRefresh(); ok {
		return refreshTickCmd(gen)
	}
	return nil
}

func (m *Model) failCommand(action string, err error) tea.Cmd {
	m.mirror.SetLoading(false)
	m.mirror.Fail(err.Error())
	m.log.Warn("command failed", logging.F("action", action), logging.F("error", err))
	m.showErrorToast(action + ": " + err.Error())
	m.syncViewport()
	return m.maybeStartRefresh()
}

func (m *Model) applyCommandResponse(message, fallback string, state *types.WorkflowState) tea.Cmd {
	m.mirror.SetLoading(false)
	m.mirror.Apply(state)
	if strings.TrimSpace(message) == "" {
		message = fallback
	}
	m.showInfoToast(message)
	m.syncViewport()
	return m.maybeStartRefresh()
}

// submitGoal validates and dispatches the goal in the input box. Submission
// is only allowed from the pristine idle state; anything else needs a reset
// first.
func (m *Model) submitGoal() tea.Cmd {
	goal := strings.TrimSpace(m.goalInput.Value())
	if goal == "" {
		m.showErrorToast("enter a sourcing goal first")
		return nil
	}
	if m.mirror.Status() != types.StatusIdle {
		m.showErrorToast("a workflow is already in progress; reset it first")
		return nil
	}
	return m.dispatchCommand(submitGoalCmd(m.api, goal))
}

// dispatchCommand cancels the polling chain around a user command so a stale
// refresh response cannot race the command's own state.
func (m *Model) dispatchCommand(cmd tea.Cmd) tea.Cmd {
	m.mirror.CancelRefresh()
	m.mirror.SetLoading(true)
	return cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.inputFocused {
		switch msg.String() {
		case "esc":
			m.inputFocused = false
			m.goalInput.Blur()
			return m, nil
		case "enter":
			return m, m.submitGoal()
		case "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.goalInput, cmd = m.goalInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "i", "enter":
		if m.notifOpen {
			break
		}
		m.inputFocused = true
		return m, m.goalInput.Focus()
	case "g":
		return m, fetchStateCmd(m.api)
	case "a":
		return m, m.approveAction()
	case "x":
		return m, m.rejectAction()
	case "R":
		if m.mirror.Status() == types.StatusIdle && m.mirror.State() == nil {
			m.showErrorToast("nothing to reset")
			return m, nil
		}
		return m, m.dispatchCommand(resetWorkflowCmd(m.api))
	case "t":
		if m.showReport {
			m.showReport = false
			m.syncViewport()
			return m, nil
		}
		if m.report != "" {
			m.showReport = true
			m.syncViewport()
			return m, nil
		}
		m.status = "fetching report"
		return m, fetchTextReportCmd(m.api)
	case "V":
		m.status = "fetching voice report"
		return m, fetchReportVoiceCmd(m.api)
	case "n":
		m.notifOpen = !m.notifOpen
		if m.notifOpen {
			m.center.MarkAsRead()
			m.notifIndex = 0
		}
		return m, nil
	case "C":
		if m.notifOpen {
			m.center.ClearAll()
			m.notifIndex = 0
			m.showInfoToast("notifications cleared")
		}
		return m, nil
	case "j", "down":
		if m.notifOpen {
			m.notifIndex = clamp(m.notifIndex+1, 0, max(0, m.center.Len()-1))
		} else {
			m.viewport.LineDown(1)
		}
		return m, nil
	case "k", "up":
		if m.notifOpen {
			m.notifIndex = clamp(m.notifIndex-1, 0, max(0, m.center.Len()-1))
		} else {
			m.viewport.LineUp(1)
		}
		return m, nil
	case "v":
		return m, m.playSelectedVoice()
	case "e":
		m.draftsExpanded = !m.draftsExpanded
		m.syncViewport()
		return m, nil
	case "h", "left":
		if count := len(m.visibleDrafts()); count > 0 {
			m.draftIndex = clamp(m.draftIndex-1, 0, count-1)
			m.syncViewport()
		}
		return m, nil
	case "l", "right":
		if count := len(m.visibleDrafts()); count > 0 {
			m.draftIndex = clamp(m.draftIndex+1, 0, count-1)
			m.syncViewport()
		}
		return m, nil
	case "c":
		return m, m.copySelectedDraft()
	case "y":
		return m, m.approveSelectedDraft()
	case "s":
		return m, m.markSelectedDraftSent()
	case "pgdown":
		m.viewport.HalfViewDown()
		return m, nil
	case "pgup":
		m.viewport.HalfViewUp()
		return m, nil
	}
	return m, nil
}

// approveAction approves whatever currently awaits a decision: a pending
// notification when the panel is open, otherwise the research findings.
func (m *Model) approveAction() tea.Cmd {
	if m.notifOpen {
		return m.decideSelectedNotification(true)
	}
	if m.mirror.Status().AwaitingDecision() {
		return m.dispatchCommand(decideFindingsCmd(m.api, true))
	}
	m.showErrorToast("nothing awaiting approval")
	return nil
}

func (m *Model) rejectAction() tea.Cmd {
	if m.notifOpen {
		return m.decideSelectedNotification(false)
	}
	if m.mirror.Status().AwaitingDecision() {
		return m.dispatchCommand(decideFindingsCmd(m.api, false))
	}
	m.showErrorToast("nothing awaiting approval")
	return nil
}

func (m *Model) selectedNotification() (types.Notification, bool) {
	queue := m.center.Notifications()
	if m.notifIndex < 0 || m.notifIndex >= len(queue) {
		return types.Notification{}, false
	}
	return queue[m.notifIndex], true
}

func (m *Model) decideSelectedNotification(approved bool) tea.Cmd {
	n, ok := m.selectedNotification()
	if !ok {
		return nil
	}
	if !n.RequiresApproval || n.Status != types.NotificationStatusPending {
		m.showErrorToast("notification is not awaiting approval")
		return nil
	}
	return decideNotificationCmd(m.notifier, n.ID, approved)
}

func (m *Model) playSelectedVoice() tea.Cmd {
	if !m.notifOpen {
		return nil
	}
	n, ok := m.selectedNotification()
	if !ok {
		return nil
	}
	if !n.VoiceAvailable || n.VoiceURL == "" {
		m.showErrorToast("no voice briefing for this notification")
		return nil
	}
	return fetchVoiceCmd(m.notifier, n.ID, n.VoiceURL, false)
}

// consumeStreamTick drains pending stream events and connection transitions.
// Bounded per tick so a burst cannot stall the UI loop.
func (m *Model) consumeStreamTick() []tea.Cmd {
	if m.stream == nil {
		return nil
	}
	var cmds []tea.Cmd
	drain := true
	for i := 0; i < maxEventsPerTick && drain; i++ {
		select {
		case event, ok := <-m.stream.Events():
			if !ok {
				m.stream = nil
				return cmds
			}
			cmds = append(cmds, m.applyStreamEvent(event)...)
		default:
			drain = false
		}
	}
	for {
		select {
		case connected := <-m.stream.States():
			m.applyConnectionState(connected)
		default:
			return cmds
		}
	}
}

func (m *Model) applyStreamEvent(event map[string]any) []tea.Cmd {
	effects := m.center.HandleEvent(event)
	var cmds []tea.Cmd
	if effects.Toast != nil {
		m.showNotificationToast(effects.Toast)
	}
	if effects.AutoPlay != nil {
		cmds = append(cmds, autoPlayCmd(effects.AutoPlay.NotificationID, effects.AutoPlay.Delay))
	}
	return cmds
}

func (m *Model) applyConnectionState(connected bool) {
	was := m.center.Connected()
	m.center.SetConnected(connected)
	if connected && !was {
		m.status = "notification stream connected"
		m.log.Info("notification stream connected")
	} else if !connected && was {
		m.status = "notification stream lost, retrying"
		m.log.Warn("notification stream dropped")
	}
}

func (m *Model) visibleDrafts() []types.EmailDraft {
	return m.mirror.State().DraftEmails()
}

func draftKey(index int, draft types.EmailDraft) string {
	if draft.SupplierID != "" {
		return draft.SupplierID
	}
	return fmt.Sprintf("draft-%d", index)
}

func (m *Model) selectedDraft() (int, types.EmailDraft, bool) {
	drafts := m.visibleDrafts()
	if m.draftIndex < 0 || m.draftIndex >= len(drafts) {
		return 0, types.EmailDraft{}, false
	}
	return m.draftIndex, drafts[m.draftIndex], true
}

func (m *Model) draftState(index int, draft types.EmailDraft) string {
	if status, ok := m.draftStatus[draftKey(index, draft)]; ok {
		return status
	}
	return draftStatusDraft
}

// copySelectedDraft puts the signed email body on the clipboard.
func (m *Model) copySelectedDraft() tea.Cmd {
	_, draft, ok := m.selectedDraft()
	if !ok {
		return nil
	}
	body := appendSignatureIfMissing(draft.Body, m.cfg.SignatureName(), m.cfg.SignatureTitleLine())
	return copyToClipboardCmd(body, "email body copied")
}

func (m *Model) approveSelectedDraft() tea.Cmd {
	index, draft, ok := m.selectedDraft()
	if !ok {
		return nil
	}
	key := draftKey(index, draft)
	if m.draftStatus[key] == draftStatusSent {
		m.showErrorToast("email already sent")
		return nil
	}
	m.draftStatus[key] = draftStatusApproved
	m.showInfoToast("draft approved: " + draft.SupplierName)
	m.syncViewport()
	return nil
}

// markSelectedDraftSent records the send locally and announces it on the
// notification service so other dashboard clients see it.
func (m *Model) markSelectedDraftSent() tea.Cmd {
	index, draft, ok := m.selectedDraft()
	if !ok {
		return nil
	}
	key := draftKey(index, draft)
	if m.draftStatus[key] == draftStatusSent {
		m.showErrorToast("email already sent")
		return nil
	}
	m.draftStatus[key] = draftStatusSent
	m.showInfoToast("email marked sent: " + draft.SupplierName)
	m.syncViewport()
	return postNotificationCmd(m.notifier, client.OutboundNotification{
		Type:     "info",
		Title:    "Email Sent",
		Message:  fmt.Sprintf("Email to %s (%s) was sent", draft.SupplierName, draft.To),
		Priority: types.PriorityMedium,
		AgentID:  "Communicator",
		Data: map[string]any{
			"supplier_id": draft.SupplierID,
			"supplier":    draft.SupplierName,
			"action":      "email_sent",
		},
	})
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	contentHeight := max(minContentHeight, height-goalInputHeight-4)
	m.viewport.Width = max(20, width)
	m.viewport.Height = contentHeight
	m.goalInput.SetWidth(max(20, width-2))
	m.syncViewport()
}
