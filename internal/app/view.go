package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	runewidth "github.com/mattn/go-runewidth"

	"sourcebot/internal/types"
)

func (m *Model) View() string {
	width := max(40, m.width)

	header := m.headerLine(width)
	var body string
	if m.notifOpen {
		body = m.renderNotifications(width)
	} else {
		body = m.viewport.View()
	}

	lines := []string{header, body}
	if m.showGoalInput() {
		lines = append(lines, dividerStyle.Render(strings.Repeat("─", width)), m.goalInput.View())
	}
	lines = append(lines, m.statusLine(width))
	if toast := m.toastLine(width); toast != "" {
		lines = append(lines, toast)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) showGoalInput() bool {
	if m.notifOpen || m.showReport {
		return false
	}
	return m.inputFocused || !m.mirror.Status().Active()
}

func (m *Model) headerLine(width int) string {
	title := headerStyle.Render("SourceBot")

	conn := disconnectedStyle.Render("○ offline")
	if m.center.Connected() {
		conn = connectedStyle.Render("● live")
	}

	badges := conn
	if unread := m.center.UnreadCount(); unread > 0 {
		badges += " " + unreadBadgeStyle.Render(fmt.Sprintf(" %d unread ", unread))
	}
	if pending := m.pendingApprovals(); pending > 0 {
		badges += " " + pendingBadgeStyle.Render(fmt.Sprintf(" %d pending ", pending))
	}

	gap := width - lipgloss.Width(title) - lipgloss.Width(badges)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + badges
}

func (m *Model) pendingApprovals() int {
	count := 0
	for _, n := range m.center.Notifications() {
		if n.RequiresApproval && n.Status == types.NotificationStatusPending {
			count++
		}
	}
	return count
}

func (m *Model) statusLine(width int) string {
	help := "i goal · a approve · x reject · n notifications · t report · R reset · q quit"
	if m.notifOpen {
		help = "j/k select · a approve · x reject · v voice · C clear · n close"
	} else if m.inputFocused {
		help = "enter submit · esc cancel"
	}

	status := m.status
	if m.mirror.Loading() {
		status = m.loader.View() + " working"
	} else if m.mirror.LastError() != "" {
		status = "error: " + m.mirror.LastError()
	}

	left := helpStyle.Render(help)
	right := statusStyle.Render(truncateToWidth(status, max(1, width-lipgloss.Width(left)-2)))
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// syncViewport rebuilds the main pane content. Called after every state
// change that affects it; selection and scrolling do not.
func (m *Model) syncViewport() {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	if m.showReport {
		m.viewport.SetContent(renderMarkdown(m.report, width))
		return
	}
	m.viewport.SetContent(m.renderWorkflow(width))
}

func (m *Model) renderWorkflow(width int) string {
	state := m.mirror.State()
	var b strings.Builder

	b.WriteString(paneTitleStyle.Render("Workflow"))
	b.WriteString("  " + statusStyle.Render(string(m.mirror.Status())))
	b.WriteString("\n")

	if state == nil || state.Idle() {
		b.WriteString(helpStyle.Render("No workflow running. Press i to enter a sourcing goal."))
		return b.String()
	}

	if state.Goal != "" {
		b.WriteString(goalStyle.Render("Goal: "+truncateText(state.Goal, 240)) + "\n")
	}
	if state.Error != "" {
		b.WriteString(errorStyle.Render("Error: "+state.Error) + "\n")
	}

	if len(state.Plan) > 0 {
		b.WriteString("\n" + paneTitleStyle.Render("Plan") + "\n")
		for i, step := range state.Plan {
			b.WriteString(renderPlanStep(i, step, state.CurrentStep) + "\n")
		}
		if m.mirror.Status() == types.StatusPlanned {
			b.WriteString(helpStyle.Render("Research starts automatically.") + "\n")
		}
	}

	if state.Findings != nil {
		b.WriteString("\n" + m.renderFindings(state.Findings, width))
	}

	if drafts := state.DraftEmails(); len(drafts) > 0 {
		b.WriteString("\n" + m.renderDrafts(drafts, width))
	}

	return b.String()
}

func renderPlanStep(index int, step types.PlanStep, currentStep int) string {
	number := step.StepNumber
	if number == 0 {
		number = index + 1
	}
	title := step.Title
	if title == "" {
		title = step.Description
	}
	line := fmt.Sprintf("%2d. %s", number, title)

	switch {
	case step.Status == "completed" || number < currentStep:
		return stepDoneStyle.Render("✓ " + line)
	case number == currentStep || step.Status == "in_progress":
		return stepActiveStyle.Render("→ " + line)
	default:
		return stepPendingStyle.Render("  " + line)
	}
}

func (m *Model) renderFindings(findings *types.Findings, width int) string {
	var b strings.Builder
	b.WriteString(paneTitleStyle.Render("Findings") + "\n")
	if findings.Summary != "" {
		b.WriteString(supplierStyle.Render(findings.Summary) + "\n")
	}
	for _, finding := range findings.KeyFindings {
		b.WriteString(supplierStyle.Render("• "+finding) + "\n")
	}
	if len(findings.Suppliers) > 0 {
		b.WriteString(renderSupplierTable(findings.Suppliers, width))
	}
	for _, rec := range findings.Recommendations {
		b.WriteString(recommendationStyle.Render("→ "+rec) + "\n")
	}
	if m.mirror.Status().AwaitingDecision() {
		b.WriteString(helpStyle.Render("Press a to approve the findings or x to reject them.") + "\n")
	}
	return b.String()
}

func renderSupplierTable(suppliers []types.SupplierLead, width int) string {
	var b strings.Builder
	b.WriteString(statusStyle.Render(fmt.Sprintf("%-24s %-20s %10s %10s %8s", "Supplier", "Product", "Trade", "RRP", "Profit")) + "\n")
	for _, s := range suppliers {
		line := fmt.Sprintf("%-24s %-20s %10.2f %10.2f %8.2f",
			runewidth.Truncate(s.Supplier, 24, "…"), runewidth.Truncate(s.Product, 20, "…"), s.TradePrice, s.RRP, s.Profit)
		b.WriteString(supplierStyle.Render(truncateToWidth(line, width)) + "\n")
		if s.Reason != "" {
			b.WriteString(helpStyle.Render(truncateToWidth("    "+s.Reason, width)) + "\n")
		}
	}
	return b.String()
}

func (m *Model) renderDrafts(drafts []types.EmailDraft, width int) string {
	var b strings.Builder
	shown := len(drafts)
	if !m.draftsExpanded && shown > collapsedDraftRows {
		shown = collapsedDraftRows
	}

	b.WriteString(paneTitleStyle.Render(fmt.Sprintf("Email Drafts (%d)", len(drafts))) + "\n")
	for i := 0; i < shown; i++ {
		draft := drafts[i]
		header := fmt.Sprintf("%s <%s> — %s", draft.SupplierName, draft.To, draft.Subject)
		status := m.draftState(i, draft)

		line := truncateToWidth(header, max(1, width-10))
		if i == m.draftIndex {
			line = selectedStyle.Render(line)
		} else {
			line = draftHeaderStyle.Render(line)
		}
		switch status {
		case draftStatusSent:
			line += " " + draftSentStyle.Render("[sent]")
		case draftStatusApproved:
			line += " " + stepDoneStyle.Render("[approved]")
		}
		b.WriteString(line + "\n")

		if i == m.draftIndex {
			body := appendSignatureIfMissing(draft.Body, m.cfg.SignatureName(), m.cfg.SignatureTitleLine())
			for _, bodyLine := range strings.Split(body, "\n") {
				b.WriteString(draftBodyStyle.Render(truncateToWidth("  "+bodyLine, width)) + "\n")
			}
		}
	}
	if shown < len(drafts) {
		b.WriteString(helpStyle.Render(fmt.Sprintf("… %d more, press e to expand", len(drafts)-shown)) + "\n")
	}
	b.WriteString(helpStyle.Render("h/l select · c copy · y approve · s mark sent") + "\n")
	return b.String()
}

func (m *Model) renderNotifications(width int) string {
	var b strings.Builder
	b.WriteString(paneTitleStyle.Render(fmt.Sprintf("Notifications (%d)", m.center.Len())) + "\n")

	queue := m.center.Notifications()
	if len(queue) == 0 {
		b.WriteString(helpStyle.Render("No notifications yet."))
		return b.String()
	}

	height := max(4, m.viewport.Height-1)
	for i, n := range queue {
		if i >= height {
			b.WriteString(helpStyle.Render(fmt.Sprintf("… %d more", len(queue)-i)) + "\n")
			break
		}
		b.WriteString(m.renderNotificationRow(i, n, width) + "\n")
	}
	return b.String()
}

func (m *Model) renderNotificationRow(index int, n types.Notification, width int) string {
	marks := ""
	if n.VoiceAvailable {
		marks += " ♪"
	}
	if n.RequiresApproval && n.Status == types.NotificationStatusPending {
		marks += " ⏳"
	} else if n.Status == types.NotificationStatusApproved {
		marks += " ✓"
	} else if n.Status == types.NotificationStatusRejected {
		marks += " ✗"
	}

	line := fmt.Sprintf("%s%s · %s — %s%s", priorityGlyph(n.Priority), n.AgentID, n.Title, n.Message, marks)
	line = truncateToWidth(line, width)
	if index == m.notifIndex {
		return selectedStyle.Render(line)
	}
	return priorityStyle(n.Priority).UnsetBackground().Render(line)
}
