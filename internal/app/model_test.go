package app

import (
	"strings"
	"testing"

	"sourcebot/internal/types"
)

func applyState(m *Model, status types.WorkflowStatus) {
	m.mirror.Apply(&types.WorkflowState{Status: status, Goal: "find fastener suppliers"})
}

func TestSubmitGoalRejectsBlankInput(t *testing.T) {
	m := newTestModel(t)
	m.goalInput.SetValue("   ")

	if cmd := m.submitGoal(); cmd != nil {
		t.Fatalf("blank goal must not dispatch a command")
	}
	if !strings.Contains(m.toastText, "goal") {
		t.Fatalf("expected validation toast, got %q", m.toastText)
	}
	if m.mirror.Loading() {
		t.Fatalf("loading must not be set")
	}
}

func TestSubmitGoalRejectedWhileWorkflowActive(t *testing.T) {
	m := newTestModel(t)
	applyState(m, types.StatusResearching)
	m.goalInput.SetValue("another goal")

	if cmd := m.submitGoal(); cmd != nil {
		t.Fatalf("active workflow must block submission")
	}
	if !strings.Contains(m.toastText, "already in progress") {
		t.Fatalf("expected guard toast, got %q", m.toastText)
	}
}

func TestSubmitGoalDispatchesWhenIdle(t *testing.T) {
	m := newTestModel(t)
	m.goalInput.SetValue("find 5 suppliers of stainless fasteners")

	if cmd := m.submitGoal(); cmd == nil {
		t.Fatalf("expected a dispatch command")
	}
	if !m.mirror.Loading() {
		t.Fatalf("loading flag not set")
	}
}

func TestSubmitGoalBlockedUntilReset(t *testing.T) {
	for _, status := range []types.WorkflowStatus{types.StatusCompleted, types.StatusError} {
		m := newTestModel(t)
		applyState(m, status)
		m.goalInput.SetValue("new goal")
		if cmd := m.submitGoal(); cmd != nil {
			t.Fatalf("status %q must require a reset before a new goal", status)
		}
	}
}

func TestResearchFollowsAcceptedGoal(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(researchDelayMsg{})
	if cmd == nil {
		t.Fatalf("research delay must dispatch the kickoff")
	}
	if !m.mirror.Loading() {
		t.Fatalf("loading not set for research kickoff")
	}
}

func TestCommandResponseRestartsRefreshChain(t *testing.T) {
	m := newTestModel(t)

	cmd := m.applyCommandResponse("Planning started", "goal submitted", &types.WorkflowState{Status: types.StatusPlanning})
	if cmd == nil {
		t.Fatalf("active state should start the refresh chain")
	}
	if m.mirror.Loading() {
		t.Fatalf("loading must clear on response")
	}
	if m.toastText != "Planning started" {
		t.Fatalf("toast = %q", m.toastText)
	}
}

func TestCommandResponseFallbackMessage(t *testing.T) {
	m := newTestModel(t)
	m.applyCommandResponse("  ", "workflow reset", &types.WorkflowState{Status: types.StatusIdle})
	if m.toastText != "workflow reset" {
		t.Fatalf("toast = %q", m.toastText)
	}
}

func TestTerminalStateDoesNotStartRefresh(t *testing.T) {
	m := newTestModel(t)
	cmd := m.applyCommandResponse("done", "done", &types.WorkflowState{Status: types.StatusCompleted})
	if cmd != nil {
		t.Fatalf("completed workflow must not poll")
	}
}

func TestApproveActionRoutesByStatus(t *testing.T) {
	m := newTestModel(t)

	if cmd := m.approveAction(); cmd != nil {
		t.Fatalf("idle approve must be a no-op")
	}
	if !strings.Contains(m.toastText, "nothing awaiting") {
		t.Fatalf("toast = %q", m.toastText)
	}

	applyState(m, types.StatusPlanned)
	if cmd := m.approveAction(); cmd != nil {
		t.Fatalf("research is scheduled automatically, not via approve")
	}

	applyState(m, types.StatusAwaitingApproval)
	if cmd := m.approveAction(); cmd == nil {
		t.Fatalf("awaiting approval should dispatch a decision")
	}
}

func TestRejectActionOnlyWhileAwaitingDecision(t *testing.T) {
	m := newTestModel(t)
	applyState(m, types.StatusResearching)
	if cmd := m.rejectAction(); cmd != nil {
		t.Fatalf("reject must not dispatch while researching")
	}

	applyState(m, types.StatusReviewing)
	if cmd := m.rejectAction(); cmd == nil {
		t.Fatalf("reviewing status should dispatch a rejection")
	}
}

func TestStreamEventSchedulesAutoPlay(t *testing.T) {
	m := newTestModel(t)

	cmds := m.applyStreamEvent(map[string]any{
		"id":        "n1",
		"title":     "Critical stock alert",
		"priority":  "critical",
		"has_voice": true,
	})
	if len(cmds) != 1 {
		t.Fatalf("expected one auto-play command, got %d", len(cmds))
	}
	if m.center.Len() != 1 {
		t.Fatalf("notification not queued")
	}
	if m.toastText == "" {
		t.Fatalf("arrival should toast")
	}
}

func TestConnectionTransitionsUpdateStatus(t *testing.T) {
	m := newTestModel(t)

	m.applyConnectionState(true)
	if !m.center.Connected() || !strings.Contains(m.status, "connected") {
		t.Fatalf("connect transition not recorded: %q", m.status)
	}

	m.applyConnectionState(false)
	if m.center.Connected() || !strings.Contains(m.status, "retrying") {
		t.Fatalf("drop transition not recorded: %q", m.status)
	}

	// Repeated disconnect reports are not transitions.
	m.status = ""
	m.applyConnectionState(false)
	if m.status != "" {
		t.Fatalf("duplicate state must not change status")
	}
}

func TestDraftLifecycle(t *testing.T) {
	m := newTestModel(t)
	m.mirror.Apply(&types.WorkflowState{
		Status: types.StatusCompleted,
		Drafts: &types.Drafts{Emails: []types.EmailDraft{
			{SupplierID: "sup-1", SupplierName: "Acme", To: "sales@acme.test", Subject: "Pricing", Body: "Hello"},
		}},
	})

	_, draft, ok := m.selectedDraft()
	if !ok {
		t.Fatalf("draft not selectable")
	}
	if m.draftState(0, draft) != draftStatusDraft {
		t.Fatalf("initial status = %q", m.draftState(0, draft))
	}

	if cmd := m.approveSelectedDraft(); cmd != nil {
		t.Fatalf("approval is local, no command expected")
	}
	if m.draftState(0, draft) != draftStatusApproved {
		t.Fatalf("status after approve = %q", m.draftState(0, draft))
	}

	if cmd := m.markSelectedDraftSent(); cmd == nil {
		t.Fatalf("marking sent should post a notification")
	}
	if m.draftState(0, draft) != draftStatusSent {
		t.Fatalf("status after send = %q", m.draftState(0, draft))
	}

	if cmd := m.markSelectedDraftSent(); cmd != nil {
		t.Fatalf("second send must be refused")
	}
	if !strings.Contains(m.toastText, "already sent") {
		t.Fatalf("toast = %q", m.toastText)
	}
}

func TestNotificationDecisionRequiresPendingApproval(t *testing.T) {
	m := newTestModel(t)
	m.notifOpen = true
	m.center.HandleEvent(map[string]any{"id": "n1", "title": "FYI", "priority": "low"})

	if cmd := m.decideSelectedNotification(true); cmd != nil {
		t.Fatalf("delivered notification must not be approvable")
	}

	m.center.HandleEvent(map[string]any{
		"id": "n2", "title": "Approve order", "priority": "high", "requires_approval": true,
	})
	m.notifIndex = 0
	if cmd := m.decideSelectedNotification(true); cmd == nil {
		t.Fatalf("pending notification should dispatch a decision")
	}
}
