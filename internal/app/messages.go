package app

import (
	"time"

	"sourcebot/internal/client"
	"sourcebot/internal/types"
)

type workflowStateMsg struct {
	state *types.WorkflowState
	err   error
}

type goalSubmittedMsg struct {
	message string
	state   *types.WorkflowState
	err     error
}

type researchStartedMsg struct {
	message string
	state   *types.WorkflowState
	err     error
}

type findingsDecisionMsg struct {
	approved bool
	message  string
	state    *types.WorkflowState
	err      error
}

type workflowResetMsg struct {
	message string
	state   *types.WorkflowState
	err     error
}

// researchDelayMsg fires after the short pause between goal acceptance and
// the research kickoff request.
type researchDelayMsg struct{}

// refreshTickMsg is one tick of the workflow polling chain. The generation
// lets orphaned ticks from a cancelled chain be ignored.
type refreshTickMsg struct {
	gen int
}

type historyMsg struct {
	entries []map[string]any
	err     error
}

type streamOpenedMsg struct {
	stream *client.StreamConsumer
}

type notificationDecisionMsg struct {
	id       string
	approved bool
	err      error
}

type autoPlayMsg struct {
	id string
}

type voiceFetchedMsg struct {
	id   string
	auto bool
	data []byte
	err  error
}

type textReportMsg struct {
	report string
	err    error
}

type notificationPostedMsg struct {
	err error
}

type clipboardResultMsg struct {
	success string
	err     error
}

type tickMsg time.Time
