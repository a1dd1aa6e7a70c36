package types

import (
	"encoding/json"
	"strings"
)

type WorkflowStatus string

const (
	StatusIdle             WorkflowStatus = "idle"
	StatusPlanning         WorkflowStatus = "planning"
	StatusPlanned          WorkflowStatus = "planned"
	StatusResearching      WorkflowStatus = "researching"
	StatusAwaitingApproval WorkflowStatus = "awaiting_approval"
	StatusReviewing        WorkflowStatus = "reviewing"
	StatusRejected         WorkflowStatus = "rejected"
	StatusDrafting         WorkflowStatus = "drafting"
	StatusCompleted        WorkflowStatus = "completed"
	StatusError            WorkflowStatus = "error"
)

func NormalizeWorkflowStatus(raw string) (WorkflowStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "idle":
		return StatusIdle, true
	case "planning":
		return StatusPlanning, true
	case "planned":
		return StatusPlanned, true
	case "researching":
		return StatusResearching, true
	case "awaiting_approval", "awaiting-approval":
		return StatusAwaitingApproval, true
	case "reviewing":
		return StatusReviewing, true
	case "rejected":
		return StatusRejected, true
	case "drafting":
		return StatusDrafting, true
	case "completed":
		return StatusCompleted, true
	case "error":
		return StatusError, true
	default:
		return "", false
	}
}

// Active reports whether the auto-refresh loop should keep polling. Only
// idle and completed workflows sit still until the next command.
func (s WorkflowStatus) Active() bool {
	switch s {
	case "", StatusIdle, StatusCompleted:
		return false
	}
	return true
}

// AwaitingDecision reports whether findings approve/reject actions apply.
func (s WorkflowStatus) AwaitingDecision() bool {
	return s == StatusAwaitingApproval || s == StatusReviewing
}

// PlanStep is one entry of the orchestrator plan. The server returns either a
// bare string or a structured object; both decode into this type.
type PlanStep struct {
	StepNumber  int    `json:"step_number,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

func (p *PlanStep) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*p = PlanStep{Title: text}
		return nil
	}
	type planStep PlanStep
	var step planStep
	if err := json.Unmarshal(data, &step); err != nil {
		return err
	}
	*p = PlanStep(step)
	return nil
}

type SupplierLead struct {
	Supplier   string  `json:"supplier"`
	Product    string  `json:"product,omitempty"`
	Department string  `json:"department,omitempty"`
	TradePrice float64 `json:"trade_price,omitempty"`
	RRP        float64 `json:"rrp,omitempty"`
	StockLevel float64 `json:"stock_level,omitempty"`
	QtySold    float64 `json:"qty_sold,omitempty"`
	Turnover   float64 `json:"turnover,omitempty"`
	Profit     float64 `json:"profit,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// Findings is the researcher output. Statistics stay loosely typed; only the
// dashboard summary cares about a handful of well-known keys.
type Findings struct {
	Summary         string          `json:"summary"`
	KeyFindings     []string        `json:"key_findings,omitempty"`
	Suppliers       []SupplierLead  `json:"relevant_suppliers,omitempty"`
	Statistics      map[string]any  `json:"statistics,omitempty"`
	Recommendations []string        `json:"recommendations,omitempty"`
	Raw             json.RawMessage `json:"-"`
}

type EmailDraft struct {
	SupplierID   string `json:"supplier_id"`
	SupplierName string `json:"supplier_name"`
	To           string `json:"to"`
	Subject      string `json:"subject"`
	Body         string `json:"body"`
}

// Drafts is the communicator output: outreach emails plus a strategy summary.
type Drafts struct {
	Emails  []EmailDraft `json:"emails"`
	Summary string       `json:"summary,omitempty"`
}

// WorkflowState mirrors the orchestrator record. It is replaced wholesale on
// every command response and refresh tick.
type WorkflowState struct {
	Goal          string          `json:"goal"`
	Status        WorkflowStatus  `json:"status"`
	CurrentStep   int             `json:"current_step"`
	Plan          []PlanStep      `json:"plan"`
	Findings      *Findings       `json:"findings"`
	Drafts        *Drafts         `json:"drafts"`
	SuppliersData json.RawMessage `json:"suppliers_data,omitempty"`
	Error         string          `json:"error,omitempty"`
}

func (s *WorkflowState) UnmarshalJSON(data []byte) error {
	type workflowState struct {
		Goal          *string         `json:"goal"`
		Status        string          `json:"status"`
		CurrentStep   int             `json:"current_step"`
		Plan          []PlanStep      `json:"plan"`
		Findings      json.RawMessage `json:"findings"`
		Drafts        json.RawMessage `json:"drafts"`
		SuppliersData json.RawMessage `json:"suppliers_data"`
		Error         string          `json:"error"`
	}
	var raw workflowState
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := WorkflowState{
		CurrentStep:   raw.CurrentStep,
		Plan:          raw.Plan,
		SuppliersData: raw.SuppliersData,
		Error:         raw.Error,
	}
	if raw.Goal != nil {
		out.Goal = strings.TrimSpace(*raw.Goal)
	}
	if status, ok := NormalizeWorkflowStatus(raw.Status); ok {
		out.Status = status
	} else {
		out.Status = StatusIdle
	}
	out.Findings = decodeFindings(raw.Findings)
	out.Drafts = decodeDrafts(raw.Drafts)
	*s = out
	return nil
}

// decodeFindings tolerates absent, null, or malformed payloads; the original
// payload is retained for panes that render it verbatim.
func decodeFindings(raw json.RawMessage) *Findings {
	if !jsonPresent(raw) {
		return nil
	}
	var findings Findings
	if err := json.Unmarshal(raw, &findings); err != nil {
		return &Findings{Raw: raw}
	}
	findings.Raw = raw
	return &findings
}

func decodeDrafts(raw json.RawMessage) *Drafts {
	if !jsonPresent(raw) {
		return nil
	}
	var drafts Drafts
	if err := json.Unmarshal(raw, &drafts); err != nil {
		return nil
	}
	return &drafts
}

func jsonPresent(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed != "" && trimmed != "null" && trimmed != "{}"
}

// Idle reports whether the mirror is in the pristine pre-goal state.
func (s *WorkflowState) Idle() bool {
	return s == nil || s.Status == StatusIdle || s.Status == ""
}

func (s *WorkflowState) DraftEmails() []EmailDraft {
	if s == nil || s.Drafts == nil {
		return nil
	}
	return s.Drafts.Emails
}
