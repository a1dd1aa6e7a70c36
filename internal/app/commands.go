package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"sourcebot/internal/client"
	"sourcebot/internal/workflow"
)

const (
	tickInterval       = 100 * time.Millisecond
	commandTimeout     = 30 * time.Second
	queryTimeout       = 10 * time.Second
	historyPrefetch    = 50
	researchStartDelay = 1500 * time.Millisecond
)

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func refreshTickCmd(gen int) tea.Cmd {
	return tea.Tick(workflow.RefreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{gen: gen}
	})
}

func fetchStateCmd(api *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		state, err := api.GetState(ctx)
		return workflowStateMsg{state: state, err: err}
	}
}

func submitGoalCmd(api *client.Client, goal string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		resp, err := api.SubmitGoal(ctx, goal)
		if err != nil {
			return goalSubmittedMsg{err: err}
		}
		return goalSubmittedMsg{message: resp.Message, state: resp.State}
	}
}

// researchDelayCmd schedules the research kickoff shortly after a goal is
// accepted, giving the submission toast a moment on screen first.
func researchDelayCmd() tea.Cmd {
	return tea.Tick(researchStartDelay, func(time.Time) tea.Msg {
		return researchDelayMsg{}
	})
}

func startResearchCmd(api *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		resp, err := api.ExecuteResearch(ctx)
		if err != nil {
			return researchStartedMsg{err: err}
		}
		return researchStartedMsg{message: resp.Message, state: resp.State}
	}
}

func decideFindingsCmd(api *client.Client, approved bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		resp, err := api.ApproveFindings(ctx, approved)
		if err != nil {
			return findingsDecisionMsg{approved: approved, err: err}
		}
		return findingsDecisionMsg{approved: approved, message: resp.Message, state: resp.State}
	}
}

func resetWorkflowCmd(api *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		resp, err := api.ResetWorkflow(ctx)
		if err != nil {
			return workflowResetMsg{err: err}
		}
		return workflowResetMsg{message: resp.Message, state: resp.State}
	}
}

func fetchTextReportCmd(api *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		report, err := api.TextReport(ctx)
		return textReportMsg{report: report, err: err}
	}
}

func fetchReportVoiceCmd(api *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		data, err := api.VoiceReport(ctx)
		return voiceFetchedMsg{id: "report", data: data, err: err}
	}
}

func fetchHistoryCmd(notifier *client.NotifyClient) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		entries, err := notifier.History(ctx, historyPrefetch)
		return historyMsg{entries: entries, err: err}
	}
}

func openStreamCmd(notifier *client.NotifyClient) tea.Cmd {
	return func() tea.Msg {
		return streamOpenedMsg{stream: notifier.OpenStream(context.Background())}
	}
}

func decideNotificationCmd(notifier *client.NotifyClient, id string, approved bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		err := notifier.Approve(ctx, id, approved)
		return notificationDecisionMsg{id: id, approved: approved, err: err}
	}
}

func autoPlayCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return autoPlayMsg{id: id}
	})
}

func fetchVoiceCmd(notifier *client.NotifyClient, id, url string, auto bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		data, err := notifier.FetchVoice(ctx, url)
		return voiceFetchedMsg{id: id, auto: auto, data: data, err: err}
	}
}

func postNotificationCmd(notifier *client.NotifyClient, outbound client.OutboundNotification) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		return notificationPostedMsg{err: notifier.Post(ctx, outbound)}
	}
}

func copyToClipboardCmd(text, success string) tea.Cmd {
	return func() tea.Msg {
		if err := copyTextToClipboard(text); err != nil {
			return clipboardResultMsg{err: err}
		}
		return clipboardResultMsg{success: success}
	}
}
