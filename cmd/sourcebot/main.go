package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"sourcebot/internal/app"
	"sourcebot/internal/client"
	"sourcebot/internal/config"
	"sourcebot/internal/logging"
	"sourcebot/internal/types"
)

const usageText = `sourcebot is the terminal dashboard for the procurement agent team.

Usage:
  sourcebot <command> [flags]

Commands:
  ui        run the dashboard (default)
  status    print the current workflow state
  goal      submit a sourcing goal
  research  kick off the research phase manually
  approve   approve the research findings
  reject    reject the research findings
  reset     reset the workflow
  report    print the text report
  history   print recent notifications as JSON
  notify    post a notification to the notification service
  health    probe both backend services
  config    print the effective configuration
  help      show help

Flags:
  -h, --help   show help

Examples:
  sourcebot goal "find 5 suppliers of stainless fasteners under £2/unit"
  sourcebot history -limit 20
  sourcebot notify -title "Heads up" -message "budget review at 3pm" -priority high
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		exitOnErr("ui", runUI(nil))
		return
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
	case "ui":
		exitOnErr("ui", runUI(args[1:]))
	case "status":
		exitOnErr("status", runStatus(args[1:]))
	case "goal":
		exitOnErr("goal", runGoal(args[1:]))
	case "research":
		exitOnErr("research", runResearch(args[1:]))
	case "approve":
		exitOnErr("approve", runDecision(args[1:], true))
	case "reject":
		exitOnErr("reject", runDecision(args[1:], false))
	case "reset":
		exitOnErr("reset", runReset(args[1:]))
	case "report":
		exitOnErr("report", runReport(args[1:]))
	case "history":
		exitOnErr("history", runHistory(args[1:]))
	case "notify":
		exitOnErr("notify", runNotify(args[1:]))
	case "health":
		exitOnErr("health", runHealth(args[1:]))
	case "config":
		exitOnErr("config", runConfig(args[1:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func loadConfig() (config.Config, error) {
	return config.Load()
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func runUI(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logPath, err := config.UILogPath()
	if err != nil {
		return err
	}
	logger, err := logging.NewFile(logPath, logging.ParseLevel(cfg.LogLevel()))
	if err != nil {
		// The UI still works without a log file.
		logger = logging.Nop()
	}

	return app.Run(cfg, logger)
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "print the raw state as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	state, err := client.New(cfg.OrchestratorBaseURL()).GetState(ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(state)
	}
	printState(state)
	return nil
}

func printState(state *types.WorkflowState) {
	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintf(writer, "status\t%s\n", state.Status)
	if state.Goal != "" {
		fmt.Fprintf(writer, "goal\t%s\n", state.Goal)
	}
	if state.Error != "" {
		fmt.Fprintf(writer, "error\t%s\n", state.Error)
	}
	for i, step := range state.Plan {
		number := step.StepNumber
		if number == 0 {
			number = i + 1
		}
		title := step.Title
		if title == "" {
			title = step.Description
		}
		fmt.Fprintf(writer, "plan %d\t%s\t%s\n", number, step.Status, title)
	}
	if state.Findings != nil && state.Findings.Summary != "" {
		fmt.Fprintf(writer, "findings\t%s\n", state.Findings.Summary)
	}
	for _, draft := range state.DraftEmails() {
		fmt.Fprintf(writer, "draft\t%s\t%s\n", draft.SupplierName, draft.Subject)
	}
	_ = writer.Flush()
}

func runGoal(args []string) error {
	fs := flag.NewFlagSet("goal", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	goal := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if goal == "" {
		return errors.New("goal text is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	resp, err := client.New(cfg.OrchestratorBaseURL()).SubmitGoal(ctx, goal)
	if err != nil {
		return err
	}
	printCommandResponse(resp, "goal submitted")
	return nil
}

func runResearch(args []string) error {
	fs := flag.NewFlagSet("research", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	resp, err := client.New(cfg.OrchestratorBaseURL()).ExecuteResearch(ctx)
	if err != nil {
		return err
	}
	printCommandResponse(resp, "research started")
	return nil
}

func runDecision(args []string, approved bool) error {
	fs := flag.NewFlagSet("decision", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	resp, err := client.New(cfg.OrchestratorBaseURL()).ApproveFindings(ctx, approved)
	if err != nil {
		return err
	}
	fallback := "findings rejected"
	if approved {
		fallback = "findings approved"
	}
	printCommandResponse(resp, fallback)
	return nil
}

func runReset(args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	resp, err := client.New(cfg.OrchestratorBaseURL()).ResetWorkflow(ctx)
	if err != nil {
		return err
	}
	printCommandResponse(resp, "workflow reset")
	return nil
}

func printCommandResponse(resp *client.CommandResponse, fallback string) {
	message := fallback
	if resp != nil && strings.TrimSpace(resp.Message) != "" {
		message = resp.Message
	}
	fmt.Fprintln(os.Stdout, message)
}

func runReport(args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	report, err := client.New(cfg.OrchestratorBaseURL()).TextReport(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, report)
	return nil
}

func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	limit := fs.Int("limit", 50, "number of entries to fetch")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	entries, err := client.NewNotify(cfg.NotifyBaseURL()).History(ctx, *limit)
	if err != nil {
		return err
	}
	return json.NewEncoder(os.Stdout).Encode(entries)
}

func runNotify(args []string) error {
	fs := flag.NewFlagSet("notify", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	title := fs.String("title", "", "notification title")
	message := fs.String("message", "", "notification message")
	kind := fs.String("type", "info", "notification type")
	priority := fs.String("priority", "medium", "priority: low, medium, high, critical")
	approval := fs.Bool("approval", false, "require manager approval")
	agent := fs.String("agent", "CLI", "reporting agent id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*title) == "" {
		return errors.New("title is required")
	}
	normalized, ok := types.NormalizePriority(*priority)
	if !ok {
		return fmt.Errorf("invalid priority %q", *priority)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	err = client.NewNotify(cfg.NotifyBaseURL()).Post(ctx, client.OutboundNotification{
		Type:             *kind,
		Title:            *title,
		Message:          *message,
		Priority:         normalized,
		RequiresApproval: *approval,
		AgentID:          *agent,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "ok")
	return nil
}

func runHealth(args []string) error {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	orchestrator := client.New(cfg.OrchestratorBaseURL())
	orchestratorUp := orchestrator.Healthy(ctx)
	fmt.Fprintf(writer, "orchestrator\t%s\t%s\n", orchestrator.BaseURL(), healthWord(orchestratorUp))

	notifier := client.NewNotify(cfg.NotifyBaseURL())
	notifyUp := false
	if _, err := notifier.History(ctx, 1); err == nil {
		notifyUp = true
	}
	fmt.Fprintf(writer, "notify\t%s\t%s\n", notifier.BaseURL(), healthWord(notifyUp))
	if err := writer.Flush(); err != nil {
		return err
	}
	if !orchestratorUp || !notifyUp {
		os.Exit(1)
	}
	return nil
}

func healthWord(up bool) string {
	if up {
		return "up"
	}
	return "down"
}

func runConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rendered, err := cfg.Render()
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, rendered)
	return nil
}

func exitOnErr(label string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}
