package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/text"

	"pixelle/internal/config"
	"pixelle/internal/prompt"
	"pixelle/internal/status"
	"pixelle/internal/wizard"
)

// Menu actions offered by RunInteractive.
const (
	ActionStart    = "start"
	ActionReconfig = "reconfig"
	ActionManual   = "manual"
	ActionStatus   = "status"
	ActionHelp     = "help"
	ActionExit     = "exit"
)

var menuChoices = []prompt.Choice{
	{Label: "Start Pixelle (pixelle start)", Value: ActionStart},
	{Label: "Reconfigure (pixelle reconfig)", Value: ActionReconfig},
	{Label: "Edit the configuration by hand (pixelle manual)", Value: ActionManual},
	{Label: "Check status (pixelle status)", Value: ActionStatus},
	{Label: "Help", Value: ActionHelp},
	{Label: "Exit", Value: ActionExit},
}

// WithInterrupt returns a context cancelled on SIGINT or SIGTERM.
func WithInterrupt(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// RunInteractive is the guided flow used without a subcommand. A
// cancelled wizard or menu is not an error.
func (a *Application) RunInteractive(ctx context.Context, p prompt.Prompter) error {
	a.welcome()

	switch a.store.Status() {
	case config.StatusFirstTime:
		a.printf("No configuration found, starting the setup wizard.\n\n")
		return a.setupThenStart(ctx, p)
	case config.StatusIncomplete:
		a.printf("%s The configuration is incomplete, starting the setup wizard.\n\n", text.FgYellow.Sprint("⚠"))
		return a.setupThenStart(ctx, p)
	}

	a.printf("%s\n", text.Bold.Sprint("Current configuration"))
	WriteSummary(a.out, a.store.Get())
	action := p.Select("What would you like to do?", menuChoices)
	return a.runAction(ctx, p, action.Or(ActionExit))
}

func (a *Application) runAction(ctx context.Context, p prompt.Prompter, action string) error {
	switch action {
	case ActionStart:
		_, err := a.Start(ctx, p)
		return err
	case ActionReconfig:
		if !a.ConfirmOverwrite(p) {
			return a.goodbye()
		}
		return a.setupThenStart(ctx, p)
	case ActionManual:
		var notReady *ConfigNotReadyError
		if err := a.Manual(); err != nil && !errors.As(err, &notReady) {
			return err
		}
		return nil
	case ActionStatus:
		report, err := a.Status(ctx, false)
		if err != nil {
			return err
		}
		return report.Write(a.out, status.OutputFormatTable)
	case ActionHelp:
		a.Help()
		return nil
	default:
		return a.goodbye()
	}
}

func (a *Application) setupThenStart(ctx context.Context, p prompt.Prompter) error {
	if _, err := a.Reconfigure(ctx, p); err != nil {
		if wizard.IsCancelled(err) {
			return nil
		}
		return err
	}
	if !p.Confirm("Start Pixelle now?", true).Or(false) {
		a.printf("Run 'pixelle start' when you are ready.\n")
		return nil
	}
	_, err := a.Start(ctx, p)
	return err
}

func (a *Application) welcome() {
	a.printf("\n%s\n", text.Bold.Sprint("Welcome to Pixelle"))
	a.printf("Turn workflow-engine workflows into MCP tools.\n\n")
	a.printRoot()
	a.printf("\n")
}

func (a *Application) goodbye() error {
	a.printf("Goodbye!\n")
	return nil
}
