package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"refdesk/internal/eventbus"
	"refdesk/internal/ui"
)

// E2EEnvVar disables the external pager so end-to-end tests see popups instead
const E2EEnvVar = "REFDESK_E2E_TEST"

// forwarded are the bus events the console reacts to
var forwarded = []eventbus.EventType{
	eventbus.EventQueueLoaded,
	eventbus.EventChangeSubmitted,
	eventbus.EventRequestsApproved,
	eventbus.EventRequestsRetracted,
	eventbus.EventLoadingChanged,
	eventbus.EventError,
}

func runConsole(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the console needs a terminal, use a subcommand for scripting")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	model := ui.NewModel(ui.Deps{
		Config:   a.cfg,
		Catalog:  a.catalog,
		Backend:  a.client,
		Queue:    a.queue,
		History:  historyOrNil(a),
		Session:  a.session,
		User:     a.user,
		NoPager:  os.Getenv(E2EEnvVar) == "1",
		Logger:   a.log.Named("ui"),
		Loading:  a.tracker,
		Resource: a.cfg.UI.DefaultResource,
	})
	if len(args) > 0 {
		if err := model.SetResource(args[0]); err != nil {
			return err
		}
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetProgram(p)

	events := make(chan eventbus.DomainEvent, 100)
	done := make(chan struct{})
	forward := func(e eventbus.DomainEvent) {
		select {
		case events <- e:
		case <-done:
		default:
			a.log.Warn("event channel full, dropping event", zap.String("type", string(e.Type())))
		}
	}
	var unsubscribe []func()
	for _, t := range forwarded {
		unsubscribe = append(unsubscribe, a.bus.Subscribe(t, forward))
	}
	go func() {
		for {
			select {
			case e := <-events:
				p.Send(ui.EventMsg{Event: e})
			case <-done:
				return
			}
		}
	}()

	a.log.Info("starting console")
	_, err = p.Run()
	for _, u := range unsubscribe {
		u()
	}
	close(done)
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("console error: %w", err)
	}
	a.log.Info("console exited")
	return nil
}

// historyOrNil keeps a nil *journal.Manager from becoming a non-nil interface
func historyOrNil(a *app) ui.History {
	if a.journal == nil {
		return nil
	}
	return a.journal
}
