package main

import (
	"context"
	"os"
	"os/signal"

	"fixturecal/internal/agenda"
	"fixturecal/internal/view"
)

type agendaCommand struct {
	Source string `short:"s" long:"source" required:"true" description:"Source ID to show"`
	Query  string `short:"q" long:"query" description:"Only show events whose text contains this"`
}

func (c *agendaCommand) Execute(_ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res := a.renderer.Render(ctx, view.NewState(c.Source, c.Query))
	if err := agenda.Write(os.Stdout, res, a.loc); err != nil {
		return err
	}
	if res.Failure != nil {
		return errReported
	}
	return nil
}
