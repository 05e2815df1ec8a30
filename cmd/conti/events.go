package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"conti/internal/amqp"
	"conti/internal/cli"
	applog "conti/internal/log"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Follow record deletion events from the broker",
	Args:  cobra.NoArgs,
	RunE:  runEvents,
}

func runEvents(cmd *cobra.Command, _ []string) error {
	a, err := newApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.close()

	client := a.amqpClient()
	if client == nil {
		return errors.New("events need AMQP_URL to be set and reachable")
	}

	parent, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	ctx, done := cli.GracefulShutdown(parent, a.logger, 5*time.Second, nil)
	stopPruner := a.startJournalPruner(ctx)
	defer stopPruner()
	out := cmd.OutOrStdout()
	err = client.ConsumeRecordEvents(ctx, func(_ context.Context, msg *amqp.RecordDeletedMessage) error {
		fmt.Fprintf(out, "%s  %-14s %s/%s\n",
			msg.Timestamp.Local().Format(time.DateTime), msg.List, msg.Endpoint, msg.RecordID)
		return nil
	})
	cancel()
	cli.WaitForShutdown(ctx, done)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("Event consumption failed",
			applog.NewFields().WithError(err).WithErrorType(applog.ErrorTypeNetwork).ToSlice()...)
		return err
	}
	return nil
}
