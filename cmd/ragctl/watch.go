package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"research-rag-be/pkg/events"
	pktNats "research-rag-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	watchDurable string
	watchType    string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Tail document pipeline events from NATS",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchDurable, "durable", "ragctl-watch", "durable consumer name")
	watchCmd.Flags().StringVar(&watchType, "type", "", "only show one event type, e.g. DOCUMENT_PROCESSED")
	rootCmd.AddCommand(watchCmd)
}

var eventColors = map[string]*color.Color{
	events.DocumentProcessed: color.New(color.FgGreen),
	events.DocumentFailed:    color.New(color.FgRed),
	events.DocumentDeleted:   color.New(color.FgYellow),
	events.DocumentsCleared:  color.New(color.FgMagenta),
}

func runWatch(cmd *cobra.Command, args []string) error {
	if cfg.App.NatsURL == "" {
		return errors.New("NATS_URL is not set")
	}

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
	if err != nil {
		return err
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	subject := "events.>"
	if watchType != "" {
		subject = pktNats.Subject(watchType)
	}

	err = sub.Subscribe(ctx, subject, watchDurable, func(_ context.Context, event events.Event) error {
		c, ok := eventColors[event.EventType()]
		if !ok {
			c = color.New(color.FgWhite)
		}
		cmd.Printf("%s %s %v\n",
			dim(event.Timestamp().Format(time.RFC3339)),
			c.Sprint(event.EventType()),
			event.Payload(),
		)
		return nil
	})
	if err != nil {
		return err
	}

	cmd.Printf("%s %s\n", heading("watching"), subject)
	<-ctx.Done()
	return nil
}
