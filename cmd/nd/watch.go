package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/groblegark/knotes/internal/events"
	"github.com/groblegark/knotes/internal/model"
	"github.com/groblegark/knotes/internal/ui"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream note events as they happen",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if !jsonOutput {
			fmt.Fprintln(os.Stderr, "watching for note events (Ctrl-C to stop)")
		}

		// Subscribe to the NATS mirror directly when configured, otherwise
		// consume the server's SSE stream.
		if natsURL := os.Getenv("NOTES_NATS_URL"); natsURL != "" {
			return watchNATS(ctx, natsURL)
		}
		return watchStream(ctx)
	},
}

// watchStream consumes the server's authenticated SSE endpoint.
func watchStream(ctx context.Context) error {
	ch, err := apiClient.Watch(ctx)
	if err != nil {
		return fmt.Errorf("opening event stream: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-ch:
			if !ok {
				// Server closed the stream.
				return nil
			}
			printEvent(evt)
		}
	}
}

// watchNATS subscribes to the event mirror on NATS and decodes each message.
func watchNATS(ctx context.Context, natsURL string) error {
	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats: disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats: reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe("knotes.>")
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-ch:
			if !ok {
				return nil
			}
			var evt events.Event
			if err := json.Unmarshal(data, &evt); err != nil {
				log.Printf("skipping unparseable event: %v", err)
				continue
			}
			printEvent(&evt)
		}
	}
}

func printEvent(evt *events.Event) {
	if jsonOutput {
		data, err := json.Marshal(evt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
			return
		}
		fmt.Println(string(data))
		return
	}

	var note model.Note
	summary := ""
	if err := json.Unmarshal(evt.Payload, &note); err == nil {
		summary = fmt.Sprintf("%s %q", note.ID, note.Title)
	}
	fmt.Printf("%s %s %s %s\n",
		ui.RenderMuted(evt.OccurredAt.Format("15:04:05")),
		ui.RenderAccent(evt.Topic().String()),
		summary,
		ui.RenderMuted("by "+evt.Actor),
	)
}
