package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/syntrixbase/wordlog/internal/record"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <area>",
		Short: "Print catalog changes of an area until interrupted",
		Long: "Print catalog changes of an area until interrupted. Changes made by other " +
			"processes are only seen with a shared pubsub (nats) or the mongo backend.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			return a.withBook(ctx, func(b *record.Book) error {
				err := b.Listen(ctx, args[0], func(ev record.Event) {
					fmt.Fprintln(out, formatEvent(ev))
				})
				if err != nil {
					return err
				}
				<-ctx.Done()
				return nil
			})
		},
	}
}

func formatEvent(ev record.Event) string {
	ts := ev.Timestamp.Format(time.RFC3339)
	if ev.Cleared {
		return fmt.Sprintf("%s %s cleared", ts, ev.Area)
	}
	return fmt.Sprintf("%s %s words=%d pages=%d", ts, ev.Area, ev.Catalog.WordCount, ev.Catalog.PageCount())
}
