package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/syntrixbase/wordlog/internal/record"
)

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <area> <word>...",
		Short: "Record words in an area, in order",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			area, words := args[0], args[1:]
			return a.withBook(cmd.Context(), func(b *record.Book) error {
				for _, w := range words {
					if err := b.Add(cmd.Context(), area, w); err != nil {
						return fmt.Errorf("add %q: %w", w, err)
					}
				}
				return nil
			})
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <area>",
		Short: "Delete every record of an area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBook(cmd.Context(), func(b *record.Book) error {
				return b.Clear(cmd.Context(), args[0])
			})
		},
	}
}

func newWordsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "words <area>",
		Short: "List the words of an area, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBook(cmd.Context(), func(b *record.Book) error {
				words, err := b.Words(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, w := range words {
					fmt.Fprintln(out, w)
				}
				return nil
			})
		},
	}
}

func newPageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "page <area> <index>",
		Short: "Print one record set as JSON; index 0 is the most recent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil || index < 0 {
				return fmt.Errorf("invalid page index %q", args[1])
			}
			return a.withBook(cmd.Context(), func(b *record.Book) error {
				page, ok, err := b.Page(cmd.Context(), args[0], index)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no page %d in area %q", index, args[0])
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(page)
			})
		},
	}
}

func newCountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count <area>",
		Short: "Print the number of words recorded in an area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBook(cmd.Context(), func(b *record.Book) error {
				n, err := b.WordCount(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			})
		},
	}
}
