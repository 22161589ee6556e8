package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	apiv1 "github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/api/v1"
	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/session"
)

func newHistoryCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or reset stored sessions",
		Long: `Read the configured session store directly.

Examples:
  supportbot history list
  supportbot history show my-session
  supportbot history show my-session --json
  supportbot history clear my-session`,
	}

	var asJSON bool
	show := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print a session's turns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), o, func(ctx context.Context, store session.Store) error {
				turns, err := store.History(ctx, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(toAPITurns(args[0], turns))
				}
				newRenderer(cmd.OutOrStdout(), 0, false).turns(toAPITurns(args[0], turns).History)
				return nil
			})
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of text")

	clearCmd := &cobra.Command{
		Use:   "clear <session-id>",
		Short: "Reset a session's history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), o, func(ctx context.Context, store session.Store) error {
				if err := store.Clear(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared session %s\n", args[0])
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), o, func(ctx context.Context, store session.Store) error {
				lister, ok := store.(session.Lister)
				if !ok {
					return fmt.Errorf("store does not support listing sessions")
				}
				sums, err := lister.Sessions(ctx)
				if err != nil {
					return err
				}

				t := table.NewWriter()
				t.SetOutputMirror(cmd.OutOrStdout())
				t.AppendHeader(table.Row{"Session", "Turns", "Updated"})
				for _, s := range sums {
					updated := "-"
					if !s.UpdatedAt.IsZero() {
						updated = s.UpdatedAt.Local().Format(time.DateTime)
					}
					t.AppendRow(table.Row{s.ID, s.Turns, updated})
				}
				t.AppendFooter(table.Row{"Total", len(sums), ""})
				t.Render()
				return nil
			})
		},
	}

	cmd.AddCommand(show, clearCmd, list)
	return cmd
}

func withStore(ctx context.Context, o *options, fn func(context.Context, session.Store) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := o.loadForStore()
	if err != nil {
		return err
	}
	store, err := session.Open(ctx, cfg.Store, logr.Discard())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, store)
}

func toAPITurns(id string, turns []session.Turn) apiv1.HistoryResponse {
	out := apiv1.HistoryResponse{SessionID: id, History: make([]apiv1.Turn, 0, len(turns))}
	for _, t := range turns {
		out.History = append(out.History, apiv1.Turn{Role: string(t.Role), Content: t.Content, CreatedAt: t.CreatedAt})
	}
	return out
}
