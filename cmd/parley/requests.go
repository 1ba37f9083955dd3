package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"parley/internal/requests/models"
	id "parley/pkg/domain"
)

func requestsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Inspect stored requests",
	}
	cmd.AddCommand(requestsListCmd(c))
	return cmd
}

type listFlags struct {
	direction string
	peer      string
	statuses  []string
	since     time.Duration
	limit     int
	json      bool
}

func requestsListCmd(c *cli) *cobra.Command {
	f := listFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List outgoing or incoming requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			query, err := f.query()
			if err != nil {
				return err
			}
			a, err := newApp(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.close()

			var requests []*models.Request
			switch f.direction {
			case "outgoing":
				requests, err = a.outgoing.List(ctx, query)
			case "incoming":
				requests, err = a.incoming.List(ctx, query)
			default:
				return fmt.Errorf("direction must be outgoing or incoming, got %q", f.direction)
			}
			if err != nil {
				return err
			}

			if f.json {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(requests)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"ID", "Peer", "Status", "Items", "Created", "Response"})
			for _, r := range requests {
				response := ""
				if r.Response != nil {
					response = string(r.Response.Content.Result)
				}
				tw.AppendRow(table.Row{r.ID, r.Peer, r.Status, len(r.Content.Items), r.CreatedAt.Format(time.RFC3339), response})
			}
			tw.AppendFooter(table.Row{"", "", "", "", "total", len(requests)})
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&f.direction, "direction", "outgoing", "outgoing or incoming")
	cmd.Flags().StringVar(&f.peer, "peer", "", "peer address filter")
	cmd.Flags().StringSliceVar(&f.statuses, "status", nil, "status filter, repeatable")
	cmd.Flags().DurationVar(&f.since, "since", 0, "only requests created within this window")
	cmd.Flags().IntVar(&f.limit, "limit", 50, "maximum rows")
	cmd.Flags().BoolVar(&f.json, "json", false, "output JSON")
	return cmd
}

func (f listFlags) query() (models.Query, error) {
	q := models.Query{Limit: f.limit}
	if f.peer != "" {
		addr, err := id.ParseAddress(f.peer)
		if err != nil {
			return q, err
		}
		q.Peer = addr
	}
	for _, raw := range f.statuses {
		status := models.Status(strings.TrimSpace(raw))
		if !status.IsValid() {
			return q, fmt.Errorf("unknown status %q", raw)
		}
		q.Statuses = append(q.Statuses, status)
	}
	if f.since > 0 {
		after := time.Now().Add(-f.since)
		q.CreatedAfter = &after
	}
	return q, nil
}
