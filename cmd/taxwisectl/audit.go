package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

type auditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

type auditList struct {
	Logs  []auditEntry `json:"logs"`
	Count int          `json:"count"`
}

func newAuditCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the most recent audit log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out auditList
			req := newClient().R().SetResult(&out)
			if limit > 0 {
				req.SetQueryParam("limit", strconv.Itoa(limit))
			}
			resp, err := req.Get("/api/admin/audit-logs")
			if err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "TIME\tUSER\tACTION\tDETAILS")
			for _, e := range out.Logs {
				_, _ = fmt.Fprintf(tw, "%s\t%s (%s)\t%s\t%s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.UserName, e.UserID, e.Action, e.Details)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Number of entries to show (max 500)")
	return cmd
}
