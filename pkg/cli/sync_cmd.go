package cli

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"docs-evaluator/internal/domain"
)

func newSyncCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Route every form submission into the section/team folders",
		Long: "Reads the form responses sheet, copies each submitted file into\n" +
			"<root>/<section>/<team>/ under its canonical name and lists the routed files.\n" +
			"Re-running is safe: files already in place are not copied again.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var routed []domain.RoutedFile
			if err := client.Do(cmd.Context(), http.MethodGet, "/drive/sync-submissions", nil, nil, &routed); err != nil {
				return err
			}
			return render(cmd, routed, []string{"id", "name", "late", "submitted", "link"}, func() [][]string {
				rows := make([][]string, 0, len(routed))
				for _, f := range routed {
					rows = append(rows, []string{f.ID, f.DisplayName, yesNo(f.Late), f.SubmittedAt, f.ViewLink})
				}
				return rows
			})
		},
	}

	cmd.AddCommand(newSyncRunsCmd(client))
	return cmd
}

func newSyncRunsCmd(client *Client) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent sync runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			var runs []domain.SyncRun
			if err := client.Do(cmd.Context(), http.MethodGet, "/sync/runs", q, nil, &runs); err != nil {
				return err
			}
			return render(cmd, runs, []string{"id", "trigger", "status", "rows", "routed", "skipped", "started", "error"}, func() [][]string {
				rows := make([][]string, 0, len(runs))
				for _, r := range runs {
					errMsg := ""
					if r.ErrorMessage != nil {
						errMsg = *r.ErrorMessage
					}
					rows = append(rows, []string{
						r.ID, string(r.Trigger), string(r.Status),
						strconv.Itoa(r.RowsTotal), strconv.Itoa(r.RowsRouted), strconv.Itoa(r.RowsSkipped),
						r.StartedAt.Local().Format(time.DateTime), errMsg,
					})
				}
				return rows
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	return cmd
}

func newDeliverablesCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "deliverables",
		Short: "List configured deliverables and their deadlines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var configs []domain.DeliverableConfig
			if err := client.Do(cmd.Context(), http.MethodGet, "/deliverables", nil, nil, &configs); err != nil {
				return err
			}
			return render(cmd, configs, []string{"tag", "deadline"}, func() [][]string {
				rows := make([][]string, 0, len(configs))
				for _, c := range configs {
					rows = append(rows, []string{c.Tag, c.Deadline.Format(time.RFC3339)})
				}
				return rows
			})
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
