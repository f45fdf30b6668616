package cli

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"docs-evaluator/internal/domain"
)

func newAnalyzeCmd(client *Client) *cobra.Command {
	var (
		model string
		name  string
	)

	cmd := &cobra.Command{
		Use:   "analyze <file-id>",
		Short: "Review a submitted document with an AI provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				name = args[0]
			}
			body := map[string]string{"fileId": args[0], "fileName": name, "model": model}
			var res struct {
				Analysis   string             `json:"analysis"`
				Evaluation *domain.Evaluation `json:"evaluation"`
			}
			if err := client.Do(cmd.Context(), http.MethodPost, "/ai/analyze", nil, body, &res); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), res)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), res.Analysis)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "openrouter", "AI provider name")
	cmd.Flags().StringVar(&name, "name", "", "Document name recorded with the review (default: the file id)")
	return cmd
}

func newHistoryCmd(client *Client) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past AI reviews, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			var evals []domain.Evaluation
			if err := client.Do(cmd.Context(), http.MethodGet, "/ai/history", q, nil, &evals); err != nil {
				return err
			}
			return render(cmd, evals, []string{"evaluated", "file", "model", "summary"}, func() [][]string {
				rows := make([][]string, 0, len(evals))
				for _, e := range evals {
					rows = append(rows, []string{
						e.EvaluatedAt.Local().Format(time.DateTime), e.FileName, e.ModelUsed, firstLine(e.Result, 60),
					})
				}
				return rows
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of reviews to list")
	return cmd
}

// firstLine returns the first line of s, cut to n runes.
func firstLine(s string, n int) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	r := []rune(line)
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return line
}
