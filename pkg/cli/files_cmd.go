package cli

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"docs-evaluator/internal/domain"
)

var objectHeaders = []string{"id", "name", "type", "created"}

func objectRows(objs []domain.ObjectMeta) func() [][]string {
	return func() [][]string {
		rows := make([][]string, 0, len(objs))
		for _, o := range objs {
			kind := "file"
			if o.IsFolder() {
				kind = "folder"
			}
			created := ""
			if !o.CreatedAt.IsZero() {
				created = o.CreatedAt.Local().Format(time.DateTime)
			}
			rows = append(rows, []string{o.ID, o.Name, kind, created})
		}
		return rows
	}
}

func newFilesCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Browse and manage the submission folder tree",
	}

	cmd.AddCommand(newFilesListCmd(client))
	cmd.AddCommand(newFilesMkdirCmd(client))
	cmd.AddCommand(newFilesRemoveCmd(client))
	cmd.AddCommand(newFilesSearchCmd(client))

	return cmd
}

func newFilesListCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:     "ls [folder-id]",
		Aliases: []string{"list"},
		Short:   "List the contents of a folder (default: the root folder)",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := "root"
			if len(args) == 1 {
				folder = args[0]
			}
			var objs []domain.ObjectMeta
			if err := client.Do(cmd.Context(), http.MethodGet, "/drive/files/"+url.PathEscape(folder), nil, nil, &objs); err != nil {
				return err
			}
			return render(cmd, objs, objectHeaders, objectRows(objs))
		},
	}
}

func newFilesMkdirCmd(client *Client) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "mkdir <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"name": args[0], "parentId": parent}
			var folder domain.ObjectMeta
			if err := client.Do(cmd.Context(), http.MethodPost, "/drive/folders", nil, body, &folder); err != nil {
				return err
			}
			return printStatus(cmd, folder, "Created folder %q (%s)", folder.Name, folder.ID)
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "root", "Parent folder id")
	return cmd
}

func newFilesRemoveCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Move a file or folder to the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var res map[string]string
			if err := client.Do(cmd.Context(), http.MethodDelete, "/drive/files/"+url.PathEscape(args[0]), nil, nil, &res); err != nil {
				return err
			}
			return printStatus(cmd, res, "Moved %s to the trash", args[0])
		},
	}
}

func newFilesSearchCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find files whose name contains query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("q", strings.Join(args, " "))
			var objs []domain.ObjectMeta
			if err := client.Do(cmd.Context(), http.MethodGet, "/drive/search", q, nil, &objs); err != nil {
				return err
			}
			return render(cmd, objs, objectHeaders, objectRows(objs))
		},
	}
}
