package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"text/tabwriter"
	"time"

	"circuitflow/types"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the document catalog",
	Long:  `List catalog metadata from the database, or from a running API with --remote.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		remote, _ := cmd.Flags().GetBool("remote")

		var docs []types.DocumentSummary
		var err error
		if remote {
			docs, err = fetchRemote(cmd, cfg.Server.APIBaseURL)
		} else {
			docs, err = fetchLocal(cmd)
		}
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tTYPE\tCREATED")
		for _, d := range docs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.Title, d.Type, d.CreatedAt.Format(time.RFC3339))
		}
		return w.Flush()
	},
}

func init() {
	listCmd.Flags().Bool("remote", false, "query API_BASE_URL instead of the database")
}

func fetchLocal(cmd *cobra.Command) ([]types.DocumentSummary, error) {
	db, err := openStore(cmd.Context())
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.ListDocuments(cmd.Context())
}

func fetchRemote(cmd *cobra.Command, baseURL string) ([]types.DocumentSummary, error) {
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, baseURL+"/api/documents", nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL)
	}
	var body types.DocumentsResponse[types.DocumentSummary]
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return body.Documents, nil
}
