package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	token     string
)

func main() {
	root := &cobra.Command{
		Use:   "stratagem-ctl",
		Short: "Operator CLI for the stratagem turn engine",
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of the stratagem server")
	root.PersistentFlags().StringVar(&token, "token", os.Getenv("STRATAGEM_OPERATOR_TOKEN"), "operator bearer token")

	root.AddCommand(tickCmd(), statusCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func tickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Trigger one turn advancement",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := http.NewRequest(http.MethodPost, serverURL+"/api/admin/tick", nil)
			if err != nil {
				return err
			}
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			return doRequest(cmd.OutOrStdout(), req)
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current turn-accounting state",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := http.NewRequest(http.MethodGet, serverURL+"/api/state", nil)
			if err != nil {
				return err
			}
			return doRequest(cmd.OutOrStdout(), req)
		},
	}
}

func doRequest(out io.Writer, req *http.Request) error {
	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s\n%s\n", resp.Proto, resp.Status, body)
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusConflict {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return nil
}
