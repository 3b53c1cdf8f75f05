package mlfairy

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// NewCommand creates a Cobra command tree for model acquisition.
// The returned command can be used directly or added to a parent CLI's root
// command.
//
// Commands provided:
//   - models get <token> [--user <id>] [--timeout <dur>]
//   - models info <token>
//   - models clean <token>
//
// Global flags: --json, --quiet
func NewCommand(cfg Config, opts ...ClientOption) *cobra.Command {
	var (
		jsonOutput bool
		quiet      bool
	)

	// Client will be created in PersistentPreRunE
	var client *Client

	cmd := &cobra.Command{
		Use:   "models",
		Short: "Acquire ML models",
		Long:  "Download, verify, and compile ML models from a model server.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			var err error
			client, err = NewClient(cfg, opts...)
			if err != nil {
				return fmt.Errorf("failed to initialize client: %w", err)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")

	cmd.AddCommand(getCmd(&client, &jsonOutput, &quiet))
	cmd.AddCommand(infoCmd(&client, &jsonOutput))
	cmd.AddCommand(cleanCmd(&client, &quiet))

	return cmd
}

func getCmd(client **Client, jsonOutput, quiet *bool) *cobra.Command {
	var (
		userID  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "get <token>",
		Short: "Acquire a model",
		Long:  "Fetch metadata, download or reuse the artifact, verify it, and compile it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := args[0]

			task := (*client).Download(token)
			if userID != "" {
				task.Tag(userID)
			}

			type outcome struct {
				model Model
				err   error
			}
			done := make(chan outcome, 1)

			task.Start().Subscribe(GoExecutor, func(model Model, err error) {
				done <- outcome{model: model, err: err}
			})

			// A zero or negative timeout means wait indefinitely; a nil
			// channel never fires.
			var expired <-chan time.Time
			if timeout > 0 {
				expired = time.After(timeout)
			}

			var result outcome
			select {
			case result = <-done:
			case <-expired:
				task.Cancel()
				result = <-done
			}

			if result.err != nil {
				return result.err
			}

			return outputResult(cmd.OutOrStdout(), token, result.model, *jsonOutput, *quiet)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Advisory user identifier sent with the request")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Abort the acquisition after this duration (0 waits indefinitely)")
	return cmd
}

func infoCmd(client **Client, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "info <token>",
		Short: "Show cached model info",
		Long:  "Show the last-known-good metadata and artifact location for a token.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cached, err := (*client).storage.FindCached(args[0])
			if err != nil {
				return err
			}
			return outputCached(cmd.OutOrStdout(), cached, *jsonOutput)
		},
	}
}

func cleanCmd(client **Client, quiet *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "clean <token>",
		Short: "Remove cached model data",
		Long:  "Delete the stored metadata, artifact, and compiled form for a token.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, ok := (*client).storage.(*diskStorage)
			if !ok {
				return fmt.Errorf("%w: clean requires disk storage", ErrStorage)
			}
			if err := ds.RemoveToken(args[0]); err != nil {
				return err
			}
			if !*quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed cached data for %s\n", args[0])
			}
			return nil
		},
	}
}

// outputResult prints the outcome of a get command.
func outputResult(w io.Writer, token string, model Model, jsonOutput, quiet bool) error {
	if jsonOutput {
		return json.NewEncoder(w).Encode(map[string]any{
			"token": token,
			"model": fmt.Sprint(model),
		})
	}
	if quiet {
		fmt.Fprintln(w, fmt.Sprint(model))
		return nil
	}
	fmt.Fprintf(w, "Model for %s ready: %v\n", token, model)
	return nil
}

// outputCached prints a cached metadata-and-artifact pair.
func outputCached(w io.Writer, cached CachedModel, jsonOutput bool) error {
	if jsonOutput {
		return json.NewEncoder(w).Encode(map[string]any{
			"path":     cached.Path,
			"metadata": cached.Metadata,
		})
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Token:\t%s\n", cached.Metadata.Token)
	fmt.Fprintf(tw, "Active version:\t%s\n", cached.Metadata.ActiveVersion)
	fmt.Fprintf(tw, "Artifact:\t%s\n", cached.Path)
	if cached.Metadata.Hash != "" {
		fmt.Fprintf(tw, "Hash:\t%s (%s)\n", cached.Metadata.Hash, cached.Metadata.Algorithm)
	}
	return tw.Flush()
}
