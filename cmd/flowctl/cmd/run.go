package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"flowengine/application/dispatch"
)

func newRunCmd(opts *options) *cobra.Command {
	var (
		file      string
		operation string
		pretty    bool
		failOnErr bool
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run one request envelope and print the response",
		Long: `Run reads a request envelope from a file, or from stdin when --file is "-".

With --type the input is taken as the bare payload and wrapped in an
envelope for that operation.

Examples:
  flowctl run --file request.json
  flowctl run --type critical-path --file graph.json --pretty`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, file)
			if err != nil {
				return err
			}

			var req dispatch.Request
			if operation != "" {
				req = dispatch.Request{ID: "flowctl", Type: operation, Data: json.RawMessage(input)}
			} else if err := json.Unmarshal(input, &req); err != nil {
				return fmt.Errorf("invalid request envelope: %w", err)
			}

			d, err := newDispatcher(opts.logger)
			if err != nil {
				return err
			}
			resp := d.Dispatch(context.Background(), req)

			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(resp); err != nil {
				return err
			}

			if failOnErr && resp.IsError() {
				return fmt.Errorf("request %q failed: %s", resp.ID, resp.Error)
			}
			return nil
		},
	}

	runCmd.Flags().StringVarP(&file, "file", "f", "-", "request file, - for stdin")
	runCmd.Flags().StringVarP(&operation, "type", "t", "", "treat the input as the payload of this operation")
	runCmd.Flags().BoolVar(&pretty, "pretty", false, "indent the response")
	runCmd.Flags().BoolVar(&failOnErr, "fail", false, "exit non-zero when the response is an error")
	return runCmd
}

func readInput(cmd *cobra.Command, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	return data, nil
}
