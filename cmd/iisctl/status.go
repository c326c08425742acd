package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"iisctl/internal/config"
	"iisctl/pkg/colors"
	"iisctl/pkg/errors"
	"iisctl/pkg/logging"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status <command-id>",
	Short: "Show the per-instance status of a sent IIS reset",
	Long: `Look up a command ID printed by 'iisctl restart' and show, for every
targeted instance, the invocation status, exit code and script output.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := performStatus(cmd.Context(), cmd.OutOrStdout(), args[0], regionCode); err != nil {
			logging.LogError("Status lookup failed: %v", err)
			os.Exit(1)
		}
	},
}

// performStatus prints invocation status for commandID
func performStatus(ctx context.Context, out io.Writer, commandID, regionInput string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	region, err := resolveRegion(regionInput)
	if err != nil {
		return errors.Wrap(errors.ErrTypeValidation, "invalid region", err)
	}

	statuses, err := newManager(GetLogger(), config.Get()).CommandStatus(ctx, strings.TrimSpace(commandID), region)
	if err != nil {
		return err
	}

	colors.Header.Fprintf(out, "=== Command %s ===\n", commandID)
	for _, s := range statuses {
		name := s.InstanceName
		if name == "" {
			name = s.InstanceID
		}
		fmt.Fprintln(out)
		colors.Data.Fprintf(out, "%s (%s)\n", name, s.InstanceID)
		colors.StatusColor(s.Status).Fprintf(out, "Status: %s\n", s.Status)
		colors.Data.Fprintf(out, "Response Code: %d\n", s.ResponseCode)
		if s.Output != "" {
			fmt.Fprintln(out, strings.TrimRight(s.Output, "\n"))
		}
	}

	return nil
}
