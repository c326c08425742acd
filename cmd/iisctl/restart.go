package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"iisctl/internal/config"
	"iisctl/internal/ssm"
	awspkg "iisctl/pkg/aws"
	"iisctl/pkg/colors"
	"iisctl/pkg/errors"
	"iisctl/pkg/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/spf13/cobra"
)

type restartFlags struct {
	name   string
	wait   bool
	pick   bool
	dryRun bool
}

// restartCmd represents the restart command
var restartCmd = &cobra.Command{
	Use:   "restart [instance-id|server-name]",
	Short: "Restart IIS application pools and websites on an instance",
	Long: `Send the IIS reset script to an EC2 Windows instance via SSM Run Command.

The target is an instance ID (i-1234567890abcdef0) or a Name tag value. When no
argument is given the server is read from the Server_name environment variable.
A Name tag matching several instances targets all of them in one command.

The command ID is printed and the command returns without waiting for the
script unless --wait is given. A failed script does not change the exit status.

Examples:
  iisctl restart i-1234567890abcdef0
  iisctl restart web-prod-01 --region use1
  Server_name=web-prod-01 iisctl restart --wait
  iisctl restart --select`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var arg string
		if len(args) > 0 {
			arg = args[0]
		}

		flags := restartFlags{}
		flags.name, _ = cmd.Flags().GetString("name")
		flags.wait, _ = cmd.Flags().GetBool("wait")
		flags.pick, _ = cmd.Flags().GetBool("select")
		flags.dryRun, _ = cmd.Flags().GetBool("dry-run")

		if err := performRestart(cmd.Context(), cmd.OutOrStdout(), arg, regionCode, flags); err != nil {
			logging.LogError("IIS restart failed: %v", err)
			os.Exit(1)
		}
	},
}

// performRestart resolves the target and dispatches the IIS reset, returning errors instead of exiting
func performRestart(ctx context.Context, out io.Writer, arg, regionInput string, flags restartFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := config.Get()
	region, err := resolveRegion(regionInput)
	if err != nil {
		return errors.Wrap(errors.ErrTypeValidation, "invalid region", err)
	}

	manager := newManager(GetLogger(), cfg)

	identifier, err := config.ServerIdentifier(arg, cfg.ServerEnvVar, lookupEnv)
	if err != nil {
		if !flags.pick {
			return err
		}
		identifier, err = selectInstance(ctx, manager, region)
		if err != nil {
			return err
		}
	}

	logging.LogInfo("Restarting IIS on %s in region: %s (%s)", identifier, region, awspkg.GetRegionCode(region))

	result, err := manager.RestartIIS(ctx, identifier, region, ssm.RestartOptions{
		Name:   flags.name,
		Wait:   flags.wait,
		DryRun: flags.dryRun,
	})
	if err != nil {
		if result != nil && len(result.Results) > 0 {
			printResults(out, result.Results)
		}
		return err
	}

	if result.DryRun {
		printDryRun(out, result)
		return nil
	}

	logging.LogSuccess("IIS reset command %s sent to %s (run %s)", result.CommandID, strings.Join(result.InstanceIDs, ","), result.RunID)
	colors.Success.Fprintf(out, "✅ IIS reset sent to %s\n", strings.Join(result.InstanceIDs, ", "))
	colors.Data.Fprintf(out, "Command ID: %s\n", result.CommandID)

	if flags.wait {
		printResults(out, result.Results)
	}

	return nil
}

// selectInstance prompts for a running Windows instance when no server was given
func selectInstance(ctx context.Context, manager *ssm.Manager, region string) (string, error) {
	if !isInteractive() {
		return "", errors.NewConfigError("no server specified and --select needs an interactive terminal", nil)
	}

	instances, err := manager.ListWindowsInstances(ctx, region)
	if err != nil {
		return "", err
	}

	selected, err := newSelector().SelectInstance(instances)
	if err != nil {
		return "", err
	}
	return selected.InstanceID, nil
}

func printDryRun(out io.Writer, result *ssm.RestartResult) {
	input := result.Input

	colors.Header.Fprintf(out, "=== Dry Run: command not sent ===\n")
	colors.Data.Fprintf(out, "Region:         %s\n", result.Region)
	colors.Data.Fprintf(out, "Document:       %s\n", aws.ToString(input.DocumentName))
	colors.Data.Fprintf(out, "Instances:      %s\n", strings.Join(input.InstanceIds, ", "))
	colors.Data.Fprintf(out, "TimeoutSeconds: %d\n", aws.ToInt32(input.TimeoutSeconds))
	if input.Comment != nil {
		colors.Data.Fprintf(out, "Comment:        %s\n", aws.ToString(input.Comment))
	}

	keys := make([]string, 0, len(input.Parameters))
	for k := range input.Parameters {
		if k != "commands" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		colors.Data.Fprintf(out, "%-16s%q\n", k+":", input.Parameters[k])
	}

	colors.Header.Fprintf(out, "\n--- Script ---\n")
	fmt.Fprintln(out, strings.Join(input.Parameters["commands"], "\n"))
}

func printResults(out io.Writer, results []ssm.CommandResult) {
	for _, result := range results {
		fmt.Fprintln(out)
		colors.Header.Fprintf(out, "=== %s ===\n", result.InstanceID)
		colors.StatusColor(result.Status).Fprintf(out, "Status: %s\n", result.Status)
		if result.ExitCode != nil {
			colors.Data.Fprintf(out, "Exit Code: %d\n", *result.ExitCode)
		}
		if result.Output != "" {
			colors.Header.Fprintf(out, "--- Output ---\n")
			fmt.Fprintln(out, strings.TrimRight(result.Output, "\n"))
		}
		if result.ErrorOutput != "" {
			colors.Header.Fprintf(out, "--- Error Output ---\n")
			fmt.Fprintln(out, strings.TrimRight(result.ErrorOutput, "\n"))
		}
	}
}

func init() {
	restartCmd.Flags().String("name", "", "Name tag to look up instead of the identifier")
	restartCmd.Flags().BoolP("wait", "w", false, "wait for the script to finish and print its output")
	restartCmd.Flags().BoolP("select", "s", false, "pick an instance interactively when no server is given")
	restartCmd.Flags().Bool("dry-run", false, "resolve the target and print the command without sending it")
}
