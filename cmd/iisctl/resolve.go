package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"iisctl/internal/config"
	"iisctl/pkg/errors"
	"iisctl/pkg/logging"

	"github.com/spf13/cobra"
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve [instance-id|server-name]",
	Short: "Print the instance IDs a server resolves to",
	Long: `Resolve a Name tag value the same way 'iisctl restart' does and print the
comma-joined instance IDs, without sending any command.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var arg string
		if len(args) > 0 {
			arg = args[0]
		}
		if err := performResolve(cmd.Context(), cmd.OutOrStdout(), arg, regionCode); err != nil {
			logging.LogError("Resolve failed: %v", err)
			os.Exit(1)
		}
	},
}

// performResolve prints the resolved target for arg (or the server env var)
func performResolve(ctx context.Context, out io.Writer, arg, regionInput string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := config.Get()
	region, err := resolveRegion(regionInput)
	if err != nil {
		return errors.Wrap(errors.ErrTypeValidation, "invalid region", err)
	}

	identifier, err := config.ServerIdentifier(arg, cfg.ServerEnvVar, lookupEnv)
	if err != nil {
		return err
	}

	ids, err := newManager(GetLogger(), cfg).Resolve(ctx, identifier, "", region)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, ids)
	return nil
}
