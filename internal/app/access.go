package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var accessCmd = &cobra.Command{
	Use:   "access",
	Short: "Grant, revoke or check access to usage history",
	Long: `rewind only reads recorded usage history after access has been granted.
Until then the timeline, stats and export commands refuse to run.

Granting access creates a marker file in the data directory; revoking it
removes the marker. Recorded events are kept either way.`,
	Example: `  rewind access grant
  rewind access check
  rewind access revoke`,
}

var accessGrantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Allow rewind to read usage history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gate := accessGate()
		if err := gate.Grant(); err != nil {
			return err
		}
		logger.Info().Str("marker", gate.Path()).Msg("usage access granted")
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Usage access granted")
		return nil
	},
}

var accessRevokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Stop rewind from reading usage history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := accessGate().Revoke(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Usage access revoked")
		return nil
	},
}

var accessCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether usage access is granted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		granted, err := accessGate().Granted()
		if err != nil {
			return err
		}
		if granted {
			fmt.Fprintln(cmd.OutOrStdout(), "granted")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "not granted")
		return nil
	},
}

func init() {
	accessCmd.AddCommand(accessGrantCmd, accessRevokeCmd, accessCheckCmd)
	RootCmd.AddCommand(accessCmd)
}
