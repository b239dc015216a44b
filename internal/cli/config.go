// Package cli: config.go implements the "rskill config" command group.
//
// Currently the only subcommand is "config init", which writes a
// commented starter configuration file into a directory. The file is
// picked up automatically by later runs in or below that directory.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rskill-dev/rskill/internal/config"
	"github.com/rskill-dev/rskill/internal/model"
)

// NewConfigCommand creates the "config" cobra command group.
// It is called from NewRootCommand to register as a subcommand.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the rskill configuration file",
	}
	cmd.AddCommand(newConfigInitCommand())
	return cmd
}

// newConfigInitCommand creates the "config init" subcommand.
func newConfigInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a starter configuration file",
		Long: `Write a commented ` + config.DefaultFileName + ` with the default settings
into a directory (the current one when omitted). The file is found
automatically when rskill scans that directory.

Refuses to overwrite an existing file.`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			path := filepath.Join(dir, config.DefaultFileName)
			if err := config.WriteDefault(path); err != nil {
				return model.WrapCLIError(model.ExitGeneralError, "failed to write configuration", err)
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
}
