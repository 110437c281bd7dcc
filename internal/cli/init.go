package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize takeoff storage",
		Long:  "Create the configuration and data directories, then initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.run(false, func(*session) error { return nil }); err != nil {
				return err
			}
			dataDir, err := a.dataDir()
			if err != nil {
				return err
			}
			return a.emit(cmd, map[string]string{"config_dir": a.configDir, "data_dir": dataDir}, func(w io.Writer) {
				fmt.Fprintf(w, "Takeoff initialized in %s\n", dataDir)
			})
		},
	}
}
