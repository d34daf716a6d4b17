// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dtmf/internal/audio"
	"dtmf/internal/tui"
)

func newListCommand(a *app) *cobra.Command {
	var interactive bool

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := audio.Initialize(); err != nil {
				return err
			}
			defer audio.Terminate()

			devices, err := audio.Devices()
			if err != nil {
				return err
			}

			if !interactive {
				audio.WriteDevices(out(cmd), devices)
				return nil
			}

			id, ok, err := tui.PickDevice(devices)
			if err != nil || !ok {
				return err
			}
			fmt.Fprintf(out(cmd), "Selected device %d. Use --device %d or audio.input_device: %d\n", id, id, id)
			return nil
		},
	}

	listCmd.Flags().BoolVarP(&interactive, "interactive", "i", false,
		"Browse the input devices in the terminal UI")

	return listCmd
}
