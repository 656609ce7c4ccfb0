package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/MinterTeam/minter-swap/log"
	"github.com/spf13/cobra"
)

var ExportCommand = &cobra.Command{
	Use:   "export",
	Short: "Print the state at a height as JSON",
	RunE:  export,
}

func init() {
	ExportCommand.Flags().Uint64("height", 0, "height to export, the latest one for 0")
	ExportCommand.Flags().Bool("indent", false, "indent the output")
}

func export(cmd *cobra.Command, _ []string) error {
	height, err := cmd.Flags().GetUint64("height")
	if err != nil {
		return err
	}
	indent, err := cmd.Flags().GetBool("indent")
	if err != nil {
		return err
	}

	s, _, closer, err := openState(height, log.Nop())
	if err != nil {
		return err
	}
	defer closer.Close()

	appState := s.Export()
	if err := appState.Verify(); err != nil {
		return err
	}
	appState.Note = fmt.Sprintf("height %d", s.Height())

	var out []byte
	if indent {
		out, err = json.MarshalIndent(appState, "", "  ")
	} else {
		out, err = json.Marshal(appState)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
