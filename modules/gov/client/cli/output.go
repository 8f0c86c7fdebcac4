package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	tmcli "github.com/tendermint/tendermint/libs/cli"
)

const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// printOutput writes v to the command output in the format selected by the output
// flag. Text output is the yaml rendering of the JSON encoding.
func printOutput(cmd *cobra.Command, v interface{}) error {
	bz, err := json.Marshal(v)
	if err != nil {
		return err
	}

	format, err := cmd.Flags().GetString(tmcli.OutputFlag)
	if err != nil {
		return err
	}

	switch format {
	case OutputFormatJSON:
	case OutputFormatText:
		var out interface{}
		if err := yaml.Unmarshal(bz, &out); err != nil {
			return err
		}
		if bz, err = yaml.Marshal(out); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(bz), "\n"))
	return err
}

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP(tmcli.OutputFlag, "o", OutputFormatText, "Output format (text|json)")
}
