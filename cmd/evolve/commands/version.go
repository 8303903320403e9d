package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evolvekit/evolve/version"
)

// VersionCmd prints version and build information.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE:  runVersion,
}

var versionJSONFlag bool

func init() {
	VersionCmd.Flags().BoolVar(&versionJSONFlag, "json", false, "Output as JSON")
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.Get()
	if versionJSONFlag {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	fmt.Println(info.String())
	return nil
}
