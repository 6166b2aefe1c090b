package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"gridctl/internal/env"
)

var Version = &cobra.Command{
	Use:   "version",
	Short: "Version",
	RunE: func(c *cobra.Command, _ []string) error {
		versionInfo := env.GetBuildVersion()
		fmt.Printf("%s\n%s\n", versionInfo.BuildVersion, versionInfo.Commit)
		return nil
	},
	SilenceUsage: true,
}
