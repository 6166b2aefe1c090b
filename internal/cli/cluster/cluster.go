package cluster

import (
	"github.com/spf13/cobra"
)

var Cluster = &cobra.Command{
	Use:   "cluster [command] [flags]",
	Short: "Provision and manage compute clusters",
	Run: func(c *cobra.Command, _ []string) {
		_ = c.Help()
	},
	SilenceUsage: true,
}

func init() {
	Cluster.AddCommand(launchCmd)
	Cluster.AddCommand(destroyCmd)
	Cluster.AddCommand(stopCmd)
	Cluster.AddCommand(startCmd)
	Cluster.AddCommand(statusCmd)
	Cluster.AddCommand(loginCmd)
	Cluster.AddCommand(getMasterCmd)
	Cluster.AddCommand(attachVolumeCmd)
	Cluster.AddCommand(detachVolumeCmd)
}
