package cluster

import (
	"github.com/spf13/cobra"

	"gridctl/internal/cloud/awsgw"
	"gridctl/internal/cluster"
	"gridctl/internal/logging"
)

var destroyForce bool

var destroyCmd = &cobra.Command{
	Use:   "destroy <cluster_name> [flags]",
	Short: "Terminate every instance of a cluster",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := cluster.ClusterName(args[0])
		confirmed := destroyForce
		if !confirmed {
			confirmed = confirm("Are you sure you want to destroy the cluster " + args[0] +
				"?\nALL DATA ON ALL NODES WILL BE LOST!\nDestroy cluster " + args[0])
		}
		if err := cluster.Destroy(awsgw.New(), name, confirmed); err != nil {
			return err
		}
		if confirmed {
			logging.UserSuccess("Cluster %s destroyed", args[0])
		}
		return nil
	},
}

func init() {
	destroyCmd.Flags().BoolVarP(&destroyForce, "force", "f", false, "skip the confirmation prompt")
}
