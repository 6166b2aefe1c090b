package cluster

import (
	"github.com/spf13/cobra"

	"gridctl/internal/cloud/awsgw"
	"gridctl/internal/cluster"
	"gridctl/internal/logging"
)

var stopForce bool

var stopCmd = &cobra.Command{
	Use:   "stop <cluster_name> [flags]",
	Short: "Stop every instance of a cluster",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := cluster.ClusterName(args[0])
		confirmed := stopForce
		if !confirmed {
			confirmed = confirm("Are you sure you want to stop the cluster " + args[0] +
				"?\nDATA ON EPHEMERAL DISKS WILL BE LOST, EBS-BACKED STORAGE KEEPS BILLING!\nStop cluster " + args[0])
		}
		if err := cluster.Stop(awsgw.New(), name, confirmed); err != nil {
			return err
		}
		if confirmed {
			logging.UserSuccess("Cluster %s stopped", args[0])
		}
		return nil
	},
}

func init() {
	stopCmd.Flags().BoolVarP(&stopForce, "force", "f", false, "skip the confirmation prompt")
}
