package cluster

import (
	"github.com/spf13/cobra"

	"gridctl/internal/cloud/awsgw"
	"gridctl/internal/cluster"
	"gridctl/internal/logging"
)

const masterVolumeDevice = "/dev/sdh"

var volumeID string

var attachVolumeCmd = &cobra.Command{
	Use:   "attach-volume <cluster_name> [flags]",
	Short: "Attach an existing data volume to the master node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := cluster.ClusterName(args[0])
		err := cluster.AttachVolume(awsgw.New(), name, volumeID, masterVolumeDevice)
		if err != nil {
			return err
		}
		logging.UserSuccess("Volume %s attached to the master at %s", volumeID, masterVolumeDevice)
		return nil
	},
}

var detachVolumeCmd = &cobra.Command{
	Use:   "detach-volume <cluster_name> [flags]",
	Short: "Detach a data volume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cluster.DetachVolume(awsgw.New(), volumeID); err != nil {
			return err
		}
		logging.UserSuccess("Volume %s detached", volumeID)
		return nil
	},
}

func init() {
	attachVolumeCmd.Flags().StringVarP(&volumeID, "volume-id", "", "", "id of the volume to attach")
	detachVolumeCmd.Flags().StringVarP(&volumeID, "volume-id", "", "", "id of the volume to detach")
}
