package cluster

import (
	"time"

	"github.com/spf13/cobra"

	"gridctl/internal/cloud/awsgw"
	"gridctl/internal/cluster"
	"gridctl/internal/logging"
	"gridctl/internal/remote"
)

var startWaitSeconds int

var startCmd = &cobra.Command{
	Use:   "start <cluster_name> [flags]",
	Short: "Start a stopped cluster and refresh its configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateIdentityFile(); err != nil {
			return err
		}
		name := cluster.ClusterName(args[0])
		gw := awsgw.New()

		view, err := cluster.Start(gw, name)
		if err != nil {
			return err
		}
		settle := time.Duration(startWaitSeconds) * time.Second
		if err := cluster.WaitUntilRunning(gw, view, settle); err != nil {
			return err
		}

		// Addresses change across a stop/start cycle, rebuild the view.
		view, err = cluster.Discover(gw, name)
		if err != nil {
			return err
		}
		deployer := cluster.Deployer{
			Executor:   remote.NewSSHExecutor(),
			Credential: credential(),
		}
		if err := deployer.Deploy(view, false); err != nil {
			return err
		}
		logging.UserSuccess("Cluster %s started, master is %s", args[0], view.Master().PublicDNS)
		return nil
	},
}

func init() {
	startCmd.Flags().IntVarP(&startWaitSeconds, "wait", "w", 120, "seconds to wait for nodes to start")
	startCmd.Flags().StringVarP(&identityFile, "identity-file", "i", "", "ssh private key file used to reach the instances")
}
