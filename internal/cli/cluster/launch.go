package cluster

import (
	"time"

	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"

	"gridctl/internal/cloud/ami"
	"gridctl/internal/cloud/awsgw"
	"gridctl/internal/cluster"
	"gridctl/internal/logging"
	"gridctl/internal/remote"
)

var (
	workers       int64
	instanceType  string
	masterType    string
	imageSelector string
	keyPair       string
	waitSeconds   int
	spotPrice     float64
	volumeSize    int64
	resume        bool
)

var launchCmd = &cobra.Command{
	Use:   "launch <cluster_name> [flags]",
	Short: "Provision a new cluster and push its initial configuration",
	Long: dedent.Dedent(`
		Launch provisions security groups and instances for a brand-new
		cluster, waits for the instances to come up, then delivers the
		shared access key and peer hostfile to every node. The cluster
		name must not have active instances; use --resume to finish
		configuring a cluster whose launch was interrupted.
	`),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateIdentityFile(); err != nil {
			return err
		}
		name := cluster.ClusterName(args[0])
		gw := awsgw.New()

		if err := launchOrResume(gw, name); err != nil {
			return err
		}

		// Re-discover so bootstrap works from refreshed addresses.
		view, err := cluster.Discover(gw, name)
		if err != nil {
			return err
		}

		deployer := cluster.Deployer{
			Executor:   remote.NewSSHExecutor(),
			Credential: credential(),
		}
		if err := deployer.Deploy(view, true); err != nil {
			return err
		}
		logging.UserSuccess("Done! The master is %s", view.Master().PublicDNS)
		return nil
	},
}

func launchOrResume(gw *awsgw.Gateway, name cluster.ClusterName) error {
	if resume {
		_, err := cluster.Discover(gw, name)
		return err
	}

	zone, err := resolveZone(gw)
	if err != nil {
		return err
	}
	imageID, err := ami.NewResolver().Resolve(imageSelector)
	if err != nil {
		return err
	}

	plan := cluster.NewLaunchPlan(workers, instanceType, masterType, imageID, keyPair, zone)
	plan.SpotPrice = spotPrice
	plan.VolumeSizeGiB = volumeSize
	plan.WaitBudget = time.Duration(waitSeconds) * time.Second

	view, err := cluster.Launch(gw, name, plan)
	if err != nil {
		return err
	}
	return cluster.WaitUntilRunning(gw, view, plan.WaitBudget)
}

func init() {
	launchCmd.Flags().Int64VarP(&workers, "workers", "s", 1, "number of workers to launch")
	launchCmd.Flags().StringVarP(&instanceType, "instance-type", "t", "m1.xlarge", "worker instance type (must be 64-bit)")
	launchCmd.Flags().StringVarP(&masterType, "master-instance-type", "m", "", "master instance type (defaults to --instance-type)")
	launchCmd.Flags().StringVarP(&imageSelector, "image", "a", ami.TagStandard, "image id, or 'standard'/'hpc' to resolve the published image")
	launchCmd.Flags().StringVarP(&keyPair, "key-pair", "k", "", "name of the ssh identity key pair")
	launchCmd.Flags().StringVarP(&identityFile, "identity-file", "i", "", "ssh private key file used to reach the instances")
	launchCmd.Flags().IntVarP(&waitSeconds, "wait", "w", 120, "seconds to wait for nodes to start")
	launchCmd.Flags().Float64VarP(&spotPrice, "spot-price", "p", 0, "launch workers as spot instances with this maximum price (dollars)")
	launchCmd.Flags().Int64VarP(&volumeSize, "volume-size", "v", 0, "attach a new data volume of this size (GiB) to each node")
	launchCmd.Flags().BoolVarP(&resume, "resume", "", false, "resume configuration of a previously launched cluster")
}
