package cluster

import (
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"gridctl/internal/cloud/awsgw"
	"gridctl/internal/cluster"
	"gridctl/internal/logging"
)

var proxyPort string

var loginCmd = &cobra.Command{
	Use:   "login <cluster_name> [flags]",
	Short: "Open an interactive shell on the master node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateIdentityFile(); err != nil {
			return err
		}
		name := cluster.ClusterName(args[0])
		view, err := cluster.Discover(awsgw.New(), name)
		if err != nil {
			return err
		}
		master := view.Master().PublicDNS
		logging.UserProgress("Logging into master %s...", master)

		// Interactive TTY session, so hand over to the system ssh binary.
		sshArgs := []string{"-o", "StrictHostKeyChecking=no", "-i", identityFile}
		if proxyPort != "" {
			sshArgs = append(sshArgs, "-D", proxyPort)
		}
		sshArgs = append(sshArgs, remoteUser+"@"+master)
		ssh := exec.Command("ssh", sshArgs...)
		ssh.Stdin = os.Stdin
		ssh.Stdout = os.Stdout
		ssh.Stderr = os.Stderr
		return ssh.Run()
	},
}

var getMasterCmd = &cobra.Command{
	Use:   "get-master <cluster_name> [flags]",
	Short: "Print the public address of the master node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := cluster.ClusterName(args[0])
		view, err := cluster.Discover(awsgw.New(), name)
		if err != nil {
			return err
		}
		cmd.Println(view.Master().PublicDNS)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&identityFile, "identity-file", "i", "", "ssh private key file used to reach the instances")
	loginCmd.Flags().StringVarP(&proxyPort, "proxy-port", "D", "", "create a SOCKS proxy at [address:]port via ssh dynamic forwarding")
}
