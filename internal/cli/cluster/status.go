package cluster

import (
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"gridctl/internal/cloud/awsgw"
	"gridctl/internal/cluster"
)

var statusCmd = &cobra.Command{
	Use:   "status <cluster_name> [flags]",
	Short: "Show the instances of a cluster by role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := cluster.ClusterName(args[0])
		view, err := cluster.Discover(awsgw.New(), name)
		if err != nil {
			return err
		}

		var data [][]string
		for _, instance := range view.All() {
			data = append(data, []string{
				instance.ID,
				string(view.RoleOf(instance.ID)),
				string(instance.State),
				instance.PublicDNS,
				instance.PrivateDNS,
			})
		}
		renderTable([]string{"instance", "role", "state", "public address", "private address"}, data)
		return nil
	},
}

func renderTable(fields []string, data [][]string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(fields)
	table.SetRowLine(true)
	table.AppendBulk(data)
	table.Render()
}
