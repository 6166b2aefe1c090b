package main

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"gridctl/internal/cli/cluster"
	"gridctl/internal/cli/version"
	"gridctl/internal/env"
)

var rootCmd = &cobra.Command{
	Use:   "gridctl [group] [command] [flags]",
	Short: "CLI for provisioning and managing compute clusters on EC2",
	Run: func(c *cobra.Command, _ []string) {
		if err := c.Help(); err != nil {
			log.Debug().Msgf("ignoring cobra error %q", err.Error())
		}
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func Find(array []string, val string) bool {
	for _, item := range array {
		if item == val {
			return true
		}
	}
	return false
}

func Usage(cmd *cobra.Command) error {
	if cmd == nil {
		return fmt.Errorf("nil command")
	}

	usage := []string{fmt.Sprintf("Usage: %s", cmd.UseLine())}
	cmdPath := cmd.CommandPath()
	groups := []string{"cluster"}

	if cmdPath == "gridctl" {
		usage = append(usage, "\nGroups:")
		for _, subCommand := range cmd.Commands() {
			if Find(groups, subCommand.Name()) {
				usage = append(usage, fmt.Sprintf("  %s %-30s  %s", cmd.CommandPath(), subCommand.Name(), subCommand.Short))
			}
		}
	}

	usage = append(usage, "\nCommands:")
	for _, subCommand := range cmd.Commands() {
		if !subCommand.Hidden && !Find(groups, subCommand.Name()) {
			usage = append(usage, fmt.Sprintf("  %s %-30s  %s", cmd.CommandPath(), subCommand.Name(), subCommand.Short))
		}
	}

	if len(cmd.Aliases) > 0 {
		usage = append(usage, "\nAliases: "+cmd.NameAndAliases())
	}

	usage = append(usage, "\nCommon flags:")
	if len(cmd.PersistentFlags().FlagUsages()) != 0 {
		usage = append(usage, strings.TrimRightFunc(cmd.PersistentFlags().FlagUsages(), unicode.IsSpace))
	}
	if len(cmd.InheritedFlags().FlagUsages()) != 0 {
		usage = append(usage, strings.TrimRightFunc(cmd.InheritedFlags().FlagUsages(), unicode.IsSpace))
	}

	if cmdPath == "gridctl" {
		cmdPath += " [group]"
	} else {
		cmdPath += " [command]"
	}
	usage = append(usage, fmt.Sprintf("\nUse '%s --help' for more information about a command.\n", cmdPath))

	cmd.Println(strings.Join(usage, "\n"))

	return nil
}

func init() {
	rootCmd.AddCommand(cluster.Cluster)
	rootCmd.AddCommand(version.Version)

	rootCmd.PersistentFlags().BoolP("help", "h", false, "help for this command")
	rootCmd.PersistentFlags().StringVarP(&env.Config.Region, "region", "r", "us-west-2", "Region")
	rootCmd.PersistentFlags().StringVarP(&env.Config.Zone, "zone", "z", "", "Availability zone (random zone when empty)")
	rootCmd.SetUsageFunc(Usage)
}

func configureLogging() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	} else {
		level, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			log.Fatal().Err(err)
		}
		zerolog.SetGlobalLevel(level)
	}
}

func main() {
	configureLogging()
	Execute()
}
