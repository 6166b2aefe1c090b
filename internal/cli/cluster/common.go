package cluster

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/pkg/errors"

	"gridctl/internal/cloud"
	"gridctl/internal/env"
	"gridctl/internal/remote"
)

const remoteUser = "ubuntu"

var identityFile string

// validateIdentityFile enforces the preconditions of every action that
// opens an SSH channel: the key must be supplied, exist, and be private to
// the owner.
func validateIdentityFile() error {
	if identityFile == "" {
		return errors.New("the -i/--identity-file argument is required for this action")
	}
	info, err := os.Stat(identityFile)
	if err != nil {
		return errors.Wrap(err, "reading identity file")
	}
	if info.Mode().Perm() != 0400 {
		return errors.Errorf("permissions of private key file %s should be 400", identityFile)
	}
	return nil
}

func credential() remote.Credential {
	return remote.Credential{
		User:         remoteUser,
		IdentityFile: identityFile,
	}
}

// resolveZone picks a random availability zone when none was requested.
func resolveZone(gw cloud.Gateway) (string, error) {
	if env.Config.Zone != "" {
		return env.Config.Zone, nil
	}
	zones, err := gw.ListZones()
	if err != nil {
		return "", err
	}
	if len(zones) == 0 {
		return "", errors.New("provider reported no availability zones")
	}
	return zones[rand.Intn(len(zones))], nil
}

// confirm asks the operator for an explicit y before a destructive action.
func confirm(prompt string) bool {
	fmt.Print(prompt + " (y/N): ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "y"
}
