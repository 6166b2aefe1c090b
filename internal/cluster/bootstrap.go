package cluster

import (
	"context"
	"strings"
	"sync"

	"github.com/lithammer/dedent"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"gridctl/internal/logging"
	"gridctl/internal/remote"
)

const (
	hostfileRemotePath = "machines"
	deployParallelism  = 10
)

var sshClientConfig = []byte(dedent.Dedent(`
	StrictHostKeyChecking no
	BatchMode yes
`)[1:])

// Deployer pushes initial credentials and the peer hostfile onto a freshly
// running cluster.
type Deployer struct {
	Executor   remote.Executor
	Credential remote.Credential
}

// Hostfile renders the peer-discovery file consumed by workload launchers:
// one private address per line, master first.
func Hostfile(view *ClusterView) []byte {
	var b strings.Builder
	b.WriteString(view.Master().PrivateDNS + "\n")
	for _, worker := range view.Workers {
		b.WriteString(worker.PrivateDNS + "\n")
	}
	return []byte(b.String())
}

// Deploy copies the shared access key to every node (when pushKey is set)
// and always delivers the hostfile to the master. Key delivery is
// best-effort per node: one unreachable worker does not block its
// siblings, failures are aggregated into a DeployError.
func (d *Deployer) Deploy(view *ClusterView, pushKey bool) error {
	failures := map[string]error{}

	if pushKey {
		hosts := []string{view.Master().PublicDNS}
		for _, worker := range view.Workers {
			hosts = append(hosts, worker.PublicDNS)
		}

		sem := semaphore.NewWeighted(deployParallelism)
		var wg sync.WaitGroup
		var failuresLock sync.Mutex

		wg.Add(len(hosts))
		for i := range hosts {
			go func(host string) {
				_ = sem.Acquire(context.Background(), 1)
				defer sem.Release(1)
				defer wg.Done()

				if err := d.pushKeyTo(host); err != nil {
					log.Error().Msgf("key delivery to %s failed: %s", host, err)
					failuresLock.Lock()
					failures[host] = err
					failuresLock.Unlock()
					return
				}
				logging.UserProgress("Access key delivered to %s", host)
			}(hosts[i])
		}
		wg.Wait()
	}

	master := view.Master().PublicDNS
	logging.UserProgress("Copying hostfile to master %s...", master)
	if err := d.Executor.CopyBytes(master, d.Credential, Hostfile(view), hostfileRemotePath); err != nil {
		failures[master] = err
	}

	if len(failures) > 0 {
		return &DeployError{Failures: failures}
	}
	return nil
}

// pushKeyTo installs the cluster's shared key and a non-interactive ssh
// client config on one node. Step order per node is fixed: temp dir, key
// copy, key install, client config.
func (d *Deployer) pushKeyTo(host string) error {
	_, err := d.Executor.Run(host, d.Credential, remote.Script{
		remote.Cmd("mkdir", "-p", "/root/.ssh").Sudo(),
		remote.Cmd("mkdir", "-p", "tmp"),
	})
	if err != nil {
		return err
	}
	if err := d.Executor.Copy(host, d.Credential, d.Credential.IdentityFile, "tmp/id_rsa"); err != nil {
		return err
	}
	_, err = d.Executor.Run(host, d.Credential, remote.Script{
		remote.Cmd("mv", "tmp/id_rsa", ".ssh/id_rsa"),
		remote.Cmd("chmod", "600", ".ssh/id_rsa"),
	})
	if err != nil {
		return err
	}
	return d.Executor.CopyBytes(host, d.Credential, sshClientConfig, ".ssh/config")
}
