package cluster

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrAlreadyExists signals the exclusivity violation: active instances
// already occupy one of the cluster's groups. No mutation was performed.
var ErrAlreadyExists = errors.New("cluster already has active instances")

// NotFoundError reports a cluster that does not exist, naming the required
// groups that turned up empty. ActiveInstances counts stragglers found in
// the cluster's groups anyway (e.g. a master without workers); launch
// treats any non-zero count as an occupied namespace.
type NotFoundError struct {
	Name            ClusterName
	EmptyGroups     []string
	ActiveInstances int
}

func (e *NotFoundError) Error() string {
	if len(e.EmptyGroups) == 0 {
		return fmt.Sprintf("cluster %s not found", e.Name)
	}
	return fmt.Sprintf("cluster %s not found: no active instances in %s",
		e.Name, strings.Join(e.EmptyGroups, ", "))
}

// InconsistentError reports an instance whose group membership maps to
// more than one role. Discovery refuses to guess a classification.
type InconsistentError struct {
	Name       ClusterName
	InstanceID string
	Groups     []string
}

func (e *InconsistentError) Error() string {
	return fmt.Sprintf("cluster %s is inconsistent: instance %s belongs to multiple role groups (%s)",
		e.Name, e.InstanceID, strings.Join(e.Groups, ", "))
}

// PartialGrantError reports a spot request that was not fully granted
// within the wait budget. The granted instances exist; the caller decides
// whether to proceed or abort.
type PartialGrantError struct {
	Granted     int
	Requested   int
	InstanceIDs []string
}

func (e *PartialGrantError) Error() string {
	return fmt.Sprintf("only %d of %d spot requests granted within wait budget", e.Granted, e.Requested)
}

// DeployError aggregates per-node bootstrap failures. Delivery to the
// remaining nodes continues when a single node fails.
type DeployError struct {
	Failures map[string]error
}

func (e *DeployError) Error() string {
	hosts := make([]string, 0, len(e.Failures))
	for host := range e.Failures {
		hosts = append(hosts, host)
	}
	return fmt.Sprintf("bootstrap failed on %d node(s): %s", len(e.Failures), strings.Join(hosts, ", "))
}
