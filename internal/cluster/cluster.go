// Package cluster implements the lifecycle of named multi-role compute
// clusters: discovery, launch, start/stop/destroy, and initial
// configuration delivery. A cluster is keyed by name only; the provider
// holds all durable state and is re-queried before every action.
package cluster

import "gridctl/internal/cloud"

type ClusterName string

// Role is a logical position in the cluster topology.
type Role string

const (
	RoleMaster      Role = "master"
	RoleWorker      Role = "worker"
	RoleCoordinator Role = "coordinator"
)

// GroupName maps a cluster name and role onto the security-group name that
// namespaces the role's instances.
func GroupName(name ClusterName, role Role) string {
	switch role {
	case RoleMaster:
		return string(name) + "-master"
	case RoleWorker:
		return string(name) + "-slaves"
	default:
		return string(name) + "-zoo"
	}
}

// ClusterView is a point-in-time classification of a cluster's active
// instances, rebuilt on every discovery. Never cached across actions.
type ClusterView struct {
	Name         ClusterName
	Masters      []cloud.Instance
	Workers      []cloud.Instance
	Coordinators []cloud.Instance
}

// Master returns the primary master instance. Discovery guarantees the
// masters list of a returned view is non-empty.
func (v *ClusterView) Master() cloud.Instance {
	return v.Masters[0]
}

// All returns every instance across the three role groups, master group
// first.
func (v *ClusterView) All() []cloud.Instance {
	all := make([]cloud.Instance, 0, len(v.Masters)+len(v.Workers)+len(v.Coordinators))
	all = append(all, v.Masters...)
	all = append(all, v.Workers...)
	all = append(all, v.Coordinators...)
	return all
}

// RoleOf reports which role group an instance of this view belongs to.
func (v *ClusterView) RoleOf(id string) Role {
	for _, instance := range v.Workers {
		if instance.ID == id {
			return RoleWorker
		}
	}
	for _, instance := range v.Coordinators {
		if instance.ID == id {
			return RoleCoordinator
		}
	}
	return RoleMaster
}

func instanceIds(instances []cloud.Instance) []string {
	ids := make([]string, 0, len(instances))
	for _, instance := range instances {
		ids = append(ids, instance.ID)
	}
	return ids
}
