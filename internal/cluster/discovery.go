package cluster

import (
	"github.com/rs/zerolog/log"

	"gridctl/internal/cloud"
)

// Discover classifies every active instance known to the gateway into the
// cluster's three role groups. Instances whose security groups intersect
// none of the expected group names belong to other clusters and are
// skipped; an intersection of more than one expected group is a hard
// inconsistency, never a best-effort classification.
func Discover(gw cloud.Gateway, name ClusterName) (*ClusterView, error) {
	log.Debug().Msgf("Searching for existing cluster %s ...", name)
	instances, err := gw.ListInstances()
	if err != nil {
		return nil, err
	}

	groupToRole := map[string]Role{
		GroupName(name, RoleMaster):      RoleMaster,
		GroupName(name, RoleWorker):      RoleWorker,
		GroupName(name, RoleCoordinator): RoleCoordinator,
	}

	view := &ClusterView{Name: name}
	for _, instance := range instances {
		if !instance.State.Active() {
			continue
		}
		var matched []string
		for _, group := range instance.SecurityGroups {
			if _, ok := groupToRole[group]; ok {
				matched = append(matched, group)
			}
		}
		switch len(matched) {
		case 0:
			continue
		case 1:
			switch groupToRole[matched[0]] {
			case RoleMaster:
				view.Masters = append(view.Masters, instance)
			case RoleWorker:
				view.Workers = append(view.Workers, instance)
			case RoleCoordinator:
				view.Coordinators = append(view.Coordinators, instance)
			}
		default:
			return nil, &InconsistentError{Name: name, InstanceID: instance.ID, Groups: matched}
		}
	}

	var empty []string
	if len(view.Masters) == 0 {
		empty = append(empty, GroupName(name, RoleMaster))
	}
	if len(view.Workers) == 0 {
		empty = append(empty, GroupName(name, RoleWorker))
	}
	if len(empty) > 0 {
		return nil, &NotFoundError{
			Name:            name,
			EmptyGroups:     empty,
			ActiveInstances: len(view.Masters) + len(view.Workers) + len(view.Coordinators),
		}
	}

	log.Debug().Msgf("Found %d master(s), %d workers, %d coordination nodes",
		len(view.Masters), len(view.Workers), len(view.Coordinators))
	return view, nil
}
