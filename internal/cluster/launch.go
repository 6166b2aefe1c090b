package cluster

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"gridctl/internal/cloud"
	"gridctl/internal/logging"
)

// LaunchPlan captures everything one launch invocation needs. Built once
// from CLI options, immutable afterward. ProcsPerNode is derived from the
// instance family at construction time and never changes.
type LaunchPlan struct {
	Workers            int64
	InstanceType       string
	MasterInstanceType string
	ImageID            string
	KeyName            string
	Zone               string
	SpotPrice          float64
	VolumeSizeGiB      int64
	WaitBudget         time.Duration
	ProcsPerNode       int
}

// NewLaunchPlan fills role defaults: the master inherits the worker
// instance type when no distinct type is requested.
func NewLaunchPlan(workers int64, instanceType, masterType, imageID, keyName, zone string) LaunchPlan {
	if masterType == "" {
		masterType = instanceType
	}
	return LaunchPlan{
		Workers:            workers,
		InstanceType:       instanceType,
		MasterInstanceType: masterType,
		ImageID:            imageID,
		KeyName:            keyName,
		Zone:               zone,
		ProcsPerNode:       procsPerNode(instanceType),
	}
}

func procsPerNode(instanceType string) int {
	switch instanceType {
	case "m1.xlarge", "c1.xlarge", "cc1.4xlarge", "cg1.4xlarge":
		return 4
	case "cc2.8xlarge":
		return 8
	default:
		return 2
	}
}

type groupRules struct {
	role  Role
	ports []cloud.IngressRule
}

func tcp(from, to int64) cloud.IngressRule {
	return cloud.IngressRule{Protocol: "tcp", FromPort: from, ToPort: to, CIDR: "0.0.0.0/0"}
}

func udp(from, to int64) cloud.IngressRule {
	return cloud.IngressRule{Protocol: "udp", FromPort: from, ToPort: to, CIDR: "0.0.0.0/0"}
}

var roleIngress = []groupRules{
	{
		role: RoleMaster,
		ports: []cloud.IngressRule{
			tcp(22, 22),
			tcp(0, 65535),
			udp(0, 65535),
			tcp(8080, 8081),
			tcp(50030, 50030),
			tcp(50070, 50070),
			tcp(60070, 60070),
			tcp(38090, 38090),
		},
	},
	{
		role: RoleWorker,
		ports: []cloud.IngressRule{
			tcp(0, 65535),
			udp(0, 65535),
			tcp(22, 22),
			tcp(8080, 8081),
			tcp(50060, 50060),
			tcp(50075, 50075),
			tcp(60060, 60060),
			tcp(60075, 60075),
		},
	},
	{
		role: RoleCoordinator,
		ports: []cloud.IngressRule{
			tcp(22, 22),
			tcp(2181, 2181),
			tcp(2888, 2888),
			tcp(3888, 3888),
		},
	},
}

// ensureSecurityGroups creates the three role groups if absent and installs
// ingress rules only on groups with an empty rule set. An empty rule set is
// the sentinel for "freshly created", which keeps the whole step
// idempotent: re-running against populated groups performs no authorize
// calls.
func ensureSecurityGroups(gw cloud.Gateway, name ClusterName) error {
	existing, err := gw.ListSecurityGroups()
	if err != nil {
		return err
	}
	byName := map[string]cloud.SecurityGroup{}
	for _, group := range existing {
		byName[group.Name] = group
	}

	peers := []string{
		GroupName(name, RoleMaster),
		GroupName(name, RoleWorker),
		GroupName(name, RoleCoordinator),
	}

	for _, rules := range roleIngress {
		groupName := GroupName(name, rules.role)
		group, found := byName[groupName]
		if !found {
			logging.UserProgress("Creating security group %s", groupName)
			group, err = gw.CreateSecurityGroup(groupName, "gridctl cluster group")
			if err != nil {
				return err
			}
		}
		if group.RuleCount > 0 {
			log.Debug().Msgf("Security group %s already populated, skipping rules", groupName)
			continue
		}
		for _, peer := range peers {
			if err := gw.AuthorizeIngress(groupName, cloud.IngressRule{SourceGroup: peer}); err != nil {
				return err
			}
		}
		for _, rule := range rules.ports {
			if err := gw.AuthorizeIngress(groupName, rule); err != nil {
				return err
			}
		}
	}
	return nil
}

// Launch provisions a brand-new cluster. The namespace must be empty:
// any active instance in any of the three groups fails the launch with
// ErrAlreadyExists before a single mutation.
func Launch(gw cloud.Gateway, name ClusterName, plan LaunchPlan) (*ClusterView, error) {
	_, err := Discover(gw, name)
	if err == nil {
		return nil, errors.Wrapf(ErrAlreadyExists, "cluster %s", name)
	}
	notFound, ok := err.(*NotFoundError)
	if !ok {
		return nil, err
	}
	if notFound.ActiveInstances > 0 {
		return nil, errors.Wrapf(ErrAlreadyExists,
			"cluster %s (%d active instances in its groups)", name, notFound.ActiveInstances)
	}

	if err := ensureSecurityGroups(gw, name); err != nil {
		return nil, err
	}

	logging.UserProgress("Launching instances...")
	workers, err := launchWorkers(gw, name, plan)
	if err != nil {
		return nil, errors.Wrap(err, "provisioning workers")
	}

	masters, err := gw.RunInstances(cloud.RunSpec{
		ImageID:       plan.ImageID,
		InstanceType:  plan.MasterInstanceType,
		Count:         1,
		KeyName:       plan.KeyName,
		SecurityGroup: GroupName(name, RoleMaster),
		Zone:          plan.Zone,
		VolumeSizeGiB: plan.VolumeSizeGiB,
	})
	if err != nil {
		return nil, errors.Wrap(err, "provisioning master")
	}
	log.Debug().Msgf("Launched master %s", masters[0].ID)

	return &ClusterView{
		Name:    name,
		Masters: masters,
		Workers: workers,
	}, nil
}

func launchWorkers(gw cloud.Gateway, name ClusterName, plan LaunchPlan) ([]cloud.Instance, error) {
	spec := cloud.RunSpec{
		ImageID:       plan.ImageID,
		InstanceType:  plan.InstanceType,
		Count:         plan.Workers,
		KeyName:       plan.KeyName,
		SecurityGroup: GroupName(name, RoleWorker),
		Zone:          plan.Zone,
		VolumeSizeGiB: plan.VolumeSizeGiB,
	}

	if plan.SpotPrice <= 0 {
		return gw.RunInstances(spec)
	}

	logging.UserProgress("Requesting %d workers as spot instances with price $%.3f", plan.Workers, plan.SpotPrice)
	requestIds, err := gw.RequestSpotInstances(cloud.SpotSpec{
		RunSpec:     spec,
		Price:       plan.SpotPrice,
		LaunchGroup: "launch-group-" + string(name),
	})
	if err != nil {
		return nil, err
	}
	return waitForSpotGrants(gw, requestIds, plan)
}

// waitForSpotGrants polls until every request is active or the wait budget
// elapses. On expiry the partial grant is reported, never silently
// accepted as a smaller cluster.
func waitForSpotGrants(gw cloud.Gateway, requestIds []string, plan LaunchPlan) ([]cloud.Instance, error) {
	deadline := time.Now().Add(plan.WaitBudget)
	for {
		time.Sleep(spotPollInterval)
		requests, err := gw.DescribeSpotRequests(requestIds)
		if err != nil {
			return nil, err
		}
		var granted []string
		for _, request := range requests {
			if request.State == cloud.SpotStateActive {
				granted = append(granted, request.InstanceID)
			}
		}
		if int64(len(granted)) == plan.Workers {
			logging.UserProgress("All %d workers granted", plan.Workers)
			return gw.DescribeInstances(granted)
		}
		if plan.WaitBudget > 0 && time.Now().After(deadline) {
			return nil, &PartialGrantError{
				Granted:     len(granted),
				Requested:   int(plan.Workers),
				InstanceIDs: granted,
			}
		}
		logging.UserProgress("%d of %d workers granted, waiting longer", len(granted), plan.Workers)
	}
}
