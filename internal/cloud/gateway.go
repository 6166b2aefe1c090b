package cloud

import (
	"time"

	"github.com/pkg/errors"
)

// InstanceState is the decoded provider-side lifecycle state of an instance.
type InstanceState string

const (
	StatePending      InstanceState = "pending"
	StateRunning      InstanceState = "running"
	StateStopping     InstanceState = "stopping"
	StateStopped      InstanceState = "stopped"
	StateShuttingDown InstanceState = "shutting-down"
	StateTerminated   InstanceState = "terminated"
)

// DecodeInstanceState maps a raw provider state name onto the closed
// InstanceState set. Unknown names fail fast instead of leaking into
// classification logic.
func DecodeInstanceState(raw string) (InstanceState, error) {
	switch InstanceState(raw) {
	case StatePending, StateRunning, StateStopping, StateStopped,
		StateShuttingDown, StateTerminated:
		return InstanceState(raw), nil
	}
	return "", errors.Errorf("unexpected instance state %q in provider response", raw)
}

// Active reports whether the state counts as part of a live cluster.
// Stopping and stopped instances are active since stopped clusters can be
// restarted.
func (s InstanceState) Active() bool {
	switch s {
	case StatePending, StateRunning, StateStopping, StateStopped:
		return true
	}
	return false
}

// Instance is a refreshed snapshot of a provider-owned instance. The
// provider remains authoritative; callers re-query instead of mutating.
type Instance struct {
	ID             string
	State          InstanceState
	PublicDNS      string
	PrivateDNS     string
	SecurityGroups []string
}

type SecurityGroup struct {
	Name      string
	RuleCount int
}

// IngressRule authorizes either a peer security group (SourceGroup set) or
// a CIDR-scoped port range.
type IngressRule struct {
	Protocol    string
	FromPort    int64
	ToPort      int64
	CIDR        string
	SourceGroup string
}

// RunSpec describes one synchronous on-demand instance request.
type RunSpec struct {
	ImageID       string
	InstanceType  string
	Count         int64
	KeyName       string
	SecurityGroup string
	Zone          string
	VolumeSizeGiB int64
}

// SpotSpec describes a price-bounded capacity request for a whole group.
type SpotSpec struct {
	RunSpec
	Price       float64
	LaunchGroup string
}

type SpotRequest struct {
	ID         string
	State      string
	InstanceID string
}

const SpotStateActive = "active"

// Gateway is the narrow provider surface the cluster core depends on.
// The AWS implementation lives in the awsgw package; tests substitute a
// fake with call counters.
type Gateway interface {
	ListInstances() ([]Instance, error)
	ListSecurityGroups() ([]SecurityGroup, error)
	CreateSecurityGroup(name, description string) (SecurityGroup, error)
	AuthorizeIngress(group string, rule IngressRule) error
	RunInstances(spec RunSpec) ([]Instance, error)
	RequestSpotInstances(spec SpotSpec) ([]string, error)
	DescribeSpotRequests(ids []string) ([]SpotRequest, error)
	DescribeInstances(ids []string) ([]Instance, error)
	StartInstances(ids []string) error
	StopInstances(ids []string) error
	TerminateInstances(ids []string) error
	AttachVolume(volumeID, instanceID, device string) error
	DetachVolume(volumeID string) error
	ListZones() ([]string, error)
}

// Poll intervals shared by launch and lifecycle waiting.
const (
	InstancePollInterval = 5 * time.Second
	SpotPollInterval     = 10 * time.Second
)
