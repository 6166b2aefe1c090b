package cluster

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"gridctl/internal/cloud"
	"gridctl/internal/remote"
)

func init() {
	// Keep polling loops fast under test.
	instancePollInterval = time.Millisecond
	spotPollInterval = time.Millisecond
}

type runCall struct {
	group string
	count int64
}

// fakeGateway is an in-memory provider with per-method call counters.
type fakeGateway struct {
	instances []cloud.Instance
	groups    map[string]*cloud.SecurityGroup

	nextInstance int
	spotIds      []string
	spotGrants   int // how many of the spot requests ever become active

	describeCalls int
	pendingPolls  int // DescribeInstances reports pending for this many calls

	runCalls       []runCall
	createCalls    int
	authorizeCalls int
	startCalls     int
	stopCalls      int
	terminateCalls int
	attachCalls    int
	detachCalls    int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{groups: map[string]*cloud.SecurityGroup{}}
}

// mutationCalls counts every state-changing provider call.
func (f *fakeGateway) mutationCalls() int {
	return len(f.runCalls) + len(f.spotIds) + f.createCalls + f.authorizeCalls +
		f.startCalls + f.stopCalls + f.terminateCalls + f.attachCalls + f.detachCalls
}

func (f *fakeGateway) newInstance(group string, state cloud.InstanceState) cloud.Instance {
	f.nextInstance++
	instance := cloud.Instance{
		ID:             fmt.Sprintf("i-%04d", f.nextInstance),
		State:          state,
		PublicDNS:      fmt.Sprintf("ec2-%d.compute.example", f.nextInstance),
		PrivateDNS:     fmt.Sprintf("ip-10-0-0-%d.internal", f.nextInstance),
		SecurityGroups: []string{group},
	}
	f.instances = append(f.instances, instance)
	return instance
}

func (f *fakeGateway) ListInstances() ([]cloud.Instance, error) {
	return append([]cloud.Instance(nil), f.instances...), nil
}

func (f *fakeGateway) DescribeInstances(ids []string) (matched []cloud.Instance, err error) {
	f.describeCalls++
	for _, id := range ids {
		for _, instance := range f.instances {
			if instance.ID == id {
				if f.describeCalls <= f.pendingPolls {
					instance.State = cloud.StatePending
				}
				matched = append(matched, instance)
			}
		}
	}
	return
}

func (f *fakeGateway) ListSecurityGroups() (groups []cloud.SecurityGroup, err error) {
	for _, group := range f.groups {
		groups = append(groups, *group)
	}
	return
}

func (f *fakeGateway) CreateSecurityGroup(name, description string) (cloud.SecurityGroup, error) {
	f.createCalls++
	f.groups[name] = &cloud.SecurityGroup{Name: name}
	return *f.groups[name], nil
}

func (f *fakeGateway) AuthorizeIngress(group string, rule cloud.IngressRule) error {
	f.authorizeCalls++
	spec, ok := f.groups[group]
	if !ok {
		return errors.Errorf("no such security group %s", group)
	}
	spec.RuleCount++
	return nil
}

func (f *fakeGateway) RunInstances(spec cloud.RunSpec) (launched []cloud.Instance, err error) {
	f.runCalls = append(f.runCalls, runCall{group: spec.SecurityGroup, count: spec.Count})
	for i := int64(0); i < spec.Count; i++ {
		launched = append(launched, f.newInstance(spec.SecurityGroup, cloud.StateRunning))
	}
	return
}

func (f *fakeGateway) RequestSpotInstances(spec cloud.SpotSpec) ([]string, error) {
	for i := int64(0); i < spec.Count; i++ {
		f.spotIds = append(f.spotIds, fmt.Sprintf("sir-%04d", len(f.spotIds)+1))
	}
	// Granted requests get their instances immediately.
	for i := 0; i < f.spotGrants && int64(i) < spec.Count; i++ {
		f.newInstance(spec.SecurityGroup, cloud.StateRunning)
	}
	return append([]string(nil), f.spotIds...), nil
}

func (f *fakeGateway) DescribeSpotRequests(ids []string) (requests []cloud.SpotRequest, err error) {
	granted := 0
	for _, id := range ids {
		request := cloud.SpotRequest{ID: id, State: "open"}
		if granted < f.spotGrants {
			request.State = cloud.SpotStateActive
			request.InstanceID = f.instances[granted].ID
			granted++
		}
		requests = append(requests, request)
	}
	return
}

func (f *fakeGateway) setStates(ids []string, state cloud.InstanceState) {
	for i := range f.instances {
		for _, id := range ids {
			if f.instances[i].ID == id {
				f.instances[i].State = state
			}
		}
	}
}

func (f *fakeGateway) StartInstances(ids []string) error {
	f.startCalls++
	f.setStates(ids, cloud.StateRunning)
	return nil
}

func (f *fakeGateway) StopInstances(ids []string) error {
	f.stopCalls++
	f.setStates(ids, cloud.StateStopped)
	return nil
}

func (f *fakeGateway) TerminateInstances(ids []string) error {
	f.terminateCalls++
	f.setStates(ids, cloud.StateTerminated)
	return nil
}

func (f *fakeGateway) AttachVolume(volumeID, instanceID, device string) error {
	f.attachCalls++
	return nil
}

func (f *fakeGateway) DetachVolume(volumeID string) error {
	f.detachCalls++
	return nil
}

func (f *fakeGateway) ListZones() ([]string, error) {
	return []string{"us-west-2a", "us-west-2b"}, nil
}

// fakeExecutor records per-host operations in order and can be told to
// fail every call against one host.
type fakeExecutor struct {
	mu       sync.Mutex
	ops      map[string][]string
	files    map[string][]byte
	failHost string
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{ops: map[string][]string{}, files: map[string][]byte{}}
}

func (f *fakeExecutor) record(host, op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if host == f.failHost {
		return errors.Errorf("host %s unreachable", host)
	}
	f.ops[host] = append(f.ops[host], op)
	return nil
}

func (f *fakeExecutor) Run(host string, credential remote.Credential, script remote.Script) (string, error) {
	return "", f.record(host, "run:"+script.Render())
}

func (f *fakeExecutor) Copy(host string, credential remote.Credential, localPath, remotePath string) error {
	return f.record(host, "copy:"+remotePath)
}

func (f *fakeExecutor) CopyBytes(host string, credential remote.Credential, content []byte, remotePath string) error {
	if err := f.record(host, "copy:"+remotePath); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[host+":"+remotePath] = content
	return nil
}
