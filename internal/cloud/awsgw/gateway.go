package awsgw

import (
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"gridctl/internal/cloud"
	"gridctl/internal/connectors"
	strings2 "gridctl/internal/lib/strings"
)

// Gateway implements cloud.Gateway on top of the shared EC2 session.
type Gateway struct{}

func New() *Gateway {
	return &Gateway{}
}

func decodeInstance(instance *ec2.Instance) (decoded cloud.Instance, err error) {
	if instance.InstanceId == nil || instance.State == nil || instance.State.Name == nil {
		err = errors.New("instance without id or state in provider response")
		return
	}
	state, err := cloud.DecodeInstanceState(*instance.State.Name)
	if err != nil {
		return
	}
	decoded = cloud.Instance{
		ID:         *instance.InstanceId,
		State:      state,
		PublicDNS:  aws.StringValue(instance.PublicDnsName),
		PrivateDNS: aws.StringValue(instance.PrivateDnsName),
	}
	for _, group := range instance.SecurityGroups {
		decoded.SecurityGroups = append(decoded.SecurityGroups, aws.StringValue(group.GroupName))
	}
	return
}

func unpackReservations(reservations []*ec2.Reservation) (instances []cloud.Instance, err error) {
	for _, reservation := range reservations {
		for _, instance := range reservation.Instances {
			var decoded cloud.Instance
			decoded, err = decodeInstance(instance)
			if err != nil {
				return
			}
			instances = append(instances, decoded)
		}
	}
	return
}

func (g *Gateway) ListInstances() (instances []cloud.Instance, err error) {
	svc := connectors.GetAWSSession().EC2
	input := &ec2.DescribeInstancesInput{}
	for {
		describeResponse, err := svc.DescribeInstances(input)
		if err != nil {
			return nil, errors.Wrap(err, "describing instances")
		}
		page, err := unpackReservations(describeResponse.Reservations)
		if err != nil {
			return nil, err
		}
		instances = append(instances, page...)
		if describeResponse.NextToken == nil {
			break
		}
		input.NextToken = describeResponse.NextToken
	}
	return instances, nil
}

func (g *Gateway) DescribeInstances(ids []string) ([]cloud.Instance, error) {
	if len(ids) == 0 {
		return nil, errors.New("instance ids list must not be empty")
	}
	svc := connectors.GetAWSSession().EC2
	describeResponse, err := svc.DescribeInstances(&ec2.DescribeInstancesInput{
		InstanceIds: strings2.ListToRefList(ids),
	})
	if err != nil {
		return nil, errors.Wrap(err, "describing instances")
	}
	return unpackReservations(describeResponse.Reservations)
}

func (g *Gateway) ListSecurityGroups() (groups []cloud.SecurityGroup, err error) {
	svc := connectors.GetAWSSession().EC2
	output, err := svc.DescribeSecurityGroups(&ec2.DescribeSecurityGroupsInput{})
	if err != nil {
		return nil, errors.Wrap(err, "describing security groups")
	}
	for _, group := range output.SecurityGroups {
		groups = append(groups, cloud.SecurityGroup{
			Name:      aws.StringValue(group.GroupName),
			RuleCount: len(group.IpPermissions),
		})
	}
	return
}

func (g *Gateway) CreateSecurityGroup(name, description string) (group cloud.SecurityGroup, err error) {
	svc := connectors.GetAWSSession().EC2
	log.Debug().Msgf("Creating security group %s ...", name)
	_, err = svc.CreateSecurityGroup(&ec2.CreateSecurityGroupInput{
		GroupName:   aws.String(name),
		Description: aws.String(description),
	})
	if err != nil {
		err = errors.Wrapf(err, "creating security group %s", name)
		return
	}
	group = cloud.SecurityGroup{Name: name}
	return
}

func (g *Gateway) AuthorizeIngress(groupName string, rule cloud.IngressRule) error {
	svc := connectors.GetAWSSession().EC2
	input := &ec2.AuthorizeSecurityGroupIngressInput{
		GroupName: aws.String(groupName),
	}
	if rule.SourceGroup != "" {
		input.IpPermissions = []*ec2.IpPermission{
			{
				IpProtocol: aws.String("-1"),
				UserIdGroupPairs: []*ec2.UserIdGroupPair{
					{GroupName: aws.String(rule.SourceGroup)},
				},
			},
		}
	} else {
		input.IpProtocol = aws.String(rule.Protocol)
		input.FromPort = aws.Int64(rule.FromPort)
		input.ToPort = aws.Int64(rule.ToPort)
		input.CidrIp = aws.String(rule.CIDR)
	}
	_, err := svc.AuthorizeSecurityGroupIngress(input)
	return errors.Wrapf(err, "authorizing ingress on %s", groupName)
}

func blockDeviceMappings(volumeSizeGiB int64) []*ec2.BlockDeviceMapping {
	if volumeSizeGiB <= 0 {
		return nil
	}
	// Extra data volume on every node, reclaimed on termination.
	return []*ec2.BlockDeviceMapping{
		{
			DeviceName: aws.String("/dev/sdv"),
			Ebs: &ec2.EbsBlockDevice{
				VolumeSize:          aws.Int64(volumeSizeGiB),
				DeleteOnTermination: aws.Bool(true),
			},
		},
	}
}

func (g *Gateway) RunInstances(spec cloud.RunSpec) ([]cloud.Instance, error) {
	svc := connectors.GetAWSSession().EC2
	reservation, err := svc.RunInstances(&ec2.RunInstancesInput{
		ImageId:             aws.String(spec.ImageID),
		InstanceType:        aws.String(spec.InstanceType),
		MinCount:            aws.Int64(spec.Count),
		MaxCount:            aws.Int64(spec.Count),
		KeyName:             aws.String(spec.KeyName),
		SecurityGroups:      []*string{aws.String(spec.SecurityGroup)},
		Placement:           &ec2.Placement{AvailabilityZone: aws.String(spec.Zone)},
		BlockDeviceMappings: blockDeviceMappings(spec.VolumeSizeGiB),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "running %d %s instances", spec.Count, spec.InstanceType)
	}
	return unpackReservations([]*ec2.Reservation{reservation})
}

func (g *Gateway) RequestSpotInstances(spec cloud.SpotSpec) (requestIds []string, err error) {
	svc := connectors.GetAWSSession().EC2
	output, err := svc.RequestSpotInstances(&ec2.RequestSpotInstancesInput{
		SpotPrice:     aws.String(formatPrice(spec.Price)),
		InstanceCount: aws.Int64(spec.Count),
		LaunchGroup:   aws.String(spec.LaunchGroup),
		ClientToken:   aws.String(uuid.New().String()),
		LaunchSpecification: &ec2.RequestSpotLaunchSpecification{
			ImageId:             aws.String(spec.ImageID),
			InstanceType:        aws.String(spec.InstanceType),
			KeyName:             aws.String(spec.KeyName),
			SecurityGroups:      []*string{aws.String(spec.SecurityGroup)},
			Placement:           &ec2.SpotPlacement{AvailabilityZone: aws.String(spec.Zone)},
			BlockDeviceMappings: blockDeviceMappings(spec.VolumeSizeGiB),
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "requesting %d spot instances", spec.Count)
	}
	for _, request := range output.SpotInstanceRequests {
		requestIds = append(requestIds, aws.StringValue(request.SpotInstanceRequestId))
	}
	return
}

func (g *Gateway) DescribeSpotRequests(ids []string) (requests []cloud.SpotRequest, err error) {
	svc := connectors.GetAWSSession().EC2
	output, err := svc.DescribeSpotInstanceRequests(&ec2.DescribeSpotInstanceRequestsInput{
		SpotInstanceRequestIds: strings2.ListToRefList(ids),
	})
	if err != nil {
		return nil, errors.Wrap(err, "describing spot requests")
	}
	for _, request := range output.SpotInstanceRequests {
		requests = append(requests, cloud.SpotRequest{
			ID:         aws.StringValue(request.SpotInstanceRequestId),
			State:      aws.StringValue(request.State),
			InstanceID: aws.StringValue(request.InstanceId),
		})
	}
	return
}

func (g *Gateway) StartInstances(ids []string) error {
	svc := connectors.GetAWSSession().EC2
	_, err := svc.StartInstances(&ec2.StartInstancesInput{
		InstanceIds: strings2.ListToRefList(ids),
	})
	return errors.Wrap(err, "starting instances")
}

func (g *Gateway) StopInstances(ids []string) error {
	svc := connectors.GetAWSSession().EC2
	_, err := svc.StopInstances(&ec2.StopInstancesInput{
		InstanceIds: strings2.ListToRefList(ids),
	})
	return errors.Wrap(err, "stopping instances")
}

func (g *Gateway) TerminateInstances(ids []string) error {
	svc := connectors.GetAWSSession().EC2
	// TerminateInstances caps the batch size, mirror the delete batching
	// used elsewhere in the codebase.
	for i := 0; i < len(ids); i += 50 {
		batch := ids[i:min(len(ids), i+50)]
		_, err := svc.TerminateInstances(&ec2.TerminateInstancesInput{
			InstanceIds: strings2.ListToRefList(batch),
		})
		if err != nil {
			return errors.Wrap(err, "terminating instances")
		}
	}
	return nil
}

func (g *Gateway) AttachVolume(volumeID, instanceID, device string) error {
	svc := connectors.GetAWSSession().EC2
	_, err := svc.AttachVolume(&ec2.AttachVolumeInput{
		VolumeId:   aws.String(volumeID),
		InstanceId: aws.String(instanceID),
		Device:     aws.String(device),
	})
	return errors.Wrapf(err, "attaching volume %s to %s", volumeID, instanceID)
}

func (g *Gateway) DetachVolume(volumeID string) error {
	svc := connectors.GetAWSSession().EC2
	_, err := svc.DetachVolume(&ec2.DetachVolumeInput{
		VolumeId: aws.String(volumeID),
	})
	return errors.Wrapf(err, "detaching volume %s", volumeID)
}

func (g *Gateway) ListZones() (zones []string, err error) {
	svc := connectors.GetAWSSession().EC2
	output, err := svc.DescribeAvailabilityZones(&ec2.DescribeAvailabilityZonesInput{})
	if err != nil {
		return nil, errors.Wrap(err, "describing availability zones")
	}
	for _, zone := range output.AvailabilityZones {
		zones = append(zones, aws.StringValue(zone.ZoneName))
	}
	return
}

func formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', 3, 64)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
