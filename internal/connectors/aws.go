package connectors

import (
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials/stscreds"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2"

	"gridctl/internal/env"
)

type SAwsSession struct {
	sync.RWMutex
	Session *session.Session
	EC2     *ec2.EC2
}

var awsSession SAwsSession

func GetAWSSession() *SAwsSession {
	if awsSession.Session != nil {
		return &awsSession
	}
	awsSession.Lock()
	defer awsSession.Unlock()
	if awsSession.Session == nil {
		awsSession.Session = newSession(env.Config.Region)
		awsSession.EC2 = ec2.New(awsSession.Session)
	}
	return &awsSession
}

func newSession(region string) *session.Session {
	config := aws.NewConfig()
	config = config.WithRegion(region)
	config = config.WithCredentialsChainVerboseErrors(true)

	opts := session.Options{
		Config:                  *config,
		SharedConfigState:       session.SharedConfigEnable,
		AssumeRoleTokenProvider: stscreds.StdinTokenProvider,
	}

	return session.Must(session.NewSessionWithOptions(opts))
}
