package remote

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
)

const (
	sshPort     = "22"
	dialTimeout = 10 * time.Second
	dialRetries = 10
	retryDelay  = 5 * time.Second
)

// SSHExecutor implements Executor over the SSH protocol. File delivery is
// scp-style: the content is streamed through a remote cat redirect, which
// every target image has.
type SSHExecutor struct{}

func NewSSHExecutor() *SSHExecutor {
	return &SSHExecutor{}
}

func clientConfig(credential Credential) (*ssh.ClientConfig, error) {
	keyBytes := credential.PrivateKeyBytes
	if keyBytes == nil {
		var err error
		keyBytes, err = os.ReadFile(credential.IdentityFile)
		if err != nil {
			return nil, errors.Wrap(err, "reading identity file")
		}
	}
	signer, err := ssh.ParsePrivateKey(keyBytes)
	if err != nil {
		return nil, errors.Wrap(err, "parsing private key")
	}
	return &ssh.ClientConfig{
		User: credential.User,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		// Freshly provisioned nodes have unknown host keys.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         dialTimeout,
	}, nil
}

func dial(host string, credential Credential) (*ssh.Client, error) {
	config, err := clientConfig(credential)
	if err != nil {
		return nil, err
	}
	var client *ssh.Client
	for attempt := 0; attempt < dialRetries; attempt++ {
		client, err = ssh.Dial("tcp", host+":"+sshPort, config)
		if err == nil {
			return client, nil
		}
		log.Debug().Msgf("ssh dial %s failed (attempt %d): %s", host, attempt+1, err)
		time.Sleep(retryDelay)
	}
	return nil, errors.Wrapf(err, "dialing %s", host)
}

func (e *SSHExecutor) Run(host string, credential Credential, script Script) (string, error) {
	client, err := dial(host, credential)
	if err != nil {
		return "", err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return "", errors.Wrap(err, "creating ssh session")
	}
	defer session.Close()

	command := script.Render()
	log.Debug().Msgf("[%s] %s", host, command)
	output, err := session.CombinedOutput(command)
	if err != nil {
		return string(output), errors.Wrapf(err, "running %q on %s", command, host)
	}
	return string(output), nil
}

func (e *SSHExecutor) Copy(host string, credential Credential, localPath, remotePath string) error {
	content, err := os.ReadFile(localPath)
	if err != nil {
		return errors.Wrapf(err, "reading %s", localPath)
	}
	return e.CopyBytes(host, credential, content, remotePath)
}

func (e *SSHExecutor) CopyBytes(host string, credential Credential, content []byte, remotePath string) error {
	client, err := dial(host, credential)
	if err != nil {
		return err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return errors.Wrap(err, "creating ssh session")
	}
	defer session.Close()

	session.Stdin = bytes.NewReader(content)
	command := fmt.Sprintf("mkdir -p %s && cat > %s", quote(path.Dir(remotePath)), quote(remotePath))
	log.Debug().Msgf("[%s] copy %d bytes to %s", host, len(content), remotePath)
	if output, err := session.CombinedOutput(command); err != nil {
		return errors.Wrapf(err, "copying to %s:%s: %s", host, remotePath, output)
	}
	return nil
}
