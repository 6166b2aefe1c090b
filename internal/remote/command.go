// Package remote runs commands and copies files on cluster nodes over an
// authenticated channel. Commands are kept in argv form until the channel
// boundary so callers never interpolate credentials or paths into shell
// strings.
package remote

import "strings"

// Command is a single remote invocation built from discrete arguments.
type Command struct {
	argv []string
}

func Cmd(name string, args ...string) Command {
	return Command{argv: append([]string{name}, args...)}
}

// Sudo prefixes the command with sudo.
func (c Command) Sudo() Command {
	return Command{argv: append([]string{"sudo"}, c.argv...)}
}

// Script chains commands with && so a failing step aborts the rest.
type Script []Command

// Render serializes the script into one shell line with every argument
// single-quoted.
func (s Script) Render() string {
	lines := make([]string, 0, len(s))
	for _, command := range s {
		quoted := make([]string, 0, len(command.argv))
		for _, arg := range command.argv {
			quoted = append(quoted, quote(arg))
		}
		lines = append(lines, strings.Join(quoted, " "))
	}
	return strings.Join(lines, " && ")
}

func (c Command) Render() string {
	return Script{c}.Render()
}

var plain = func() map[rune]bool {
	set := map[rune]bool{}
	for _, r := range "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_./=~:@%+," {
		set[r] = true
	}
	return set
}()

// quote single-quotes an argument for POSIX shells unless it is entirely
// harmless. Embedded single quotes become the '\'' dance.
func quote(arg string) string {
	if arg == "" {
		return "''"
	}
	safe := true
	for _, r := range arg {
		if !plain[r] {
			safe = false
			break
		}
	}
	if safe {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}

// Credential identifies the account and private key used to reach a node.
type Credential struct {
	User            string
	IdentityFile    string
	PrivateKeyBytes []byte
}

// Executor is the abstract command/copy channel to one remote host.
type Executor interface {
	Run(host string, credential Credential, script Script) (output string, err error)
	Copy(host string, credential Credential, localPath, remotePath string) error
	CopyBytes(host string, credential Credential, content []byte, remotePath string) error
}
