package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScriptRender(t *testing.T) {
	script := Script{
		Cmd("mkdir", "-p", "/root/.ssh").Sudo(),
		Cmd("mkdir", "-p", "tmp"),
	}
	assert.Equal(t, "sudo mkdir -p /root/.ssh && mkdir -p tmp", script.Render())
}

func TestQuote(t *testing.T) {
	tests := []struct {
		name     string
		arg      string
		expected string
	}{
		{"plain", "tmp/id_rsa", "tmp/id_rsa"},
		{"empty", "", "''"},
		{"space", "my file", "'my file'"},
		{"injection", "x; rm -rf /", "'x; rm -rf /'"},
		{"subshell", "$(reboot)", "'$(reboot)'"},
		{"single quote", "it's", `'it'\''s'`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, quote(tt.arg))
		})
	}
}

func TestRenderQuotesHostileArguments(t *testing.T) {
	command := Cmd("echo", "a b", "$(whoami)")
	assert.Equal(t, "echo 'a b' '$(whoami)'", command.Render())
}
