package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		line string
		verb string
		args []string
		text string
	}{
		{name: "empty", line: "   "},
		{name: "verb only", line: "help", verb: "HELP"},
		{name: "trailing CR", line: "SHOW_ONLINE\r", verb: "SHOW_ONLINE"},
		{name: "two args", line: "LOGIN alice secret", verb: "LOGIN", args: []string{"alice", "secret"}, text: "alice secret"},
		{name: "extra spaces", line: "  CHALLENGE   bob  ", verb: "CHALLENGE", args: []string{"bob"}, text: "bob"},
		{name: "free text keeps inner spacing", line: "GLOBAL_MESSAGE hello  there", verb: "GLOBAL_MESSAGE", args: []string{"hello", "there"}, text: "hello  there"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := Parse(tt.line)
			assert.Equal(t, tt.verb, cmd.Verb)
			assert.Equal(t, len(tt.args), len(cmd.Args))
			for i, a := range tt.args {
				assert.Equal(t, a, cmd.Arg(i))
			}
			assert.Equal(t, tt.text, cmd.Text)
		})
	}
}

func TestCommandArgOutOfRange(t *testing.T) {
	cmd := Parse("OBSERVE")
	assert.Equal(t, "", cmd.Arg(0))
	assert.Equal(t, "", cmd.Arg(-1))
}

func TestTextAfter(t *testing.T) {
	cmd := Parse("DIRECT_MESSAGE bob hi  there bob")
	assert.Equal(t, "hi  there bob", cmd.TextAfter(1))
	assert.Equal(t, "", Parse("DIRECT_MESSAGE bob").TextAfter(1))
}
