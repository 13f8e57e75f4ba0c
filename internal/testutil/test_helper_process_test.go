package testutil

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelperArgs(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		argv []string
		want []string
	}{
		"args after separator": {
			argv: []string{"/tmp/x.test", "-test.run=^TestHelperProcess$", "--", "-P", "test.gpr"},
			want: []string{"-P", "test.gpr"},
		},
		"only first separator counts": {
			argv: []string{"bin", "--", "a", "--", "b"},
			want: []string{"a", "--", "b"},
		},
		"no separator": {
			argv: []string{"bin", "-test.v"},
			want: nil,
		},
		"separator last": {
			argv: []string{"bin", "--"},
			want: []string{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, helperArgs(tt.argv))
		})
	}
}

func TestHelperEnv(t *testing.T) {
	t.Parallel()

	cfg := HelperProcessConfig{ExitCode: 2, Stderr: "boom", EchoArgs: true, Sleep: time.Second}
	env := HelperEnv(t, cfg)

	assert.Equal(t, "1", env[EnvWantHelperProcess])
	var got HelperProcessConfig
	require.NoError(t, json.Unmarshal([]byte(env[EnvHelperProcessConfig]), &got))
	assert.Equal(t, cfg, got)
}

func TestHelperCommandLine(t *testing.T) {
	t.Parallel()

	line := HelperCommandLine(t, "TestHelperProcess")
	assert.True(t, strings.HasPrefix(line, "'"))
	assert.True(t, strings.HasSuffix(line, " -test.run=^TestHelperProcess$ --"))
}

func TestParseEchoedArgs(t *testing.T) {
	t.Parallel()

	args, err := ParseEchoedArgs(`["-P","test.gpr","--replay"]` + "\nother output\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"-P", "test.gpr", "--replay"}, args)

	_, err = ParseEchoedArgs("not json\n")
	assert.ErrorContains(t, err, "parsing echoed args")
}

func TestQuote(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "'/tmp/a b'", quote("/tmp/a b"))
	assert.Equal(t, `'it'\''s'`, quote("it's"))
}
