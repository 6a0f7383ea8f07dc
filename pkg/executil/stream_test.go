// SPDX-License-Identifier: AGPL-3.0-or-later

package executil_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucidstage/pkg/executil"
)

func TestRunSplitSeparatesStdoutAndStderr(t *testing.T) {
	cmd := executil.NewCommand("sh", "-c", "echo out; echo err >&2")
	lines := make(chan executil.Line, 16)

	err := executil.RunSplit(context.Background(), cmd, lines)
	require.NoError(t, err)

	var stdout, stderr []string
	for line := range lines {
		if line.Stderr {
			stderr = append(stderr, line.Text)
		} else {
			stdout = append(stdout, line.Text)
		}
	}
	assert.Equal(t, []string{"out"}, stdout)
	assert.Equal(t, []string{"err"}, stderr)
}

func TestRunSplitReturnsErrorOnNonZeroExit(t *testing.T) {
	cmd := executil.NewCommand("sh", "-c", "exit 3")
	lines := make(chan executil.Line, 4)

	err := executil.RunSplit(context.Background(), cmd, lines)
	require.Error(t, err)
}

func TestPrivilegedWrapsWithSudoAndForwardsEnv(t *testing.T) {
	cmd := executil.NewCommand("apt-get", "update")
	cmd.Env = map[string]string{"DEBIAN_FRONTEND": "noninteractive"}

	wrapped := executil.Privileged(cmd)
	assert.Equal(t, "sudo", wrapped.Name)
	assert.Equal(t, []string{"-n", "DEBIAN_FRONTEND=noninteractive", "apt-get", "update"}, wrapped.Args)
}
