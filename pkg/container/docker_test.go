// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package container

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine records docker CLI invocations and plays back canned results.
type fakeEngine struct {
	calls   [][]string
	outputs map[string]string // keyed by subcommand, e.g. "ps", "stop"
	errs    map[string]error
}

func (f *fakeEngine) run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	sub := args[0]
	return []byte(f.outputs[sub]), f.errs[sub]
}

func TestDockerRuntime_Exists(t *testing.T) {
	tests := []struct {
		name   string
		psOut  string
		psErr  error
		want   bool
		wantEr bool
	}{
		{"present", "scout-qdrant\n", nil, true, false},
		{"absent", "", nil, false, false},
		{"other containers only", "scout-qdrant-old\n", nil, false, false},
		{"daemon error", "", fmt.Errorf("daemon down"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{
				outputs: map[string]string{"ps": tt.psOut},
				errs:    map[string]error{"ps": tt.psErr},
			}
			rt := NewDockerRuntime("scout-qdrant", WithCommandRunner(engine.run))

			got, err := rt.Exists(context.Background(), "scout-qdrant")
			if tt.wantEr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDockerRuntime_StopMissingContainerIsSuccess(t *testing.T) {
	engine := &fakeEngine{
		outputs: map[string]string{"stop": "Error response from daemon: No such container: scout-qdrant"},
		errs:    map[string]error{"stop": fmt.Errorf("exit status 1")},
	}
	rt := NewDockerRuntime("scout-qdrant", WithCommandRunner(engine.run))

	require.NoError(t, rt.Stop(context.Background()))
	require.Len(t, engine.calls, 1)
	assert.Equal(t, []string{"docker", "stop", "scout-qdrant"}, engine.calls[0])
}

func TestDockerRuntime_StopPassesContainerName(t *testing.T) {
	engine := &fakeEngine{outputs: map[string]string{}, errs: map[string]error{}}
	rt := NewDockerRuntime("scout-qdrant", WithCommandRunner(engine.run))

	require.NoError(t, rt.Stop(context.Background()))
	require.Len(t, engine.calls, 1)
	assert.Equal(t, "stop", engine.calls[0][1])
	assert.Equal(t, "scout-qdrant", engine.calls[0][2])
}

func TestDockerRuntime_StopRetriesUntilContextCancel(t *testing.T) {
	engine := &fakeEngine{
		outputs: map[string]string{"stop": "device busy"},
		errs:    map[string]error{"stop": fmt.Errorf("exit status 1")},
	}
	rt := NewDockerRuntime("scout-qdrant", WithCommandRunner(engine.run))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rt.Stop(ctx)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "docker stop"))
}

func TestDockerRuntime_Start(t *testing.T) {
	engine := &fakeEngine{outputs: map[string]string{}, errs: map[string]error{}}
	rt := NewDockerRuntime("scout-qdrant", WithCommandRunner(engine.run))

	require.NoError(t, rt.Start(context.Background()))
	require.Len(t, engine.calls, 1)
	assert.Equal(t, []string{"docker", "start", "scout-qdrant"}, engine.calls[0])
}
