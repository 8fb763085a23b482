package runstore_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nirb28/dsp-adk2/pkg/runstore"
	"github.com/nirb28/dsp-adk2/pkg/spec"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	rediscon "github.com/testcontainers/testcontainers-go/modules/redis"
)

func Test_RedisStore(t *testing.T) {
	ctx := context.Background()
	redisContainer, err := rediscon.Run(ctx, "redis:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, redisContainer.Terminate(ctx))
	})

	state, err := redisContainer.State(ctx)
	require.NoError(t, err)
	require.True(t, state.Running)

	root := fmt.Sprintf("test-%d", time.Now().Unix())

	host, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err)

	options, err := redis.ParseURL(host)
	require.NoError(t, err)

	client := redis.NewClient(options)

	rs := client.Ping(ctx) // Ensure the connection is established
	require.NoError(t, rs.Err(), "failed to connect to Redis")

	st := runstore.NewRedisStore(client, root)

	runs, err := st.List(ctx, "math_assistant")
	require.NoError(t, err)
	assert.Empty(t, runs)

	run1 := &spec.AgentRun{
		RunID:     "run-1",
		AgentName: "math_assistant",
		Success:   true,
		Output:    "42",
		Steps: []spec.Step{
			{Type: spec.StepReasoning, Content: "done"},
		},
		Elapsed: 1.25,
	}
	run2 := &spec.AgentRun{
		RunID:     "run-2",
		AgentName: "math_assistant",
		Success:   false,
		Error:     "reached maximum iterations",
	}

	require.NoError(t, st.Add(ctx, run1))
	require.NoError(t, st.Add(ctx, run2))

	runs, err = st.List(ctx, "math_assistant")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	// most recent first
	assert.Equal(t, "run-2", runs[0].RunID)
	assert.Equal(t, "run-1", runs[1].RunID)
	assert.Equal(t, "42", runs[1].Output)
	assert.Equal(t, 1.25, runs[1].Elapsed)
	require.Len(t, runs[1].Steps, 1)
	assert.Equal(t, spec.StepReasoning, runs[1].Steps[0].Type)

	// histories are per agent
	runs, err = st.List(ctx, "other_agent")
	require.NoError(t, err)
	assert.Empty(t, runs)

	require.NoError(t, st.Reset(ctx, "math_assistant"))
	runs, err = st.List(ctx, "math_assistant")
	require.NoError(t, err)
	assert.Empty(t, runs)
}
