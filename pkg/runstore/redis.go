package runstore

import (
	"context"
	"encoding/json"
	"path"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/nirb28/dsp-adk2/pkg/spec"
	"github.com/redis/go-redis/v9"
)

// The redis store implements the RunStore interface using Redis as the
// backend, so run history survives process restarts and is shared
// between replicas. The keys namespace is organized as follows:
// - `/<prefix>/runstore/<agent>/runs` holds the run records as a list,
//   oldest first, trimmed to MaxRunsPerAgent.

type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore returns a RunStore backed by the given Redis client.
// The prefix namespaces the keys so several deployments can share one
// Redis instance.
func NewRedisStore(client *redis.Client, prefix string) RunStore {
	return &redisStore{
		client: client,
		prefix: prefix,
	}
}

func (m *redisStore) runsKey(agentName string) string {
	return path.Join(m.prefix, "runstore", strings.ToLower(agentName), "runs")
}

func (m *redisStore) Add(ctx context.Context, run *spec.AgentRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return errors.Wrap(err, "failed to marshal run record")
	}

	key := m.runsKey(run.AgentName)
	pipe := m.client.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -MaxRunsPerAgent, -1)
	_, err = pipe.Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to store run record in Redis")
	}
	return nil
}

func (m *redisStore) List(ctx context.Context, agentName string) ([]*spec.AgentRun, error) {
	key := m.runsKey(agentName)
	data, err := m.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to list runs from Redis")
	}

	// stored oldest first, returned most recent first
	runs := make([]*spec.AgentRun, 0, len(data))
	for i := len(data) - 1; i >= 0; i-- {
		var run spec.AgentRun
		if err := json.Unmarshal([]byte(data[i]), &run); err != nil {
			logger.ContextKV(ctx, xlog.ERROR,
				"status", "unmarshal_run_record",
				"agent", agentName,
				"err", err.Error(),
			)
			continue
		}
		runs = append(runs, &run)
	}
	return runs, nil
}

func (m *redisStore) Reset(ctx context.Context, agentName string) error {
	err := m.client.Del(ctx, m.runsKey(agentName)).Err()
	if err != nil {
		return errors.Wrap(err, "failed to reset run history in Redis")
	}
	return nil
}
