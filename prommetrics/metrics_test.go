package prommetrics_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/velmie/mutationq"
	"github.com/velmie/mutationq/memory"
	"github.com/velmie/mutationq/prommetrics"
)

func TestMetricsRecordQueueActivity(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	metrics := prommetrics.New(reg, "")

	q := mutationq.MustNewQueue(memory.NewStore(), mutationq.WithMetrics(metrics))
	_, err := q.Enqueue(ctx, mutationq.Insert{Table: "todos", Payload: json.RawMessage(`{}`)})
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, mutationq.RPC{Procedure: "sync"})
	require.NoError(t, err)

	relay := mutationq.NewRelay(q, mutationq.Dispatcher{
		Insert: func(context.Context, mutationq.Entry, mutationq.Insert) error { return nil },
	})
	require.NoError(t, relay.DrainOnce(ctx))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
	}
	require.Contains(t, names, "mutationq_drain_duration_seconds")
	require.Contains(t, names, "mutationq_replayed_total")
	require.Contains(t, names, "mutationq_replay_failures_total")

	expected := `
# HELP mutationq_pending_entries Entries waiting to be replayed
# TYPE mutationq_pending_entries gauge
mutationq_pending_entries 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "mutationq_pending_entries"))

	expectedEnqueued := `
# HELP mutationq_enqueued_total Mutations captured into the queue
# TYPE mutationq_enqueued_total counter
mutationq_enqueued_total{kind="insert"} 1
mutationq_enqueued_total{kind="rpc"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expectedEnqueued), "mutationq_enqueued_total"))
}
