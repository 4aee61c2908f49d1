package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/plus3/sparsecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsFinalize(t *testing.T) {
	s := Stats{Samples: []time.Duration{3 * time.Millisecond, time.Millisecond, 5 * time.Millisecond}}
	s.Finalize()

	assert.Equal(t, time.Millisecond, s.Min)
	assert.Equal(t, 5*time.Millisecond, s.Max)
	assert.Equal(t, 3*time.Millisecond, s.Avg)
}

func TestSlowest(t *testing.T) {
	stats := &ecs.SchedulerStats{Systems: []ecs.SystemStats{
		{Name: "a", TotalDuration: time.Millisecond},
		{Name: "b", TotalDuration: 3 * time.Millisecond},
		{Name: "c", TotalDuration: 2 * time.Millisecond},
	}}

	top := slowest(stats, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "b", top[0].Name)
	assert.Equal(t, "c", top[1].Name)
	assert.Len(t, slowest(stats, 10), 3)
}

func TestReportGenerate(t *testing.T) {
	r := &Report{
		Seed:           42,
		Duration:       time.Second,
		Entities:       10,
		Components:     4,
		Systems:        2,
		TotalUpdates:   7,
		LiveEntities:   9,
		SlowestSystems: []ecs.SystemStats{{Name: "system000", ExecutionCount: 7}},
		Snapshot:       "ecs-stress",
	}

	var buf bytes.Buffer
	require.NoError(t, r.Generate(&buf))
	out := buf.String()
	assert.Contains(t, out, "**Seed:** 42")
	assert.Contains(t, out, "system000 (priority 0)")
	assert.Contains(t, out, "Saved as **ecs-stress**")
	assert.NotContains(t, out, "GC Pause Durations")
}
