package sensors

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subcom/fleet/internal/fleet"
	"github.com/subcom/fleet/pkg/core"
)

type stubSource struct {
	data string
	err  error
}

func (s *stubSource) SensorData(core.SerialNumber) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.data)), nil
}

func TestReduce_DeduplicatesByExactContent(t *testing.T) {
	stream := strings.NewReader("00000000\n11111111\n00000000\n")

	faults := Reduce(stream)
	require.Len(t, faults, 1)
	assert.Equal(t, "00000000", faults[0].Pattern)
	assert.Equal(t, 8, faults[0].FailedSensors)
	assert.Equal(t, 2, faults[0].Occurrences)
}

func TestReduce_FirstSeenOrder(t *testing.T) {
	stream := strings.NewReader("10101010\n00110011\n10101010\n01111111\n")

	faults := Reduce(stream)
	require.Len(t, faults, 3)
	assert.Equal(t, "10101010", faults[0].Pattern)
	assert.Equal(t, "00110011", faults[1].Pattern)
	assert.Equal(t, "01111111", faults[2].Pattern)

	assert.Equal(t, 4, faults[0].FailedSensors)
	assert.Equal(t, 2, faults[0].Occurrences)
	assert.Equal(t, 1, faults[2].FailedSensors)
}

func TestReduce_AllHealthy(t *testing.T) {
	stream := strings.NewReader("11111111\n11111111\n")
	assert.Empty(t, Reduce(stream))
}

func TestAggregate_UnknownSubmarine(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	registry := fleet.NewRegistry(logger)
	a := NewAggregator(logger, registry, &stubSource{})

	_, err := a.Aggregate("00000000-00")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestAggregate_SourceUnavailable(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	registry := fleet.NewRegistry(logger)
	_, err := registry.Register("12345678-90")
	require.NoError(t, err)

	a := NewAggregator(logger, registry, &stubSource{err: core.ErrSourceUnavailable})
	_, err = a.Aggregate("12345678-90")
	assert.ErrorIs(t, err, core.ErrSourceUnavailable)
}

func TestAggregate_ReadsFromSource(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	registry := fleet.NewRegistry(logger)
	_, err := registry.Register("12345678-90")
	require.NoError(t, err)

	a := NewAggregator(logger, registry, &stubSource{data: "01110111\n01110111\n"})
	faults, err := a.Aggregate("12345678-90")
	require.NoError(t, err)
	require.Len(t, faults, 1)
	assert.Equal(t, 2, faults[0].FailedSensors)
	assert.Equal(t, 2, faults[0].Occurrences)
}
