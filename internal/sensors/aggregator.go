// Package sensors reduces a submarine's sensor stream to fault patterns.
package sensors

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/subcom/fleet/internal/fleet"
	"github.com/subcom/fleet/pkg/core"
)

// Source supplies the raw sensor stream for a submarine: one fixed-width
// bit string per line, '0' meaning a failed sensor.
type Source interface {
	SensorData(sn core.SerialNumber) (io.ReadCloser, error)
}

// Aggregator deduplicates faulty readings by exact pattern content.
type Aggregator struct {
	logger   *slog.Logger
	registry *fleet.Registry
	source   Source
}

// NewAggregator creates an aggregator reading from the given source.
func NewAggregator(logger *slog.Logger, registry *fleet.Registry, source Source) *Aggregator {
	return &Aggregator{
		logger:   logger,
		registry: registry,
		source:   source,
	}
}

// Aggregate reads the submarine's sensor stream and returns distinct
// fault patterns in first-seen order. Fails with core.ErrNotFound for an
// unregistered serial and core.ErrSourceUnavailable when the backing
// stream cannot be opened.
func (a *Aggregator) Aggregate(sn core.SerialNumber) ([]core.SensorFault, error) {
	if _, err := a.registry.Get(sn); err != nil {
		return nil, fmt.Errorf("aggregate sensor faults: %w", err)
	}

	stream, err := a.source.SensorData(sn)
	if err != nil {
		return nil, fmt.Errorf("aggregate sensor faults for %s: %w", sn, err)
	}
	defer stream.Close()

	return Reduce(stream), nil
}

// Reduce folds a sensor stream into its deduplicated fault list.
//
// Lines without a '0' are healthy readings and contribute nothing. The
// first occurrence of a faulty line fixes its failed-sensor count; exact
// recurrences only increment the occurrence count.
func Reduce(stream io.Reader) []core.SensorFault {
	var faults []core.SensorFault
	index := make(map[string]int)

	scanner := bufio.NewScanner(stream)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "0") {
			continue
		}

		if i, seen := index[line]; seen {
			faults[i].Occurrences++
			continue
		}

		index[line] = len(faults)
		faults = append(faults, core.SensorFault{
			Pattern:       line,
			FailedSensors: strings.Count(line, "0"),
			Occurrences:   1,
		})
	}

	return faults
}
