// Package reports reads the flat-file report tree the fleet recorder
// consumes: per-submarine movement reports, per-submarine sensor
// streams, and the two secret stores.
package reports

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/subcom/fleet/internal/util"
	"github.com/subcom/fleet/pkg/core"
)

// MovementOrder is one parsed movement report record.
// Direction stays a raw token here; the movement engine owns the
// invalid-direction policy.
type MovementOrder struct {
	Direction core.Direction
	Distance  int
}

// ParseMovementLine parses one "<direction> <distance>" record.
// A record is invalid when it does not split into exactly two tokens or
// the second token is not an unsigned decimal integer. Signed forms
// like "+5" are rejected, not just negatives.
func ParseMovementLine(line string) (MovementOrder, error) {
	tokens := strings.Fields(line)
	if len(tokens) != 2 {
		return MovementOrder{}, fmt.Errorf("expected 2 tokens, got %d", len(tokens))
	}
	if !allDigits(tokens[1]) {
		return MovementOrder{}, fmt.Errorf("distance %q is not a non-negative integer", tokens[1])
	}
	distance, err := strconv.Atoi(tokens[1])
	if err != nil {
		return MovementOrder{}, fmt.Errorf("distance %q out of range: %w", tokens[1], err)
	}
	return MovementOrder{
		Direction: core.ParseDirection(tokens[0]),
		Distance:  distance,
	}, nil
}

// allDigits reports whether s consists of one or more ASCII digits.
func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MovementDir reads per-submarine movement report files named
// "<serial>.txt" under one directory.
type MovementDir struct {
	root   string
	logger *slog.Logger
}

// NewMovementDir creates a movement report source rooted at dir.
func NewMovementDir(dir string, logger *slog.Logger) *MovementDir {
	return &MovementDir{root: dir, logger: logger}
}

// Serials returns the file stems of all report files, sorted for
// deterministic registration order. A missing directory fails with
// core.ErrSourceUnavailable.
func (d *MovementDir) Serials() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, sourceErr(d.root, err)
	}

	serials := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		serials = append(serials, util.FileStem(entry.Name()))
	}
	sort.Strings(serials)
	return serials, nil
}

// Count returns how many submarines have a movement report on disk.
func (d *MovementDir) Count() (int, error) {
	serials, err := d.Serials()
	if err != nil {
		return 0, err
	}
	return len(serials), nil
}

// Orders reads and parses the submarine's full report. Malformed lines
// are skipped with a warning and do not halt the remaining records.
// A missing report file fails with core.ErrSourceUnavailable.
func (d *MovementDir) Orders(sn core.SerialNumber) ([]MovementOrder, error) {
	path := filepath.Join(d.root, string(sn)+".txt")
	f, err := os.Open(path)
	if err != nil {
		return nil, sourceErr(path, err)
	}
	defer f.Close()

	var orders []MovementOrder
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		order, err := ParseMovementLine(line)
		if err != nil {
			d.logger.Warn("Invalid movement report record, skipping",
				"serial", sn, "line", lineNo, "error", err)
			continue
		}
		orders = append(orders, order)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return orders, nil
}

// SensorDir reads per-submarine sensor streams named "<serial>.txt".
type SensorDir struct {
	root string
}

// NewSensorDir creates a sensor data source rooted at dir.
func NewSensorDir(dir string) *SensorDir {
	return &SensorDir{root: dir}
}

// SensorData opens the submarine's sensor stream. The caller closes it.
// A missing file or directory fails with core.ErrSourceUnavailable.
func (d *SensorDir) SensorData(sn core.SerialNumber) (io.ReadCloser, error) {
	path := filepath.Join(d.root, string(sn)+".txt")
	f, err := os.Open(path)
	if err != nil {
		return nil, sourceErr(path, err)
	}
	return f, nil
}

// SecretFile resolves secrets from a "<serial>:<value>" line store.
// Each lookup scans the file fresh; the stores are small and this keeps
// rotated secrets visible without a reload step.
type SecretFile struct {
	path string
}

// NewSecretFile creates a secret store backed by the given file.
func NewSecretFile(path string) *SecretFile {
	return &SecretFile{path: path}
}

// Secret returns the stored value for sn. A missing store fails with
// core.ErrSourceUnavailable; a missing serial with core.ErrNotFound.
func (s *SecretFile) Secret(sn core.SerialNumber) (string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return "", sourceErr(s.path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := util.SplitColonPair(scanner.Text())
		if !ok {
			continue
		}
		if key == string(sn) {
			return value, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading %s: %w", s.path, err)
	}
	return "", fmt.Errorf("no entry for %s in %s: %w", sn, s.path, core.ErrNotFound)
}

// Tree bundles the report sources for one recorder run.
type Tree struct {
	Movements *MovementDir
	Sensors   *SensorDir
	Keys      *SecretFile
	Codes     *SecretFile
}

// NewTree wires the conventional report layout under root:
// MovementReports/, Sensordata/, Secrets/SecretKEY.txt and
// Secrets/ActivationCodes.txt.
func NewTree(root string, logger *slog.Logger) *Tree {
	return &Tree{
		Movements: NewMovementDir(filepath.Join(root, "MovementReports"), logger),
		Sensors:   NewSensorDir(filepath.Join(root, "Sensordata")),
		Keys:      NewSecretFile(filepath.Join(root, "Secrets", "SecretKEY.txt")),
		Codes:     NewSecretFile(filepath.Join(root, "Secrets", "ActivationCodes.txt")),
	}
}

func sourceErr(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, core.ErrSourceUnavailable)
	}
	return fmt.Errorf("%s: %w", path, err)
}

// ModTime returns the newest modification time under the movement
// report directory, used as the patrol start fallback when reports are
// replayed after the fact.
func (d *MovementDir) ModTime() (time.Time, error) {
	info, err := os.Stat(d.root)
	if err != nil {
		return time.Time{}, sourceErr(d.root, err)
	}
	return info.ModTime(), nil
}
