// Package monitor samples recorder health once a second: write-queue
// depths and the duration of the last storage flush, mirrored to a
// status file and, when a database is attached, to the perf table.
package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/subcom/fleet/internal/logging"
	"github.com/subcom/fleet/internal/model"
	"github.com/subcom/fleet/internal/patrol"
	"github.com/subcom/fleet/internal/worker"
)

const sampleInterval = time.Second

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	DB              *gorm.DB
	LogManager      *logging.SlogManager
	PatrolContext   *patrol.Context
	WorkerManager   *worker.Manager
	Queues          *worker.Queues
	StatusDir       string
	IsDatabaseValid func() bool
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *Service) queueLengths() model.WriteQueueLengths {
	return model.WriteQueueLengths{
		Movements:    uint16(s.deps.Queues.Movements.Len()),
		Collisions:   uint16(s.deps.Queues.Collisions.Len()),
		Torpedoes:    uint16(s.deps.Queues.Torpedoes.Len()),
		SensorFaults: uint16(s.deps.Queues.SensorFaults.Len()),
		NukeAttempts: uint16(s.deps.Queues.NukeAttempts.Len()),
	}
}

func marshalSection(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": "%s"}`, err)
	}
	return string(data)
}

// GetProgramStatus returns the current program status. The bool flags
// select which sections appear in the text output; the perf model is
// always fully populated.
func (s *Service) GetProgramStatus(
	writeQueues bool,
	lastWrite bool,
) (output []string, perfModel model.FleetPerformance) {
	queues := s.queueLengths()

	perfModel = model.FleetPerformance{
		Time:                time.Now(),
		PatrolID:            s.deps.PatrolContext.GetPatrol().ID,
		WriteQueueLengths:   queues,
		LastWriteDurationMs: float32(s.deps.WorkerManager.GetLastDBWriteDuration().Milliseconds()),
	}

	if writeQueues {
		output = append(output, marshalSection(queues))
	}
	if lastWrite {
		output = append(output, marshalSection(perfModel.LastWriteDurationMs))
	}
	return output, perfModel
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go s.run()
	return nil
}

func (s *Service) run() {
	defer func() {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
	}()

	logger := s.deps.LogManager.Logger()
	logger.Debug("Starting status monitor goroutine")

	statusFile, err := os.Create(filepath.Join(s.deps.StatusDir, "status.txt"))
	if err != nil {
		logger.Error("Error creating status file", "error", err)
	}
	defer statusFile.Close()

	ticker := time.NewTicker(sampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
		}

		// nothing to report until a patrol has been registered
		if s.deps.PatrolContext.GetPatrol().ID == 0 {
			continue
		}

		lines, perfModel := s.GetProgramStatus(true, true)
		s.rewriteStatusFile(statusFile, lines)
		s.persistPerf(perfModel)
	}
}

// persistPerf writes one perf sample to the database. Backends without
// one leave IsDatabaseValid unset and the sample only goes to the
// status file.
func (s *Service) persistPerf(perfModel model.FleetPerformance) {
	if s.deps.IsDatabaseValid == nil || !s.deps.IsDatabaseValid() {
		return
	}
	if err := s.deps.DB.Create(&perfModel).Error; err != nil {
		s.deps.LogManager.Logger().Error("Error writing perf model to database", "error", err)
	}
}

func (s *Service) rewriteStatusFile(statusFile *os.File, lines []string) {
	if statusFile == nil {
		return
	}
	statusFile.Truncate(0)
	statusFile.Seek(0, 0)
	for _, line := range lines {
		statusFile.WriteString(line + "\n")
	}
}

// Stop stops the status monitor
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}
