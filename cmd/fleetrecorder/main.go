package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"gorm.io/gorm"

	"github.com/subcom/fleet/internal/api"
	"github.com/subcom/fleet/internal/collision"
	"github.com/subcom/fleet/internal/config"
	"github.com/subcom/fleet/internal/dispatcher"
	"github.com/subcom/fleet/internal/fleet"
	"github.com/subcom/fleet/internal/geo"
	"github.com/subcom/fleet/internal/influx"
	"github.com/subcom/fleet/internal/logging"
	"github.com/subcom/fleet/internal/model"
	"github.com/subcom/fleet/internal/monitor"
	"github.com/subcom/fleet/internal/nuke"
	intOtel "github.com/subcom/fleet/internal/otel"
	"github.com/subcom/fleet/internal/patrol"
	"github.com/subcom/fleet/internal/reports"
	"github.com/subcom/fleet/internal/sensors"
	"github.com/subcom/fleet/internal/storage"
	"github.com/subcom/fleet/internal/weapons"
	"github.com/subcom/fleet/internal/worker"
	"github.com/subcom/fleet/pkg/core"
)

// recorder defs - BuildDate can be set at build time via ldflags
var (
	RecorderVersion string = "1.0.0"
	BuildDate       string = "unknown"

	RecorderName string = "fleet_recorder"
)

// global variables
var (
	SessionStartTime time.Time = time.Now()

	// SlogManager handles all slog-based logging
	slogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	logger *slog.Logger

	// OTelProvider handles OpenTelemetry
	otelProvider *intOtel.Provider

	// Services
	patrolCtx       *patrol.Context
	storageBackend  storage.Backend
	queues          *worker.Queues
	workerManager   *worker.Manager
	monitorService  *monitor.Service
	eventDispatcher *dispatcher.Dispatcher

	// Fleet command core
	registry          *fleet.Registry
	engine            *fleet.Engine
	tracker           *collision.Tracker
	weaponsDispatcher *weapons.Dispatcher
	sensorAggregator  *sensors.Aggregator
	nukeAuthorizer    *nuke.Authorizer
	reportTree        *reports.Tree
)

func main() {
	configDir := flag.String("config", ".", "directory containing fleet_recorder.cfg.json")
	reportsRoot := flag.String("reports", "", "report tree root (defaults to reports.root from config)")
	patrolName := flag.String("patrol", "", "patrol name recorded with this run")
	patrolTag := flag.String("tag", "", "patrol tag (defaults to defaultTag from config)")
	flag.Parse()

	slogManager = logging.NewSlogManager()
	logger = slogManager.Logger()

	if err := config.Load(*configDir); err != nil {
		logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		logger.Info("Loaded config")
	}

	logsDir := viper.GetString("logsDir")
	if _, err := os.Stat(logsDir); os.IsNotExist(err) {
		os.MkdirAll(logsDir, 0755)
	}

	logFilePath := logging.LogFilePath(logsDir, RecorderName, SessionStartTime)
	logFile, err := os.OpenFile(logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		logger.Error("Failed to create/open log file!", "error", err, "path", logFilePath)
	}
	defer logFile.Close()

	// Initialize OTel provider if enabled (after log file is created)
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		otelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    logFile,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			logger.Error("Failed to initialize OTel provider", "error", err)
		}
	}

	// Re-setup logging with file output and optional OTel
	var otelLogProvider *sdklog.LoggerProvider
	if otelProvider != nil {
		otelLogProvider = otelProvider.LoggerProvider()
	}
	slogManager.Setup(logFile, viper.GetString("logLevel"), otelLogProvider)
	logger = slogManager.Logger()
	logger.Info("Logging to file", "path", logFilePath, "version", RecorderVersion, "buildDate", BuildDate)

	if err := run(*reportsRoot, *patrolName, *patrolTag); err != nil {
		logger.Error("Recorder run failed", "error", err)
		shutdown()
		os.Exit(1)
	}
	shutdown()
}

func run(reportsRoot, patrolName, patrolTag string) error {
	if reportsRoot == "" {
		reportsRoot = viper.GetString("reports.root")
	}
	if patrolName == "" {
		patrolName = fmt.Sprintf("Patrol %s", SessionStartTime.Format("2006-01-02 15:04"))
	}
	if patrolTag == "" {
		patrolTag = viper.GetString("defaultTag")
	}

	// storage backend
	var err error
	patrolCtx = patrol.NewContext()
	storageBackend, err = storage.NewBackend(config.GetStorageConfig(), slogManager, patrolCtx)
	if err != nil {
		return fmt.Errorf("failed to create storage backend: %w", err)
	}
	if err := storageBackend.Init(); err != nil {
		return fmt.Errorf("failed to init storage backend: %w", err)
	}

	// write queues + flush worker + status monitor
	queues = worker.NewQueues()
	workerManager = worker.NewManager(worker.Dependencies{
		LogManager:    slogManager,
		Queues:        queues,
		FlushInterval: time.Second,
	}, storageBackend)
	monitorDeps := monitor.Dependencies{
		LogManager:    slogManager,
		PatrolContext: patrolCtx,
		WorkerManager: workerManager,
		Queues:        queues,
		StatusDir:     viper.GetString("logsDir"),
	}
	// database-backed storage also gets the perf rows
	if dbBackend, ok := storageBackend.(interface{ DB() *gorm.DB }); ok {
		db := dbBackend.DB()
		monitorDeps.DB = db
		monitorDeps.IsDatabaseValid = func() bool { return db != nil }
	}
	monitorService = monitor.NewService(monitorDeps)

	// command dispatcher
	dispatcherLogger := logging.NewDispatcherLogger(
		zerolog.New(os.Stderr).With().Timestamp().Logger())
	eventDispatcher, err = dispatcher.New(dispatcherLogger)
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	// fleet command core
	logger = slogManager.Logger()
	registry = fleet.NewRegistry(logger)
	engine = fleet.NewEngine(logger)
	tracker = collision.NewTracker(logger)
	weaponsDispatcher = weapons.NewDispatcher(logger, registry)
	reportTree = reports.NewTree(reportsRoot, logger)
	sensorAggregator = sensors.NewAggregator(logger, registry, reportTree.Sensors)
	nukeAuthorizer = nuke.NewAuthorizer(logger, reportTree.Keys, reportTree.Codes)

	registerCommandHandlers(eventDispatcher)

	go checkServerStatus()

	// start the patrol
	anchor := geo.AnchorFrom4326(
		viper.GetFloat64("area.longitude"),
		viper.GetFloat64("area.latitude"),
	)
	area := &core.Area{
		Name:      viper.GetString("area.name"),
		Latitude:  float32(viper.GetFloat64("area.latitude")),
		Longitude: float32(viper.GetFloat64("area.longitude")),
		Location:  anchor,
	}
	currentPatrol := &core.Patrol{
		Name:             patrolName,
		Tag:              patrolTag,
		StartTime:        SessionStartTime,
		RecorderVersion:  RecorderVersion,
		ReportsDirectory: reportsRoot,
	}
	if err := storageBackend.StartPatrol(currentPatrol, area); err != nil {
		return fmt.Errorf("failed to start patrol: %w", err)
	}
	// database backends populate the context themselves with DB ids
	if patrolCtx.GetPatrol().ID == 0 {
		patrolCtx.SetPatrol(
			&model.Patrol{Name: patrolName, Tag: patrolTag, StartTime: SessionStartTime},
			&model.Area{Name: area.Name, Latitude: area.Latitude, Longitude: area.Longitude},
		)
	}
	logger.Info("Patrol started", "patrol", patrolName, "tag", patrolTag, "area", area.Name)

	workerManager.Start()
	if err := monitorService.Start(); err != nil {
		logger.Error("Failed to start status monitor", "error", err)
	}

	// replay the report tree through the command pipeline
	if err := registerFleet(); err != nil {
		return err
	}
	replayMovementReports()
	logRankings()
	fireTorpedoVolley()
	sweepSensorStreams()
	attemptNukeAuthorization()

	// drain and close out
	monitorService.Stop()
	workerManager.Stop()
	if err := storageBackend.EndPatrol(); err != nil {
		logger.Error("Failed to end patrol", "error", err)
	}
	logger.Info("Patrol ended", "patrol", patrolName)

	uploadRecording()
	writePerformancePoint(patrolName)

	return storageBackend.Close()
}

// registerFleet registers every submarine that filed a movement report,
// file stem = serial number.
func registerFleet() error {
	serials, err := reportTree.Movements.Serials()
	if err != nil {
		return fmt.Errorf("failed to list movement reports: %w", err)
	}

	for _, raw := range serials {
		sub, err := registry.Register(raw)
		if err != nil {
			logger.Warn("Skipping report with invalid serial", "stem", raw, "error", err)
			continue
		}
		if err := storageBackend.AddSubmarine(&core.Submarine{
			Serial:   sub.Serial(),
			JoinTime: time.Now(),
		}); err != nil {
			logger.Error("Failed to record submarine", "serial", sub.Serial(), "error", err)
		}
	}

	logger.Info("Fleet registered", "reports", len(serials), "submarines", registry.Count())
	return nil
}

// replayMovementReports applies each submarine's full report as one
// batch, then runs the collision check on its final position.
func replayMovementReports() {
	for sn := range registry.Serials() {
		orders, err := reportTree.Movements.Orders(sn)
		if err != nil {
			logger.Warn("Skipping unreadable movement report", "serial", sn, "error", err)
			continue
		}

		for _, order := range orders {
			eventDispatcher.Dispatch(dispatcher.Event{
				Command:   ":MOVE:",
				Args:      []string{string(sn), order.Direction.String(), strconv.Itoa(order.Distance)},
				Timestamp: time.Now(),
			})
		}

		sub, ok := registry.Lookup(sn)
		if !ok {
			continue
		}
		if ev, collided := tracker.Observe(sn, sub.Position()); collided {
			queues.Collisions.Push(ev)
		}
	}
}

func logRankings() {
	type ranking struct {
		name string
		fn   func() (*fleet.Submarine, error)
	}
	rankings := []ranking{
		{"closest", registry.Closest},
		{"furthest", registry.Furthest},
		{"lowest", registry.Lowest},
		{"highest", registry.Highest},
	}

	for _, r := range rankings {
		sub, err := r.fn()
		if err != nil {
			if errors.Is(err, core.ErrEmptyFleet) {
				logger.Warn("No submarines registered, skipping rankings")
				return
			}
			logger.Error("Ranking failed", "ranking", r.name, "error", err)
			continue
		}
		pos := sub.Position()
		logger.Info("Fleet ranking", "ranking", r.name, "serial", sub.Serial(),
			"vertical", pos.Vertical, "horizontal", pos.Horizontal)
	}
}

var volleyDirections = []core.Direction{
	core.DirectionUp,
	core.DirectionDown,
	core.DirectionForward,
}

// fireTorpedoVolley orders every submarine to fire once in a random
// direction. Blocked orders are recorded like any other outcome.
func fireTorpedoVolley() {
	for sn := range registry.Serials() {
		dir := volleyDirections[rand.Intn(len(volleyDirections))]
		eventDispatcher.Dispatch(dispatcher.Event{
			Command:   ":FIRE:",
			Args:      []string{string(sn), dir.String()},
			Timestamp: time.Now(),
		})
	}
}

func sweepSensorStreams() {
	for sn := range registry.Serials() {
		eventDispatcher.Dispatch(dispatcher.Event{
			Command:   ":SONAR:",
			Args:      []string{string(sn)},
			Timestamp: time.Now(),
		})
	}
}

// attemptNukeAuthorization runs one authorization attempt for the first
// registered submarine, reconstructing the expected credential from the
// secret stores the way a legitimate caller would.
func attemptNukeAuthorization() {
	for sn := range registry.Serials() {
		key, err := reportTree.Keys.Secret(sn)
		if err != nil {
			logger.Warn("No secret key available, skipping nuke attempt", "serial", sn, "error", err)
			return
		}
		code, err := reportTree.Codes.Secret(sn)
		if err != nil {
			logger.Warn("No activation code available, skipping nuke attempt", "serial", sn, "error", err)
			return
		}

		credential := time.Now().Format("2006-01-02") + key + code
		eventDispatcher.Dispatch(dispatcher.Event{
			Command:   ":NUKE:",
			Args:      []string{string(sn), credential},
			Timestamp: time.Now(),
		})
		return
	}
}

// uploadRecording pushes the exported recording to the web frontend
// when the active backend produced one.
func uploadRecording() {
	uploadable, ok := storageBackend.(storage.Uploadable)
	if !ok || uploadable.GetExportedFilePath() == "" {
		return
	}

	client := api.New(viper.GetString("api.serverUrl"), viper.GetString("api.apiKey"))
	if err := client.Upload(uploadable.GetExportedFilePath(), uploadable.GetExportMetadata()); err != nil {
		logger.Error("Failed to upload recording", "error", err,
			"path", uploadable.GetExportedFilePath())
		return
	}
	logger.Info("Recording uploaded", "path", uploadable.GetExportedFilePath())
}

// writePerformancePoint sends a final performance snapshot to InfluxDB.
func writePerformancePoint(patrolName string) {
	if !viper.GetBool("influx.enabled") {
		return
	}

	influxManager := influx.NewManager(
		zerolog.New(os.Stderr).With().Timestamp().Logger(),
		viper.GetString("influx.backupPath"),
	)
	if err := influxManager.Connect(); err != nil {
		logger.Error("Failed to connect to InfluxDB", "error", err)
		return
	}

	_, perf := monitorService.GetProgramStatus(false, false)
	err := influxManager.WritePoint(context.Background(), "fleet_performance",
		influx.PerformancePoint(patrolName, perf))
	if err != nil {
		logger.Error("Failed to write performance point", "error", err)
	}
}

func checkServerStatus() {
	// check if the web frontend is running via a healthcheck request
	client := api.New(viper.GetString("api.serverUrl"), viper.GetString("api.apiKey"))
	if err := client.Healthcheck(); err != nil {
		logger.Info("Fleet command frontend is offline")
	} else {
		logger.Info("Fleet command frontend is online")
	}
}

func shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := slogManager.Flush(ctx); err != nil {
		logger.Error("Failed to flush logs", "error", err)
	}
	if otelProvider != nil {
		if err := otelProvider.Shutdown(ctx); err != nil {
			logger.Error("Failed to shut down OTel provider", "error", err)
		}
	}
}
