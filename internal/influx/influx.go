// Package influx exports recorder telemetry to InfluxDB, falling back
// to a gzipped line-protocol file when the server is unreachable.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/subcom/fleet/internal/model"
)

const bucketRetentionSeconds = 60 * 60 * 24 * 90 // 90 days

// DefaultBucketNames are the buckets the recorder writes to.
var DefaultBucketNames = []string{
	"patrol_data",
	"fleet_performance",
}

// Manager owns the InfluxDB client, one async writer per bucket, and
// the backup file used while the server is down.
type Manager struct {
	Client       influxdb2.Client
	Writers      map[string]influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	BucketNames  []string
	Logger       zerolog.Logger
	BackupPath   string
}

// NewManager creates a disconnected manager.
func NewManager(log zerolog.Logger, backupPath string) *Manager {
	return &Manager{
		Writers:     make(map[string]influxdb2_api.WriteAPI),
		BucketNames: DefaultBucketNames,
		Logger:      log,
		BackupPath:  backupPath,
	}
}

// Connect builds the client from the influx.* config keys and pings
// it. An unreachable server is not an error; the manager switches to
// the backup writer instead.
func (m *Manager) Connect() error {
	if !viper.GetBool("influx.enabled") {
		return errors.New("influx.enabled is false")
	}

	serverURL := fmt.Sprintf("%s://%s:%s",
		viper.GetString("influx.protocol"),
		viper.GetString("influx.host"),
		viper.GetString("influx.port"),
	)
	m.Client = influxdb2.NewClientWithOptions(
		serverURL,
		viper.GetString("influx.token"),
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	running, err := m.Client.Ping(context.Background())
	m.IsValid = err == nil && running

	if !m.IsValid {
		if err := m.openBackupWriter(); err != nil {
			return err
		}
		m.Logger.Warn().Msg("InfluxDB client failed to initialize, using backup writer")
		return nil
	}

	if err := m.setupOrganizationAndBuckets(); err != nil {
		return err
	}
	m.CreateWriters()
	m.Logger.Info().Msg("InfluxDB client initialized")
	return nil
}

func (m *Manager) openBackupWriter() error {
	if m.BackupWriter != nil {
		return nil
	}

	m.Logger.Info().Str("backupPath", m.BackupPath).
		Msg("Failed to initialize InfluxDB client, writing to backup file")

	file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %v", err)
	}
	m.BackupWriter = gzip.NewWriter(file)
	return nil
}

func (m *Manager) setupOrganizationAndBuckets() error {
	ctx := context.Background()
	orgName := viper.GetString("influx.org")

	org, err := m.ensureOrganization(ctx, orgName)
	if err != nil {
		return err
	}

	for _, bucket := range m.BucketNames {
		if err := m.ensureBucket(ctx, org, bucket); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) ensureOrganization(ctx context.Context, orgName string) (*domain.Organization, error) {
	org, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err == nil {
		return org, nil
	}

	m.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
	org, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
	if err != nil {
		m.Logger.Error().Err(err).Str("org", orgName).Msg("Error creating organization")
		return nil, err
	}
	return org, nil
}

func (m *Manager) ensureBucket(ctx context.Context, org *domain.Organization, bucket string) error {
	if _, err := m.Client.BucketsAPI().FindBucketByName(ctx, bucket); err == nil {
		return nil
	}

	m.Logger.Info().Str("bucket", bucket).Msg("Bucket not found, creating")
	rule := domain.RetentionRuleTypeExpire
	_, err := m.Client.BucketsAPI().CreateBucketWithName(ctx, org, bucket, domain.RetentionRule{
		Type:         &rule,
		EverySeconds: bucketRetentionSeconds,
	})
	if err != nil {
		m.Logger.Error().Err(err).Str("bucket", bucket).Msg("Error creating bucket")
	}
	return err
}

// CreateWriters opens one async write API per bucket and drains each
// writer's error channel into the log.
func (m *Manager) CreateWriters() {
	orgName := viper.GetString("influx.org")
	for _, bucket := range m.BucketNames {
		writer := m.Client.WriteAPI(orgName, bucket)
		m.Writers[bucket] = writer

		go func(bucketName string, errorsCh <-chan error) {
			for writeErr := range errorsCh {
				m.Logger.Error().Err(writeErr).Str("bucket", bucketName).
					Msg("Error sending data to InfluxDB")
			}
		}(bucket, writer.Errors())

		m.Logger.Trace().Str("bucket", bucket).Msg("InfluxDB writer created")
	}
	m.Logger.Debug().Msg("InfluxDB writers initialized")
}

// WritePoint writes a point through the bucket's writer, or appends
// its line protocol to the backup file when no server is available.
func (m *Manager) WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error {
	if m.IsValid {
		writer, ok := m.Writers[bucket]
		if !ok {
			return fmt.Errorf("influxDB bucket '%s' not registered", bucket)
		}
		writer.WritePoint(point)
		return nil
	}

	if m.BackupWriter == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}
	line := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if _, err := m.BackupWriter.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %s", err)
	}
	return nil
}

// PerformancePoint builds a fleet_performance point from a perf snapshot.
func PerformancePoint(patrolName string, perf model.FleetPerformance) *influxdb2_write.Point {
	return influxdb2_write.NewPointWithMeasurement("recorder_performance").
		AddTag("patrol", patrolName).
		AddField("writequeue_movements", int(perf.WriteQueueLengths.Movements)).
		AddField("writequeue_collisions", int(perf.WriteQueueLengths.Collisions)).
		AddField("writequeue_torpedoes", int(perf.WriteQueueLengths.Torpedoes)).
		AddField("writequeue_sensor_faults", int(perf.WriteQueueLengths.SensorFaults)).
		AddField("writequeue_nuke_attempts", int(perf.WriteQueueLengths.NukeAttempts)).
		AddField("last_write_duration_ms", float64(perf.LastWriteDurationMs)).
		SetTime(perf.Time)
}
