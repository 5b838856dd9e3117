//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/sea-ice-etl/internal/adapter/netcdf"
	"github.com/couchcryptid/sea-ice-etl/internal/config"
	"github.com/couchcryptid/sea-ice-etl/internal/domain"
)

const kafkaImage = "confluentinc/confluent-local:7.5.0"

// startKafka runs a single-node KRaft broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	kc, err := tckafka.Run(ctx, kafkaImage, tckafka.WithClusterID("sea-ice-test"))
	testcontainers.CleanupContainer(t, kc)
	require.NoError(t, err, "start kafka container")

	brokers, err := kc.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig returns defaults pointed at broker, rendering small images.
func testConfig(broker, groupID, outputDir string) *config.Config {
	cfg := config.Default()
	cfg.Kafka.Brokers = []string{broker}
	cfg.Kafka.SourceTopic = testSourceTopic
	cfg.Kafka.SinkTopic = testSinkTopic
	cfg.Kafka.GroupID = groupID
	cfg.Service.BatchFlushInterval = 5 * time.Second
	cfg.Dataset.OutputDir = outputDir
	cfg.Render.DPI = 40
	cfg.Render.WidthInches = 3
	cfg.Render.HeightInches = 3
	return &cfg
}

// writeDataset writes a 3x3 polar fixture stamped with the given YYYYMMDD
// date and returns its path. Two of the nine cells are invalid.
func writeDataset(t *testing.T, dir, stamp string) string {
	t.Helper()
	field := func(data ...float64) domain.Field {
		f, err := domain.NewField(3, 3, data)
		require.NoError(t, err)
		return f
	}
	path := filepath.Join(dir, "ice_conc_nh_polstere-100_multi_"+stamp+"1200.nc")
	require.NoError(t, netcdf.WriteFixture(path, netcdf.Fixture{
		Lat:   field(78, 79, 78, 79, 89.9, 79, 78, 79, 78),
		Lon:   field(-135, 180, 135, -90, 0, 90, -45, 0, 45),
		Steps: []domain.Field{field(0, 15.5, domain.Missing, 40, 100, 60, -9999, 80, 99.99)},
	}))
	return path
}
