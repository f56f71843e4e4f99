//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/line-rating-service/internal/adapter/kafka"
	"github.com/couchcryptid/line-rating-service/internal/domain"
	"github.com/couchcryptid/line-rating-service/internal/observability"
	"github.com/couchcryptid/line-rating-service/internal/pipeline"
	"github.com/couchcryptid/line-rating-service/internal/powerflow"
	"github.com/couchcryptid/line-rating-service/internal/sweep"
)

const testResultsTopic = "test-contingency-results"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

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

// testCatalog builds a small library where L2's nameplate is far below its
// share of the load, so outaging L1 reliably produces overcapacity records.
func testCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	catalog, err := domain.NewCatalog(
		[]domain.ConductorSpec{{
			Name: "ORIOLE", DiameterIn: 0.741,
			TLoC: 25, RLo: 0.2850 / 5280,
			THiC: 50, RHi: 0.3110 / 5280,
		}},
		[]domain.StaticRating{{
			Conductor: "ORIOLE", MOTC: 75, Amps: 531,
			MVAByKV: map[int]float64{69: 40},
		}},
	)
	require.NoError(t, err)
	return catalog
}

func testNetwork() *domain.Network {
	return &domain.Network{
		Buses: []domain.Bus{
			{Name: "gen", VNomKV: 69, X: 0, Y: 0},
			{Name: "load", VNomKV: 69, X: 10, Y: 0},
		},
		Lines: []domain.Line{
			{Name: "L1", From: "gen", To: "load", Conductor: "ORIOLE", MOTC: 75, ReactancePU: 0.1, Active: true},
			{Name: "L2", From: "gen", To: "load", Conductor: "ORIOLE", MOTC: 75, ReactancePU: 0.1, Active: true},
		},
		Loads:      []domain.Load{{Name: "city", Bus: "load", PSetMW: 50}},
		Generators: []domain.Generator{{Name: "plant", Bus: "gen", PMaxMW: 100}},
	}
}

func testConditions(t *testing.T) domain.Resolved {
	t.Helper()
	cond, err := domain.Conditions{
		AmbientTempC: domain.Opt(25.0),
		WindSpeedFtS: domain.Opt(2.0),
		WindAngleDeg: domain.Opt(90.0),
		ElevationFt:  domain.Opt(1000.0),
		LatitudeDeg:  domain.Opt(27.0),
		Date:         domain.Opt("12 Jun"),
		HourOfDay:    domain.Opt(12.0),
		Emissivity:   domain.Opt(0.8),
		Absorptivity: domain.Opt(0.8),
		Atmosphere:   domain.Opt(domain.AtmosphereClear),
	}.Resolve()
	require.NoError(t, err)
	return cond
}

// TestContingencyReportPublish runs a real N-1 sweep against the DC solver
// and verifies every record round-trips through Kafka with its headers.
func TestContingencyReportPublish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testResultsTopic)

	shape, err := domain.NewLoadShape(4, 17, 0)
	require.NoError(t, err)
	metrics := observability.NewMetricsForTesting()
	evaluator := pipeline.New(testCatalog(t), powerflow.DCSolver{}, shape, discardLogger(), metrics)
	engine := sweep.NewContingency(evaluator, discardLogger(), metrics, 2)

	report, err := engine.Run(ctx, testNetwork(), testConditions(t), nil)
	require.NoError(t, err)
	require.NotEmpty(t, report.Records, "losing either line overloads the survivor")

	writer := kafka.NewWriter([]string{broker}, testResultsTopic, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.PublishReport(ctx, report))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testResultsTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	for range report.Records {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from results topic")

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, report.RunID, headers["run_id"])
		assert.Equal(t, "line", headers["component_type"])
		_, err = time.Parse(time.RFC3339, headers["generated_at"])
		assert.NoError(t, err, "generated_at should be valid RFC3339")

		var rec sweep.Record
		require.NoError(t, json.Unmarshal(msg.Value, &rec))
		assert.Equal(t, string(msg.Key), rec.OutagedComponent)
		assert.True(t, rec.Overcapacity, "surviving line carries the full 50 MW against a 40 MVA nameplate")
		assert.InDelta(t, 50.0, rec.ApparentLoadMVA, 1e-6)
	}

	// No extra messages beyond one per record.
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err = consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no additional messages")
}
