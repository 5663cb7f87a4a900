//go:build integration

package main_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/EcoCommute/service-planner/internal/ai"
	"github.com/EcoCommute/service-planner/internal/application"
	plannerEvents "github.com/EcoCommute/service-planner/internal/events"
	"github.com/EcoCommute/service-planner/internal/geo"
	"github.com/EcoCommute/service-planner/internal/kafka"
	"github.com/EcoCommute/service-planner/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// plannerStack holds wired-up planner service components.
type plannerStack struct {
	Service         *application.PlannerService
	Consumer        *plannerEvents.TripEventConsumer
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	// Start PostgreSQL (PostGIS) container with log-based wait strategy.
	pgReq := testcontainers.ContainerRequest{
		Image:        "postgis/postgis:16-3.4-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_planner",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_planner sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	// Enable uuid-ossp and auto-migrate.
	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error)
	require.NoError(t, db.AutoMigrate(
		&repository.PlanModel{},
		&repository.PlaceModel{},
		&repository.FeedbackModel{},
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers, plannerEvents.TopicPlanEvents, plannerEvents.TopicTripEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupPlannerStack wires up the full planner service stack. The geocoder and
// route generator are constructed but never called on the consumer path.
func setupPlannerStack(t *testing.T, db *gorm.DB, brokers []string) *plannerStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	planRepo := repository.NewGormPlanRepository(db)
	producer := kafka.NewProducer(brokers, logger)

	geocoder, err := geo.NewGoogleGeocoder("test-key", "in", time.Minute, logger)
	require.NoError(t, err, "failed to build geocoder")
	generator := ai.NewClient("http://127.0.0.1:1", "test-key", "gpt-4o-mini", 0.2, 2*time.Second, logger)

	plannerSvc := application.NewPlannerService(planRepo, generator, geocoder, producer, "INR", logger)

	groupID := fmt.Sprintf("test-planner-%s", uuid.New().String()[:8])
	consumer := plannerEvents.NewTripEventConsumer(brokers, groupID, plannerSvc, logger)

	return &plannerStack{
		Service:         plannerSvc,
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedPlanInReadyState inserts a plan in "ready" state with two route options.
func seedPlanInReadyState(t *testing.T, db *gorm.DB, planID, commuterID uuid.UUID) {
	t.Helper()
	now := time.Now().UTC()

	query, _ := json.Marshal(map[string]interface{}{
		"origin": "Indiranagar", "destination": "Whitefield", "city": "Bengaluru",
	})
	origin, _ := json.Marshal(map[string]interface{}{
		"lat": 12.9719, "lng": 77.6412, "label": "Indiranagar, Bengaluru", "place_id": "ChIJtest1",
	})
	destination, _ := json.Marshal(map[string]interface{}{
		"lat": 12.9698, "lng": 77.7500, "label": "Whitefield, Bengaluru", "place_id": "ChIJtest2",
	})
	baseline, _ := json.Marshal(map[string]interface{}{
		"total_duration_minutes": 55.0, "total_cost_currency": 180.0, "co2_emitted_kg": 3.4,
	})
	routes, _ := json.Marshal([]map[string]interface{}{
		{
			"id": "r1", "title": "Metro + Walk",
			"total_duration_minutes": 35.0, "total_cost_currency": 40.0,
			"co2_emitted_kg": 0.4, "time_saved_minutes": 20.0,
			"money_saved_currency": 140.0, "co2_saved_kg": 3.0,
			"score": 88.0, "tags": []string{"Fastest"},
			"steps": []map[string]interface{}{
				{"mode": "walk", "instruction": "Walk to Indiranagar metro station", "duration_minutes": 8.0},
				{"mode": "metro", "instruction": "Purple Line towards Whitefield", "duration_minutes": 27.0},
			},
		},
		{
			"id": "r2", "title": "Bus Direct",
			"total_duration_minutes": 50.0, "total_cost_currency": 15.0,
			"co2_emitted_kg": 0.9, "time_saved_minutes": 5.0,
			"money_saved_currency": 165.0, "co2_saved_kg": 2.5,
			"score": 74.0, "tags": []string{"Cheapest"},
			"steps": []map[string]interface{}{
				{"mode": "bus", "instruction": "Route 335E to Whitefield", "duration_minutes": 50.0},
			},
		},
	})

	model := repository.PlanModel{
		ID:               planID,
		PlanNumber:       fmt.Sprintf("CP-INT%s", uuid.New().String()[:4]),
		CommuterID:       commuterID,
		Status:           "ready",
		Query:            query,
		OriginPoint:      origin,
		DestinationPoint: destination,
		CarBaseline:      baseline,
		Currency:         "INR",
		Routes:           routes,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed plan")
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForPlanStatus polls the trip_plans table until the status matches.
func waitForPlanStatus(t *testing.T, db *gorm.DB, planID uuid.UUID, expectedStatus string, timeout time.Duration) repository.PlanModel {
	t.Helper()
	var result repository.PlanModel
	require.Eventually(t, func() bool {
		var model repository.PlanModel
		err := db.Where("id = ?", planID).First(&model).Error
		if err != nil {
			return false
		}
		if model.Status == expectedStatus {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "plan did not transition to %s", expectedStatus)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
