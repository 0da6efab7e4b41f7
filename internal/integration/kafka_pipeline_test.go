//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/aloft-etl/internal/adapter/kafka"
	"github.com/couchcryptid/aloft-etl/internal/alerts"
	"github.com/couchcryptid/aloft-etl/internal/config"
	"github.com/couchcryptid/aloft-etl/internal/domain"
	"github.com/couchcryptid/aloft-etl/internal/forecast"
	"github.com/couchcryptid/aloft-etl/internal/observability"
	"github.com/couchcryptid/aloft-etl/internal/pipeline"
	"github.com/couchcryptid/aloft-etl/internal/windsaloft"
)

const (
	testSourceTopic = "test-raw-aloft-feeds"
	testSinkTopic   = "test-aloft-reports"
)

var testProfile = forecast.Profile{
	Model:          "gfs_seamless",
	PressureLevels: []int{850, 700},
	HeightLevels:   []int{80},
	ForecastDays:   1,
}

// sinkMessage holds a message read back from the sink topic.
type sinkMessage struct {
	Key     string
	Value   []byte
	Headers map[string]string
}

func readSink(ctx context.Context, t *testing.T, consumer *kafkago.Reader) sinkMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return sinkMessage{Key: string(msg.Key), Value: msg.Value, Headers: headers}
}

func testConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}
}

func newTransformer(metrics *observability.Metrics) *pipeline.AloftTransformer {
	assembler := windsaloft.New(nil, nil, testProfile, discardLogger(), metrics)
	return pipeline.NewTransformer(assembler, discardLogger(), metrics)
}

func sinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

func griddedPayload(t *testing.T, at time.Time) []byte {
	t.Helper()
	one := func(v float64) []*float64 { return []*float64{&v} }
	env := pipeline.Envelope{
		Kind:      domain.FeedGridded,
		Latitude:  46.73,
		Longitude: -117.0,
		Gridded: &forecast.GriddedResponse{
			Latitude:  46.73,
			Longitude: -117.0,
			Elevation: 780,
			Hourly: forecast.Hourly{
				Time: []time.Time{at},
				Series: map[string][]*float64{
					forecast.VarTemperature2m:    one(20),
					forecast.VarDewpoint2m:       one(9),
					forecast.VarSurfacePressure:  one(925),
					forecast.VarWindSpeed10m:     one(12),
					forecast.VarWindDirection10m: one(240),
					forecast.VarCAPE:             one(250),
					"temperature_80m":            one(19),
					"wind_speed_80m":             one(18),
					"wind_direction_80m":         one(245),
					"temperature_850hPa":         one(16),
					"relative_humidity_850hPa":   one(45),
					"wind_speed_850hPa":          one(25),
					"wind_direction_850hPa":      one(250),
					"geopotential_height_850hPa": one(1520),
					"temperature_700hPa":         one(4),
					"relative_humidity_700hPa":   one(40),
					"wind_speed_700hPa":          one(40),
					"wind_direction_700hPa":      one(260),
					"geopotential_height_700hPa": one(3100),
				},
			},
		},
	}
	data, err := json.Marshal(env)
	require.NoError(t, err)
	return data
}

func alertsPayload(t *testing.T, now time.Time) []byte {
	t.Helper()
	ends := now.Add(6 * time.Hour)
	env := pipeline.Envelope{
		Kind:      domain.FeedAlerts,
		Latitude:  46.73,
		Longitude: -117.0,
		Alerts: &alerts.Snapshot{
			Weather: []alerts.WeatherAlert{
				{Identifier: "urn:wind", Event: "Wind Advisory", Headline: "Wind Advisory", Level: alerts.SeverityModerate, Onset: now.Add(-time.Hour), Ends: &ends},
			},
		},
	}
	data, err := json.Marshal(env)
	require.NoError(t, err)
	return data
}

// TestKafkaReaderWriter verifies kafka.Reader and kafka.Writer round-trip a
// gridded envelope through the transformer.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-reader")

	hour := time.Date(2025, 6, 14, 15, 0, 0, 0, time.UTC)
	payload := griddedPayload(t, hour)

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte("pullman"),
		Value: payload,
		Time:  hour,
	}))

	// The consumer group may need time to rebalance before partitions are assigned.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawEvent
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("pullman"), raw.Key)
	assert.Equal(t, payload, raw.Value)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit)
	require.NoError(t, raw.Commit(ctx))

	out, err := newTransformer(observability.NewMetricsForTesting()).Transform(ctx, raw)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.LoadBatch(ctx, []domain.OutputEvent{out}))

	msg := readSink(ctx, t, sinkConsumer(t, broker))
	assert.Equal(t, "46.7300,-117.0000", msg.Key)
	assert.Equal(t, "gridded", msg.Headers["kind"])
	_, err = time.Parse(time.RFC3339, msg.Headers["processed_at"])
	assert.NoError(t, err, "processed_at should be valid RFC3339")

	var report domain.WindsAloftReport
	require.NoError(t, json.Unmarshal(msg.Value, &report))
	assert.Equal(t, domain.SourceGridded, report.Source)
	require.Len(t, report.Hours, 1)
	assert.Equal(t, hour, report.Hours[0].Timestamp)
	assert.NoError(t, report.Validate())
}

// TestPipelineEndToEnd runs Reader, Transformer and Writer together against
// real Kafka with a mix of feed kinds.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-pipeline")

	now := time.Now().UTC()
	base := now.Truncate(time.Hour)
	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })

	msgs := []kafkago.Message{{Key: []byte("alerts"), Value: alertsPayload(t, now), Time: now}}
	for i := range 3 {
		hour := base.Add(time.Duration(i) * time.Hour)
		msgs = append(msgs, kafkago.Message{Key: []byte(fmt.Sprintf("gridded-%d", i)), Value: griddedPayload(t, hour), Time: hour})
	}
	require.NoError(t, producer.WriteMessages(ctx, msgs...))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, newTransformer(metrics), writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)
	kinds := map[string]int{}
	for range msgs {
		msg := readSink(ctx, t, consumer)
		kinds[msg.Headers["kind"]]++

		switch msg.Headers["kind"] {
		case "alerts":
			var set struct {
				Alerts []struct {
					ID     string `json:"id"`
					Unread bool   `json:"unread"`
				} `json:"alerts"`
			}
			require.NoError(t, json.Unmarshal(msg.Value, &set))
			require.Len(t, set.Alerts, 1)
			assert.Equal(t, "urn:wind", set.Alerts[0].ID)
			assert.True(t, set.Alerts[0].Unread)
		case "gridded":
			var report domain.WindsAloftReport
			require.NoError(t, json.Unmarshal(msg.Value, &report))
			assert.NoError(t, report.Validate())
		}
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	assert.Equal(t, 1, kinds["alerts"])
	assert.Equal(t, 3, kinds["gridded"])
	assert.True(t, p.Ready())
}

// TestPipelineTransformError verifies a poison pill is skipped and the
// pipeline keeps processing valid envelopes.
func TestPipelineTransformError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-poison")

	now := time.Now().UTC()
	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{"), Time: now},
		kafkago.Message{Key: []byte("empty-sounding"), Value: []byte(`{"kind":"sounding","soundings":[]}`), Time: now},
		kafkago.Message{Key: []byte("good"), Value: alertsPayload(t, now), Time: now},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, newTransformer(metrics), writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)
	msg := readSink(ctx, t, consumer)
	assert.Equal(t, "alerts", msg.Headers["kind"])

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
