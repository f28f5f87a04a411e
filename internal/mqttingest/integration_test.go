//go:build integration

package mqttingest

import (
	"io"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisense/agrisense-go/internal/conf"
	"github.com/agrisense/agrisense-go/internal/logger"
	"github.com/agrisense/agrisense-go/internal/testutil/containers"
)

// TestConsumerAgainstBroker runs the full broker path: a firmware publisher
// on one side, the consumer feeding the ingestion gateway on the other.
func TestConsumerAgainstBroker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	broker, err := containers.NewMosquittoContainer(t.Context())
	require.NoError(t, err, "failed to start mosquitto")
	t.Cleanup(func() { _ = broker.Terminate(t.Context()) })

	log := logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil)
	settings := conf.MQTTSettings{
		Enabled:        true,
		Broker:         broker.BrokerURL(),
		ClientIDPrefix: "agrisense-test",
		Topic:          "sensores/+/data",
		ConnectTimeout: conf.Duration(30 * time.Second),
		StepTimeout:    conf.Duration(5 * time.Second),
	}

	client, err := Connect(t.Context(), settings, log)
	require.NoError(t, err, "failed to connect consumer")

	consumer, readings, _ := newTestConsumer(t)
	consumer.client = client
	require.NoError(t, consumer.Start(t.Context()))
	t.Cleanup(consumer.Stop)

	pubOpts := mqtt.NewClientOptions().
		AddBroker(broker.BrokerURL()).
		SetClientID("test-publisher")
	publisher := mqtt.NewClient(pubOpts)
	token := publisher.Connect()
	require.True(t, token.WaitTimeout(10*time.Second))
	require.NoError(t, token.Error())
	t.Cleanup(func() { publisher.Disconnect(250) })

	token = publisher.Publish("sensores/esp32-001/data", 1, false,
		`{"temperatura": 40.0, "humedad_suelo": 70}`)
	require.True(t, token.WaitTimeout(10*time.Second))
	require.NoError(t, token.Error())

	require.Eventually(t, func() bool {
		return len(readings.stored) == 1
	}, 10*time.Second, 100*time.Millisecond, "reading was never ingested")

	require.NotNil(t, readings.stored[0].Temperature)
	assert.InDelta(t, 40.0, *readings.stored[0].Temperature, 1e-9)
}
