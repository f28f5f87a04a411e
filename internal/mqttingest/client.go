// Package mqttingest is the broker-side ingestion transport. It subscribes to
// the firmware data topics and feeds messages into the ingestion gateway,
// fire-and-forget: a processing failure is logged and the message is consumed
// regardless, so a poison message can never wedge the subscription.
package mqttingest

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/agrisense/agrisense-go/internal/conf"
	"github.com/agrisense/agrisense-go/internal/logger"
)

const (
	connectRetries    = 5
	disconnectQuiesce = 250 // milliseconds handed to paho on disconnect
)

// Connect establishes the broker connection, retrying with exponential
// backoff. The client auto-reconnects after transient broker outages and is
// disconnected when ctx is cancelled.
func Connect(ctx context.Context, cfg conf.MQTTSettings, log logger.Logger) (mqtt.Client, error) {
	clientID := fmt.Sprintf("%s-%s", cfg.ClientIDPrefix, uuid.NewString())

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(cfg.ConnectTimeout.Std())
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		log.Info("connected to mqtt broker", logger.String("broker", cfg.Broker))
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn("mqtt connection lost", logger.Error(err))
	})

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = cfg.ConnectTimeout.Std()

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			log.Warn("mqtt connect attempt failed", logger.Error(token.Error()))
			return token.Error()
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, connectRetries-1), ctx))
	if err != nil {
		return nil, fmt.Errorf("could not establish mqtt connection: %w", err)
	}

	go func() {
		<-ctx.Done()
		client.Disconnect(disconnectQuiesce)
		log.Info("mqtt connection closed")
	}()

	return client, nil
}

// waitWithTimeout waits for a paho token, bounding the wait.
func waitWithTimeout(token mqtt.Token, d time.Duration) error {
	if !token.WaitTimeout(d) {
		return fmt.Errorf("mqtt operation timed out after %s", d)
	}
	return token.Error()
}
