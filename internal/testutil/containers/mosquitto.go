//go:build integration

package containers

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// MosquittoContainer is a disposable Eclipse Mosquitto broker that allows
// anonymous connections.
type MosquittoContainer struct {
	container  testcontainers.Container
	brokerURL  string
	configFile string
}

// anonymousConfig lets tests connect without credentials.
const anonymousConfig = `listener 1883
allow_anonymous true
`

// NewMosquittoContainer starts a Mosquitto broker and waits until it accepts
// connections.
func NewMosquittoContainer(ctx context.Context) (*MosquittoContainer, error) {
	configFile, err := writeTempConfig()
	if err != nil {
		return nil, err
	}

	req := testcontainers.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		Cmd:          []string{"mosquitto", "-c", "/mosquitto-test.conf"},
		Files: []testcontainers.ContainerFile{
			{
				HostFilePath:      configFile,
				ContainerFilePath: "/mosquitto-test.conf",
				FileMode:          0o644,
			},
		},
		WaitingFor: wait.ForLog("mosquitto version").
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		_ = os.Remove(configFile)
		return nil, fmt.Errorf("failed to start mosquitto container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		_ = os.Remove(configFile)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "1883")
	if err != nil {
		_ = container.Terminate(ctx)
		_ = os.Remove(configFile)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	return &MosquittoContainer{
		container:  container,
		brokerURL:  fmt.Sprintf("tcp://%s", net.JoinHostPort(host, strconv.Itoa(port.Int()))),
		configFile: configFile,
	}, nil
}

// BrokerURL returns the broker address, e.g. "tcp://localhost:32771".
func (c *MosquittoContainer) BrokerURL() string {
	return c.brokerURL
}

// Terminate stops the container and removes the temp config.
func (c *MosquittoContainer) Terminate(ctx context.Context) error {
	if c.configFile != "" {
		_ = os.Remove(c.configFile)
	}
	return c.container.Terminate(ctx)
}

func writeTempConfig() (string, error) {
	tmp, err := os.CreateTemp("", "mosquitto-*.conf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp mosquitto config: %w", err)
	}
	if _, err := tmp.WriteString(anonymousConfig); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write mosquitto config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
