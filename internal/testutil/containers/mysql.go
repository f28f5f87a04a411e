//go:build integration

package containers

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go/modules/mysql"
)

// MySQLContainer is a disposable MySQL 8 instance for repository tests.
type MySQLContainer struct {
	container *mysql.MySQLContainer
	dsn       string
}

// NewMySQLContainer starts a MySQL container with a fresh agrisense_test
// database and returns it once it accepts connections.
func NewMySQLContainer(ctx context.Context) (*MySQLContainer, error) {
	container, err := mysql.RunContainer(ctx,
		mysql.WithDatabase("agrisense_test"),
		mysql.WithUsername("testuser"),
		mysql.WithPassword("testpass"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start mysql container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "parseTime=true")
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	return &MySQLContainer{container: container, dsn: dsn}, nil
}

// DSN returns a go-sql-driver DSN usable with the mysql GORM driver.
func (c *MySQLContainer) DSN() string {
	return c.dsn
}

// Terminate stops the container.
func (c *MySQLContainer) Terminate(ctx context.Context) error {
	return c.container.Terminate(ctx)
}
