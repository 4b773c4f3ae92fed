package connector

import (
	"context"

	"github.com/Konsultn-Engineering/namedb/dialect"
)

// Provider opens connections for one driver.
type Provider interface {
	Connect(ctx context.Context, config Config) (Connection, error)
	Dialect() dialect.Dialect
}
