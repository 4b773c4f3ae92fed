package connector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{
			name: "postgres",
			cfg: Config{Driver: "pgx", Host: "db", Database: "app", Username: "u", Password: "p@ss",
				SSLMode: "disable", Params: map[string]string{"application_name": "namedb"}},
			want: "postgres://u:p%40ss@db:5432/app?application_name=namedb&sslmode=disable",
		},
		{
			name: "lib pq shares the url form",
			cfg:  Config{Driver: "postgres", Host: "db", Port: 6432, Database: "app"},
			want: "postgres://db:6432/app",
		},
		{
			name: "sqlserver",
			cfg:  Config{Driver: "sqlserver", Host: "db", Database: "app", Username: "sa", Password: "x", SSLMode: "disable"},
			want: "sqlserver://sa:x@db:1433?database=app&encrypt=disable",
		},
		{
			name: "sqlite path",
			cfg:  Config{Driver: "sqlite3", Database: ":memory:"},
			want: ":memory:",
		},
		{
			name: "sqlite with params",
			cfg:  Config{Driver: "sqlite3", Database: "app.db", Params: map[string]string{"_fk": "1", "cache": "shared"}},
			want: "file:app.db?_fk=1&cache=shared",
		},
		{name: "missing host", cfg: Config{Driver: "mysql"}, wantErr: true},
		{name: "bad port", cfg: Config{Driver: "pgx", Host: "db", Port: 70000}, wantErr: true},
		{name: "unknown driver", cfg: Config{Driver: "oracle", Host: "db"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DSN(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	tests := []struct {
		driver string
		port   int
		addr   string
	}{
		{driver: "mysql", addr: "db:3306"},
		{driver: "tidb", addr: "db:4000"},
		{driver: "mysql", port: 3307, addr: "db:3307"},
	}

	for _, tt := range tests {
		t.Run(tt.driver+"/"+tt.addr, func(t *testing.T) {
			dsn, err := DSN(Config{Driver: tt.driver, Host: "db", Port: tt.port, Database: "app",
				Username: "u", Password: "p", Params: map[string]string{"charset": "utf8mb4"}})
			require.NoError(t, err)

			mc, err := mysql.ParseDSN(dsn)
			require.NoError(t, err)
			assert.Equal(t, "tcp", mc.Net)
			assert.Equal(t, tt.addr, mc.Addr)
			assert.Equal(t, "app", mc.DBName)
			assert.Equal(t, "u", mc.User)
			assert.Equal(t, "p", mc.Passwd)
			assert.True(t, mc.ParseTime)
			assert.True(t, mc.MultiStatements)
		})
	}
}

func TestRetryConnect(t *testing.T) {
	boom := errors.New("refused")

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		got, err := retryConnect(context.Background(), &RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond},
			func(context.Context) (int, error) {
				calls++
				if calls < 3 {
					return 0, boom
				}
				return 7, nil
			})
		require.NoError(t, err)
		assert.Equal(t, 7, got)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		_, err := retryConnect(context.Background(), &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
			func(context.Context) (int, error) {
				calls++
				return 0, boom
			})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 3, calls)
	})

	t.Run("no retry config", func(t *testing.T) {
		calls := 0
		_, err := retryConnect(context.Background(), nil, func(context.Context) (int, error) {
			calls++
			return 0, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("context canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := retryConnect(ctx, &RetryConfig{MaxRetries: 5, BaseDelay: time.Hour},
			func(context.Context) (int, error) { return 0, boom })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDriversRegistered(t *testing.T) {
	assert.Equal(t, []string{"mysql", "pgx", "postgres", "sqlite3", "sqlserver", "tidb"}, Drivers())
}

func TestOpenSQLite(t *testing.T) {
	conn, err := Open(context.Background(), Config{
		Driver:         "sqlite3",
		Database:       ":memory:",
		Pool:           PoolConfig{MaxOpen: 1},
		ConnectTimeout: time.Second,
	})
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "sqlite", conn.Dialect().Name())
	require.NoError(t, conn.Health(context.Background()))
	assert.Equal(t, 1, conn.Stats().OpenConnections)

	stmt, err := conn.Conn(zap.NewNop(), nil).Prepare(context.Background(), "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, stmt.Execute(context.Background()))
	require.NoError(t, stmt.Close())
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "db2", Host: "h"})
	assert.Error(t, err)
}
