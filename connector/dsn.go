package connector

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// DSNBuilder provides a fluent interface for building URL-style connection strings
type DSNBuilder struct {
	scheme   string
	username string
	password string
	host     string
	port     int
	database string
	params   map[string]string
}

// NewDSNBuilder creates a new DSN builder
func NewDSNBuilder(scheme string) *DSNBuilder {
	return &DSNBuilder{
		scheme: scheme,
		params: make(map[string]string),
	}
}

// Auth sets username and password
func (b *DSNBuilder) Auth(username, password string) *DSNBuilder {
	b.username = username
	b.password = password
	return b
}

// Host sets the host and port
func (b *DSNBuilder) Host(host string, port int) *DSNBuilder {
	b.host = host
	b.port = port
	return b
}

// Database sets the database name, written as the URL path
func (b *DSNBuilder) Database(name string) *DSNBuilder {
	b.database = name
	return b
}

// Param adds a single parameter
func (b *DSNBuilder) Param(key, value string) *DSNBuilder {
	if value != "" {
		b.params[key] = value
	}
	return b
}

// Params adds multiple parameters
func (b *DSNBuilder) Params(params map[string]string) *DSNBuilder {
	for k, v := range params {
		b.Param(k, v)
	}
	return b
}

// Build constructs the final DSN string. Parameters are written in key order.
func (b *DSNBuilder) Build() string {
	u := url.URL{Scheme: b.scheme, Host: b.host}
	if b.port > 0 {
		u.Host = net.JoinHostPort(b.host, strconv.Itoa(b.port))
	}
	if b.username != "" {
		if b.password != "" {
			u.User = url.UserPassword(b.username, b.password)
		} else {
			u.User = url.User(b.username)
		}
	}
	if b.database != "" {
		u.Path = "/" + b.database
	}

	if len(b.params) > 0 {
		keys := make([]string, 0, len(b.params))
		for k := range b.params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var q strings.Builder
		for i, k := range keys {
			if i > 0 {
				q.WriteByte('&')
			}
			q.WriteString(url.QueryEscape(k))
			q.WriteByte('=')
			q.WriteString(url.QueryEscape(b.params[k]))
		}
		u.RawQuery = q.String()
	}
	return u.String()
}

// DSN renders cfg in the format its driver expects.
func DSN(cfg Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	switch cfg.Driver {
	case "pgx", "postgres":
		port := cfg.Port
		if port == 0 {
			port = 5432
		}
		return NewDSNBuilder("postgres").
			Auth(cfg.Username, cfg.Password).
			Host(cfg.Host, port).
			Database(cfg.Database).
			Param("sslmode", cfg.SSLMode).
			Params(cfg.Params).
			Build(), nil

	case "mysql", "tidb":
		port := cfg.Port
		if port == 0 {
			port = 3306
			if cfg.Driver == "tidb" {
				port = 4000
			}
		}
		mc := mysql.NewConfig()
		mc.User = cfg.Username
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
		mc.DBName = cfg.Database
		mc.ParseTime = true
		mc.MultiStatements = true
		if cfg.SSLMode != "" && cfg.SSLMode != "disable" {
			mc.TLSConfig = "true"
		}
		if len(cfg.Params) > 0 {
			mc.Params = make(map[string]string, len(cfg.Params))
			for k, v := range cfg.Params {
				mc.Params[k] = v
			}
		}
		return mc.FormatDSN(), nil

	case "sqlserver":
		port := cfg.Port
		if port == 0 {
			port = 1433
		}
		b := NewDSNBuilder("sqlserver").
			Auth(cfg.Username, cfg.Password).
			Host(cfg.Host, port).
			Param("database", cfg.Database).
			Params(cfg.Params)
		if cfg.SSLMode == "disable" {
			b.Param("encrypt", "disable")
		}
		return b.Build(), nil

	case "sqlite3":
		if len(cfg.Params) == 0 {
			return cfg.Database, nil
		}
		q := url.Values{}
		for k, v := range cfg.Params {
			q.Set(k, v)
		}
		return "file:" + cfg.Database + "?" + q.Encode(), nil
	}
	return "", fmt.Errorf("unsupported driver %q", cfg.Driver)
}
