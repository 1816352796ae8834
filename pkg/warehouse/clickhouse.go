// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package warehouse

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// ClickHouseConfig holds connection settings for the ClickHouse warehouse.
type ClickHouseConfig struct {
	// Host is the ClickHouse server host
	Host string

	// Port is the native-protocol port (default: 9440 with TLS, 9000 without)
	Port int

	// Database is the default database
	Database string

	// Username for authentication
	Username string

	// Password for authentication
	Password string

	// TLS enables an encrypted connection
	TLS bool

	// CAFile is an optional CA certificate for TLS verification. When TLS is
	// on and no CA file is given, server verification is skipped so the
	// bridge can still reach warehouses with private certificates.
	CAFile string

	// DialTimeout bounds connection establishment (default: 10s)
	DialTimeout time.Duration

	// ReadTimeout bounds query execution (default: 5m)
	ReadTimeout time.Duration
}

type clickhouseQuerier struct {
	conn driver.Conn
}

// NewClickHouseQuerier opens a native-protocol connection to ClickHouse.
func NewClickHouseQuerier(cfg ClickHouseConfig) (Querier, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("clickhouse host is required")
	}
	if cfg.Port == 0 {
		if cfg.TLS {
			cfg.Port = 9440
		} else {
			cfg.Port = 9000
		}
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 5 * time.Minute
	}

	opts := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: cfg.DialTimeout,
		ReadTimeout: cfg.ReadTimeout,
	}
	if cfg.TLS {
		tlsConfig := &tls.Config{}
		if cfg.CAFile != "" {
			pem, err := os.ReadFile(cfg.CAFile)
			if err != nil {
				return nil, fmt.Errorf("read CA file: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(pem) {
				return nil, fmt.Errorf("no certificates found in %s", cfg.CAFile)
			}
			tlsConfig.RootCAs = pool
		} else {
			tlsConfig.InsecureSkipVerify = true
		}
		opts.TLS = tlsConfig
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open clickhouse connection: %w", err)
	}
	return &clickhouseQuerier{conn: conn}, nil
}

func (c *clickhouseQuerier) Query(ctx context.Context, sql string) (Rows, error) {
	rows, err := c.conn.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	types := rows.ColumnTypes()
	cols := make([]ColumnMeta, len(types))
	scanTypes := make([]reflect.Type, len(types))
	for i, t := range types {
		cols[i] = ColumnMeta{Name: t.Name(), DatabaseType: t.DatabaseTypeName()}
		scanTypes[i] = t.ScanType()
	}
	return &clickhouseRows{rows: rows, cols: cols, scanTypes: scanTypes}, nil
}

func (c *clickhouseQuerier) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *clickhouseQuerier) Close() error {
	return c.conn.Close()
}

type clickhouseRows struct {
	rows      driver.Rows
	cols      []ColumnMeta
	scanTypes []reflect.Type
	err       error
}

func (r *clickhouseRows) Columns() []ColumnMeta { return r.cols }

func (r *clickhouseRows) Next() ([]interface{}, bool) {
	if !r.rows.Next() {
		return nil, false
	}
	dest := make([]interface{}, len(r.scanTypes))
	for i, st := range r.scanTypes {
		dest[i] = reflect.New(st).Interface()
	}
	if err := r.rows.Scan(dest...); err != nil {
		r.err = err
		return nil, false
	}
	values := make([]interface{}, len(dest))
	for i, d := range dest {
		values[i] = reflect.ValueOf(d).Elem().Interface()
	}
	return values, true
}

func (r *clickhouseRows) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Err()
}

func (r *clickhouseRows) Close() error {
	return r.rows.Close()
}
