package sitedb

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-mysql-org/go-mysql/client"
)

// MySQL is a DB backed by a single go-mysql client connection.
type MySQL struct {
	mu    sync.Mutex
	conn  *client.Conn
	table string
}

// MySQLConfig is a parsed MySQL DSN.
type MySQLConfig struct {
	User     string
	Password string
	Addr     string
	DBName   string
}

// ParseMySQLDSN parses "user:password@host:port/dbname". The port defaults
// to 3306.
func ParseMySQLDSN(dsn string) (MySQLConfig, error) {
	var c MySQLConfig

	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return c, fmt.Errorf("sitedb: dsn %q: missing user@host", redactDSN(dsn))
	}
	creds, rest := dsn[:at], dsn[at+1:]
	c.User, c.Password, _ = strings.Cut(creds, ":")

	host, db, ok := strings.Cut(rest, "/")
	if !ok || db == "" {
		return c, fmt.Errorf("sitedb: dsn %q: missing database name", redactDSN(dsn))
	}
	if i := strings.IndexByte(db, '?'); i >= 0 {
		db = db[:i]
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "tcp("), ")")
	if host == "" {
		host = "127.0.0.1"
	}
	if !strings.Contains(host, ":") {
		host += ":3306"
	}
	c.Addr = host
	c.DBName = db
	if c.User == "" {
		return c, fmt.Errorf("sitedb: dsn %q: missing user", redactDSN(dsn))
	}
	return c, nil
}

func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return dsn
	}
	user, _, _ := strings.Cut(dsn[:at], ":")
	return user + ":***" + dsn[at:]
}

// OpenMySQL connects to a MySQL or MariaDB server.
func OpenMySQL(ctx context.Context, dsn, prefix string) (*MySQL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := optionsTable(prefix)
	if err != nil {
		return nil, err
	}
	c, err := ParseMySQLDSN(dsn)
	if err != nil {
		return nil, err
	}

	conn, err := client.Connect(c.Addr, c.User, c.Password, c.DBName)
	if err != nil {
		return nil, fmt.Errorf("sitedb: connect %s: %w", c.Addr, err)
	}
	return &MySQL{conn: conn, table: table}, nil
}

func (m *MySQL) Option(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	res, err := m.conn.Execute(mysqlDialect.selectOption(m.table), name)
	if err != nil {
		return "", false, fmt.Errorf("sitedb: read option %q: %w", name, err)
	}
	if res.Resultset == nil || res.RowNumber() == 0 {
		return "", false, nil
	}
	v, err := res.GetString(0, 0)
	if err != nil {
		return "", false, fmt.Errorf("sitedb: read option %q: %w", name, err)
	}
	return v, true, nil
}

func (m *MySQL) DeleteOption(ctx context.Context, name string) (int64, error) {
	return m.exec(ctx, mysqlDialect.deleteOption(m.table), name)
}

func (m *MySQL) DeleteOptionsLike(ctx context.Context, patterns, excludes []string) (int64, error) {
	if len(patterns) == 0 {
		return 0, nil
	}
	q, args := mysqlDialect.deleteLike(m.table, patterns, excludes)
	return m.exec(ctx, q, args...)
}

func (m *MySQL) exec(ctx context.Context, q string, args ...any) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	res, err := m.conn.Execute(q, args...)
	if err != nil {
		return 0, fmt.Errorf("sitedb: %w", err)
	}
	return int64(res.AffectedRows), nil
}

func (m *MySQL) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn.Close()
}
