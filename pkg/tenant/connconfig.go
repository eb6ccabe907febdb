package tenant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

const (
	DefaultPort   = 5432
	DefaultSchema = "public"
)

// ConnConfig describes how to reach one tenant database. It is a plain
// comparable value; a changed config always means a new pool.
//
// The JSON form is the x-tenant-db-config wire format.
type ConnConfig struct {
	Host     string `json:"host"`
	Database string `json:"database"`
	Schema   string `json:"schema"`
	User     string `json:"user"`
	Password string `json:"password"`
	Port     int    `json:"port"`
}

// NewConnConfig validates and normalizes connection settings: a zero port
// becomes 5432 and the schema is reduced to [A-Za-z0-9_], defaulting to "public".
func NewConnConfig(host, database, schema, user, password string, port int) (ConnConfig, error) {
	cfg := ConnConfig{
		Host:     strings.TrimSpace(host),
		Database: strings.TrimSpace(database),
		Schema:   SanitizeSchema(schema),
		User:     strings.TrimSpace(user),
		Password: password,
		Port:     port,
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}

	var missing []string
	if cfg.Host == "" {
		missing = append(missing, "host")
	}
	if cfg.Database == "" {
		missing = append(missing, "database")
	}
	if cfg.User == "" {
		missing = append(missing, "user")
	}
	if len(missing) > 0 {
		return ConnConfig{}, errors.Join(ErrInvalidConfig, fmt.Errorf("missing %s", strings.Join(missing, ", ")))
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return ConnConfig{}, errors.Join(ErrInvalidConfig, fmt.Errorf("port %d out of range", cfg.Port))
	}

	return cfg, nil
}

// ParseConnConfig decodes the x-tenant-db-config JSON object. Decoding is
// strict: unknown fields, trailing data and missing host, database, user or
// password keys are errors. Port may be a number or a numeric string.
func ParseConnConfig(data []byte) (ConnConfig, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var w wireConfig
	if err := dec.Decode(&w); err != nil {
		return ConnConfig{}, errors.Join(ErrInvalidConfig, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return ConnConfig{}, errors.Join(ErrInvalidConfig, errors.New("trailing data after config object"))
	}
	if w.Password == nil {
		return ConnConfig{}, errors.Join(ErrInvalidConfig, errors.New("missing password"))
	}

	return NewConnConfig(deref(w.Host), deref(w.Database), deref(w.Schema), deref(w.User), *w.Password, int(w.Port))
}

// ConnString renders a pgx keyword/value connection string. The schema is
// passed as a search_path startup option after sanitizing.
func (c ConnConfig) ConnString() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s options=%s",
		quoteValue(c.Host),
		c.Port,
		quoteValue(c.Database),
		quoteValue(c.User),
		quoteValue(c.Password),
		quoteValue("-c search_path="+SanitizeSchema(c.Schema)),
	)
}

// Redacted returns a copy safe to print.
func (c ConnConfig) Redacted() ConnConfig {
	if c.Password != "" {
		c.Password = "[redacted]"
	}
	return c
}

// String never includes the password.
func (c ConnConfig) String() string {
	return fmt.Sprintf("%s@%s:%d/%s?schema=%s", c.User, c.Host, c.Port, c.Database, c.Schema)
}

// LogValue implements slog.LogValuer without the password.
func (c ConnConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("host", c.Host),
		slog.Int("port", c.Port),
		slog.String("database", c.Database),
		slog.String("schema", c.Schema),
		slog.String("user", c.User),
	)
}

// SanitizeSchema drops every character outside [A-Za-z0-9_].
// An empty result falls back to "public".
func SanitizeSchema(schema string) string {
	var b strings.Builder
	b.Grow(len(schema))
	for i := 0; i < len(schema); i++ {
		c := schema[i]
		if c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			b.WriteByte(c)
		}
	}
	if b.Len() == 0 {
		return DefaultSchema
	}
	return b.String()
}

type wireConfig struct {
	Host     *string  `json:"host"`
	Database *string  `json:"database"`
	Schema   *string  `json:"schema"`
	User     *string  `json:"user"`
	Password *string  `json:"password"`
	Port     wirePort `json:"port"`
}

// wirePort accepts 5432, "5432", "" and null.
type wirePort int

func (p *wirePort) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = 0
		return nil
	}

	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*p = wirePort(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("port: expected number or numeric string, got %s", b)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*p = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("port: %w", err)
	}
	*p = wirePort(n)
	return nil
}

var valueEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quoteValue(v string) string {
	return "'" + valueEscaper.Replace(v) + "'"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
