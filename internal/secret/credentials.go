package secret

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Port accepts both the numeric form RDS writes into generated secrets and a
// quoted string.
type Port string

func (p *Port) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Port(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("port must be a number or string: %w", err)
	}
	if _, err := strconv.ParseUint(n.String(), 10, 16); err != nil {
		return fmt.Errorf("invalid port %s", n)
	}
	*p = Port(n.String())
	return nil
}

// Credentials is the database connection payload stored in the secret.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     Port   `json:"port"`
	DBName   string `json:"dbname"`
}

// ParseCredentials decodes a secret payload and checks the fields needed to
// build a connection URL.
func ParseCredentials(payload []byte) (Credentials, error) {
	var c Credentials
	if err := json.Unmarshal(payload, &c); err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrMalformedSecret, err)
	}
	if err := c.Validate(); err != nil {
		return Credentials{}, err
	}
	return c, nil
}

func (c Credentials) Validate() error {
	var missing []string
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if c.Host == "" {
		missing = append(missing, "host")
	}
	if c.DBName == "" {
		missing = append(missing, "dbname")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMalformedSecret, strings.Join(missing, ", "))
	}
	return nil
}

// DSN builds a postgres:// URL. An empty port falls back to 5432.
func (c Credentials) DSN(sslMode string) string {
	port := string(c.Port)
	if port == "" {
		port = "5432"
	}
	q := url.Values{}
	if sslMode != "" {
		q.Set("sslmode", sslMode)
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     net.JoinHostPort(c.Host, port),
		Path:     c.DBName,
		RawQuery: q.Encode(),
	}
	return u.String()
}
