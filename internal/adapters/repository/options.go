package repository

import "time"

// PostgresOption applies a configuration option to the PostgresStore.
type PostgresOption func(*PostgresStore)

// WithMaxOpenConns caps open connections.
func WithMaxOpenConns(n int) PostgresOption {
	return func(s *PostgresStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}

// WithMaxIdleConns caps idle connections.
func WithMaxIdleConns(n int) PostgresOption {
	return func(s *PostgresStore) {
		if n > 0 {
			s.maxIdleConns = n
		}
	}
}

// WithConnMaxLifetime bounds how long a connection is reused.
func WithConnMaxLifetime(d time.Duration) PostgresOption {
	return func(s *PostgresStore) {
		if d > 0 {
			s.connMaxLifetime = d
		}
	}
}

// WithPingTimeout bounds the connectivity check done on open.
func WithPingTimeout(d time.Duration) PostgresOption {
	return func(s *PostgresStore) {
		if d > 0 {
			s.pingTimeout = d
		}
	}
}
