package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

const terminationBackoff = 500 * time.Millisecond

// IsConnectionTerminated reports whether err means the server dropped the
// connection underneath the query (admin shutdown, crash, failover).
func IsConnectionTerminated(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "57P01", "57P02", "57P03":
			return true
		}
		if strings.HasPrefix(pgErr.Code, "08") {
			return true
		}
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "db_termination") || strings.Contains(msg, "terminating connection")
}

// ReadWithRetry runs a read-only fn and, if the connection was terminated,
// runs it exactly once more after a fixed backoff. Never use it around a
// transaction or any statement with side effects.
func ReadWithRetry(ctx context.Context, log *logger.Logger, op string, fn func() error) error {
	return readWithRetry(ctx, log, op, terminationBackoff, fn)
}

func readWithRetry(ctx context.Context, log *logger.Logger, op string, backoff time.Duration, fn func() error) error {
	err := fn()
	if !IsConnectionTerminated(err) {
		return err
	}
	if log != nil {
		log.Warn("retrying read after connection termination", "op", op, "error", err)
	}
	t := time.NewTimer(backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return errors.Join(err, ctx.Err())
	case <-t.C:
	}
	return fn()
}
