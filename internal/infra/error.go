package infra

import (
	"context"
	"log/slog"

	"parking-hold-engine/internal/pkg/errs"
)

type RepositoryErrorKind string

// Infrastructure-specific error kinds
const (
	KindNotFound           RepositoryErrorKind = "NOT_FOUND"
	KindDBFailure          RepositoryErrorKind = "DB_FAILURE"
	KindDuplicateKey       RepositoryErrorKind = "DUPLICATE_KEY"
	KindForeignKeyViolated RepositoryErrorKind = "FOREIGN_KEY_VIOLATED"
	// The caller's context ended while the statement or a slot lock was pending
	KindCanceled RepositoryErrorKind = "CANCELED"
)

type RepositoryError struct {
	Kind RepositoryErrorKind
	msg  string
	err  error
}

func (e RepositoryError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e RepositoryError) Unwrap() error {
	return e.err
}

// WrapRepoErr classifies and logs a storage failure. A DB_FAILURE caused by context cancellation is
// reported as CANCELED so that an abandoned request is not logged as a storage outage.
func WrapRepoErr(logger *slog.Logger, kind RepositoryErrorKind, msg string, err error) error {
	if kind == KindDBFailure && (errs.Is(err, context.Canceled) || errs.Is(err, context.DeadlineExceeded)) {
		kind = KindCanceled
	}

	attrs := []any{slog.String("kind", string(kind))}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	switch kind {
	case KindNotFound, KindDuplicateKey:
		// Expected outcomes of lookups and of racing creates
		logger.Debug("repository: "+msg, attrs...)
	case KindCanceled, KindForeignKeyViolated:
		logger.Warn("repository: "+msg, attrs...)
	default:
		logger.Error("repository: "+msg, attrs...)
	}

	if err != nil {
		err = errs.Wrap(err, msg)
	}
	return RepositoryError{Kind: kind, msg: msg, err: err}
}

func IsKind(err error, kind RepositoryErrorKind) bool {
	var e RepositoryError
	if errs.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
