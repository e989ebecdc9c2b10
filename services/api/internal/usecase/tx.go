package usecase

import (
	"context"
	"errors"
	"time"

	"unievent/pkg/apperror"
	"unievent/pkg/logger"
	"unievent/services/api/internal/repo"
)

const maxTxAttempts = 5

// inTx runs fn in a transaction and re-runs it from scratch when the store
// reports a conflict (lost race, serialization failure, deadlock).
func inTx(ctx context.Context, store repo.Store, log *logger.Logger, op string, fn func(tx repo.Store) error) error {
	for attempt := 1; ; attempt++ {
		err := store.Transaction(ctx, fn)
		if err == nil || !errors.Is(err, repo.ErrConflict) {
			return err
		}
		if attempt == maxTxAttempts {
			log.Warn("%s gave up after %d conflicting attempts: %v", op, attempt, err)
			return apperror.Unavailable("The request conflicted with concurrent updates, please retry", err)
		}

		txRetries.WithLabelValues(op).Inc()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 5 * time.Millisecond):
		}
	}
}

// storeError classifies a storage error for the request boundary. Only
// unclassified failures are logged here.
func storeError(log *logger.Logger, err error, notFound string, msg string) error {
	var appErr *apperror.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repo.ErrNotFound):
		return apperror.NotFound(notFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperror.Unavailable("Request was cancelled", err)
	default:
		log.Error("%s: %v", msg, err)
		return apperror.Internal(msg, err)
	}
}
