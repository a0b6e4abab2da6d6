package service

import (
	"errors"

	domainerrors "github.com/tagmarks/tagmarks-server/internal/errors"
	"github.com/tagmarks/tagmarks-server/internal/store"
)

// fromStore converts store sentinels into domain errors. notFound is the
// message used when the record does not exist.
func fromStore(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFound(notFound)
	case errors.Is(err, store.ErrAlreadyExists):
		msg := "already exists"
		var storeErr *store.Error
		if errors.As(err, &storeErr) {
			msg = storeErr.Message
		}
		return domainerrors.AlreadyExists(msg)
	case errors.Is(err, store.ErrConflict):
		return domainerrors.ConflictRisk("concurrent write conflict, please retry")
	default:
		return err
	}
}
