package errors

import (
	stdErrors "errors"

	"gorm.io/gorm"
)

// FromStore classifies a persistence failure. Missing rows become NotFound with
// the supplied message; typed errors pass through; anything else is a store
// error that carries the store's own message.
func FromStore(err error, notFoundMessage string) error {
	if err == nil {
		return nil
	}
	if As(err) != nil {
		return err
	}
	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return Wrap(CodeNotFound, err, notFoundMessage)
	}
	return Wrap(CodeStore, err, err.Error())
}
