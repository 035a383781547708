package errors

import (
	"context"
	"errors"
)

// ErrTransactionTimeout the unit of work did not finish within its deadline.
// Nothing was written; the caller may retry.
var ErrTransactionTimeout = errors.New("a operação excedeu o tempo limite, tente novamente")

// IsTimeout reports whether err stems from an exceeded context deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTransactionTimeout)
}
