package pgstore

import "errors"

var ErrUnexpectedStatus = errors.New("pgstore: unexpected subscription status")
