package mongostore

import "errors"

var ErrCorruptDocument = errors.New("mongostore: corrupt document")
