package savestore

import "errors"

// ErrNotFound marks a key with no stored payload. Callers check it
// with errors.Is and treat it as "no usable save".
var ErrNotFound = errors.New("savestore: not found")
