package dataloader

import "errors"

// ErrNotFound is returned by TryLoad/TryLoadMany when the batch function's
// returned mapping omitted the requested key. It is recoverable: the key
// transitions back to absent and a later call may succeed once the backend
// has the data.
var ErrNotFound = errors.New("dataloader: key not found in batch result")

// ErrContractViolation is the error UncachedLoader.Load wraps in a panic
// when the batch function omits a key it was given. Unlike ErrNotFound in
// the cached loader, an omission here is a contract violation by the batch
// function (the non-cached BatchFunc contract requires every given key to
// appear in the result, successful or not) rather than a recoverable miss.
var ErrContractViolation = errors.New("dataloader: batch function omitted a requested key")
