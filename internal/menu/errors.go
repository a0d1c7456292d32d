package menu

import "errors"

// ErrNoCandidates reports an empty candidate list. Complete and Run treat
// it as a silent no-op and never return it; it is exported for Source
// implementations that want to signal it to their own callers.
var ErrNoCandidates = errors.New("no candidates")
