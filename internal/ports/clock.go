package ports

import "time"

// Clock supplies the current time. Settlement takes it as a dependency so
// timestamp validation and journal ordering stay deterministic in tests.
type Clock interface {
	Now() time.Time
}
