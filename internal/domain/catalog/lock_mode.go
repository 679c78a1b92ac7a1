package catalog

// LockMode selects the concurrency strategy for a stock mutation.
// The choice is made per call site: pessimistic serializes writers on
// a row lock and suits hot products, optimistic lets writers race on a
// version check and suits low contention.
type LockMode string

const (
	LockPessimistic LockMode = "pessimistic"
	LockOptimistic  LockMode = "optimistic"
)

// Valid reports whether the lock mode is one of the known strategies
func (m LockMode) Valid() bool {
	return m == LockPessimistic || m == LockOptimistic
}

// String returns the lock mode name
func (m LockMode) String() string {
	return string(m)
}
