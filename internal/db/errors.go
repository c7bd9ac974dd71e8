package db

// Op constants name the failing command for error context.
const (
	OpDel      = "DEL"
	OpHGetAll  = "HGETALL"
	OpHSet     = "HSET"
	OpExists   = "EXISTS"
	OpSAdd     = "SADD"
	OpSRem     = "SREM"
	OpSMembers = "SMEMBERS"

	OpClusterHealth  = "CLUSTER.HEALTH"
	OpIndexExists    = "INDICES.EXISTS"
	OpApplicationGet = "SEARCH_APPLICATION.GET"
	OpSearch         = "SEARCH"
	OpAppSearch      = "SEARCH_APPLICATION.SEARCH"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
