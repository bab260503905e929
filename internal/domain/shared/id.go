package shared

import (
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

// ID identifies an aggregate. Values are positive snowflake integers so an ID
// can be assigned at construction time, before the aggregate is first saved.
type ID int64

var (
	nodeMu sync.RWMutex
	node   *snowflake.Node
)

func init() {
	n, err := snowflake.NewNode(0)
	if err != nil {
		panic(err)
	}
	node = n
}

// SetIDNode configures the snowflake node number used by NewID.
// Each running process must use a distinct node number (0-1023).
func SetIDNode(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return NewDomainError(KindValidation, "INVALID_NODE_ID", err.Error())
	}
	nodeMu.Lock()
	node = n
	nodeMu.Unlock()
	return nil
}

// NewID generates a new unique aggregate ID
func NewID() ID {
	nodeMu.RLock()
	defer nodeMu.RUnlock()
	return ID(node.Generate().Int64())
}

// ParseID parses a decimal string into an ID
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, NewDomainError(KindValidation, "INVALID_ID", "ID must be a positive integer")
	}
	return ID(v), nil
}

// Int64 returns the raw value
func (id ID) Int64() int64 {
	return int64(id)
}

// IsZero reports whether the ID is unset
func (id ID) IsZero() bool {
	return id == 0
}

// String returns the decimal representation
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Ptr returns a pointer to a copy of id, for optional references
func (id ID) Ptr() *ID {
	return &id
}
