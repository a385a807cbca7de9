package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

const defaultNodeID = 1

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID. Only the first
// call has an effect.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a new globally unique int64 ID using the Snowflake algorithm.
// IDs are time-ordered and unique across distributed instances. The node
// falls back to ID 1 when Init was never called.
func New() int64 {
	return generate().Int64()
}

// NewString returns a new ID in base58, used for webhook deliveries whose
// provider sent no delivery header.
func NewString() string {
	return generate().Base58()
}

func generate() snowflake.ID {
	_ = Init(defaultNodeID)
	return node.Generate()
}
