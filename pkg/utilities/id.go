package utilities

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewKSUID generates a new globally unique KSUID string. Used for request
// correlation ids and mail Message-IDs.
func NewKSUID() string {
	return ksuid.New().String()
}

var (
	nodeOnce sync.Once
	node     *snowflake.Node
	nodeErr  error
)

// NewUserID generates a snowflake ID for a new user row. The node ID is
// taken from the SNOWFLAKE_NODE env var, defaulting to 1 so IDs are still
// produced on single-node deployments.
func NewUserID() (int64, error) {
	nodeOnce.Do(func() {
		nodeID := int64(1)
		if v := os.Getenv("SNOWFLAKE_NODE"); v != "" {
			if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
				nodeID = parsed
			}
		}
		node, nodeErr = snowflake.NewNode(nodeID)
	})
	if nodeErr != nil {
		return 0, nodeErr
	}
	return node.Generate().Int64(), nil
}
