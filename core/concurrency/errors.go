// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error definitions for concurrency module.

package concurrency

import (
	"fmt"

	"github.com/momentics/hioload-mpt/api"
)

var (
	// ErrEntriesExhausted indicates the entry allocator reached its cap.
	ErrEntriesExhausted = fmt.Errorf("queue entries: %w", api.ErrResourceExhausted)

	// ErrInvalidWorkerCount indicates invalid worker count configuration
	ErrInvalidWorkerCount = fmt.Errorf("invalid worker count: %w", api.ErrInvalidArgument)
)
