package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/gambit/pkg/adapters/memory"
	"github.com/stretchr/testify/assert"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		_ = mgr.WithLock(ctx, fmt.Sprintf("user-%d:scenario", i), func(context.Context) error { return nil })
	}

	assert.Empty(t, mgr.locks, "locks must be released once no caller holds them")
}
