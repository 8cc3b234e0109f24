//go:build !dev

package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReleaseStubs(t *testing.T) {
	t.Setenv("ADDRSEARCH_TRACE", t.TempDir()+"/trace.out")
	stop := Init()
	defer stop()

	assert.False(t, IsEnabled())
	end := Region(context.Background(), "suggest")
	end()
	Log(context.Background(), "suggest", "noop")
}
