package rerunguard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckAndClearIsFalseInitially(t *testing.T) {
	var g Guard
	assert.False(t, g.CheckAndClear())
}

func TestSetThenCheckAndClearClears(t *testing.T) {
	var g Guard
	g.Set()
	assert.True(t, g.CheckAndClear())
	assert.False(t, g.CheckAndClear())
}

func TestConcurrentSettersLeaveGuardSet(t *testing.T) {
	var g Guard
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Set()
		}()
	}
	wg.Wait()
	assert.True(t, g.CheckAndClear())
}
