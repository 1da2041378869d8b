package mididarwin

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryCloseWaitsForCallbacks(t *testing.T) {
	var d delivery
	require.True(t, d.enter())

	closed := make(chan struct{})
	go func() {
		d.close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("close returned while a callback was delivering")
	case <-time.After(50 * time.Millisecond):
	}

	d.leave()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("close did not return after the callback left")
	}
	assert.False(t, d.enter())
}

func TestDeliveryConcurrentCallbacks(t *testing.T) {
	var (
		d  delivery
		wg sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d.enter() {
				d.leave()
			}
		}()
	}
	d.close()
	wg.Wait()
	assert.False(t, d.enter())

	d.open()
	require.True(t, d.enter())
	d.leave()
}
