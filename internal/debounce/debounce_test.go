package debounce_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"boardctl/internal/debounce"
	"boardctl/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDebouncer_SingleTrigger(t *testing.T) {
	clock := testutil.NewFakeClock()
	var calls int
	d := debounce.New(500*time.Millisecond, func() { calls++ }, debounce.WithClock(clock))

	d.Trigger()
	clock.Advance(499 * time.Millisecond)
	assert.Equal(t, 0, calls, "fired before quiet period elapsed")

	clock.Advance(time.Millisecond)
	assert.Equal(t, 1, calls)
	assert.False(t, d.Pending())
}

func TestDebouncer_RapidTriggersCollapse(t *testing.T) {
	clock := testutil.NewFakeClock()
	var calls int
	d := debounce.New(500*time.Millisecond, func() { calls++ }, debounce.WithClock(clock))

	for i := 0; i < 10; i++ {
		d.Trigger()
		clock.Advance(100 * time.Millisecond)
	}
	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, clock.Active(), "expected exactly one live timer")

	clock.Advance(400 * time.Millisecond)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, clock.Active())
}

func TestDebouncer_SeparatedTriggersFireEach(t *testing.T) {
	clock := testutil.NewFakeClock()
	var calls int
	d := debounce.New(50*time.Millisecond, func() { calls++ }, debounce.WithClock(clock))

	d.Trigger()
	clock.Advance(60 * time.Millisecond)
	d.Trigger()
	clock.Advance(60 * time.Millisecond)

	assert.Equal(t, 2, calls)
}

func TestDebouncer_Cancel(t *testing.T) {
	clock := testutil.NewFakeClock()
	var calls int
	d := debounce.New(50*time.Millisecond, func() { calls++ }, debounce.WithClock(clock))

	assert.False(t, d.Cancel(), "nothing pending yet")
	d.Trigger()
	assert.True(t, d.Cancel())
	clock.Advance(time.Second)

	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, clock.Active())
}

func TestDebouncer_Flush(t *testing.T) {
	clock := testutil.NewFakeClock()
	var calls int
	d := debounce.New(50*time.Millisecond, func() { calls++ }, debounce.WithClock(clock))

	assert.False(t, d.Flush())
	d.Trigger()
	assert.True(t, d.Flush())
	assert.Equal(t, 1, calls)

	// The flushed timer must not fire again.
	clock.Advance(time.Second)
	assert.Equal(t, 1, calls)
}

func TestDebouncer_SystemClock(t *testing.T) {
	var calls int32
	done := make(chan struct{})
	d := debounce.New(20*time.Millisecond, func() {
		atomic.AddInt32(&calls, 1)
		close(done)
	})

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(2 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced action never ran")
	}
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDebouncer_SystemClockCancelLeavesNoGoroutine(t *testing.T) {
	d := debounce.New(time.Hour, func() {})
	d.Trigger()
	d.Trigger()
	assert.True(t, d.Cancel())
}

func TestDebouncer_WaitCoversFiredAction(t *testing.T) {
	clock := testutil.NewFakeClock()
	release := make(chan struct{})
	started := make(chan struct{})
	d := debounce.New(50*time.Millisecond, func() {
		close(started)
		<-release
	}, debounce.WithClock(clock))

	d.Trigger()
	fired := make(chan struct{})
	go func() {
		defer close(fired)
		clock.Advance(time.Second)
	}()
	<-started

	assert.False(t, d.Cancel(), "nothing left to cancel once fired")
	waited := make(chan struct{})
	go func() {
		d.Wait()
		close(waited)
	}()

	select {
	case <-waited:
		t.Fatal("Wait returned while the action was running")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	<-waited
	<-fired
}
