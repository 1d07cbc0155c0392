package handlers

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// overlapConn fails if two WriteJSON calls ever run at the same time, which
// is what the raw websocket connection forbids.
type overlapConn struct {
	active   int32
	overlaps int32
	writes   int32
}

func (c *overlapConn) WriteJSON(v interface{}) error {
	if atomic.AddInt32(&c.active, 1) > 1 {
		atomic.AddInt32(&c.overlaps, 1)
	}
	time.Sleep(time.Millisecond)
	atomic.AddInt32(&c.active, -1)
	atomic.AddInt32(&c.writes, 1)
	return nil
}

func TestSyncWriterSerializesConcurrentWrites(t *testing.T) {
	conn := &overlapConn{}
	writer := &syncWriter{conn: conn}

	// Hub deliveries on publisher goroutines racing the read loop's echoes.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = writer.WriteJSON(map[string]string{"action": "INSERT"})
		}()
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&conn.overlaps), "writes must never run concurrently")
	assert.EqualValues(t, 20, atomic.LoadInt32(&conn.writes))
}
