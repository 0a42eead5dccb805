package application

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePreservesOrder(t *testing.T) {
	q := NewQueue()
	q.Push(LogLine{Text: "first"})
	q.Push(StatusUpdate{Updating: true})
	q.Push(LogLine{Text: "second"})

	msgs := q.Drain()

	require.Len(t, msgs, 3)
	assert.Equal(t, LogLine{Text: "first"}, msgs[0])
	assert.Equal(t, StatusUpdate{Updating: true}, msgs[1])
	assert.Equal(t, LogLine{Text: "second"}, msgs[2])
}

func TestQueueDrainEmpties(t *testing.T) {
	q := NewQueue()
	q.Push(LogLine{Text: "once"})

	require.Len(t, q.Drain(), 1)
	assert.Empty(t, q.Drain())
}

func TestQueueDropsAfterClose(t *testing.T) {
	q := NewQueue()
	q.Push(LogLine{Text: "kept until close"})
	q.Close()
	q.Push(LogLine{Text: "dropped"})

	assert.Empty(t, q.Drain())
}

func TestQueueConcurrentPushers(t *testing.T) {
	q := NewQueue()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Push(StatusUpdate{})
			}
		}()
	}
	wg.Wait()

	assert.Len(t, q.Drain(), 1000)
}
