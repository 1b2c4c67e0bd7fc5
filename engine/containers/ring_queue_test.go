package containers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRingQueueEnqueueDequeueOrder(t *testing.T) {
	q := NewRingQueue[int](3)
	require.NoError(t, q.Enqueue(1))
	require.NoError(t, q.Enqueue(2))
	require.NoError(t, q.Enqueue(3))
	require.True(t, q.IsFull())
	require.Error(t, q.Enqueue(4))

	v, err := q.Dequeue()
	require.NoError(t, err)
	require.Equal(t, 1, v)

	require.NoError(t, q.Enqueue(4))
	for _, want := range []int{2, 3, 4} {
		got, err := q.Dequeue()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	require.True(t, q.IsEmpty())
}

func TestRingQueueDequeueEmptyErrors(t *testing.T) {
	q := NewRingQueue[string](2)
	_, err := q.Dequeue()
	require.Error(t, err)
	_, err = q.Peek()
	require.Error(t, err)
}

func TestBlockingRingQueueDropsOldestWhenFull(t *testing.T) {
	q := NewBlockingRingQueue[int](2)
	q.Push(1)
	q.Push(2)
	q.Push(3) // drops 1

	v, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, 2, v)
	v, ok = q.Pop()
	require.True(t, ok)
	require.Equal(t, 3, v)
}

func TestBlockingRingQueuePopBlocksUntilPush(t *testing.T) {
	q := NewBlockingRingQueue[string](4)
	got := make(chan string, 1)
	go func() {
		v, ok := q.Pop()
		if ok {
			got <- v
		}
	}()

	time.Sleep(20 * time.Millisecond)
	q.Push("hello")

	select {
	case v := <-got:
		require.Equal(t, "hello", v)
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock after Push")
	}
}

func TestBlockingRingQueueCloseUnblocksPop(t *testing.T) {
	q := NewBlockingRingQueue[int](2)
	done := make(chan bool, 1)
	go func() {
		_, ok := q.Pop()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock after Close")
	}
}
