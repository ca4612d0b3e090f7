// -*- tab-width:2 -*-

package netlat

import (
	"container/heap"
)

// An Item is something we manage in a priority queue.
type Item struct {
	value *Event
	at    Seconds // The priority of the item in the queue.
	seq   uint64  // Schedule order, breaks ties on at.
	index int     // The index of the item in the heap.
}

// A PQueue implements heap.Interface and holds Items, earliest first.
type PQueue []*Item

func (pq PQueue) Len() int { return len(pq) }

func (pq PQueue) Less(i, j int) bool {
	// Pop gives the earliest time; equal times come out FIFO.
	if pq[i].at != pq[j].at {
		return pq[i].at < pq[j].at
	}

	return pq[i].seq < pq[j].seq
}

func (pq PQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

// Push adds a value to the pqueue - called by
// heap.Interface
func (pq *PQueue) Push(x any) {
	n := len(*pq)
	item := x.(*Item) //nolint:forcetypeassert
	item.index = n
	*pq = append(*pq, item)
}

// Pop removes a value from the pqueue -
// called by heap.Interface
func (pq *PQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // avoid memory leak
	item.index = -1 // for safety
	*pq = old[0 : n-1]

	return item
}

// Peek returns the earliest item without removing it, nil if empty.
func (pq PQueue) Peek() *Item {
	if len(pq) == 0 {
		return nil
	}

	return pq[0]
}

// eventQueue wraps PQueue with the sequence counter.
type eventQueue struct {
	items PQueue
	seq   uint64
}

func newEventQueue() *eventQueue {
	return &eventQueue{items: make(PQueue, 0, initialQueueSize)}
}

func (q *eventQueue) push(e *Event) {
	q.seq++
	heap.Push(&q.items, &Item{value: e, at: e.At, seq: q.seq})
}

func (q *eventQueue) pop() *Event {
	item, _ := heap.Pop(&q.items).(*Item)

	return item.value
}

func (q *eventQueue) peek() *Event {
	item := q.items.Peek()
	if item == nil {
		return nil
	}

	return item.value
}

func (q *eventQueue) size() int {
	return q.items.Len()
}

func (q *eventQueue) reset() {
	q.items = make(PQueue, 0, initialQueueSize)
	q.seq = 0
}
