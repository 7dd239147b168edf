package merge

import "container/heap"

// itemHeap orders heapItems by entry time: ascending (min-heap) for forward
// iteration, descending (max-heap) for reverse, so Pop always yields the
// next entry in the requested direction across every module at once. Ties
// break by module name, ascending for forward and descending for reverse,
// so equal timestamps across modules resolve deterministically rather than
// in container/heap's unspecified Pop order.
type itemHeap struct {
	items   []*heapItem
	forward bool
}

func (h *itemHeap) Len() int { return len(h.items) }

func (h *itemHeap) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if !a.entry.Time.Equal(b.entry.Time) {
		if h.forward {
			return a.entry.Time.Before(b.entry.Time)
		}
		return a.entry.Time.After(b.entry.Time)
	}
	if h.forward {
		return a.module < b.module
	}
	return a.module > b.module
}

func (h *itemHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *itemHeap) Push(x any) { h.items = append(h.items, x.(*heapItem)) }

func (h *itemHeap) Pop() any {
	n := len(h.items)
	item := h.items[n-1]
	h.items[n-1] = nil
	h.items = h.items[:n-1]
	return item
}

func (h *itemHeap) peek() *heapItem { return h.items[0] }

func (h *itemHeap) pushItem(it *heapItem) { heap.Push(h, it) }

func (h *itemHeap) popItem() *heapItem { return heap.Pop(h).(*heapItem) }
