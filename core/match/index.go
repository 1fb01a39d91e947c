package match

// candidate is a target row waiting in its key's queue.
type candidate struct {
	pos int
	row Row
}

// Index maps a target key to the FIFO queue of rows sharing it.
type Index struct {
	queues map[string][]candidate
}

// BuildIndex indexes rows, which must already be in ascending row-index
// order, under their target-side keys.
func BuildIndex(rows []Row, kb *KeyBuilder) *Index {
	idx := &Index{queues: make(map[string][]candidate)}
	for pos, r := range rows {
		key := kb.Key(r.Cells)
		idx.queues[key] = append(idx.queues[key], candidate{pos: pos, row: r})
	}
	return idx
}

// Consume pops the earliest row queued under key.
func (idx *Index) Consume(key string) (Row, int, bool) {
	q := idx.queues[key]
	if len(q) == 0 {
		return Row{}, -1, false
	}
	head := q[0]
	idx.queues[key] = q[1:]
	return head.row, head.pos, true
}

// Pending returns how many rows are still queued under key.
func (idx *Index) Pending(key string) int {
	return len(idx.queues[key])
}
