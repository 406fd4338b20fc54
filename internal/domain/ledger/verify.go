package ledger

// Chain carries the verification cursor across batches.
type Chain struct {
	expectSeq  uint64
	expectPrev string
	count      uint64
	firstBad   uint64
}

func NewChain() *Chain { return &Chain{expectSeq: 1} }

// Feed checks the next batch in sequence order. It returns false once a bad entry
// has been seen; later calls are no-ops.
func (c *Chain) Feed(batch []Entry) bool {
	if c.firstBad != 0 {
		return false
	}
	for i := range batch {
		e := &batch[i]
		prevOK := (c.expectSeq == 1 && !e.PrevHash.Valid) ||
			(c.expectSeq > 1 && e.PrevHash.Valid && e.PrevHash.String == c.expectPrev)
		if e.Sequence != c.expectSeq || !prevOK || e.Recompute() != e.Hash {
			c.firstBad = c.expectSeq
			return false
		}
		c.expectPrev = e.Hash
		c.expectSeq++
		c.count++
	}
	return true
}

func (c *Chain) Report() VerifyReport {
	r := VerifyReport{Valid: c.firstBad == 0, Entries: c.count, FirstInvalidSequence: c.firstBad}
	if r.Valid {
		r.TipHash = c.expectPrev
	}
	return r
}

// VerifyChain replays a full in-memory chain from genesis.
func VerifyChain(entries []Entry) VerifyReport {
	c := NewChain()
	c.Feed(entries)
	return c.Report()
}
