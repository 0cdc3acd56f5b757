package node

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// KindPred classifies a numeric kind id.
type KindPred func(kind uint16) bool

// NodePred classifies a node.
type NodePred func(n Node) bool

// Is returns a predicate matching any of ids.
func Is(ids ...uint16) KindPred {
	if len(ids) == 1 {
		id := ids[0]
		return func(kind uint16) bool { return kind == id }
	}
	return NewKindSet(ids...).Pred()
}

// Any matches every kind.
func Any(uint16) bool { return true }

// ByKind lifts a kind predicate to a node predicate.
func ByKind(pred KindPred) NodePred {
	return func(n Node) bool { return pred(n.KindID()) }
}

// KindSet is an immutable set of kind ids. The zero KindSet is empty.
type KindSet struct {
	bm *roaring.Bitmap
}

// NewKindSet returns a set holding ids.
func NewKindSet(ids ...uint16) KindSet {
	bm := roaring.New()
	for _, id := range ids {
		bm.Add(uint32(id))
	}
	return KindSet{bm: bm}
}

// Has reports whether id is in the set.
func (s KindSet) Has(id uint16) bool {
	return s.bm != nil && s.bm.Contains(uint32(id))
}

// Pred returns the set as a kind predicate.
func (s KindSet) Pred() KindPred {
	return s.Has
}

// Len returns the number of ids in the set.
func (s KindSet) Len() int {
	if s.bm == nil {
		return 0
	}
	return int(s.bm.GetCardinality())
}

// IDs returns the ids in ascending order.
func (s KindSet) IDs() []uint16 {
	if s.bm == nil {
		return nil
	}
	out := make([]uint16, 0, s.bm.GetCardinality())
	it := s.bm.Iterator()
	for it.HasNext() {
		out = append(out, uint16(it.Next()))
	}
	return out
}

// Union returns a new set holding the ids of s and every other set.
func (s KindSet) Union(others ...KindSet) KindSet {
	bm := roaring.New()
	if s.bm != nil {
		bm.Or(s.bm)
	}
	for _, o := range others {
		if o.bm != nil {
			bm.Or(o.bm)
		}
	}
	return KindSet{bm: bm}
}
