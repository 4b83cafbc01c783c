package geometry

// BoxArray is a collection of disjoint boxes of one index type
type BoxArray []Box

// NewBoxArray chops domain into boxes no longer than maxSize in any direction
func NewBoxArray(domain Box, maxSize int) (ba BoxArray) {
	ba = BoxArray{domain}
	return ba.MaxSize(maxSize)
}

func (ba BoxArray) MaxSize(maxSize int) (r BoxArray) {
	if maxSize <= 0 {
		return append(r, ba...)
	}
	r = append(r, ba...)
	for d := 0; d < SpaceDim; d++ {
		var chopped BoxArray
		for _, b := range r {
			for lo := b.Lo[d]; lo <= b.Hi[d]; lo += maxSize {
				piece := b
				piece.Lo[d] = lo
				piece.Hi[d] = min(lo+maxSize-1, b.Hi[d])
				chopped = append(chopped, piece)
			}
		}
		r = chopped
	}
	return
}

func (ba BoxArray) Coarsen(ratio IntVect) (r BoxArray) {
	r = make(BoxArray, len(ba))
	for i, b := range ba {
		r[i] = b.Coarsen(ratio)
	}
	return
}

func (ba BoxArray) Refine(ratio IntVect) (r BoxArray) {
	r = make(BoxArray, len(ba))
	for i, b := range ba {
		r[i] = b.Refine(ratio)
	}
	return
}

func (ba BoxArray) Convert(t IndexType) (r BoxArray) {
	r = make(BoxArray, len(ba))
	for i, b := range ba {
		r[i] = b.Convert(t)
	}
	return
}

func (ba BoxArray) CoarsenableBy(ratio IntVect) bool {
	for _, b := range ba {
		if !b.CoarsenableBy(ratio) {
			return false
		}
	}
	return true
}

func (ba BoxArray) NumPts() (n int) {
	for _, b := range ba {
		n += b.NumPts()
	}
	return
}

func (ba BoxArray) MinimalBox() (mb Box) {
	if len(ba) == 0 {
		return
	}
	mb = ba[0]
	for _, b := range ba[1:] {
		for d := 0; d < SpaceDim; d++ {
			mb.Lo[d] = min(mb.Lo[d], b.Lo[d])
			mb.Hi[d] = max(mb.Hi[d], b.Hi[d])
		}
	}
	return
}

type Overlap struct {
	Index int
	Box   Box
}

// Intersections lists every box of ba that overlaps bx, with the overlap region
func (ba BoxArray) Intersections(bx Box) (ov []Overlap) {
	for i, b := range ba {
		if r, ok := b.Intersect(bx); ok {
			ov = append(ov, Overlap{Index: i, Box: r})
		}
	}
	return
}

// Contains reports whether the union of ba covers bx
func (ba BoxArray) Contains(bx Box) bool {
	var n int
	for _, o := range ba.Intersections(bx) {
		n += o.Box.NumPts()
	}
	return n == bx.NumPts()
}

// FindCell returns the index of the box holding iv, or -1
func (ba BoxArray) FindCell(iv IntVect) int {
	for i, b := range ba {
		if b.Contains(iv) {
			return i
		}
	}
	return -1
}
