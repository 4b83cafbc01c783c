package geometry

import "fmt"

// IndexType records, per direction, whether a box indexes cells or nodes
type IndexType [SpaceDim]bool

func CellType() IndexType { return IndexType{} }

// FaceType is the index type of faces normal to dir
func FaceType(dir int) (t IndexType) {
	t[dir] = true
	return
}

func (t IndexType) CellCentered() bool { return !t[0] && !t[1] }

// Box is a rectangular region of index space, inclusive of Lo and Hi
type Box struct {
	Lo, Hi IntVect
	Typ    IndexType
}

func NewBox(lo, hi IntVect) Box { return Box{Lo: lo, Hi: hi} }

func (b Box) Ok() bool { return b.Hi.AllGE(b.Lo) }

func (b Box) Length(dir int) int { return b.Hi[dir] - b.Lo[dir] + 1 }

func (b Box) Size() IntVect { return IntVect{b.Length(0), b.Length(1)} }

func (b Box) NumPts() int {
	if !b.Ok() {
		return 0
	}
	return b.Length(0) * b.Length(1)
}

func (b Box) Contains(iv IntVect) bool { return iv.AllGE(b.Lo) && iv.AllLE(b.Hi) }

func (b Box) ContainsBox(o Box) bool { return b.Contains(o.Lo) && b.Contains(o.Hi) }

// Intersect returns the common region of two boxes of the same index type
func (b Box) Intersect(o Box) (r Box, ok bool) {
	if b.Typ != o.Typ {
		panic(fmt.Errorf("intersecting boxes of different index types %v, %v", b, o))
	}
	r.Typ = b.Typ
	for d := 0; d < SpaceDim; d++ {
		r.Lo[d] = max(b.Lo[d], o.Lo[d])
		r.Hi[d] = min(b.Hi[d], o.Hi[d])
	}
	ok = r.Ok()
	return
}

func (b Box) Intersects(o Box) bool {
	_, ok := b.Intersect(o)
	return ok
}

func (b Box) Grow(n int) Box { return b.GrowVect(Uniform(n)) }

func (b Box) GrowVect(n IntVect) Box {
	b.Lo = b.Lo.Sub(n)
	b.Hi = b.Hi.Add(n)
	return b
}

func (b Box) GrowDir(dir, n int) Box {
	b.Lo[dir] -= n
	b.Hi[dir] += n
	return b
}

func (b Box) GrowLo(dir, n int) Box {
	b.Lo[dir] -= n
	return b
}

func (b Box) GrowHi(dir, n int) Box {
	b.Hi[dir] += n
	return b
}

// GrowTransverse grows every direction except dir
func (b Box) GrowTransverse(dir, n int) Box {
	for d := 0; d < SpaceDim; d++ {
		if d != dir {
			b = b.GrowDir(d, n)
		}
	}
	return b
}

func (b Box) Shift(iv IntVect) Box {
	b.Lo = b.Lo.Add(iv)
	b.Hi = b.Hi.Add(iv)
	return b
}

func (b Box) ShiftDir(dir, n int) Box { return b.Shift(BaseVector(dir).Scale(n)) }

// SurroundingNodes converts a cell box to the faces normal to dir bounding it
func (b Box) SurroundingNodes(dir int) Box {
	if !b.Typ[dir] {
		b.Hi[dir]++
		b.Typ[dir] = true
	}
	return b
}

func (b Box) EnclosedCells() Box {
	for d := 0; d < SpaceDim; d++ {
		if b.Typ[d] {
			b.Hi[d]--
			b.Typ[d] = false
		}
	}
	return b
}

// Convert changes the index type, treating the box as a set of cells
func (b Box) Convert(t IndexType) Box {
	b = b.EnclosedCells()
	for d := 0; d < SpaceDim; d++ {
		if t[d] {
			b = b.SurroundingNodes(d)
		}
	}
	return b
}

func (b Box) Coarsen(ratio IntVect) Box {
	var (
		lo = b.Lo.Coarsen(ratio)
		hi = b.Hi.Coarsen(ratio)
	)
	for d := 0; d < SpaceDim; d++ {
		if b.Typ[d] && b.Hi[d]-hi[d]*ratio[d] != 0 {
			hi[d]++
		}
	}
	b.Lo, b.Hi = lo, hi
	return b
}

func (b Box) Refine(ratio IntVect) Box {
	b.Lo = b.Lo.Mul(ratio)
	for d := 0; d < SpaceDim; d++ {
		if b.Typ[d] {
			b.Hi[d] *= ratio[d]
		} else {
			b.Hi[d] = (b.Hi[d]+1)*ratio[d] - 1
		}
	}
	return b
}

// CoarsenableBy reports whether coarsening then refining returns the same box
func (b Box) CoarsenableBy(ratio IntVect) bool {
	return b.Coarsen(ratio).Refine(ratio) == b
}

// AdjCellLo is the slab of n cells just below the low face in dir
func (b Box) AdjCellLo(dir, n int) Box {
	b = b.EnclosedCells()
	b.Hi[dir] = b.Lo[dir] - 1
	b.Lo[dir] = b.Lo[dir] - n
	return b
}

// AdjCellHi is the slab of n cells just above the high face in dir
func (b Box) AdjCellHi(dir, n int) Box {
	b = b.EnclosedCells()
	b.Lo[dir] = b.Hi[dir] + 1
	b.Hi[dir] = b.Hi[dir] + n
	return b
}

func (b Box) AdjCell(face Orientation, n int) Box {
	if face.IsLow() {
		return b.AdjCellLo(face.Dir(), n)
	}
	return b.AdjCellHi(face.Dir(), n)
}

// BndryCells is the single layer of valid cells adjacent to face
func (b Box) BndryCells(face Orientation) Box {
	d := face.Dir()
	if face.IsLow() {
		b.Hi[d] = b.Lo[d]
	} else {
		b.Lo[d] = b.Hi[d]
	}
	return b
}

// ForEach visits every index with the first direction varying fastest
func (b Box) ForEach(fn func(i, j int)) {
	for j := b.Lo[1]; j <= b.Hi[1]; j++ {
		for i := b.Lo[0]; i <= b.Hi[0]; i++ {
			fn(i, j)
		}
	}
}

func (b Box) String() string {
	t := [2]byte{'C', 'C'}
	for d := 0; d < SpaceDim; d++ {
		if b.Typ[d] {
			t[d] = 'N'
		}
	}
	return fmt.Sprintf("(%v %v %s)", b.Lo, b.Hi, string(t[:]))
}

type Side uint8

const (
	Low Side = iota
	High
)

// Orientation numbers the 2*SpaceDim faces of a box: low faces first, then high faces
type Orientation int

const NumFaces = 2 * SpaceDim

func NewOrientation(dir int, side Side) Orientation {
	return Orientation(dir + int(side)*SpaceDim)
}

func (o Orientation) Dir() int { return int(o) % SpaceDim }

func (o Orientation) Side() Side { return Side(int(o) / SpaceDim) }

func (o Orientation) IsLow() bool { return int(o) < SpaceDim }

func (o Orientation) IsHigh() bool { return !o.IsLow() }

func (o Orientation) Flip() Orientation {
	if o.IsLow() {
		return o + SpaceDim
	}
	return o - SpaceDim
}

func (o Orientation) String() string {
	return [NumFaces]string{"xlo", "ylo", "xhi", "yhi"}[o]
}
