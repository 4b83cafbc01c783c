package geometry

import "fmt"

const SpaceDim = 2

// IntVect is a cell (or node) index in index space
type IntVect [SpaceDim]int

func Unit() IntVect { return IntVect{1, 1} }

func Uniform(n int) IntVect { return IntVect{n, n} }

// BaseVector returns the unit vector in direction dir
func BaseVector(dir int) (iv IntVect) {
	iv[dir] = 1
	return
}

func (iv IntVect) Add(o IntVect) IntVect { return IntVect{iv[0] + o[0], iv[1] + o[1]} }

func (iv IntVect) Sub(o IntVect) IntVect { return IntVect{iv[0] - o[0], iv[1] - o[1]} }

func (iv IntVect) Scale(s int) IntVect { return IntVect{iv[0] * s, iv[1] * s} }

func (iv IntVect) Mul(o IntVect) IntVect { return IntVect{iv[0] * o[0], iv[1] * o[1]} }

func (iv IntVect) Shift(dir, n int) IntVect {
	iv[dir] += n
	return iv
}

// Coarsen divides by ratio, rounding toward minus infinity
func (iv IntVect) Coarsen(ratio IntVect) IntVect {
	return IntVect{CoarsenIndex(iv[0], ratio[0]), CoarsenIndex(iv[1], ratio[1])}
}

func (iv IntVect) AllGE(o IntVect) bool { return iv[0] >= o[0] && iv[1] >= o[1] }

func (iv IntVect) AllLE(o IntVect) bool { return iv[0] <= o[0] && iv[1] <= o[1] }

func (iv IntVect) IsZero() bool { return iv[0] == 0 && iv[1] == 0 }

func (iv IntVect) String() string { return fmt.Sprintf("(%d,%d)", iv[0], iv[1]) }

// CoarsenIndex is floor(i/ratio) for any sign of i
func CoarsenIndex(i, ratio int) int {
	if ratio == 1 {
		return i
	}
	if i >= 0 {
		return i / ratio
	}
	return -((-i - 1) / ratio) - 1
}

