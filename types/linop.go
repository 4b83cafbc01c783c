package types

import (
	"fmt"
	"strings"
)

// LinOpBCType is the boundary condition a caller declares for a domain face
type LinOpBCType uint8

const (
	LO_Interior LinOpBCType = iota
	LO_Dirichlet
	LO_Neumann
	LO_ReflectOdd
	LO_Periodic
	LO_Robin
	LO_Bogus
)

var LinOpBCNameMap = map[string]LinOpBCType{
	"interior":    LO_Interior,
	"dirichlet":   LO_Dirichlet,
	"neumann":     LO_Neumann,
	"neuman":      LO_Neumann,
	"reflectodd":  LO_ReflectOdd,
	"reflect_odd": LO_ReflectOdd,
	"periodic":    LO_Periodic,
	"robin":       LO_Robin,
}

func (bc LinOpBCType) String() string {
	switch bc {
	case LO_Interior:
		return "Interior"
	case LO_Dirichlet:
		return "Dirichlet"
	case LO_Neumann:
		return "Neumann"
	case LO_ReflectOdd:
		return "ReflectOdd"
	case LO_Periodic:
		return "Periodic"
	case LO_Robin:
		return "Robin"
	case LO_Bogus:
		return "Bogus"
	}
	return fmt.Sprintf("LinOpBCType(%d)", uint8(bc))
}

// ParseLinOpBC converts a case insensitive name into a LinOpBCType
func ParseLinOpBC(name string) (bc LinOpBCType, err error) {
	var ok bool
	if bc, ok = LinOpBCNameMap[strings.ToLower(strings.TrimSpace(name))]; !ok {
		err = fmt.Errorf("unknown boundary condition name: %q", name)
	}
	return
}

// BCType codes are the physical boundary types stored in a BCRec
type BCType int

const (
	BC_Bogus       BCType = -666
	BC_ReflectOdd  BCType = -1
	BC_IntDir      BCType = 0
	BC_ReflectEven BCType = 1
	BC_FOExtrap    BCType = 2
	BC_ExtDir      BCType = 3
	BC_HOExtrap    BCType = 4
	BC_HOExtrapCC  BCType = 5
	BC_ExtDirCC    BCType = 6
	BC_UserBC      BCType = 101
)

var bcTypeNames = map[BCType]string{
	BC_Bogus:       "bogus",
	BC_ReflectOdd:  "reflect_odd",
	BC_IntDir:      "int_dir",
	BC_ReflectEven: "reflect_even",
	BC_FOExtrap:    "foextrap",
	BC_ExtDir:      "ext_dir",
	BC_HOExtrap:    "hoextrap",
	BC_HOExtrapCC:  "hoextrapcc",
	BC_ExtDirCC:    "ext_dir_cc",
	BC_UserBC:      "user_1",
}

func (bt BCType) String() string {
	if name, ok := bcTypeNames[bt]; ok {
		return name
	}
	return fmt.Sprintf("BCType(%d)", int(bt))
}

// Location says where a field's values are considered to live within a cell or face
type Location uint8

const (
	CellCenter Location = iota
	CellCentroid
	FaceCenter
	FaceCentroid
)

func (l Location) String() string {
	return [...]string{"CellCenter", "CellCentroid", "FaceCenter", "FaceCentroid"}[l]
}

type BCMode uint8

const (
	Homogeneous BCMode = iota
	Inhomogeneous
)

func (m BCMode) String() string {
	if m == Inhomogeneous {
		return "Inhomogeneous"
	}
	return "Homogeneous"
}

// StateMode distinguishes a full solution from a correction; only a solution sees EB Dirichlet values
type StateMode uint8

const (
	Solution StateMode = iota
	Correction
)

func (m StateMode) String() string {
	if m == Correction {
		return "Correction"
	}
	return "Solution"
}

type CoordSys uint8

const (
	Cartesian CoordSys = iota
	RZ
)

var CoordSysNameMap = map[string]CoordSys{
	"cartesian": Cartesian,
	"rz":        RZ,
	"radial":    RZ,
}

func (c CoordSys) String() string {
	if c == RZ {
		return "RZ"
	}
	return "Cartesian"
}

// Schedule selects how per-box work is spread over workers
type Schedule uint8

const (
	Dynamic Schedule = iota // One task per box, bounded concurrency
	Static                  // Contiguous buckets of boxes, one goroutine per bucket
)

var ScheduleNameMap = map[string]Schedule{
	"dynamic": Dynamic,
	"static":  Static,
}

func (s Schedule) String() string {
	if s == Static {
		return "Static"
	}
	return "Dynamic"
}
