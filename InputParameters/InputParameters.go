package InputParameters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/gomlmg/types"
)

// Parameters obtained from the YAML input file
type InputParameters struct {
	Title       string             `yaml:"Title"`
	Cells       [2]int             `yaml:"Cells"`
	ProbLo      [2]float64         `yaml:"ProbLo"`
	ProbHi      [2]float64         `yaml:"ProbHi"`
	Coord       string             `yaml:"Coord"`
	Periodic    [2]bool            `yaml:"Periodic"`
	MaxGridSize int                `yaml:"MaxGridSize"`
	MaxOrder    int                `yaml:"MaxOrder"`
	Alpha       float64            `yaml:"Alpha"`
	Beta        float64            `yaml:"Beta"`
	A           float64            `yaml:"A"`
	B           *float64           `yaml:"B"` // Face coefficient, 1 when absent
	RHS         float64            `yaml:"RHS"`
	BCs         map[string]string  `yaml:"BCs"`      // Face name (xlo, ylo, xhi, yhi) to boundary type
	BCValues    map[string]float64 `yaml:"BCValues"` // Face name to Dirichlet value
	EBPlane     *float64           `yaml:"EBPlane"`  // Wall normal to x, fluid above
	EBValue     *float64           `yaml:"EBValue"`  // Dirichlet value on the wall, none means no flux
	Sweeps      int                `yaml:"Sweeps"`
	Schedule    string             `yaml:"Schedule"`
	NumWorkers  int                `yaml:"NumWorkers"`
}

var FaceNames = [4]string{"xlo", "ylo", "xhi", "yhi"}

func (ip *InputParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ip); err != nil {
		return err
	}
	ip.setDefaults()
	return ip.validate()
}

func (ip *InputParameters) setDefaults() {
	if ip.ProbHi == [2]float64{} {
		ip.ProbHi = [2]float64{1, 1}
	}
	if ip.B == nil {
		b := 1.
		ip.B = &b
	}
	if ip.MaxGridSize == 0 {
		ip.MaxGridSize = 32
	}
	if ip.MaxOrder == 0 {
		ip.MaxOrder = 2
	}
	if ip.Sweeps == 0 {
		ip.Sweeps = 10
	}
	if ip.Coord == "" {
		ip.Coord = "cartesian"
	}
	if ip.Schedule == "" {
		ip.Schedule = "dynamic"
	}
}

func (ip *InputParameters) validate() error {
	if ip.Cells[0] < 1 || ip.Cells[1] < 1 {
		return fmt.Errorf("cells must be positive in both directions, have %v", ip.Cells)
	}
	if _, err := ip.CoordSys(); err != nil {
		return err
	}
	if _, err := ip.ScheduleType(); err != nil {
		return err
	}
	_, _, err := ip.DomainBC()
	return err
}

func (ip *InputParameters) CoordSys() (c types.CoordSys, err error) {
	var ok bool
	if c, ok = types.CoordSysNameMap[strings.ToLower(ip.Coord)]; !ok {
		err = fmt.Errorf("unknown coordinate system: %q", ip.Coord)
	}
	return
}

func (ip *InputParameters) ScheduleType() (s types.Schedule, err error) {
	var ok bool
	if s, ok = types.ScheduleNameMap[strings.ToLower(ip.Schedule)]; !ok {
		err = fmt.Errorf("unknown schedule: %q", ip.Schedule)
	}
	return
}

// DomainBC translates the face names into boundary types. Periodic directions need no entry.
func (ip *InputParameters) DomainBC() (lo, hi [2]types.LinOpBCType, err error) {
	for face, name := range FaceNames {
		var (
			dir = face % 2
			bc  types.LinOpBCType
		)
		if ip.Periodic[dir] {
			bc = types.LO_Periodic
		} else {
			s, ok := ip.BCs[name]
			if !ok {
				err = fmt.Errorf("no boundary condition for face %s", name)
				return
			}
			if bc, err = types.ParseLinOpBC(s); err != nil {
				return
			}
		}
		if face < 2 {
			lo[dir] = bc
		} else {
			hi[dir] = bc
		}
	}
	return
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%v\t\t\t= Cells\n", ip.Cells)
	fmt.Printf("%v - %v\t= Problem Extent\n", ip.ProbLo, ip.ProbHi)
	fmt.Printf("[%s]\t\t= Coordinates\n", ip.Coord)
	fmt.Printf("%8.5f\t\t= Alpha\n", ip.Alpha)
	fmt.Printf("%8.5f\t\t= Beta\n", ip.Beta)
	if ip.B != nil {
		fmt.Printf("%8.5f\t\t= B\n", *ip.B)
	}
	fmt.Printf("[%d]\t\t\t\t= Max Order\n", ip.MaxOrder)
	fmt.Printf("[%d]\t\t\t\t= Sweeps\n", ip.Sweeps)
	if ip.EBPlane != nil {
		fmt.Printf("%8.5f\t\t= EB Plane\n", *ip.EBPlane)
	}
	keys := make([]string, 0, len(ip.BCs))
	for k := range ip.BCs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%s] = %s (%g)\n", key, ip.BCs[key], ip.BCValues[key])
	}
}
