package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gomlmg/types"
)

func TestParse(t *testing.T) {
	fileInput := []byte(`
Title: Channel
Cells: [16, 8]
ProbHi: [2., 1.]
Periodic: [false, true]
Alpha: 0
Beta: 1
RHS: 1.
EBPlane: 0.3
BCs:
  xlo: Dirichlet
  xhi: neumann
BCValues:
  xlo: 2.5
`)
	var input InputParameters
	require.NoError(t, input.Parse(fileInput))
	assert.Equal(t, [2]int{16, 8}, input.Cells)
	assert.Equal(t, 32, input.MaxGridSize)
	assert.Equal(t, 10, input.Sweeps)
	assert.Equal(t, 2.5, input.BCValues["xlo"])
	require.NotNil(t, input.EBPlane)
	assert.Equal(t, 0.3, *input.EBPlane)
	assert.Nil(t, input.EBValue)
	require.NotNil(t, input.B)
	assert.Equal(t, 1., *input.B)

	lo, hi, err := input.DomainBC()
	require.NoError(t, err)
	assert.Equal(t, [2]types.LinOpBCType{types.LO_Dirichlet, types.LO_Periodic}, lo)
	assert.Equal(t, [2]types.LinOpBCType{types.LO_Neumann, types.LO_Periodic}, hi)
	c, _ := input.CoordSys()
	assert.Equal(t, types.Cartesian, c)
	input.Print()
}

func TestParseZeroB(t *testing.T) {
	var input InputParameters
	require.NoError(t, input.Parse([]byte("Cells: [4, 4]\nPeriodic: [true, true]\nB: 0\nAlpha: 1\nA: 1")))
	require.NotNil(t, input.B)
	assert.Equal(t, 0., *input.B)
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{
		"Cells: [0, 4]",
		"Cells: [4, 4]\nBCs: {xlo: dirichlet, xhi: dirichlet, ylo: dirichlet}",
		"Cells: [4, 4]\nBCs: {xlo: wall, xhi: dirichlet, ylo: dirichlet, yhi: dirichlet}",
		"Cells: [4, 4]\nCoord: spherical\nPeriodic: [true, true]",
		"Cells: [4, 4]\nSchedule: guided\nPeriodic: [true, true]",
		"Cells: [4, 4",
	} {
		var input InputParameters
		assert.Error(t, input.Parse([]byte(in)), in)
	}
}
