/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gomlmg/InputParameters"
	"github.com/notargets/gomlmg/eb"
	"github.com/notargets/gomlmg/eb/ebtest"
	"github.com/notargets/gomlmg/fab"
	"github.com/notargets/gomlmg/geometry"
	"github.com/notargets/gomlmg/kernels"
	"github.com/notargets/gomlmg/linop"
	"github.com/notargets/gomlmg/types"
)

type Relax struct {
	ICFile  string
	Sweeps  int
	Direct  bool
	Profile string
}

// RelaxCmd represents the relax command
var RelaxCmd = &cobra.Command{
	Use:   "relax",
	Short: "Relax or directly solve a single level problem described in a YAML file",
	Long: `
Builds the operator from the input file, then runs red-black Gauss-Seidel sweeps and
reports the residual after each, or assembles the matrix and solves it directly.

gomlmg relax -I problem.yaml -s 50`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			rx  = &Relax{}
		)
		if rx.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		rx.Direct, _ = cmd.Flags().GetBool("direct")
		rx.Profile, _ = cmd.Flags().GetString("profile")
		rx.Sweeps = viper.GetInt("sweeps")
		ip, err := processInput(rx)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		RunRelax(rx, ip)
	},
}

func init() {
	rootCmd.AddCommand(RelaxCmd)
	RelaxCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- Cells\n\t- BCs")
	RelaxCmd.Flags().IntP("sweeps", "s", 0, "number of Gauss-Seidel sweeps, overrides the input file")
	RelaxCmd.Flags().BoolP("direct", "D", false, "solve with the assembled matrix instead of relaxing")
	RelaxCmd.Flags().StringP("profile", "p", "", "write a cpu or mem profile to the current directory")
	_ = viper.BindPFlag("sweeps", RelaxCmd.Flags().Lookup("sweeps"))
}

func processInput(rx *Relax) (ip *InputParameters.InputParameters, err error) {
	if len(rx.ICFile) == 0 {
		exampleFile := `
########################################
Title: "Poisson in a box"
Cells: [32, 32]
ProbHi: [1., 1.]
Alpha: 0
Beta: 1
RHS: 1
BCs: {xlo: dirichlet, xhi: dirichlet, ylo: neumann, yhi: neumann}
BCValues: {xlo: 0, xhi: 1}
EBPlane: 0.3 # Optional wall normal to x
Sweeps: 20
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		err = fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile)")
		return
	}
	var data []byte
	if data, err = os.ReadFile(rx.ICFile); err != nil {
		return
	}
	ip = &InputParameters.InputParameters{}
	if err = ip.Parse(data); err != nil {
		return
	}
	if rx.Sweeps > 0 {
		ip.Sweeps = rx.Sweeps
	}
	return
}

func RunRelax(rx *Relax, ip *InputParameters.InputParameters) {
	switch rx.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	}
	ip.Print()
	p := NewProblem(ip)
	if p.Op.IsSingular(0) {
		logrus.Warn("operator is singular, relaxation converges only for a compatible right hand side")
	}
	if rx.Direct {
		resid, err := p.DirectSolve()
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		fmt.Printf("Direct solve residual = %12.6e\n", resid)
		return
	}
	p.Relax(ip.Sweeps, true)
}

// Problem is a single level operator with its solution and right hand side
type Problem struct {
	Op       *linop.MLEBABecLap
	Sol, RHS *fab.MultiFab
}

func NewProblem(ip *InputParameters.InputParameters) (p *Problem) {
	var (
		coord, _ = ip.CoordSys()
		sched, _ = ip.ScheduleType()
		lo, hi   = mustDomainBC(ip)
		domain   = geometry.NewBox(geometry.IntVect{0, 0}, geometry.IntVect{ip.Cells[0] - 1, ip.Cells[1] - 1})
		geom     = geometry.NewGeometry(domain, ip.ProbLo, ip.ProbHi, coord, ip.Periodic)
		grids    = geometry.NewBoxArray(domain, ip.MaxGridSize)
		info     = linop.DefaultInfo()
		is       eb.IndexSpace
	)
	info.MaxOrder, info.Schedule, info.NumWorkers = ip.MaxOrder, sched, ip.NumWorkers
	if ip.EBPlane != nil {
		is = ebtest.Plane{X0: *ip.EBPlane}
	}
	p = &Problem{
		Op: linop.NewMLEBABecLap([]*geometry.Geometry{geom}, []geometry.BoxArray{grids}, info, is, 1),
	}
	op := p.Op
	op.SetDomainBC([][2]types.LinOpBCType{lo}, [][2]types.LinOpBCType{hi})
	op.SetScalars(ip.Alpha, ip.Beta)
	op.SetACoeffsScalar(0, ip.A)
	op.SetBCoeffsScalar(0, *ip.B)
	if ip.EBPlane != nil && ip.EBValue != nil {
		phi := op.Make(0, 0, 0)
		phi.SetVal(*ip.EBValue)
		op.SetEBDirichletScalar(0, phi, 1)
	}
	op.SetLevelBC(0, boundaryData(op, ip))
	op.PrepareForSolve()
	p.Sol, p.RHS = op.Make(0, 0, 1), op.Make(0, 0, 0)
	p.RHS.SetVal(ip.RHS)
	for b, vbx := range op.Grids(0, 0) {
		kernels.SetCovered(vbx, 1, p.RHS.Array(b), op.Factory(0, 0).FlagArray(b), 0)
	}
	return
}

func mustDomainBC(ip *InputParameters.InputParameters) (lo, hi [2]types.LinOpBCType) {
	var err error
	if lo, hi, err = ip.DomainBC(); err != nil {
		panic(err)
	}
	return
}

// boundaryData carries the face values of the input in the ghost cells outside the domain
func boundaryData(op *linop.MLEBABecLap, ip *InputParameters.InputParameters) (bc *fab.MultiFab) {
	var (
		domain = op.Geom(0, 0).Domain
	)
	bc = op.Make(0, 0, 1)
	for b := range bc.Fabs {
		a := bc.Array(b)
		bc.FabBox(b).ForEach(func(i, j int) {
			switch {
			case i < domain.Lo[0]:
				a.Set(i, j, 0, ip.BCValues["xlo"])
			case i > domain.Hi[0]:
				a.Set(i, j, 0, ip.BCValues["xhi"])
			case j < domain.Lo[1]:
				a.Set(i, j, 0, ip.BCValues["ylo"])
			case j > domain.Hi[1]:
				a.Set(i, j, 0, ip.BCValues["yhi"])
			}
		})
	}
	return
}

// Relax runs Gauss-Seidel sweeps and returns the max norm residual after each one
func (p *Problem) Relax(sweeps int, verbose bool) (history []float64) {
	history = make([]float64, 0, sweeps+1)
	history = append(history, p.Op.ResidualNorm(0, 0, p.Sol, p.RHS, types.Inhomogeneous))
	if verbose {
		fmt.Printf("%8s%16s\n", "Sweep", "Residual")
		fmt.Printf("%8d%16.6e\n", 0, history[0])
	}
	for it := 1; it <= sweeps; it++ {
		p.Op.Smooth(0, 0, p.Sol, p.RHS, types.Inhomogeneous, false)
		history = append(history, p.Op.ResidualNorm(0, 0, p.Sol, p.RHS, types.Inhomogeneous))
		if verbose {
			fmt.Printf("%8d%16.6e\n", it, history[it])
		}
	}
	return
}

// DirectSolve solves L(sol) = rhs with the assembled matrix. The boundary values enter through
// the residual of a zero solution, L(u) = A u + L(0).
func (p *Problem) DirectSolve() (resid float64, err error) {
	var (
		op   = p.Op
		ix   = linop.NewIndexer(op.Grids(0, 0))
		r0   = op.Make(0, 0, 0)
		zero = op.Make(0, 0, 1)
		u    mat.VecDense
	)
	op.Residual(0, 0, r0, zero, p.RHS, types.Inhomogeneous, types.Solution)
	m := op.Assemble(0, 0, 0)
	logrus.WithFields(logrus.Fields{"rows": ix.Len(), "nonzeros": m.NNZ()}).Debug("assembled operator")
	var (
		a   = mat.DenseCopyOf(m)
		rhs = ix.Gather(r0, 0)
	)
	// covered cells have empty rows, pin them to zero
	for i := 0; i < ix.Len(); i++ {
		if floats.Norm(a.RawRowView(i), 1) == 0 {
			a.Set(i, i, 1)
			rhs[i] = 0
		}
	}
	if err = u.SolveVec(a, mat.NewVecDense(ix.Len(), rhs)); err != nil {
		return
	}
	ix.Scatter(u.RawVector().Data, p.Sol, 0)
	resid = op.ResidualNorm(0, 0, p.Sol, p.RHS, types.Inhomogeneous)
	return
}
