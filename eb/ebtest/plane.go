// Package ebtest provides analytic embedded boundaries for tests and demonstrations
package ebtest

import (
	"math"

	"github.com/notargets/gomlmg/eb"
)

// Plane is a wall normal to x at physical position X0 with fluid on the high side
type Plane struct {
	X0 float64
}

func (p Plane) Fill(f *eb.Factory) {
	var (
		dx   = f.Geom.CellSize()
		xlo  = f.Geom.ProbLo[0] - float64(f.Geom.Domain.Lo[0])*dx[0]
		frac = func(i int) float64 {
			xl := xlo + float64(i)*dx[0]
			return math.Min(1, math.Max(0, (xl+dx[0]-p.X0)/dx[0]))
		}
	)
	for b := range f.Grids {
		var (
			flags = f.Flags.Array(b)
			vf    = f.VolFrac.Array(b)
			ba    = f.BndryArea.Array(b)
			bc    = f.BndryCent.Array(b)
			apx   = f.AreaFrac[0].Array(b)
			apy   = f.AreaFrac[1].Array(b)
			fcy   = f.FaceCent[1].Array(b)
		)
		f.Flags.Fabs[b].Box.ForEach(func(i, j int) {
			v := frac(i)
			vf.Set(i, j, 0, v)
			switch {
			case v == 0:
				flags.Set(i, j, 0, eb.Covered)
			case v == 1:
				flags.Set(i, j, 0, eb.Regular)
			default:
				flags.Set(i, j, 0, eb.SingleValued)
				ba.Set(i, j, 0, dx[1]/dx[0])
				bc.Set(i, j, 0, 0.5-v)
				bc.Set(i, j, 1, 0)
			}
		})
		f.AreaFrac[0].Fabs[b].Box.ForEach(func(i, j int) {
			a := 0.
			if xlo+float64(i)*dx[0] > p.X0 {
				a = 1
			}
			apx.Set(i, j, 0, a)
		})
		f.AreaFrac[1].Fabs[b].Box.ForEach(func(i, j int) {
			v := frac(i)
			apy.Set(i, j, 0, v)
			fcy.Set(i, j, 0, 0.5*(1-v))
		})
	}
}
