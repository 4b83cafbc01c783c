package utils

// PolyInterpCoeff returns the Lagrange weights c such that sum(c[j]*f(x[j])) interpolates f at xInt
func PolyInterpCoeff(xInt float64, x []float64) (c []float64) {
	var (
		n = len(x)
	)
	c = make([]float64, n)
	for j := 0; j < n; j++ {
		num, den := 1., 1.
		for i := 0; i < n; i++ {
			if i != j {
				num *= xInt - x[i]
				den *= x[j] - x[i]
			}
		}
		c[j] = num / den
	}
	return
}
