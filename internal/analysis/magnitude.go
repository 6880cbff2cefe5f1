// SPDX-License-Identifier: MIT
package analysis

import "math"

// magnitudes writes 2*|X[i]| for every bin of spectrum into dst. The factor
// of two folds the mirrored negative-frequency energy of a real input back
// into the positive half. The upper half is written but never read.
func magnitudes(dst []float64, spectrum []complex128) {
	for i, c := range spectrum {
		re, im := real(c), imag(c)
		dst[i] = 2 * math.Sqrt(re*re+im*im)
	}
}
