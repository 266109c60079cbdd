package geometry

// An expansion is a sum of float64 components, sorted by increasing magnitude,
// with no two components overlapping. Its value is known exactly, and its sign
// is the sign of the last (largest) component.
//
// Every routine below eliminates zero components and always returns at least one
// component, so an expansion equal to zero is represented as []float64{0}.
//
// References:
//   - Shewchuk: "Adaptive Precision Floating-Point Arithmetic and Fast Robust
//     Geometric Predicates" (1997)
type expansion []float64

var (
	// epsilon is the largest power of two such that 1 + epsilon rounds to 1.
	// splitter is 2^ceil(p/2) + 1, used to split a float64 into two halves.
	epsilon, splitter = machineConstants()
)

func machineConstants() (eps, split float64) {
	eps, split = 1.0, 1.0
	everyOther := true
	for {
		eps *= 0.5
		if everyOther {
			split *= 2.0
		}
		everyOther = !everyOther
		if 1.0+eps == 1.0 {
			break
		}
	}
	return eps, split + 1.0
}

// twoSum returns x = fl(a+b) and the roundoff y, so that a+b = x+y exactly.
func twoSum(a, b float64) (x, y float64) {
	x = a + b
	bVirtual := x - a
	aVirtual := x - bVirtual
	bRoundoff := b - bVirtual
	aRoundoff := a - aVirtual
	y = aRoundoff + bRoundoff
	return x, y
}

// fastTwoSum is twoSum for |a| >= |b|.
func fastTwoSum(a, b float64) (x, y float64) {
	x = a + b
	bVirtual := x - a
	y = b - bVirtual
	return x, y
}

// twoDiff returns x = fl(a-b) and the roundoff y, so that a-b = x+y exactly.
func twoDiff(a, b float64) (x, y float64) {
	x = a - b
	bVirtual := a - x
	aVirtual := x + bVirtual
	bRoundoff := bVirtual - b
	aRoundoff := a - aVirtual
	y = aRoundoff + bRoundoff
	return x, y
}

// split cuts a into a high and a low half of at most 26 significant bits each.
func split(a float64) (hi, lo float64) {
	// explicit conversion forbids a fused multiply-add with the next line
	c := float64(splitter * a)
	aBig := c - a
	hi = c - aBig
	lo = a - hi
	return hi, lo
}

// twoProduct returns x = fl(a*b) and the roundoff y, so that a*b = x+y exactly.
func twoProduct(a, b float64) (x, y float64) {
	x = float64(a * b)
	aHi, aLo := split(a)
	bHi, bLo := split(b)
	err1 := x - float64(aHi*bHi)
	err2 := err1 - float64(aLo*bHi)
	err3 := err2 - float64(aHi*bLo)
	y = float64(aLo*bLo) - err3
	return x, y
}

// exactDiff returns a-b as an expansion of at most two components.
func exactDiff(a, b float64) expansion {
	x, y := twoDiff(a, b)
	switch {
	case y == 0:
		return expansion{x}
	case x == 0:
		return expansion{y}
	}
	return expansion{y, x}
}

// add returns e+f. Both inputs must be strongly nonoverlapping, which holds for
// everything produced in this file under round-to-even.
func (e expansion) add(f expansion) expansion {
	h := make(expansion, 0, len(e)+len(f))
	var q, hh float64

	eNow, fNow := e[0], f[0]
	eIndex, fIndex := 0, 0
	if (fNow > eNow) == (fNow > -eNow) {
		q = eNow
		eIndex++
		if eIndex < len(e) {
			eNow = e[eIndex]
		}
	} else {
		q = fNow
		fIndex++
		if fIndex < len(f) {
			fNow = f[fIndex]
		}
	}

	if eIndex < len(e) && fIndex < len(f) {
		if (fNow > eNow) == (fNow > -eNow) {
			q, hh = fastTwoSum(eNow, q)
			eIndex++
			if eIndex < len(e) {
				eNow = e[eIndex]
			}
		} else {
			q, hh = fastTwoSum(fNow, q)
			fIndex++
			if fIndex < len(f) {
				fNow = f[fIndex]
			}
		}
		if hh != 0 {
			h = append(h, hh)
		}

		for eIndex < len(e) && fIndex < len(f) {
			if (fNow > eNow) == (fNow > -eNow) {
				q, hh = twoSum(q, eNow)
				eIndex++
				if eIndex < len(e) {
					eNow = e[eIndex]
				}
			} else {
				q, hh = twoSum(q, fNow)
				fIndex++
				if fIndex < len(f) {
					fNow = f[fIndex]
				}
			}
			if hh != 0 {
				h = append(h, hh)
			}
		}
	}

	for eIndex < len(e) {
		q, hh = twoSum(q, eNow)
		eIndex++
		if eIndex < len(e) {
			eNow = e[eIndex]
		}
		if hh != 0 {
			h = append(h, hh)
		}
	}
	for fIndex < len(f) {
		q, hh = twoSum(q, fNow)
		fIndex++
		if fIndex < len(f) {
			fNow = f[fIndex]
		}
		if hh != 0 {
			h = append(h, hh)
		}
	}

	if q != 0 || len(h) == 0 {
		h = append(h, q)
	}
	return h
}

// scale returns e*b.
func (e expansion) scale(b float64) expansion {
	h := make(expansion, 0, 2*len(e))

	q, hh := twoProduct(e[0], b)
	if hh != 0 {
		h = append(h, hh)
	}
	for _, component := range e[1:] {
		product1, product0 := twoProduct(component, b)
		sum, hh := twoSum(q, product0)
		if hh != 0 {
			h = append(h, hh)
		}
		q, hh = fastTwoSum(product1, sum)
		if hh != 0 {
			h = append(h, hh)
		}
	}

	if q != 0 || len(h) == 0 {
		h = append(h, q)
	}
	return h
}

func (e expansion) negate() expansion {
	h := make(expansion, len(e))
	for i, component := range e {
		h[i] = -component
	}
	return h
}

func (e expansion) sub(f expansion) expansion {
	return e.add(f.negate())
}

// mul returns e*f as the sum of e scaled by each component of f.
func (e expansion) mul(f expansion) expansion {
	h := e.scale(f[0])
	for _, component := range f[1:] {
		h = h.add(e.scale(component))
	}
	return h
}

// estimate returns the float64 sum of all components. Its sign is the sign of
// the exact value.
func (e expansion) estimate() float64 {
	var sum float64
	for _, component := range e {
		sum += component
	}
	return sum
}
