package ncxlate

import "math"

// angleCalc maps a unit direction vector (x,y) to an angle in [0, 2π),
// oriented so that sweeping from one angleCalc value to a larger one always
// advances the tool in the requested rotational sense.
func angleCalc(x, y float64, cw bool) float64 {
	alpha := math.Acos(round(x, 6))
	if cw {
		if y > 0 {
			alpha = 2*math.Pi - alpha
		}
	} else {
		if y < 0 {
			alpha = 2*math.Pi - alpha
		}
	}
	return alpha
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// arcCenterRadius resolves the R-form center: the two candidate centers are
// the intersections of AB's perpendicular bisector with the circle of
// radius |r| around A; the candidate with the smaller subtended angle wins,
// unless r is negative, which picks the other (major-arc) candidate.
func arcCenterRadius(xa, ya, xb, yb, r float64, cw bool) (xc, yc float64, err error) {
	dx, dy := xb-xa, yb-ya
	d := math.Hypot(dx, dy)
	if d == 0 {
		return 0, 0, &GeometryError{Reason: "radius-form arc has coincident endpoints"}
	}
	rr := math.Abs(r)
	h2 := rr*rr - (d*d)/4
	if h2 < 0 {
		return 0, 0, &GeometryError{Reason: "radius too small to span the chord"}
	}
	h := math.Sqrt(h2)
	mx, my := (xa+xb)/2, (ya+yb)/2
	ux, uy := -dy/d, dx/d

	x1, y1 := mx+h*ux, my+h*uy
	x2, y2 := mx-h*ux, my-h*uy

	g1, err1 := arcBaseAngle(xa, ya, xb, yb, x1, y1, cw)
	g2, err2 := arcBaseAngle(xa, ya, xb, yb, x2, y2, cw)
	if err1 != nil && err2 != nil {
		return 0, 0, err1
	}

	smallerX, smallerY := x1, y1
	largerX, largerY := x2, y2
	if err1 != nil || (err2 == nil && g2 < g1) {
		smallerX, smallerY = x2, y2
		largerX, largerY = x1, y1
	}

	if r < 0 {
		return largerX, largerY, nil
	}
	return smallerX, smallerY, nil
}

// arcBaseAngle returns the subtended angle A→B around candidate center C
// using the direction-appropriate angleCalc, for comparing radius-form
// candidates against each other.
func arcBaseAngle(xa, ya, xb, yb, xc, yc float64, cw bool) (float64, error) {
	a := math.Hypot(xb-xc, yb-yc)
	b := math.Hypot(xa-xc, ya-yc)
	if a == 0 || b == 0 {
		return 0, &GeometryError{Reason: "degenerate arc candidate"}
	}
	alpha := angleCalc((xa-xc)/a, (ya-yc)/a, cw)
	beta := angleCalc((xb-xc)/a, (yb-yc)/a, cw)
	if beta < alpha {
		beta += 2 * math.Pi
	}
	return beta - alpha, nil
}

// arcCenterOffset resolves the I/J-form center.
func arcCenterOffset(xa, ya float64, i, j *float64, stretch float64, absArc bool) (xc, yc float64) {
	ii, jj := xa, ya
	if !absArc {
		ii, jj = 0, 0
	}
	if i != nil {
		ii = *i * stretch
	}
	if j != nil {
		jj = *j * stretch
	}
	if absArc {
		return ii, jj
	}
	return xa + ii, ya + jj
}

// arcSweep validates center C against both endpoints and returns the
// unsigned sweep angle in radians; arcMicroRadians converts it to the
// emitted micro-radian value and applies the CW sign.
func arcSweep(xa, ya, xb, yb, xc, yc float64, cw bool) (gamma float64, err error) {
	ca := math.Hypot(xa-xc, ya-yc)
	cb := math.Hypot(xb-xc, yb-yc)
	if round(ca-cb, 3) != 0 {
		return 0, &GeometryError{Reason: "strange circle"}
	}
	a := cb
	b := ca
	c := math.Hypot(xb-xa, yb-ya)
	if a == 0 || b == 0 {
		return 0, &GeometryError{Reason: "zero-radius arc"}
	}
	cosG := (a*a + b*b - c*c) / (2 * a * b)
	if cosG > 1 {
		cosG = 1
	}
	if cosG < -1 {
		cosG = -1
	}
	gamma = math.Acos(cosG)

	alpha := angleCalc((xa-xc)/a, (ya-yc)/a, cw)
	beta := angleCalc((xb-xc)/a, (yb-yc)/a, cw)
	if beta < alpha {
		beta += 2 * math.Pi
	}
	if beta-alpha > math.Pi {
		gamma += math.Pi
	}
	return gamma, nil
}

// arcMicroRadians converts a sweep angle into the emitted integer primitive,
// negated for CW per the sign-of-sweep convention.
func arcMicroRadians(gamma float64, cw bool) int {
	p := int(math.Ceil(gamma * 1_000_000))
	if cw {
		return -p
	}
	return p
}
