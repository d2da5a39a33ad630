package ncxlate

import "math"

// processCannedCycle implements G81 (drill), G82 (drill, dwell) and G83
// (peck drill). All three share the same rapid/retract bookkeeping; only
// the plunge step (§4.8 item 3) differs, and only for G83.
func (ip *Interpreter) processCannedCycle(code string, ins Instruction) error {
	ms := ip.Modal
	raw := readAxisWords(ins)

	if w, ok := ins.Param('R'); ok {
		v := w.Value
		ms.CannedCycleR = &v
	}
	if ms.CannedCycleR == nil {
		return &CannedCycleError{Code: code, Reason: "no sticky R value set"}
	}

	// Z-presence is tracked with a pointer rather than a zero-value check,
	// so an explicit Z0 in the block is distinguishable from "no Z word".
	if raw[2] != nil {
		ms.CannedCycleZ = raw[2]
	}
	if ms.CannedCycleZ == nil {
		return &CannedCycleError{Code: code, Reason: "no sticky Z value set"}
	}

	l := 1
	if w, ok := ins.Param('L'); ok {
		l = w.Int()
	}
	if l < 1 {
		return &CannedCycleError{Code: code, Reason: "L repeat count must be >= 1"}
	}

	var q float64
	peck := code == "G83"
	if peck {
		w, ok := ins.Param('Q')
		if !ok || w.Value <= 0 {
			return &CannedCycleError{Code: code, Reason: "Q peck increment must be > 0"}
		}
		q = w.Value * ms.Stretch
	}

	oldZ := ms.Position[2]

	for i := 0; i < l; i++ {
		clearZ := *ms.CannedCycleR * ms.Stretch
		z := *ms.CannedCycleZ * ms.Stretch
		if ms.InvertZ {
			clearZ, z = -clearZ, -z
		}
		if !ms.AbsDistanceMode {
			clearZ += ms.IncrPosition[2]
			z = clearZ + z
		}

		if ms.Position[2] > clearZ {
			emitStraightMotion(ms, ip.Target, true, [3]*float64{nil, nil, fptr(clearZ)})
		}

		xyTarget := resolveMotionTarget(ms, [3]*float64{raw[0], raw[1], nil})
		emitStraightMotion(ms, ip.Target, true, [3]*float64{xyTarget[0], xyTarget[1], nil})

		emitStraightMotion(ms, ip.Target, true, [3]*float64{nil, nil, fptr(clearZ)})

		if peck {
			peckPlunge(ms, ip.Target, z, clearZ, q)
		} else {
			emitStraightMotion(ms, ip.Target, false, [3]*float64{nil, nil, fptr(z)})
		}

		// Every repeat rapids back to oldZ, the Z at cycle entry, regardless
		// of RetractToOldZ: the original source sets that flag from G98/G99
		// but never reads it in the cycle itself, and this mirrors that.
		emitStraightMotion(ms, ip.Target, true, [3]*float64{nil, nil, fptr(oldZ)})
	}
	return nil
}

// peckPlunge feeds to z in steps of at most q, retracting to clearZ and
// rapiding back down to just shy of the prior depth between pecks, until
// the final depth is reached.
func peckPlunge(ms *ModalState, t Target, z, clearZ, q float64) {
	down := -1.0
	if z > ms.Position[2] {
		down = 1.0
	}
	for {
		next := ms.Position[2] + down*q
		if (down > 0 && next > z) || (down < 0 && next < z) {
			next = z
		}
		emitStraightMotion(ms, t, false, [3]*float64{nil, nil, fptr(next)})
		if ms.Position[2] == z {
			return
		}
		emitStraightMotion(ms, t, true, [3]*float64{nil, nil, fptr(clearZ)})

		clearance := math.Min(q/3, 0.1)
		back := next - down*clearance
		if (down > 0 && back < clearZ) || (down < 0 && back > clearZ) {
			back = clearZ
		}
		emitStraightMotion(ms, t, true, [3]*float64{nil, nil, fptr(back)})
	}
}

func fptr(v float64) *float64 { return &v }
