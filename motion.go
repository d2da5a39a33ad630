package ncxlate

import "math"

// axisLetters is the fixed X,Y,Z axis order used throughout position and
// machinePos vectors.
var axisLetters = [3]byte{'X', 'Y', 'Z'}

// readAxisWords extracts the raw (unscaled) axis values present on ins, nil
// where the letter is absent.
func readAxisWords(ins Instruction) [3]*float64 {
	var out [3]*float64
	for i, letter := range axisLetters {
		if w, ok := ins.Param(letter); ok {
			v := w.Value
			out[i] = &v
		}
	}
	return out
}

// resolveMotionTarget turns raw axis words into an absolute target position,
// scaling by stretch, inverting Z if configured, and resolving incremental
// distance mode relative to incrPosition. "None + x = None": an axis absent
// from the block stays unset (the move does not touch it) except on the
// very first motion of the job, where an absent axis in incremental mode
// defaults to the current incrPosition so state is fully seeded.
func resolveMotionTarget(ms *ModalState, raw [3]*float64) [3]*float64 {
	var scaled [3]*float64
	for i, v := range raw {
		if v == nil {
			continue
		}
		sv := *v * ms.Stretch
		if i == 2 && ms.InvertZ {
			sv = -sv
		}
		scaled[i] = &sv
	}

	var target [3]*float64
	for i := 0; i < 3; i++ {
		switch {
		case ms.AbsDistanceMode:
			target[i] = scaled[i]
		case scaled[i] != nil:
			v := *scaled[i] + ms.IncrPosition[i]
			target[i] = &v
		case ms.FirstMove:
			v := ms.IncrPosition[i]
			target[i] = &v
		}
	}
	return target
}

// emitStraightMotion drives the shared linear-motion bookkeeping used by
// G0/G1 and by every canned-cycle sub-move: it finds the long-move axis,
// rounds changed components to integer micrometers, calls the Target, and
// advances position/incrPosition/firstMove. It emits nothing if no
// component of target differs from the current position.
func emitStraightMotion(ms *ModalState, t Target, rapid bool, target [3]*float64) {
	longMoveAxis := -1
	maxDelta := -1.0
	changed := [3]bool{}
	for i := 0; i < 3; i++ {
		if target[i] == nil || *target[i] == ms.Position[i] {
			continue
		}
		changed[i] = true
		delta := math.Abs(*target[i] - ms.Position[i])
		if delta > maxDelta {
			maxDelta = delta
			longMoveAxis = i
		}
	}
	if longMoveAxis < 0 {
		return
	}

	var machinePos [3]*int
	for i := 0; i < 3; i++ {
		if !changed[i] {
			continue
		}
		mv := int(math.Round(*target[i] * 1000))
		machinePos[i] = &mv
		ms.Position[i] = *target[i]
		ms.IncrPosition[i] = *target[i]
	}
	t.StraightMotion(rapid, longMoveAxis, machinePos)
	ms.FirstMove = false
}
