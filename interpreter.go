package ncxlate

import (
	"math"

	"github.com/golang/glog"
)

// Interpreter drives modal state across a BlockSource's blocks and emits
// target-level primitives through an attached Target, mirroring the
// teacher's console loop driving CPU/PPU state across a cartridge's bus.
type Interpreter struct {
	Modal  *ModalState
	Target Target
	Source *BlockSource

	blockIndex int
}

// NewInterpreter builds an interpreter over source, emitting to target.
func NewInterpreter(source *BlockSource, target Target) *Interpreter {
	return &Interpreter{Modal: NewModalState(), Target: target, Source: source}
}

// Run starts a fresh translation job from the first block.
func (ip *Interpreter) Run() error {
	ip.blockIndex = -1
	return ip.Resume()
}

// Resume continues a paused job: it re-enters at the pause position (a
// lateral rapid first, then vertical, so the tool returns over the part
// before descending) and keeps processing blocks until end or the next
// pause.
func (ip *Interpreter) Resume() error {
	ms := ip.Modal
	ms.Pause = false
	ip.Target.AppendPreamble()
	ms.CurrentTool = ms.NextTool

	if ms.PausePosition != nil {
		p := *ms.PausePosition
		emitStraightMotion(ms, ip.Target, true, [3]*float64{fptr(p[0]), fptr(p[1]), nil})
		emitStraightMotion(ms, ip.Target, true, [3]*float64{nil, nil, fptr(p[2])})
	}

	for {
		ip.blockIndex++
		block := ip.nextBlock()
		if err := ip.processBlock(block); err != nil {
			return err
		}
		if ms.End || ms.Pause {
			break
		}
	}

	ip.Target.AppendPostamble()
	pos := ms.Position
	ms.PausePosition = &pos
	return nil
}

func (ip *Interpreter) nextBlock() Block {
	if ip.blockIndex < len(ip.Source.Blocks) {
		return ip.Source.Blocks[ip.blockIndex]
	}
	return "M30"
}

// processBlock runs the full per-block pipeline: parameter assignment,
// parameter substitution, instruction splitting, reordering, dispatch.
func (ip *Interpreter) processBlock(block Block) error {
	ms := ip.Modal

	if id, expr, ok := parseParameterAssignment(block); ok {
		v, err := evalExpression(expr)
		if err != nil {
			return err
		}
		return ms.Parameters.Set(id, v)
	}

	substituted, err := substituteParameters(block, ms.Parameters)
	if err != nil {
		return err
	}

	instructions, err := splitBlock(substituted, ip.Target.Axes(), ms.CurrentMotionCommand)
	if err != nil {
		return err
	}
	instructions = reorderBlock(instructions)

	for _, ins := range instructions {
		if err := ip.processInstruction(ins); err != nil {
			return err
		}
	}
	return nil
}

func (ip *Interpreter) processInstruction(ins Instruction) error {
	ms := ip.Modal
	head := ins.Head()
	code := head.Code()

	switch head.Letter {
	case 'F':
		ip.Target.SetFeedRate(int(math.Round(head.Value * ms.Stretch * 1000 / 60)))
		return nil
	case 'S':
		ip.Target.SetSpindleSpeed(spindlePWM(head.Value))
		return nil
	case 'T':
		ms.NextTool = head.Int()
		return nil
	}

	if motionGroupCodes[code] {
		defer func() { ms.CurrentMotionCommand = code }()
	}

	switch code {
	case "G0", "G1":
		ip.processStraightMotion(code, ins)
	case "G2", "G3":
		return ip.processArcMotion(code, ins)
	case "G4":
		glog.V(1).Infof("dwell %s ignored", code)
	case "G17":
		ms.Plane = PlaneXY
	case "G18":
		ms.Plane = PlaneXZ
	case "G19":
		ms.Plane = PlaneYZ
	case "G20":
		ms.Stretch = 25.4
	case "G21":
		ms.Stretch = 1.0
	case "G40", "G49", "G54", "G55", "G56", "G57", "G58", "G59", "G61", "G64":
		glog.V(1).Infof("modal code %s accepted but inert", code)
	case "G80":
		ms.CannedCycleR = nil
		ms.CannedCycleZ = nil
	case "G81", "G82", "G83":
		return ip.processCannedCycle(code, ins)
	case "G90":
		ms.AbsDistanceMode = true
	case "G91":
		ms.AbsDistanceMode = false
	case "G90.1":
		ms.AbsArcDistanceMode = true
	case "G91.1":
		ms.AbsArcDistanceMode = false
	case "G98":
		ms.RetractToOldZ = true
	case "G99":
		ms.RetractToOldZ = false
	case "M2", "M30":
		ms.End = true
	case "M3":
		ip.processSpindleConfig(boolPtr(false), true, ins)
	case "M4":
		ip.processSpindleConfig(boolPtr(true), true, ins)
	case "M5":
		ip.processSpindleConfig(nil, false, ins)
	case "M6":
		ms.Pause = true
	case "M7", "M8":
		ip.Target.SetCoolantMist()
	case "M9":
		ip.Target.SetCoolantOff()
	default:
		return &UnsupportedInstructionError{Code: code}
	}
	return nil
}

func (ip *Interpreter) processStraightMotion(code string, ins Instruction) {
	ms := ip.Modal
	raw := readAxisWords(ins)
	target := resolveMotionTarget(ms, raw)
	emitStraightMotion(ms, ip.Target, code == "G0", target)
}

func (ip *Interpreter) processArcMotion(code string, ins Instruction) error {
	ms := ip.Modal
	cw := code == "G2"

	raw := readAxisWords(ins)
	target := resolveMotionTarget(ms, [3]*float64{raw[0], raw[1], nil})

	xa, ya := ms.Position[0], ms.Position[1]
	xb, yb := xa, ya
	if target[0] != nil {
		xb = *target[0]
	}
	if target[1] != nil {
		yb = *target[1]
	}

	var xc, yc float64
	if w, ok := ins.Param('R'); ok {
		var err error
		xc, yc, err = arcCenterRadius(xa, ya, xb, yb, w.Value, cw)
		if err != nil {
			return err
		}
	} else {
		var i, j *float64
		if w, ok := ins.Param('I'); ok {
			v := w.Value
			i = &v
		}
		if w, ok := ins.Param('J'); ok {
			v := w.Value
			j = &v
		}
		xc, yc = arcCenterOffset(xa, ya, i, j, ms.Stretch, ms.AbsArcDistanceMode)
	}

	gamma, err := arcSweep(xa, ya, xb, yb, xc, yc, cw)
	if err != nil {
		return err
	}

	dxc := int(math.Round((xc - xa) * 1000))
	dyc := int(math.Round((yc - ya) * 1000))
	ip.Target.CircleMotion(dxc, dyc, arcMicroRadians(gamma, cw))

	ms.Position[0], ms.Position[1] = xb, yb
	ms.IncrPosition[0], ms.IncrPosition[1] = xb, yb
	ms.FirstMove = false
	return nil
}

// processSpindleConfig passes the raw commanded S-word through unscaled;
// unlike standalone S<v> (which always reports the PWM-style duty code),
// an M3/M4-attached speed is handed to the Target as-is, leaving the
// rescaling choice to the Target implementation.
func (ip *Interpreter) processSpindleConfig(ccw *bool, enable bool, ins Instruction) {
	var speed *int
	if w, ok := ins.Param('S'); ok && w.Value != 0 {
		s := w.Int()
		speed = &s
	}
	ip.Target.SetSpindleConfig(ccw, enable, speed)
}

// spindlePWM converts a requested RPM into the PWM-style 0..255 duty code.
func spindlePWM(rpm float64) int {
	v := int(math.Round(rpm * 0.0141))
	if v > 255 {
		return 255
	}
	return v
}

func boolPtr(v bool) *bool { return &v }
