package ncxlate

import (
	"math"
	"testing"
)

// moveEvent records one straightMotion call for assertions below. A
// private fixture here (mirroring the teacher's newTestCPU()) rather than
// importing package target, which itself imports ncxlate.
type moveEvent struct {
	rapid        bool
	longMoveAxis int
	machinePos   [3]*int
}

type fakeTarget struct {
	axes     map[byte]bool
	preamble int
	postamble int
	moves    []moveEvent
	feedRate []int
	spindle  []int
	spindleCfg []struct {
		ccw    *bool
		enable bool
		speed  *int
	}
	coolantMist int
	coolantOff  int
	circles     []struct{ dx, dy, sweep int }
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{axes: map[byte]bool{'X': true, 'Y': true, 'Z': true}}
}

func (f *fakeTarget) Axes() map[byte]bool { return f.axes }
func (f *fakeTarget) AppendPreamble()     { f.preamble++ }
func (f *fakeTarget) AppendPostamble()    { f.postamble++ }
func (f *fakeTarget) SetFeedRate(v int)   { f.feedRate = append(f.feedRate, v) }
func (f *fakeTarget) SetSpindleSpeed(v int) { f.spindle = append(f.spindle, v) }
func (f *fakeTarget) SetSpindleConfig(ccw *bool, enable bool, speed *int) {
	f.spindleCfg = append(f.spindleCfg, struct {
		ccw    *bool
		enable bool
		speed  *int
	}{ccw, enable, speed})
}
func (f *fakeTarget) SetCoolantMist() { f.coolantMist++ }
func (f *fakeTarget) SetCoolantOff()  { f.coolantOff++ }
func (f *fakeTarget) StraightMotion(rapid bool, longMoveAxis int, machinePos [3]*int) {
	f.moves = append(f.moves, moveEvent{rapid, longMoveAxis, machinePos})
}
func (f *fakeTarget) CircleMotion(dx, dy, sweep int) {
	f.circles = append(f.circles, struct{ dx, dy, sweep int }{dx, dy, sweep})
}

var _ Target = (*fakeTarget)(nil)

func newTestInterpreter(program string) (*Interpreter, *fakeTarget) {
	source := NewBlockSourceFromString(program)
	ft := newFakeTarget()
	return NewInterpreter(source, ft), ft
}

func TestM30Alone(t *testing.T) {
	ip, ft := newTestInterpreter("M30\n")
	if err := ip.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !ip.Modal.End {
		t.Fatal("expected end=true")
	}
	if ft.preamble != 1 || ft.postamble != 1 {
		t.Fatalf("preamble=%d postamble=%d, want 1,1", ft.preamble, ft.postamble)
	}
	if len(ft.moves) != 0 {
		t.Fatalf("expected no moves, got %v", ft.moves)
	}
}

func TestEmptyProgramSynthesizesM30(t *testing.T) {
	ip, _ := newTestInterpreter("")
	if err := ip.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !ip.Modal.End {
		t.Fatal("expected implicit M30 to set end=true")
	}
}

func TestG0MovesAndUpdatesPosition(t *testing.T) {
	ip, ft := newTestInterpreter("G0 X10\nM30\n")
	if err := ip.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ft.moves) != 1 {
		t.Fatalf("got %d moves, want 1: %v", len(ft.moves), ft.moves)
	}
	mv := ft.moves[0]
	if !mv.rapid || mv.longMoveAxis != 0 {
		t.Fatalf("move = %+v, want rapid longMoveAxis=0", mv)
	}
	if mv.machinePos[0] == nil || *mv.machinePos[0] != 10000 {
		t.Fatalf("machinePos[0] = %v, want 10000", mv.machinePos[0])
	}
	if ip.Modal.Position[0] != 10 || ip.Modal.IncrPosition[0] != 10 {
		t.Fatalf("position=%v incrPosition=%v, want both 10", ip.Modal.Position, ip.Modal.IncrPosition)
	}
}

func TestG0NoOpWhenTargetEqualsCurrent(t *testing.T) {
	ip, ft := newTestInterpreter("G0 X0 Y0 Z0\nG0 X0 Y0 Z0\nM30\n")
	if err := ip.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ft.moves) != 0 {
		t.Fatalf("expected no emitted moves from (0,0,0)->(0,0,0), got %v", ft.moves)
	}
}

func TestLongMoveAxisTieBreakFirstEncountered(t *testing.T) {
	ip, ft := newTestInterpreter("G0 X5 Y5\nM30\n")
	if err := ip.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ft.moves) != 1 {
		t.Fatalf("got %d moves, want 1", len(ft.moves))
	}
	if got := ft.moves[0].longMoveAxis; got != 0 {
		t.Fatalf("longMoveAxis = %d, want 0 (X, first-encountered tie)", got)
	}
}

func TestLongMoveAxisPicksLargerDelta(t *testing.T) {
	ip, ft := newTestInterpreter("G0 Y9 X2\nM30\n")
	if err := ip.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := ft.moves[0].longMoveAxis; got != 1 {
		t.Fatalf("longMoveAxis = %d, want 1 (Y has the larger delta)", got)
	}
}

func TestModalMotionPersistsAcrossAxisOnlyBlock(t *testing.T) {
	ip, ft := newTestInterpreter("G1 X1\nX2\nM30\n")
	if err := ip.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ft.moves) != 2 {
		t.Fatalf("got %d moves, want 2: %v", len(ft.moves), ft.moves)
	}
	if ft.moves[1].rapid {
		t.Fatal("second move should still be G1 (feed), not rapid")
	}
}

func TestUnitRescalingG20(t *testing.T) {
	ip, ft := newTestInterpreter("G20\nG0 X1\nM30\n")
	if err := ip.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := ip.Modal.Stretch; got != 25.4 {
		t.Fatalf("stretch = %v, want 25.4", got)
	}
	if got := *ft.moves[0].machinePos[0]; got != 25400 {
		t.Fatalf("machinePos[0] = %d, want 25400 (1 inch in micrometers)", got)
	}
}

func TestFeedRateConversion(t *testing.T) {
	ip, ft := newTestInterpreter("F120\nM30\n")
	if err := ip.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ft.feedRate) != 1 || ft.feedRate[0] != 2000 {
		t.Fatalf("feedRate = %v, want [2000] (120mm/min -> 2000 um/s)", ft.feedRate)
	}
}

func TestSpindleSpeedStandalone(t *testing.T) {
	ip, ft := newTestInterpreter("S3000\nM30\n")
	if err := ip.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ft.spindle) != 1 {
		t.Fatalf("got %d spindle speed calls, want 1", len(ft.spindle))
	}
	if want := 42; ft.spindle[0] != want {
		t.Fatalf("spindle pwm = %d, want %d (min(255, round(3000*0.0141)))", ft.spindle[0], want)
	}
}

func TestM3SplitsAndEmitsSpindleConfig(t *testing.T) {
	ip, ft := newTestInterpreter("M3 S3000\nM30\n")
	if err := ip.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ft.spindleCfg) != 1 {
		t.Fatalf("got %d spindle config calls, want 1", len(ft.spindleCfg))
	}
	cfg := ft.spindleCfg[0]
	if cfg.ccw == nil || *cfg.ccw != false || !cfg.enable {
		t.Fatalf("spindle config = %+v, want ccw=false enable=true", cfg)
	}
	if cfg.speed == nil || *cfg.speed != 3000 {
		t.Fatalf("spindle config speed = %v, want 3000 (raw, not PWM-scaled)", cfg.speed)
	}
}

func TestUnsupportedInstructionError(t *testing.T) {
	ip, _ := newTestInterpreter("G999\nM30\n")
	err := ip.Run()
	if err == nil {
		t.Fatal("expected an error for an unknown G-code")
	}
	if _, ok := err.(*UnsupportedInstructionError); !ok {
		t.Fatalf("got error type %T, want *UnsupportedInstructionError", err)
	}
}

func TestParameterWriteViolation(t *testing.T) {
	ip, _ := newTestInterpreter("#50 = 1\nM30\n")
	err := ip.Run()
	if err == nil {
		t.Fatal("expected a parameter write violation for a read-only id")
	}
	if _, ok := err.(*ParameterWriteError); !ok {
		t.Fatalf("got error type %T, want *ParameterWriteError", err)
	}
}

func TestParameterAssignmentAndSubstitution(t *testing.T) {
	ip, ft := newTestInterpreter("#1 = 7\nG0 X#1\nM30\n")
	if err := ip.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := *ft.moves[0].machinePos[0]; got != 7000 {
		t.Fatalf("machinePos[0] = %d, want 7000", got)
	}
}

func TestArcRadiusFormIsNotScaledByStretch(t *testing.T) {
	// Under G20 the endpoints (read off axis words) scale by 25.4, but R
	// itself must be taken literally - neither spec.md §4.7 nor the
	// original's _circleMotion multiplies R by self.stretch. Compare the
	// emitted circle against arcCenterRadius/arcSweep called directly with
	// the unscaled R; if the interpreter still scaled R, these wouldn't
	// match.
	ip, ft := newTestInterpreter("G20\nG0 X1\nG2 X0 Y1 R50\nM30\n")
	if err := ip.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ft.circles) != 1 {
		t.Fatalf("got %d circles, want 1", len(ft.circles))
	}

	xa, ya := 25.4, 0.0
	xb, yb := 0.0, 25.4
	xc, yc, err := arcCenterRadius(xa, ya, xb, yb, 50, true)
	if err != nil {
		t.Fatalf("arcCenterRadius: %v", err)
	}
	gamma, err := arcSweep(xa, ya, xb, yb, xc, yc, true)
	if err != nil {
		t.Fatalf("arcSweep: %v", err)
	}
	wantDx := int(math.Round((xc - xa) * 1000))
	wantDy := int(math.Round((yc - ya) * 1000))
	wantSweep := arcMicroRadians(gamma, true)

	got := ft.circles[0]
	if got.dx != wantDx || got.dy != wantDy || got.sweep != wantSweep {
		t.Fatalf("circle = %+v, want dx=%d dy=%d sweep=%d", got, wantDx, wantDy, wantSweep)
	}
}

func TestPauseResumeProtocol(t *testing.T) {
	ip, ft := newTestInterpreter("G0 X1\nM6\nG0 X2\nM30\n")
	if err := ip.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !ip.Modal.Pause {
		t.Fatal("expected pause=true after M6")
	}
	if ft.postamble != 1 {
		t.Fatalf("postamble = %d, want 1 (run should close on pause)", ft.postamble)
	}
	if len(ft.moves) != 1 {
		t.Fatalf("only the move before M6 should have run, got %v", ft.moves)
	}

	if err := ip.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if !ip.Modal.End {
		t.Fatal("expected end=true after resuming to M30")
	}
	if ft.preamble != 2 || ft.postamble != 2 {
		t.Fatalf("preamble=%d postamble=%d, want 2,2", ft.preamble, ft.postamble)
	}
}
