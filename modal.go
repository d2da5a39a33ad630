package ncxlate

// Vec3 is a machine position in working units (post unit-scaling mm).
type Vec3 [3]float64

// ModalState groups every durable interpreter attribute into one owned
// record (spec.md §9: "Modal state... Group modal fields into a single
// owned record to make save/restore at pause points trivial and to
// localize invariants"), mirroring the teacher's status struct bundling
// the 6502's flag bits.
type ModalState struct {
	Position     Vec3
	IncrPosition Vec3

	Stretch float64 // 1.0 (mm) or 25.4 (inch)

	AbsDistanceMode    bool
	AbsArcDistanceMode bool

	Plane Plane

	InvertZ bool

	FirstMove bool

	CurrentMotionCommand string // one of G0,G1,G2,G3,G81,G82,G83

	CurrentTool int
	NextTool    int

	CannedCycleR  *float64
	CannedCycleZ  *float64
	RetractToOldZ bool

	End   bool
	Pause bool

	PausePosition *Vec3

	Parameters ParameterTable
}

// Plane selects the working plane set by G17/G18/G19. Only XY is exercised
// by motion semantics; the others are carried for modal fidelity.
type Plane int

const (
	PlaneXY Plane = iota
	PlaneXZ
	PlaneYZ
)

// NewModalState returns the interpreter's initial state: absolute distance
// mode, millimeters, XY plane, position and cycle reference at the origin.
func NewModalState() *ModalState {
	return &ModalState{
		Stretch:              1.0,
		AbsDistanceMode:      true,
		AbsArcDistanceMode:   false,
		Plane:                PlaneXY,
		FirstMove:            true,
		CurrentMotionCommand: "G0",
		CurrentTool:          1,
		NextTool:             1,
		Parameters:           NewParameterTable(),
	}
}
