// Package models defines the publish job, its lifecycle phases, and the
// artifacts accumulated while a piece of content moves through the pipeline.
package models

// Phase is a pipeline phase of one publish job. Phases advance strictly in
// the declared order; Error is reachable from any non-terminal phase.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseEncoding    Phase = "encoding"
	PhaseEncrypting  Phase = "encrypting"
	PhaseRegistering Phase = "registering"
	PhaseUploading   Phase = "uploading"
	PhaseCertifying  Phase = "certifying"
	PhaseCompleted   Phase = "completed"
	PhaseError       Phase = "error"
)

// ordinal positions used for monotonicity checks; terminal states sort last.
var phaseOrder = map[Phase]int{
	PhaseIdle:        0,
	PhaseEncoding:    1,
	PhaseEncrypting:  2,
	PhaseRegistering: 3,
	PhaseUploading:   4,
	PhaseCertifying:  5,
	PhaseCompleted:   6,
}

// Before reports whether p comes strictly before other in the pipeline order.
// Error is not ordered relative to the regular phases.
func (p Phase) Before(other Phase) bool {
	a, okA := phaseOrder[p]
	b, okB := phaseOrder[other]
	return okA && okB && a < b
}

// Terminal reports whether the phase ends the job's lifecycle.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseError
}

// ProgressFloor returns the lower bound of the progress sub-range reserved for
// the phase. Each phase owns a slice of the 0–100 scale so that retries of a
// later phase can never report a percentage below an earlier phase's ceiling.
func (p Phase) ProgressFloor() int {
	switch p {
	case PhaseEncoding:
		return 0
	case PhaseEncrypting:
		return 10
	case PhaseRegistering:
		return 20
	case PhaseUploading:
		return 40
	case PhaseCertifying:
		return 85
	case PhaseCompleted:
		return 100
	default:
		return 0
	}
}

// ProgressCeil returns the upper bound of the phase's progress sub-range.
func (p Phase) ProgressCeil() int {
	switch p {
	case PhaseEncoding:
		return 10
	case PhaseEncrypting:
		return 20
	case PhaseRegistering:
		return 40
	case PhaseUploading:
		return 85
	case PhaseCertifying, PhaseCompleted:
		return 100
	default:
		return 0
	}
}

// AccessPhase is a phase of the decrypt flow.
type AccessPhase string

const (
	AccessIdle                 AccessPhase = "idle"
	AccessRequestingCredential AccessPhase = "requestingCredential"
	AccessFetchingKeys         AccessPhase = "fetchingKeys"
	AccessDecrypting           AccessPhase = "decrypting"
	AccessReady                AccessPhase = "ready"
	AccessError                AccessPhase = "error"
)
