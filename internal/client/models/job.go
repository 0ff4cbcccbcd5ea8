package models

// ListingState describes whether a completed publication also has a content
// record attached on the ledger. A durable-but-unlisted object is a distinct,
// user-visible condition, not a failure.
type ListingState string

const (
	ListingNone      ListingState = ""
	ListingListed    ListingState = "listed"
	ListingNotListed ListingState = "published_not_listed"
)

// UploadJob is one publish attempt. It is owned exclusively by the
// orchestrator instance that created it and is never shared across concurrent
// jobs. The artifact fields fill in as phases complete and are what make a
// retry re-enter the failed phase instead of redoing durable work.
type UploadJob struct {
	ID string

	// Display metadata supplied by the creator.
	Meta ContentMetadata

	Phase    Phase
	Progress int    // percentage in [0,100], monotonically non-decreasing
	ErrorMsg string // last classified failure, empty unless Phase == PhaseError

	// FailedPhase records which phase produced ErrorMsg so a retry knows
	// where to re-enter. Empty unless Phase == PhaseError.
	FailedPhase Phase

	// Artifacts, in order of acquisition.
	EncryptionID       string // content id correlating ciphertext to key policy
	CiphertextLen      int
	BlobID             string // content address of the encoded payload
	RegistrationDigest string
	StorageObjectID    string
	CertifyDigest      string
	ContentRecordID    string

	Listing ListingState
}

// Registered reports whether the register transaction was submitted to the
// ledger. Past this point cancellation is not offered: abandoning the job
// leaves an explicit orphaned storage object for external cleanup tooling.
// The object id may still be missing if the finality wait was interrupted.
func (j *UploadJob) Registered() bool {
	return j.RegistrationDigest != ""
}

// Published reports the invariant state "certified": both register and
// certify reached ledger finality. Uploaded-but-uncertified is a valid
// orphaned state, distinguishable from both success and failure.
func (j *UploadJob) Published() bool {
	return j.RegistrationDigest != "" && j.CertifyDigest != ""
}

// RetryPhase returns the phase a retry should re-enter, based on which
// artifacts are already durable.
func (j *UploadJob) RetryPhase() Phase {
	switch {
	case j.Published():
		return PhaseCertifying // only the content record remains
	case j.Registered() && j.StorageObjectID == "":
		// Submitted but the finality wait did not complete: re-enter
		// registering, which resumes at the wait instead of resubmitting.
		return PhaseRegistering
	case j.Registered():
		return PhaseUploading
	case j.EncryptionID != "":
		return PhaseRegistering
	default:
		return PhaseEncoding
	}
}
