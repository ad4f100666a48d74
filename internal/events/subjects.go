package events

const (
	// SubjectRunRequest is where docking pipelines submit restraint sets
	// for scoring.
	SubjectRunRequest = "docking.restraints.request"

	StreamName   = "RESTRAINT_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectRunScored(runID string) string   { return "docking.restraints." + runID + ".scored" }
func SubjectRunRejected(runID string) string { return "docking.restraints." + runID + ".rejected" }
