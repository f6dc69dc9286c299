package pipeline

// Validity is the syntax classification applied to a raw URL before any
// network traffic is issued on its behalf.
type Validity string

// Validity states for a URL candidate.
const (
	ValidityUnchecked     Validity = "unchecked"
	ValiditySyntaxInvalid Validity = "syntax_invalid"
	ValiditySyntaxValid   Validity = "syntax_valid"
)

// Candidate pairs a raw URL with its syntax classification. A Candidate is
// immutable once classified.
type Candidate struct {
	RawURL   string
	Validity Validity
}

// ProbeOutcome classifies the result of a liveness probe.
type ProbeOutcome string

// Probe outcomes. Only OutcomeAlive admits a URL to the fetch stage.
const (
	OutcomeAlive        ProbeOutcome = "alive"
	OutcomeDeadStatus   ProbeOutcome = "dead_status"
	OutcomeSoftNotFound ProbeOutcome = "soft_not_found"
	OutcomeNetworkError ProbeOutcome = "network_error"
)

// ProbeResult is the classification returned by the liveness prober for one
// URL. StatusCode is only meaningful for OutcomeDeadStatus, Err for
// OutcomeNetworkError.
type ProbeResult struct {
	URL        string
	Outcome    ProbeOutcome
	StatusCode int
	Err        error
}

// Alive reports whether the URL may proceed to the fetch stage.
func (r ProbeResult) Alive() bool {
	return r.Outcome == OutcomeAlive
}

// FetchOutcome is the terminal result of the retrying fetch for one URL:
// either a body, or the last error after the retry policy exhausted its
// attempts. Attempts counts every attempt made, including the successful one.
type FetchOutcome struct {
	URL      string
	Body     string
	Attempts int
	Err      error
}

// Failed reports whether the fetch exhausted its attempts without a body.
func (o FetchOutcome) Failed() bool {
	return o.Err != nil
}

// Record is one (title, paragraph) pair attributed to a source URL. Titles
// and paragraphs are paired by position, not by semantic relation; either
// side may be the empty string when the page has more of one than the other.
type Record struct {
	URL       string
	Title     string
	Paragraph string
}

// Dataset is the ordered, flattened output of one pipeline run. Insertion
// order is URL submission order, then document order within a URL. It is
// never deduplicated or sorted.
type Dataset []Record
