package uawatch

import (
	"fmt"
	"time"
)

// Phase names a state of the relay cycle.
type Phase int

const (
	PhaseFetchListing Phase = iota
	PhaseExtractFeed
	PhaseDedupCheck
	PhaseFetchDetail
	PhaseExtractArticle
	PhaseFormat
	PhaseSend
	PhasePersist
	PhaseSkip
	PhaseRetryDelay
	PhaseSleep
)

var phaseNames = map[Phase]string{
	PhaseFetchListing:   "fetch-listing",
	PhaseExtractFeed:    "extract-feed",
	PhaseDedupCheck:     "dedup-check",
	PhaseFetchDetail:    "fetch-detail",
	PhaseExtractArticle: "extract-article",
	PhaseFormat:         "format",
	PhaseSend:           "send",
	PhasePersist:        "persist",
	PhaseSkip:           "skip",
	PhaseRetryDelay:     "retry-delay",
	PhaseSleep:          "sleep",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Outcome is how a cycle ended. It selects the delay before the next one.
type Outcome int

const (
	// OutcomeNotified: a new article was sent and state persisted.
	OutcomeNotified Outcome = iota
	// OutcomeNoNews: the newest entry was already known.
	OutcomeNoNews
	// OutcomeEmptyListing: the listing came back empty; retry quickly.
	OutcomeEmptyListing
	// OutcomeFailed: any other error in the cycle.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNotified:
		return "notified"
	case OutcomeNoNews:
		return "no-news"
	case OutcomeEmptyListing:
		return "empty-listing"
	case OutcomeFailed:
		return "failed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// WaitPhase is the phase the loop waits in after a cycle ending with o.
func (o Outcome) WaitPhase() Phase {
	if o == OutcomeEmptyListing {
		return PhaseRetryDelay
	}
	return PhaseSleep
}

// DelayRule is either a fixed delay or, when Max > Min, a uniformly
// random whole number of seconds in [Min, Max].
type DelayRule struct {
	Fixed time.Duration
	Min   time.Duration
	Max   time.Duration
}

// Jittered reports whether the rule draws a random delay.
func (r DelayRule) Jittered() bool {
	return r.Fixed == 0
}

// Delay picks a delay. intN returns a value in [0, n).
func (r DelayRule) Delay(intN func(n int) int) time.Duration {
	if !r.Jittered() {
		return r.Fixed
	}

	span := int((r.Max - r.Min) / time.Second)
	if span <= 0 {
		return r.Min
	}
	return r.Min + time.Duration(intN(span+1))*time.Second
}

// RetryPolicy maps each cycle outcome to the wait before the next cycle.
type RetryPolicy map[Outcome]DelayRule

// NewRetryPolicy builds the standard table: the empty-listing fast path
// waits emptyRetry, every other outcome waits a jittered [minDelay,
// maxDelay].
func NewRetryPolicy(minDelay, maxDelay, emptyRetry time.Duration) RetryPolicy {
	jitter := DelayRule{Min: minDelay, Max: maxDelay}

	return RetryPolicy{
		OutcomeNotified:     jitter,
		OutcomeNoNews:       jitter,
		OutcomeFailed:       jitter,
		OutcomeEmptyListing: {Fixed: emptyRetry},
	}
}

// DefaultRetryPolicy waits 45 to 75 seconds between cycles and 5 seconds
// after an empty listing.
func DefaultRetryPolicy() RetryPolicy {
	return NewRetryPolicy(45*time.Second, 75*time.Second, 5*time.Second)
}

// Delay returns the wait after a cycle that ended with o. Outcomes missing
// from the table use the failure rule.
func (p RetryPolicy) Delay(o Outcome, intN func(n int) int) time.Duration {
	rule, ok := p[o]
	if !ok {
		rule = p[OutcomeFailed]
	}
	return rule.Delay(intN)
}
