// Package governance defines the policy-proposal and vote model anchored on
// the ledger. The ledger owns the proposal state machine; these types only
// interpret what reads return.
package governance

import "time"

// Choice is a vote option.
type Choice int

const (
	ChoiceFor     Choice = 1
	ChoiceAgainst Choice = 2
	ChoiceAbstain Choice = 3
)

// Valid reports whether c is one of the enumerated choices.
func (c Choice) Valid() bool {
	return c >= ChoiceFor && c <= ChoiceAbstain
}

func (c Choice) String() string {
	switch c {
	case ChoiceFor:
		return "for"
	case ChoiceAgainst:
		return "against"
	case ChoiceAbstain:
		return "abstain"
	default:
		return "unknown"
	}
}

// State is the derived lifecycle position of a proposal.
type State string

const (
	StatePending   State = "pending"
	StateActive    State = "active"
	StateFinalized State = "finalized"
)

// Tally holds aggregate vote counts per choice.
type Tally struct {
	For     uint64 `json:"for"`
	Against uint64 `json:"against"`
	Abstain uint64 `json:"abstain"`
}

// Proposal is a time-boxed policy change submitted by an organization for
// multi-organization vote, as read back from the ledger.
type Proposal struct {
	ID            int64  `json:"proposalId"`
	ProposerOrgID int64  `json:"proposerOrgId"`
	ContentID     string `json:"contentId"`
	StartTime     int64  `json:"startTime"`
	EndTime       int64  `json:"endTime"`
	Finalized     bool   `json:"finalized"`
	Tally         Tally  `json:"tally"`
}

// State derives the lifecycle position at the given time. Finalized is a
// terminal flag set by an explicit finalize action; the other states follow
// from the voting window. Deriving instead of caching avoids clock-skew
// disagreements with the ledger.
func (p *Proposal) State(now time.Time) State {
	if p.Finalized {
		return StateFinalized
	}
	ts := now.Unix()
	if ts < p.StartTime {
		return StatePending
	}
	return StateActive
}
