package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"lifeledger/internal/governance"
	"lifeledger/internal/ledger"
	dErrors "lifeledger/pkg/domain-errors"
)

// fakeLedger emulates the governance contract: it enforces voting windows,
// one vote per organization and single finalization, judging time against
// its own clock.
type fakeLedger struct {
	mu        sync.Mutex
	now       int64
	nextID    int64
	proposals map[int64]*governance.Proposal
	voted     map[string]bool
	txSeq     int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{nextID: 1, proposals: make(map[int64]*governance.Proposal), voted: make(map[string]bool)}
}

func (f *fakeLedger) setNow(ts int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = ts
}

func (f *fakeLedger) receipt() ledger.Receipt {
	f.txSeq++
	return ledger.Receipt{TxID: fmt.Sprintf("0xtx%d", f.txSeq), ConfirmedAt: time.Unix(f.now, 0)}
}

func (f *fakeLedger) Submit(_ context.Context, operation string, args ...any) (ledger.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch operation {
	case "createProposalOnBehalf":
		id := f.nextID
		f.nextID++
		f.proposals[id] = &governance.Proposal{
			ID:            id,
			ProposerOrgID: args[0].(int64),
			ContentID:     args[1].(string),
			StartTime:     args[2].(int64),
			EndTime:       args[3].(int64),
		}
		rcpt := f.receipt()
		rcpt.Result = json.RawMessage(fmt.Sprintf(`{"proposalId":%d}`, id))
		return rcpt, nil

	case "castVoteOnBehalf":
		proposalID, voterOrgID, choice := args[0].(int64), args[1].(int64), args[2].(int64)
		p, ok := f.proposals[proposalID]
		if !ok {
			return ledger.Receipt{}, dErrors.New(dErrors.CodeSubmission, "unknown proposal")
		}
		if p.Finalized {
			return ledger.Receipt{}, dErrors.New(dErrors.CodeSubmission, "proposal finalized")
		}
		if f.now < p.StartTime {
			return ledger.Receipt{}, dErrors.New(dErrors.CodeSubmission, "voting window not open")
		}
		if f.now >= p.EndTime {
			return ledger.Receipt{}, dErrors.New(dErrors.CodeSubmission, "voting window closed")
		}
		key := fmt.Sprintf("%d/%d", proposalID, voterOrgID)
		if f.voted[key] {
			return ledger.Receipt{}, dErrors.New(dErrors.CodeSubmission, "organization already voted")
		}
		f.voted[key] = true
		switch governance.Choice(choice) {
		case governance.ChoiceFor:
			p.Tally.For++
		case governance.ChoiceAgainst:
			p.Tally.Against++
		case governance.ChoiceAbstain:
			p.Tally.Abstain++
		}
		return f.receipt(), nil

	case "finalize":
		p, ok := f.proposals[args[0].(int64)]
		if !ok {
			return ledger.Receipt{}, dErrors.New(dErrors.CodeSubmission, "unknown proposal")
		}
		if p.Finalized {
			return ledger.Receipt{}, dErrors.New(dErrors.CodeSubmission, "already finalized")
		}
		if f.now < p.EndTime {
			return ledger.Receipt{}, dErrors.New(dErrors.CodeSubmission, "voting window still open")
		}
		p.Finalized = true
		return f.receipt(), nil
	}
	return ledger.Receipt{}, fmt.Errorf("unexpected operation %q", operation)
}

func (f *fakeLedger) Read(_ context.Context, query string, args ...any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if query != "getProposal" {
		return nil, fmt.Errorf("unexpected query %q", query)
	}
	p, ok := f.proposals[args[0].(int64)]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "getProposal: no record on ledger")
	}
	return json.Marshal(p)
}

type GovernanceServiceSuite struct {
	suite.Suite
	ledger  *fakeLedger
	service *Service
}

func TestGovernanceServiceSuite(t *testing.T) {
	suite.Run(t, new(GovernanceServiceSuite))
}

func (s *GovernanceServiceSuite) SetupTest() {
	s.ledger = newFakeLedger()

	var err error
	s.service, err = New(s.ledger)
	s.Require().NoError(err)
}

func (s *GovernanceServiceSuite) TestNew() {
	_, err := New(nil)
	s.Error(err)
}

func (s *GovernanceServiceSuite) TestCreateProposalValidation() {
	ctx := context.Background()

	cases := []struct {
		name  string
		req   CreateProposalRequest
		field string
	}{
		{"zero org", CreateProposalRequest{ContentID: "cid", StartTime: 1000, EndTime: 2000}, "proposerOrgId"},
		{"negative org", CreateProposalRequest{ProposerOrgID: -2, ContentID: "cid", StartTime: 1000, EndTime: 2000}, "proposerOrgId"},
		{"empty content", CreateProposalRequest{ProposerOrgID: 7, StartTime: 1000, EndTime: 2000}, "contentId"},
		{"end equals start", CreateProposalRequest{ProposerOrgID: 7, ContentID: "cid", StartTime: 2000, EndTime: 2000}, "endTime"},
		{"end before start", CreateProposalRequest{ProposerOrgID: 7, ContentID: "cid", StartTime: 2000, EndTime: 1000}, "endTime"},
		{"negative start", CreateProposalRequest{ProposerOrgID: 7, ContentID: "cid", StartTime: -1, EndTime: 1000}, "startTime"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.service.CreateProposal(ctx, tc.req)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
			s.Equal(tc.field, dErrors.FieldOf(err))
		})
	}
	s.Empty(s.ledger.proposals, "nothing submitted")
}

func (s *GovernanceServiceSuite) TestCastVoteValidation() {
	ctx := context.Background()

	for _, choice := range []int{0, 4, -1, 100} {
		_, err := s.service.CastVote(ctx, 1, 3, governance.Choice(choice))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation), choice)
		s.Equal("choice", dErrors.FieldOf(err))
	}

	_, err := s.service.CastVote(ctx, 0, 3, governance.ChoiceFor)
	s.Equal("proposalId", dErrors.FieldOf(err))
	_, err = s.service.CastVote(ctx, 1, -3, governance.ChoiceFor)
	s.Equal("voterOrgId", dErrors.FieldOf(err))

	s.Zero(s.ledger.txSeq, "nothing submitted")
}

func (s *GovernanceServiceSuite) TestFinalizeValidation() {
	_, err := s.service.Finalize(context.Background(), 0)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

// TestProposalLifecycle walks the full state machine: create, early vote
// rejected, vote in window, early finalize rejected, finalize after the
// window, late vote rejected.
func (s *GovernanceServiceSuite) TestProposalLifecycle() {
	ctx := context.Background()
	s.ledger.setNow(500)

	created, err := s.service.CreateProposal(ctx, CreateProposalRequest{
		ProposerOrgID: 7, ContentID: "cid123", StartTime: 1000, EndTime: 2000,
	})
	s.Require().NoError(err)
	s.Positive(created.ProposalID)
	s.NotEmpty(created.Receipt.TxID)

	// Before the window opens.
	_, err = s.service.CastVote(ctx, created.ProposalID, 3, governance.ChoiceFor)
	s.True(dErrors.HasCode(err, dErrors.CodeSubmission))
	s.Contains(err.Error(), "not open")

	// Within the window.
	s.ledger.setNow(1500)
	_, err = s.service.CastVote(ctx, created.ProposalID, 3, governance.ChoiceFor)
	s.Require().NoError(err)

	// Same organization cannot vote twice.
	_, err = s.service.CastVote(ctx, created.ProposalID, 3, governance.ChoiceAgainst)
	s.True(dErrors.HasCode(err, dErrors.CodeSubmission))
	s.Contains(err.Error(), "already voted")

	// Another organization can.
	_, err = s.service.CastVote(ctx, created.ProposalID, 4, governance.ChoiceAbstain)
	s.Require().NoError(err)

	// Finalize before endTime is rejected.
	_, err = s.service.Finalize(ctx, created.ProposalID)
	s.True(dErrors.HasCode(err, dErrors.CodeSubmission))

	// After the window.
	s.ledger.setNow(2001)
	_, err = s.service.Finalize(ctx, created.ProposalID)
	s.Require().NoError(err)

	// Finalize is terminal.
	_, err = s.service.Finalize(ctx, created.ProposalID)
	s.True(dErrors.HasCode(err, dErrors.CodeSubmission))

	// No votes after finalization.
	_, err = s.service.CastVote(ctx, created.ProposalID, 5, governance.ChoiceFor)
	s.True(dErrors.HasCode(err, dErrors.CodeSubmission))

	proposal, err := s.service.GetProposal(ctx, created.ProposalID)
	s.Require().NoError(err)
	s.True(proposal.Finalized)
	s.Equal(governance.StateFinalized, proposal.State(time.Unix(2001, 0)))
	s.Equal(uint64(1), proposal.Tally.For)
	s.Equal(uint64(0), proposal.Tally.Against)
	s.Equal(uint64(1), proposal.Tally.Abstain)
}

func (s *GovernanceServiceSuite) TestGetProposalNotFound() {
	_, err := s.service.GetProposal(context.Background(), 99)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *GovernanceServiceSuite) TestLedgerRejectionsKeepTheirCode() {
	ctx := context.Background()
	s.ledger.setNow(100)

	_, err := s.service.CastVote(ctx, 42, 3, governance.ChoiceFor)
	s.True(dErrors.HasCode(err, dErrors.CodeSubmission))
	s.Contains(err.Error(), "castVote proposal 42", "manager adds operation context")
}
