package service

import (
	"errors"
	"time"

	"github.com/derajoxford/stratagem-server-sub002/internal/game"
	"github.com/derajoxford/stratagem-server-sub002/internal/storage"
	"gorm.io/gorm"
)

var (
	ErrProposalNotFound        = errors.New("ceasefire proposal not found")
	ErrProposalAlreadyResolved = errors.New("ceasefire proposal already resolved")
	ErrNotProposalRecipient    = errors.New("nation is not the proposal recipient")
	ErrPendingProposalExists   = errors.New("a ceasefire proposal is already pending for this war")
)

// CeasefireRepo is the storage subset the ceasefire paths need.
type CeasefireRepo interface {
	GetWarByID(id uint) (*game.War, error)
	GetNationByID(id uint) (*game.Nation, error)
	CreateProposal(p *game.CeasefireProposal) error
	GetProposalByID(id uint) (*game.CeasefireProposal, error)
	HasPendingProposal(warID uint) (bool, error)
	ResolveProposal(p *game.CeasefireProposal) error
	CommitCeasefire(update storage.WarUpdate, proposal *game.CeasefireProposal, liftNationIDs []uint) error
}

// CeasefireResult reports a resolved proposal. LiftedBlockadeNationIDs lists
// the nations whose blockade was cleared because the war ended peacefully.
type CeasefireResult struct {
	Proposal                *game.CeasefireProposal
	War                     *game.War
	LiftedBlockadeNationIDs []uint
}

// ProposeCeasefire creates a pending proposal addressed to the other
// belligerent. Only one pending proposal may exist per war at a time.
func ProposeCeasefire(repo CeasefireRepo, warID, proposerNationID uint, message string) (*game.CeasefireProposal, error) {
	w, err := repo.GetWarByID(warID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWarNotFound
		}
		return nil, err
	}
	if w.Status != game.WarStatusActive {
		return nil, ErrWarNotActive
	}
	if !w.Belligerent(proposerNationID) {
		return nil, ErrNotBelligerent
	}
	pending, err := repo.HasPendingProposal(warID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrPendingProposalExists
	}

	recipient := w.DefenderNationID
	if proposerNationID == w.DefenderNationID {
		recipient = w.AttackerNationID
	}
	p := &game.CeasefireProposal{
		WarID:             warID,
		ProposerNationID:  proposerNationID,
		RecipientNationID: recipient,
		Message:           message,
		Status:            game.ProposalPending,
	}
	if err := repo.CreateProposal(p); err != nil {
		return nil, err
	}
	return p, nil
}

// RespondToCeasefire resolves a pending proposal. Accepting ends the war in
// a ceasefire and lifts every blockade imposed by either belligerent;
// rejecting leaves the war active. Either way the proposal becomes terminal
// and a second response fails.
func RespondToCeasefire(repo CeasefireRepo, proposalID, respondingNationID uint, accept bool, now time.Time) (*CeasefireResult, error) {
	p, err := repo.GetProposalByID(proposalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, err
	}
	if p.Status != game.ProposalPending {
		return nil, ErrProposalAlreadyResolved
	}
	if p.RecipientNationID != respondingNationID {
		return nil, ErrNotProposalRecipient
	}
	w, err := repo.GetWarByID(p.WarID)
	if err != nil {
		return nil, err
	}
	if w.Status != game.WarStatusActive {
		return nil, ErrWarNotActive
	}

	respondedAt := now
	p.RespondedAt = &respondedAt

	if !accept {
		p.Status = game.ProposalRejected
		if err := repo.ResolveProposal(p); err != nil {
			return nil, err
		}
		return &CeasefireResult{Proposal: p, War: w}, nil
	}

	p.Status = game.ProposalAccepted
	loadedVersion := w.Version
	w.Status = game.WarStatusCeasefire
	w.BlockadeActive = false
	w.BlockadeNationID = nil

	lifted := blockadesToLift(repo, w)
	if err := repo.CommitCeasefire(storage.WarUpdate{War: w, LoadedVersion: loadedVersion}, p, lifted); err != nil {
		return nil, err
	}
	return &CeasefireResult{Proposal: p, War: w, LiftedBlockadeNationIDs: lifted}, nil
}

// blockadesToLift finds belligerents blockaded by the other side of this
// war. Blockades imposed by third parties stay in place.
func blockadesToLift(repo CeasefireRepo, w *game.War) []uint {
	var lifted []uint
	for _, nationID := range []uint{w.AttackerNationID, w.DefenderNationID} {
		n, err := repo.GetNationByID(nationID)
		if err != nil {
			continue
		}
		if n.IsBlockaded && n.BlockadingNationID != nil && w.Belligerent(*n.BlockadingNationID) {
			lifted = append(lifted, n.ID)
		}
	}
	return lifted
}
