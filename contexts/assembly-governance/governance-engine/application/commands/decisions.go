package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "condogov/contexts/assembly-governance/governance-engine/application"
	"condogov/contexts/assembly-governance/governance-engine/domain/entities"
	domainerrors "condogov/contexts/assembly-governance/governance-engine/domain/errors"
	"condogov/contexts/assembly-governance/governance-engine/domain/lifecycle"
	"condogov/contexts/assembly-governance/governance-engine/domain/tally"
	"condogov/contexts/assembly-governance/governance-engine/ports"
	contractsv1 "condogov/contracts/gen/events/v1"

	"github.com/shopspring/decimal"
)

type CreateDecisionCommand struct {
	IdempotencyKey string
	MeetingID      string
	Title          string
	Description    string
}

type CreateDecisionResult struct {
	Decision entities.Decision
	Replayed bool
}

type VoteInput struct {
	UnitID string
	Choice entities.VoteChoice
}

type CastVotesCommand struct {
	DecisionID string
	Votes      []VoteInput
}

type CastVotesResult struct {
	Decision entities.Decision
	Votes    []entities.Vote
}

type SetDecisionTextCommand struct {
	DecisionID string
	Text       string
}

type DecisionUseCase struct {
	Sites          ports.SiteRepository
	Meetings       ports.MeetingRepository
	Idempotency    ports.IdempotencyStore
	Outbox         ports.OutboxWriter
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func (uc DecisionUseCase) CreateDecision(ctx context.Context, cmd CreateDecisionCommand) (CreateDecisionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.MeetingID) == "" ||
		!requiredWithin(cmd.Title, maxDecisionTitleLength) ||
		!requiredWithin(cmd.Description, maxDecisionDescriptionLength) {
		logger.Warn("decision create validation failed",
			"event", "governance_decision_create_validation_failed",
			"module", "assembly-governance/governance-engine",
			"layer", "application",
			"meeting_id", strings.TrimSpace(cmd.MeetingID),
		)
		return CreateDecisionResult{}, domainerrors.ErrInvalidInput
	}

	now := uc.now()
	requestHash := hashCommand(cmd)
	key := strings.TrimSpace(cmd.IdempotencyKey)
	if key != "" && uc.Idempotency != nil {
		record, found, err := uc.Idempotency.Get(ctx, key, now)
		if err != nil {
			return CreateDecisionResult{}, err
		}
		if found {
			if record.RequestHash != requestHash {
				return CreateDecisionResult{}, domainerrors.ErrIdempotencyConflict
			}
			decision, err := uc.Meetings.GetDecision(ctx, record.ResourceID)
			if err != nil {
				return CreateDecisionResult{}, err
			}
			return CreateDecisionResult{Decision: decision, Replayed: true}, nil
		}
	}

	meeting, err := uc.Meetings.GetMeeting(ctx, strings.TrimSpace(cmd.MeetingID))
	if err != nil {
		return CreateDecisionResult{}, err
	}
	if err := lifecycle.Guard(meeting, lifecycle.OpCreateDecision); err != nil {
		uc.logBlocked(logger, meeting, lifecycle.OpCreateDecision)
		return CreateDecisionResult{}, err
	}

	decisionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CreateDecisionResult{}, err
	}
	decision := entities.Decision{
		DecisionID:  decisionID,
		MeetingID:   meeting.MeetingID,
		Title:       strings.TrimSpace(cmd.Title),
		Description: strings.TrimSpace(cmd.Description),
		Tally: entities.Tally{
			YesLandShare:     decimal.Zero,
			NoLandShare:      decimal.Zero,
			AbstainLandShare: decimal.Zero,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.Meetings.CreateDecision(ctx, decision); err != nil {
		return CreateDecisionResult{}, err
	}
	if err := appendEvent(ctx, uc.Outbox, uc.IDGen, contractsv1.EventDecisionCreated, meeting.MeetingID, now, map[string]any{
		"meeting_id":  meeting.MeetingID,
		"decision_id": decision.DecisionID,
		"title":       decision.Title,
	}); err != nil {
		return CreateDecisionResult{}, err
	}
	if key != "" && uc.Idempotency != nil {
		if err := uc.Idempotency.Put(ctx, ports.IdempotencyRecord{
			Key:         key,
			RequestHash: requestHash,
			ResourceID:  decision.DecisionID,
			ExpiresAt:   now.Add(resolveTTL(uc.IdempotencyTTL)),
		}); err != nil {
			return CreateDecisionResult{}, err
		}
	}

	logger.Info("decision created",
		"event", "governance_decision_created",
		"module", "assembly-governance/governance-engine",
		"layer", "application",
		"meeting_id", meeting.MeetingID,
		"decision_id", decision.DecisionID,
	)
	return CreateDecisionResult{Decision: decision}, nil
}

// CastVotes records the given choices over the decision's existing votes,
// one per unit with the latest winning, then re-tallies the decision against
// the attending population. Votes and tallies are written together.
func (uc DecisionUseCase) CastVotes(ctx context.Context, cmd CastVotesCommand) (CastVotesResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.DecisionID) == "" || len(cmd.Votes) == 0 {
		return CastVotesResult{}, domainerrors.ErrInvalidInput
	}
	for _, vote := range cmd.Votes {
		if strings.TrimSpace(vote.UnitID) == "" || !vote.Choice.Valid() {
			return CastVotesResult{}, domainerrors.ErrInvalidInput
		}
	}

	decision, err := uc.Meetings.GetDecision(ctx, strings.TrimSpace(cmd.DecisionID))
	if err != nil {
		return CastVotesResult{}, err
	}
	snapshot, err := uc.Meetings.GetMeetingSnapshot(ctx, decision.MeetingID)
	if err != nil {
		return CastVotesResult{}, err
	}
	if err := lifecycle.Guard(snapshot.Meeting, lifecycle.OpCastVote); err != nil {
		uc.logBlocked(logger, snapshot.Meeting, lifecycle.OpCastVote)
		return CastVotesResult{}, err
	}
	units, err := uc.Sites.ListUnits(ctx, snapshot.Meeting.SiteID)
	if err != nil {
		return CastVotesResult{}, err
	}
	index := entities.IndexActiveUnits(units)

	existing := snapshot.VotesFor(decision.DecisionID)
	existingIDs := make(map[string]string, len(existing))
	for _, vote := range existing {
		existingIDs[vote.UnitID] = vote.VoteID
	}

	now := uc.now()
	incoming := make([]entities.Vote, 0, len(cmd.Votes))
	for _, input := range cmd.Votes {
		unitID := strings.TrimSpace(input.UnitID)
		if _, ok := index.Lookup(unitID); !ok {
			return CastVotesResult{}, domainerrors.ErrUnitNotFound
		}
		if _, attending := snapshot.AttendanceFor(unitID); !attending {
			logger.Warn("vote rejected for non-attending unit",
				"event", "governance_vote_not_attending",
				"module", "assembly-governance/governance-engine",
				"layer", "application",
				"decision_id", decision.DecisionID,
				"unit_id", unitID,
			)
			return CastVotesResult{}, domainerrors.ErrVoterNotAttending
		}
		voteID, ok := existingIDs[unitID]
		if !ok {
			voteID, err = uc.IDGen.NewID(ctx)
			if err != nil {
				return CastVotesResult{}, err
			}
			existingIDs[unitID] = voteID
		}
		incoming = append(incoming, entities.Vote{
			VoteID:     voteID,
			DecisionID: decision.DecisionID,
			UnitID:     unitID,
			Choice:     input.Choice,
			CastAt:     now,
		})
	}

	merged := tally.Merge(existing, incoming)
	updated := tally.TallyAndApprove(decision, merged, units, snapshot.Attendances)
	updated.UpdatedAt = now
	if err := uc.Meetings.ReplaceVotes(ctx, updated, merged); err != nil {
		return CastVotesResult{}, err
	}
	if err := appendEvent(ctx, uc.Outbox, uc.IDGen, contractsv1.EventDecisionTallied, snapshot.Meeting.MeetingID, now, map[string]any{
		"meeting_id":         snapshot.Meeting.MeetingID,
		"decision_id":        updated.DecisionID,
		"yes_votes":          updated.Tally.YesVotes,
		"no_votes":           updated.Tally.NoVotes,
		"abstain_votes":      updated.Tally.AbstainVotes,
		"yes_land_share":     updated.Tally.YesLandShare.StringFixed(2),
		"no_land_share":      updated.Tally.NoLandShare.StringFixed(2),
		"abstain_land_share": updated.Tally.AbstainLandShare.StringFixed(2),
		"is_approved":        updated.IsApproved,
	}); err != nil {
		return CastVotesResult{}, err
	}

	logger.Info("decision votes tallied",
		"event", "governance_decision_tallied",
		"module", "assembly-governance/governance-engine",
		"layer", "application",
		"meeting_id", snapshot.Meeting.MeetingID,
		"decision_id", updated.DecisionID,
		"vote_count", len(merged),
		"is_approved", updated.IsApproved,
	)
	return CastVotesResult{Decision: updated, Votes: merged}, nil
}

func (uc DecisionUseCase) SetDecisionText(ctx context.Context, cmd SetDecisionTextCommand) (entities.Decision, error) {
	if strings.TrimSpace(cmd.DecisionID) == "" || !optionalWithin(cmd.Text, maxDecisionTextLength) {
		return entities.Decision{}, domainerrors.ErrInvalidInput
	}
	decision, err := uc.Meetings.GetDecision(ctx, strings.TrimSpace(cmd.DecisionID))
	if err != nil {
		return entities.Decision{}, err
	}
	meeting, err := uc.Meetings.GetMeeting(ctx, decision.MeetingID)
	if err != nil {
		return entities.Decision{}, err
	}
	if err := lifecycle.Guard(meeting, lifecycle.OpEditDecision); err != nil {
		uc.logBlocked(application.ResolveLogger(uc.Logger), meeting, lifecycle.OpEditDecision)
		return entities.Decision{}, err
	}

	now := uc.now()
	text := strings.TrimSpace(cmd.Text)
	if err := uc.Meetings.UpdateDecisionText(ctx, decision.DecisionID, text, now); err != nil {
		return entities.Decision{}, err
	}
	decision.DecisionText = text
	decision.UpdatedAt = now
	return decision, nil
}

func (uc DecisionUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

func (uc DecisionUseCase) logBlocked(logger *slog.Logger, meeting entities.Meeting, op lifecycle.Operation) {
	logger.Warn("decision operation blocked by lifecycle",
		"event", "governance_operation_blocked",
		"module", "assembly-governance/governance-engine",
		"layer", "application",
		"meeting_id", meeting.MeetingID,
		"operation", string(op),
		"state", string(meeting.State()),
	)
}
