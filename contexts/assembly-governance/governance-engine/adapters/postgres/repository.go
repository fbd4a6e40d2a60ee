package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"condogov/contexts/assembly-governance/governance-engine/domain/entities"
	domainerrors "condogov/contexts/assembly-governance/governance-engine/domain/errors"
	"condogov/contexts/assembly-governance/governance-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the governance tables.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(
		&siteModel{},
		&unitModel{},
		&meetingModel{},
		&attendanceModel{},
		&proxyModel{},
		&agendaItemModel{},
		&documentModel{},
		&decisionModel{},
		&voteModel{},
		&idempotencyModel{},
		&outboxModel{},
	); err != nil {
		return r.logError("governance_repo_migrate_failed", err)
	}
	return nil
}

func (r *Repository) GetSite(ctx context.Context, siteID string) (entities.Site, error) {
	var row siteModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(siteID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Site{}, domainerrors.ErrSiteNotFound
		}
		return entities.Site{}, r.logError("governance_repo_get_site_failed", err, "site_id", strings.TrimSpace(siteID))
	}
	return row.toEntity(), nil
}

func (r *Repository) ListUnits(ctx context.Context, siteID string) ([]entities.Unit, error) {
	var rows []unitModel
	if err := r.db.WithContext(ctx).
		Where("site_id = ?", strings.TrimSpace(siteID)).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_units_failed", err, "site_id", strings.TrimSpace(siteID))
	}
	items := make([]entities.Unit, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// SaveSite upserts a site row.
func (r *Repository) SaveSite(ctx context.Context, site entities.Site) error {
	row := siteModel{
		ID:             strings.TrimSpace(site.SiteID),
		Name:           strings.TrimSpace(site.Name),
		Address:        strings.TrimSpace(site.Address),
		TotalLandShare: site.TotalLandShare,
		IsActive:       site.IsActive,
		CreatedAt:      site.CreatedAt.UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "address", "total_land_share", "is_active"}),
		}).
		Create(&row).
		Error
	if err != nil {
		return r.logError("governance_repo_save_site_failed", err, "site_id", row.ID)
	}
	return nil
}

// SaveUnit upserts a unit row. The owning site must exist.
func (r *Repository) SaveUnit(ctx context.Context, unit entities.Unit) error {
	if _, err := r.GetSite(ctx, unit.SiteID); err != nil {
		return err
	}
	row := unitModelFromEntity(unit)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"site_id", "number", "block", "owner_name", "phone", "email", "land_share", "is_active",
			}),
		}).
		Create(&row).
		Error
	if err != nil {
		return r.logError("governance_repo_save_unit_failed", err, "unit_id", row.ID)
	}
	return nil
}

func (r *Repository) GetMeeting(ctx context.Context, meetingID string) (entities.Meeting, error) {
	row, err := r.loadMeeting(r.db.WithContext(ctx), strings.TrimSpace(meetingID))
	if err != nil {
		if errors.Is(err, domainerrors.ErrMeetingNotFound) {
			return entities.Meeting{}, err
		}
		return entities.Meeting{}, r.logError("governance_repo_get_meeting_failed", err, "meeting_id", strings.TrimSpace(meetingID))
	}
	return row.toEntity(), nil
}

// GetMeetingSnapshot reads the whole aggregate inside one read transaction so
// the parts are mutually consistent.
func (r *Repository) GetMeetingSnapshot(ctx context.Context, meetingID string) (entities.MeetingSnapshot, error) {
	meetingID = strings.TrimSpace(meetingID)
	var snapshot entities.MeetingSnapshot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		meeting, err := r.loadMeeting(tx, meetingID)
		if err != nil {
			return err
		}
		snapshot.Meeting = meeting.toEntity()

		var attendances []attendanceModel
		if err := tx.Where("meeting_id = ?", meetingID).Order("unit_id ASC").Find(&attendances).Error; err != nil {
			return err
		}
		for _, row := range attendances {
			snapshot.Attendances = append(snapshot.Attendances, row.toEntity())
		}

		var proxies []proxyModel
		if err := tx.Where("meeting_id = ?", meetingID).Order("created_at ASC, id ASC").Find(&proxies).Error; err != nil {
			return err
		}
		for _, row := range proxies {
			snapshot.Proxies = append(snapshot.Proxies, row.toEntity())
		}

		var agenda []agendaItemModel
		if err := tx.Where("meeting_id = ?", meetingID).Order("item_order ASC, created_at ASC, id ASC").Find(&agenda).Error; err != nil {
			return err
		}
		for _, row := range agenda {
			snapshot.AgendaItems = append(snapshot.AgendaItems, row.toEntity())
		}

		var documents []documentModel
		if err := tx.Where("meeting_id = ?", meetingID).Order("created_at ASC, id ASC").Find(&documents).Error; err != nil {
			return err
		}
		for _, row := range documents {
			snapshot.Documents = append(snapshot.Documents, row.toEntity())
		}

		var decisions []decisionModel
		if err := tx.Where("meeting_id = ?", meetingID).Order("created_at ASC, id ASC").Find(&decisions).Error; err != nil {
			return err
		}
		decisionIDs := make([]string, 0, len(decisions))
		for _, row := range decisions {
			snapshot.Decisions = append(snapshot.Decisions, row.toEntity())
			decisionIDs = append(decisionIDs, row.ID)
		}
		if len(decisionIDs) == 0 {
			return nil
		}

		var votes []voteModel
		if err := tx.Where("decision_id IN ?", decisionIDs).Order("decision_id ASC, unit_id ASC").Find(&votes).Error; err != nil {
			return err
		}
		for _, row := range votes {
			snapshot.Votes = append(snapshot.Votes, row.toEntity())
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrMeetingNotFound) {
			return entities.MeetingSnapshot{}, err
		}
		return entities.MeetingSnapshot{}, r.logError("governance_repo_get_meeting_snapshot_failed", err, "meeting_id", meetingID)
	}
	return snapshot, nil
}

func (r *Repository) GetDecision(ctx context.Context, decisionID string) (entities.Decision, error) {
	var row decisionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(decisionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Decision{}, domainerrors.ErrDecisionNotFound
		}
		return entities.Decision{}, r.logError("governance_repo_get_decision_failed", err, "decision_id", strings.TrimSpace(decisionID))
	}
	return row.toEntity(), nil
}

func (r *Repository) CreateMeeting(ctx context.Context, meeting entities.Meeting) error {
	row := meetingModelFromEntity(meeting)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("governance_repo_create_meeting_failed", err, "meeting_id", row.ID)
	}
	return nil
}

func (r *Repository) SaveQuorum(ctx context.Context, meeting entities.Meeting) error {
	result := r.db.WithContext(ctx).
		Model(&meetingModel{}).
		Where("id = ? AND is_completed = ?", strings.TrimSpace(meeting.MeetingID), false).
		Updates(map[string]any{
			"attended_unit_count": meeting.AttendedUnitCount,
			"attended_land_share": meeting.AttendedLandShare,
			"quorum_achieved":     meeting.QuorumAchieved,
			"updated_at":          meeting.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("governance_repo_save_quorum_failed", result.Error, "meeting_id", strings.TrimSpace(meeting.MeetingID))
	}
	if result.RowsAffected == 0 {
		return r.missingOrConflict(ctx, meeting.MeetingID)
	}
	return nil
}

func (r *Repository) AddAttendances(ctx context.Context, meetingID string, attendances []entities.Attendance) error {
	meetingID = strings.TrimSpace(meetingID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.lockDraftMeeting(tx, meetingID); err != nil {
			return err
		}
		rows := make([]attendanceModel, 0, len(attendances))
		for _, attendance := range attendances {
			rows = append(rows, attendanceModelFromEntity(attendance))
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	return r.writeError("governance_repo_add_attendances_failed", err, "meeting_id", meetingID)
}

// AddProxies inserts the proxies and upserts attendance rows on
// (meeting_id, unit_id) in one transaction.
func (r *Repository) AddProxies(
	ctx context.Context,
	meetingID string,
	proxies []entities.Proxy,
	attendances []entities.Attendance,
) error {
	meetingID = strings.TrimSpace(meetingID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.lockDraftMeeting(tx, meetingID); err != nil {
			return err
		}
		proxyRows := make([]proxyModel, 0, len(proxies))
		for _, proxy := range proxies {
			proxyRows = append(proxyRows, proxyModelFromEntity(proxy))
		}
		if len(proxyRows) > 0 {
			if err := tx.Create(&proxyRows).Error; err != nil {
				return err
			}
		}
		for _, attendance := range attendances {
			row := attendanceModelFromEntity(attendance)
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "meeting_id"}, {Name: "unit_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"is_proxy": row.IsProxy,
					"proxy_id": row.ProxyID,
				}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return r.writeError("governance_repo_add_proxies_failed", err, "meeting_id", meetingID, "proxy_count", len(proxies))
}

func (r *Repository) AddAgendaItem(ctx context.Context, item entities.AgendaItem) error {
	row := agendaItemModel{
		ID:          strings.TrimSpace(item.AgendaItemID),
		MeetingID:   strings.TrimSpace(item.MeetingID),
		Title:       item.Title,
		Description: item.Description,
		Order:       item.Order,
		CreatedAt:   item.CreatedAt.UTC(),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.lockDraftMeeting(tx, row.MeetingID); err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	return r.writeError("governance_repo_add_agenda_item_failed", err, "meeting_id", row.MeetingID)
}

func (r *Repository) AddDocument(ctx context.Context, document entities.Document) error {
	row := documentModel{
		ID:           strings.TrimSpace(document.DocumentID),
		MeetingID:    strings.TrimSpace(document.MeetingID),
		Title:        document.Title,
		DocumentType: string(document.Type),
		Content:      document.Content,
		CreatedAt:    document.CreatedAt.UTC(),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.lockDraftMeeting(tx, row.MeetingID); err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	return r.writeError("governance_repo_add_document_failed", err, "meeting_id", row.MeetingID)
}

func (r *Repository) CreateDecision(ctx context.Context, decision entities.Decision) error {
	row := decisionModelFromEntity(decision)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.lockDraftMeeting(tx, row.MeetingID); err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	return r.writeError("governance_repo_create_decision_failed", err, "decision_id", row.ID)
}

// ReplaceVotes swaps the decision's votes and stores its tallies together.
func (r *Repository) ReplaceVotes(ctx context.Context, decision entities.Decision, votes []entities.Vote) error {
	row := decisionModelFromEntity(decision)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.lockDraftMeeting(tx, row.MeetingID); err != nil {
			return err
		}
		if err := tx.Where("decision_id = ?", row.ID).Delete(&voteModel{}).Error; err != nil {
			return err
		}
		voteRows := make([]voteModel, 0, len(votes))
		for _, vote := range votes {
			voteRows = append(voteRows, voteModelFromEntity(vote))
		}
		if len(voteRows) > 0 {
			if err := tx.Create(&voteRows).Error; err != nil {
				return err
			}
		}
		result := tx.Model(&decisionModel{}).
			Where("id = ?", row.ID).
			Updates(map[string]any{
				"yes_votes":          row.YesVotes,
				"no_votes":           row.NoVotes,
				"abstain_votes":      row.AbstainVotes,
				"yes_land_share":     row.YesLandShare,
				"no_land_share":      row.NoLandShare,
				"abstain_land_share": row.AbstainLandShare,
				"is_approved":        row.IsApproved,
				"updated_at":         row.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrDecisionNotFound
		}
		return nil
	})
	return r.writeError("governance_repo_replace_votes_failed", err, "decision_id", row.ID, "vote_count", len(votes))
}

func (r *Repository) UpdateDecisionText(ctx context.Context, decisionID string, text string, updatedAt time.Time) error {
	decisionID = strings.TrimSpace(decisionID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var decision decisionModel
		if err := tx.Select("id", "meeting_id").Where("id = ?", decisionID).First(&decision).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrDecisionNotFound
			}
			return err
		}
		if err := r.lockDraftMeeting(tx, decision.MeetingID); err != nil {
			return err
		}
		return tx.Model(&decisionModel{}).
			Where("id = ?", decisionID).
			Updates(map[string]any{
				"decision_text": text,
				"updated_at":    updatedAt.UTC(),
			}).Error
	})
	return r.writeError("governance_repo_update_decision_text_failed", err, "decision_id", decisionID)
}

// CompleteMeeting flips a draft meeting to completed with a single
// conditional update.
func (r *Repository) CompleteMeeting(ctx context.Context, meeting entities.Meeting) error {
	row := meetingModelFromEntity(meeting)
	result := r.db.WithContext(ctx).
		Model(&meetingModel{}).
		Where("id = ? AND is_completed = ?", row.ID, false).
		Updates(map[string]any{
			"is_completed":        true,
			"completed_at":        row.CompletedAt,
			"attended_unit_count": row.AttendedUnitCount,
			"attended_land_share": row.AttendedLandShare,
			"quorum_achieved":     row.QuorumAchieved,
			"updated_at":          row.UpdatedAt,
		})
	if result.Error != nil {
		return r.logError("governance_repo_complete_meeting_failed", result.Error, "meeting_id", row.ID)
	}
	if result.RowsAffected == 0 {
		return r.missingOrConflict(ctx, row.ID)
	}
	return nil
}

// SaveMinutes stores the minutes only while none are stored and returns the
// meeting as persisted afterwards.
func (r *Repository) SaveMinutes(
	ctx context.Context,
	meetingID string,
	text string,
	compiledAt time.Time,
) (entities.Meeting, error) {
	meetingID = strings.TrimSpace(meetingID)
	result := r.db.WithContext(ctx).
		Model(&meetingModel{}).
		Where("id = ? AND is_completed = ? AND minutes_compiled_at IS NULL", meetingID, true).
		Updates(map[string]any{
			"minutes":             text,
			"minutes_compiled_at": compiledAt.UTC(),
			"updated_at":          compiledAt.UTC(),
		})
	if result.Error != nil {
		return entities.Meeting{}, r.logError("governance_repo_save_minutes_failed", result.Error, "meeting_id", meetingID)
	}
	stored, err := r.GetMeeting(ctx, meetingID)
	if err != nil {
		return entities.Meeting{}, err
	}
	if result.RowsAffected == 0 && !stored.IsCompleted {
		return entities.Meeting{}, domainerrors.ErrConflict
	}
	return stored, nil
}

func (r *Repository) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("key = ?", strings.TrimSpace(key)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, r.logError("governance_repo_idempotency_get_failed", err,
			"idempotency_key", strings.TrimSpace(key),
		)
	}
	if !row.ExpiresAt.IsZero() && now.UTC().After(row.ExpiresAt.UTC()) {
		if err := r.db.WithContext(ctx).
			Where("key = ?", strings.TrimSpace(key)).
			Delete(&idempotencyModel{}).Error; err != nil {
			return ports.IdempotencyRecord{}, false, r.logError("governance_repo_idempotency_expire_delete_failed", err,
				"idempotency_key", strings.TrimSpace(key),
			)
		}
		return ports.IdempotencyRecord{}, false, nil
	}
	return ports.IdempotencyRecord{
		Key:         row.Key,
		RequestHash: row.RequestHash,
		ResourceID:  row.ResourceID,
		ExpiresAt:   row.ExpiresAt.UTC(),
	}, true, nil
}

func (r *Repository) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:         strings.TrimSpace(record.Key),
		RequestHash: strings.TrimSpace(record.RequestHash),
		ResourceID:  strings.TrimSpace(record.ResourceID),
		ExpiresAt:   record.ExpiresAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("governance_repo_idempotency_put_failed", create.Error, "idempotency_key", row.Key)
	}
	if create.RowsAffected > 0 {
		return nil
	}
	var existing idempotencyModel
	if err := r.db.WithContext(ctx).
		Where("key = ?", row.Key).
		First(&existing).Error; err != nil {
		return r.logError("governance_repo_idempotency_load_existing_failed", err, "idempotency_key", row.Key)
	}
	if existing.RequestHash != row.RequestHash || existing.ResourceID != row.ResourceID {
		return domainerrors.ErrIdempotencyConflict
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("governance_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("governance_repo_append_outbox_insert_failed", create.Error, "outbox_id", row.OutboxID)
	}
	if create.RowsAffected > 0 {
		return nil
	}
	var existing outboxModel
	if err := r.db.WithContext(ctx).
		Select("payload").
		Where("outbox_id = ?", row.OutboxID).
		First(&existing).Error; err != nil {
		return r.logError("governance_repo_append_outbox_load_existing_failed", err, "outbox_id", row.OutboxID)
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC, outbox_id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("governance_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) loadMeeting(tx *gorm.DB, meetingID string) (meetingModel, error) {
	var row meetingModel
	if err := tx.Where("id = ?", meetingID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return meetingModel{}, domainerrors.ErrMeetingNotFound
		}
		return meetingModel{}, err
	}
	return row, nil
}

// lockDraftMeeting takes a row lock on the meeting so concurrent writers
// observe the completion transition in order.
func (r *Repository) lockDraftMeeting(tx *gorm.DB, meetingID string) error {
	var row meetingModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "is_completed").
		Where("id = ?", strings.TrimSpace(meetingID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrMeetingNotFound
		}
		return err
	}
	if row.IsCompleted {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) missingOrConflict(ctx context.Context, meetingID string) error {
	if _, err := r.GetMeeting(ctx, meetingID); err != nil {
		return err
	}
	return domainerrors.ErrConflict
}

// writeError maps transaction failures onto domain errors and logs the rest.
func (r *Repository) writeError(event string, err error, attrs ...any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domainerrors.ErrMeetingNotFound),
		errors.Is(err, domainerrors.ErrDecisionNotFound),
		errors.Is(err, domainerrors.ErrConflict):
		return err
	case isUniqueViolation(err):
		return domainerrors.ErrConflict
	default:
		return r.logError(event, err, attrs...)
	}
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "assembly-governance/governance-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("governance repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.SiteRepository = (*Repository)(nil)
var _ ports.MeetingRepository = (*Repository)(nil)
var _ ports.IdempotencyStore = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
