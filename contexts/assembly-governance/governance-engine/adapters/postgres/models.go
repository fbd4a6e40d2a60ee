package postgresadapter

import (
	"strings"
	"time"

	"condogov/contexts/assembly-governance/governance-engine/domain/entities"

	"github.com/shopspring/decimal"
)

type siteModel struct {
	ID             string          `gorm:"column:id;primaryKey"`
	Name           string          `gorm:"column:name"`
	Address        string          `gorm:"column:address"`
	TotalLandShare decimal.Decimal `gorm:"column:total_land_share;type:numeric(18,4)"`
	IsActive       bool            `gorm:"column:is_active"`
	CreatedAt      time.Time       `gorm:"column:created_at"`
}

func (siteModel) TableName() string {
	return "governance_sites"
}

func (m siteModel) toEntity() entities.Site {
	return entities.Site{
		SiteID:         m.ID,
		Name:           m.Name,
		Address:        m.Address,
		TotalLandShare: m.TotalLandShare,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

type unitModel struct {
	ID        string          `gorm:"column:id;primaryKey"`
	SiteID    string          `gorm:"column:site_id;index"`
	Number    string          `gorm:"column:number"`
	Block     string          `gorm:"column:block"`
	OwnerName string          `gorm:"column:owner_name"`
	Phone     string          `gorm:"column:phone"`
	Email     string          `gorm:"column:email"`
	LandShare decimal.Decimal `gorm:"column:land_share;type:numeric(18,4)"`
	IsActive  bool            `gorm:"column:is_active"`
	CreatedAt time.Time       `gorm:"column:created_at"`
}

func (unitModel) TableName() string {
	return "governance_units"
}

func unitModelFromEntity(unit entities.Unit) unitModel {
	return unitModel{
		ID:        strings.TrimSpace(unit.UnitID),
		SiteID:    strings.TrimSpace(unit.SiteID),
		Number:    strings.TrimSpace(unit.Number),
		Block:     strings.TrimSpace(unit.Block),
		OwnerName: strings.TrimSpace(unit.OwnerName),
		Phone:     strings.TrimSpace(unit.Phone),
		Email:     strings.TrimSpace(unit.Email),
		LandShare: unit.LandShare,
		IsActive:  unit.IsActive,
		CreatedAt: unit.CreatedAt.UTC(),
	}
}

func (m unitModel) toEntity() entities.Unit {
	return entities.Unit{
		UnitID:    m.ID,
		SiteID:    m.SiteID,
		Number:    m.Number,
		Block:     m.Block,
		OwnerName: m.OwnerName,
		Phone:     m.Phone,
		Email:     m.Email,
		LandShare: m.LandShare,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

type meetingModel struct {
	ID                 string          `gorm:"column:id;primaryKey"`
	SiteID             string          `gorm:"column:site_id"`
	Title              string          `gorm:"column:title"`
	Description        string          `gorm:"column:description"`
	MeetingDate        time.Time       `gorm:"column:meeting_date"`
	TotalUnitCount     int             `gorm:"column:total_unit_count"`
	TotalSiteLandShare decimal.Decimal `gorm:"column:total_site_land_share;type:numeric(18,4)"`
	AttendedUnitCount  int             `gorm:"column:attended_unit_count"`
	AttendedLandShare  decimal.Decimal `gorm:"column:attended_land_share;type:numeric(18,4)"`
	QuorumAchieved     bool            `gorm:"column:quorum_achieved"`
	IsCompleted        bool            `gorm:"column:is_completed"`
	CompletedAt        *time.Time      `gorm:"column:completed_at"`
	Minutes            string          `gorm:"column:minutes"`
	MinutesCompiledAt  *time.Time      `gorm:"column:minutes_compiled_at"`
	CreatedBy          string          `gorm:"column:created_by"`
	CreatedAt          time.Time       `gorm:"column:created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at"`
}

func (meetingModel) TableName() string {
	return "governance_meetings"
}

func meetingModelFromEntity(meeting entities.Meeting) meetingModel {
	row := meetingModel{
		ID:                 strings.TrimSpace(meeting.MeetingID),
		SiteID:             strings.TrimSpace(meeting.SiteID),
		Title:              meeting.Title,
		Description:        meeting.Description,
		MeetingDate:        meeting.MeetingDate.UTC(),
		TotalUnitCount:     meeting.TotalUnitCount,
		TotalSiteLandShare: meeting.TotalSiteLandShare,
		AttendedUnitCount:  meeting.AttendedUnitCount,
		AttendedLandShare:  meeting.AttendedLandShare,
		QuorumAchieved:     meeting.QuorumAchieved,
		IsCompleted:        meeting.IsCompleted,
		CompletedAt:        normalizeOptionalTime(meeting.CompletedAt),
		Minutes:            meeting.Minutes,
		MinutesCompiledAt:  normalizeOptionalTime(meeting.MinutesCompiledAt),
		CreatedBy:          strings.TrimSpace(meeting.CreatedBy),
		CreatedAt:          meeting.CreatedAt.UTC(),
		UpdatedAt:          meeting.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m meetingModel) toEntity() entities.Meeting {
	return entities.Meeting{
		MeetingID:          m.ID,
		SiteID:             m.SiteID,
		Title:              m.Title,
		Description:        m.Description,
		MeetingDate:        m.MeetingDate.UTC(),
		TotalUnitCount:     m.TotalUnitCount,
		TotalSiteLandShare: m.TotalSiteLandShare,
		AttendedUnitCount:  m.AttendedUnitCount,
		AttendedLandShare:  m.AttendedLandShare,
		QuorumAchieved:     m.QuorumAchieved,
		IsCompleted:        m.IsCompleted,
		CompletedAt:        normalizeOptionalTime(m.CompletedAt),
		Minutes:            m.Minutes,
		MinutesCompiledAt:  normalizeOptionalTime(m.MinutesCompiledAt),
		CreatedBy:          m.CreatedBy,
		CreatedAt:          m.CreatedAt.UTC(),
		UpdatedAt:          m.UpdatedAt.UTC(),
	}
}

type attendanceModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	MeetingID string    `gorm:"column:meeting_id;uniqueIndex:governance_attendances_meeting_unit"`
	UnitID    string    `gorm:"column:unit_id;uniqueIndex:governance_attendances_meeting_unit"`
	IsProxy   bool      `gorm:"column:is_proxy"`
	ProxyID   *string   `gorm:"column:proxy_id"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (attendanceModel) TableName() string {
	return "governance_attendances"
}

func attendanceModelFromEntity(attendance entities.Attendance) attendanceModel {
	row := attendanceModel{
		ID:        strings.TrimSpace(attendance.AttendanceID),
		MeetingID: strings.TrimSpace(attendance.MeetingID),
		UnitID:    strings.TrimSpace(attendance.UnitID),
		IsProxy:   attendance.IsProxy,
		CreatedAt: attendance.CreatedAt.UTC(),
	}
	if proxyID := strings.TrimSpace(attendance.ProxyID); proxyID != "" {
		row.ProxyID = &proxyID
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m attendanceModel) toEntity() entities.Attendance {
	proxyID := ""
	if m.ProxyID != nil {
		proxyID = *m.ProxyID
	}
	return entities.Attendance{
		AttendanceID: m.ID,
		MeetingID:    m.MeetingID,
		UnitID:       m.UnitID,
		IsProxy:      m.IsProxy,
		ProxyID:      proxyID,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

type proxyModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	MeetingID      string    `gorm:"column:meeting_id;uniqueIndex:governance_proxies_meeting_giver"`
	GiverUnitID    string    `gorm:"column:giver_unit_id;uniqueIndex:governance_proxies_meeting_giver"`
	ReceiverKind   string    `gorm:"column:receiver_kind"`
	ReceiverUnitID *string   `gorm:"column:receiver_unit_id"`
	ReceiverName   string    `gorm:"column:receiver_name"`
	ReceiverPhone  string    `gorm:"column:receiver_phone"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (proxyModel) TableName() string {
	return "governance_proxies"
}

func proxyModelFromEntity(proxy entities.Proxy) proxyModel {
	row := proxyModel{
		ID:           strings.TrimSpace(proxy.ProxyID),
		MeetingID:    strings.TrimSpace(proxy.MeetingID),
		GiverUnitID:  strings.TrimSpace(proxy.GiverUnitID),
		ReceiverKind: string(proxy.Receiver.Kind()),
		CreatedAt:    proxy.CreatedAt.UTC(),
	}
	if unitID, ok := proxy.Receiver.UnitID(); ok {
		row.ReceiverUnitID = &unitID
	}
	if name, phone, ok := proxy.Receiver.External(); ok {
		row.ReceiverName = name
		row.ReceiverPhone = phone
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m proxyModel) toEntity() entities.Proxy {
	receiver := entities.ExternalReceiver(m.ReceiverName, m.ReceiverPhone)
	if entities.ReceiverKind(m.ReceiverKind) == entities.ReceiverKindUnit && m.ReceiverUnitID != nil {
		receiver = entities.UnitReceiver(*m.ReceiverUnitID)
	}
	return entities.Proxy{
		ProxyID:     m.ID,
		MeetingID:   m.MeetingID,
		GiverUnitID: m.GiverUnitID,
		Receiver:    receiver,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

type agendaItemModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	MeetingID   string    `gorm:"column:meeting_id"`
	Title       string    `gorm:"column:title"`
	Description string    `gorm:"column:description"`
	Order       int       `gorm:"column:item_order"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (agendaItemModel) TableName() string {
	return "governance_agenda_items"
}

func (m agendaItemModel) toEntity() entities.AgendaItem {
	return entities.AgendaItem{
		AgendaItemID: m.ID,
		MeetingID:    m.MeetingID,
		Title:        m.Title,
		Description:  m.Description,
		Order:        m.Order,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

type documentModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	MeetingID    string    `gorm:"column:meeting_id"`
	Title        string    `gorm:"column:title"`
	DocumentType string    `gorm:"column:document_type"`
	Content      string    `gorm:"column:content"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (documentModel) TableName() string {
	return "governance_documents"
}

func (m documentModel) toEntity() entities.Document {
	return entities.Document{
		DocumentID: m.ID,
		MeetingID:  m.MeetingID,
		Title:      m.Title,
		Type:       entities.DocumentType(m.DocumentType),
		Content:    m.Content,
		CreatedAt:  m.CreatedAt.UTC(),
	}
}

type decisionModel struct {
	ID               string          `gorm:"column:id;primaryKey"`
	MeetingID        string          `gorm:"column:meeting_id"`
	Title            string          `gorm:"column:title"`
	Description      string          `gorm:"column:description"`
	DecisionText     string          `gorm:"column:decision_text"`
	YesVotes         int             `gorm:"column:yes_votes"`
	NoVotes          int             `gorm:"column:no_votes"`
	AbstainVotes     int             `gorm:"column:abstain_votes"`
	YesLandShare     decimal.Decimal `gorm:"column:yes_land_share;type:numeric(18,4)"`
	NoLandShare      decimal.Decimal `gorm:"column:no_land_share;type:numeric(18,4)"`
	AbstainLandShare decimal.Decimal `gorm:"column:abstain_land_share;type:numeric(18,4)"`
	IsApproved       bool            `gorm:"column:is_approved"`
	CreatedAt        time.Time       `gorm:"column:created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at"`
}

func (decisionModel) TableName() string {
	return "governance_decisions"
}

func decisionModelFromEntity(decision entities.Decision) decisionModel {
	row := decisionModel{
		ID:               strings.TrimSpace(decision.DecisionID),
		MeetingID:        strings.TrimSpace(decision.MeetingID),
		Title:            decision.Title,
		Description:      decision.Description,
		DecisionText:     decision.DecisionText,
		YesVotes:         decision.Tally.YesVotes,
		NoVotes:          decision.Tally.NoVotes,
		AbstainVotes:     decision.Tally.AbstainVotes,
		YesLandShare:     decision.Tally.YesLandShare,
		NoLandShare:      decision.Tally.NoLandShare,
		AbstainLandShare: decision.Tally.AbstainLandShare,
		IsApproved:       decision.IsApproved,
		CreatedAt:        decision.CreatedAt.UTC(),
		UpdatedAt:        decision.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m decisionModel) toEntity() entities.Decision {
	return entities.Decision{
		DecisionID:   m.ID,
		MeetingID:    m.MeetingID,
		Title:        m.Title,
		Description:  m.Description,
		DecisionText: m.DecisionText,
		Tally: entities.Tally{
			YesVotes:         m.YesVotes,
			NoVotes:          m.NoVotes,
			AbstainVotes:     m.AbstainVotes,
			YesLandShare:     m.YesLandShare,
			NoLandShare:      m.NoLandShare,
			AbstainLandShare: m.AbstainLandShare,
		},
		IsApproved: m.IsApproved,
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}

type voteModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	DecisionID string    `gorm:"column:decision_id;uniqueIndex:governance_votes_decision_unit"`
	UnitID     string    `gorm:"column:unit_id;uniqueIndex:governance_votes_decision_unit"`
	Choice     int       `gorm:"column:choice"`
	CastAt     time.Time `gorm:"column:cast_at"`
}

func (voteModel) TableName() string {
	return "governance_votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	row := voteModel{
		ID:         strings.TrimSpace(vote.VoteID),
		DecisionID: strings.TrimSpace(vote.DecisionID),
		UnitID:     strings.TrimSpace(vote.UnitID),
		Choice:     int(vote.Choice),
		CastAt:     vote.CastAt.UTC(),
	}
	if row.CastAt.IsZero() {
		row.CastAt = time.Now().UTC()
	}
	return row
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:     m.ID,
		DecisionID: m.DecisionID,
		UnitID:     m.UnitID,
		Choice:     entities.VoteChoice(m.Choice),
		CastAt:     m.CastAt.UTC(),
	}
}

type idempotencyModel struct {
	Key         string    `gorm:"column:key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	ResourceID  string    `gorm:"column:resource_id"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "governance_idempotency"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "governance_outbox"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}
