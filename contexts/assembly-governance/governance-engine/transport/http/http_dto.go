package http

// Land shares and percentages travel as decimal strings.

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type CreateMeetingRequest struct {
	SiteID      string `json:"site_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	MeetingDate string `json:"meeting_date"`
}

type MeetingResponse struct {
	MeetingID          string  `json:"meeting_id"`
	SiteID             string  `json:"site_id"`
	Title              string  `json:"title"`
	Description        string  `json:"description,omitempty"`
	MeetingDate        string  `json:"meeting_date"`
	State              string  `json:"state"`
	TotalUnitCount     int     `json:"total_unit_count"`
	TotalSiteLandShare string  `json:"total_site_land_share"`
	AttendedUnitCount  int     `json:"attended_unit_count"`
	AttendedLandShare  string  `json:"attended_land_share"`
	QuorumAchieved     bool    `json:"quorum_achieved"`
	CompletedAt        *string `json:"completed_at,omitempty"`
	MinutesCompiledAt  *string `json:"minutes_compiled_at,omitempty"`
	Replayed           bool    `json:"replayed,omitempty"`
}

type AttendanceItem struct {
	UnitID  string `json:"unit_id"`
	IsProxy bool   `json:"is_proxy"`
	ProxyID string `json:"proxy_id,omitempty"`
}

type ProxyItem struct {
	ProxyID        string `json:"proxy_id"`
	GiverUnitID    string `json:"giver_unit_id"`
	ReceiverKind   string `json:"receiver_kind"`
	ReceiverUnitID string `json:"receiver_unit_id,omitempty"`
	ReceiverName   string `json:"receiver_name,omitempty"`
	ReceiverPhone  string `json:"receiver_phone,omitempty"`
}

type AgendaItemResponse struct {
	AgendaItemID string `json:"agenda_item_id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Order        int    `json:"order"`
}

type DocumentResponse struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Type       string `json:"type"`
	TypeLabel  string `json:"type_label"`
}

type TallyResponse struct {
	YesVotes         int    `json:"yes_votes"`
	NoVotes          int    `json:"no_votes"`
	AbstainVotes     int    `json:"abstain_votes"`
	YesLandShare     string `json:"yes_land_share"`
	NoLandShare      string `json:"no_land_share"`
	AbstainLandShare string `json:"abstain_land_share"`
}

type DecisionResponse struct {
	DecisionID   string        `json:"decision_id"`
	MeetingID    string        `json:"meeting_id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	DecisionText string        `json:"decision_text,omitempty"`
	Tally        TallyResponse `json:"tally"`
	IsApproved   bool          `json:"is_approved"`
	Replayed     bool          `json:"replayed,omitempty"`
}

type QuorumResponse struct {
	Achieved          bool   `json:"achieved"`
	UnitsAchieved     bool   `json:"units_achieved"`
	LandShareAchieved bool   `json:"land_share_achieved"`
	UnitPercent       string `json:"unit_percent"`
	LandSharePercent  string `json:"land_share_percent"`
	Message           string `json:"message"`
	Persisted         bool   `json:"persisted"`
}

type MeetingDetailResponse struct {
	Meeting     MeetingResponse      `json:"meeting"`
	Quorum      QuorumResponse       `json:"quorum"`
	Attendances []AttendanceItem     `json:"attendances"`
	Proxies     []ProxyItem          `json:"proxies"`
	AgendaItems []AgendaItemResponse `json:"agenda_items"`
	Documents   []DocumentResponse   `json:"documents"`
	Decisions   []DecisionResponse   `json:"decisions"`
}

type GateItem struct {
	Operation string `json:"operation"`
	Permitted bool   `json:"permitted"`
	Reason    string `json:"reason,omitempty"`
}

type GatesResponse struct {
	MeetingID string     `json:"meeting_id"`
	Items     []GateItem `json:"items"`
}

type AddAttendanceRequest struct {
	UnitIDs []string `json:"unit_ids"`
}

type AddAttendanceResponse struct {
	Added   []string `json:"added"`
	Skipped []string `json:"skipped"`
}

type GrantProxiesRequest struct {
	GiverUnitIDs   []string `json:"giver_unit_ids"`
	ReceiverUnitID string   `json:"receiver_unit_id,omitempty"`
	ReceiverName   string   `json:"receiver_name,omitempty"`
	ReceiverPhone  string   `json:"receiver_phone,omitempty"`
}

type ProxyLimitsResponse struct {
	CountAfter        int    `json:"count_after"`
	MaxCount          int    `json:"max_count"`
	LandShareAfter    string `json:"land_share_after"`
	MaxLandShare      string `json:"max_land_share"`
	CountExceeded     bool   `json:"count_exceeded"`
	LandShareExceeded bool   `json:"land_share_exceeded"`
	Message           string `json:"message"`
}

type GrantProxiesResponse struct {
	Proxies  []ProxyItem         `json:"proxies"`
	Accepted []string            `json:"accepted"`
	Skipped  []string            `json:"skipped"`
	Limits   ProxyLimitsResponse `json:"limits"`
}

type ProxyCapsResponse struct {
	TotalUnitCount int    `json:"total_unit_count"`
	TotalLandShare string `json:"total_land_share"`
	MaxCount       int    `json:"max_count"`
	MaxLandShare   string `json:"max_land_share"`
}

type AddAgendaItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
}

type AddDocumentRequest struct {
	Title   string `json:"title"`
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

type CreateDecisionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type VoteItem struct {
	UnitID string `json:"unit_id"`
	Choice string `json:"choice"`
}

type CastVotesRequest struct {
	Votes []VoteItem `json:"votes"`
}

type SetDecisionTextRequest struct {
	Text string `json:"text"`
}

type MinutesResponse struct {
	MeetingID  string `json:"meeting_id"`
	Text       string `json:"text"`
	CompiledAt string `json:"compiled_at"`
	Replayed   bool   `json:"replayed"`
}
