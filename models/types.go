package models

import "time"

// Request types

type SessionStartRequest struct {
	ParticipantID   string `json:"participant_id"`
	GroupID         string `json:"group_id"`
	ParticipantRole string `json:"participant_role,omitempty"`
	UserAgent       string `json:"user_agent,omitempty"`
}

type RecordRequest struct {
	SessionID       string     `json:"session_id"`
	ImageID         string     `json:"image_id"`
	Answer          string     `json:"answer"`
	OrderIndex      *int       `json:"order_index,omitempty"`
	ElapsedMsItem   *int64     `json:"elapsed_ms_item,omitempty"`
	ElapsedMsGlobal *int64     `json:"elapsed_ms_global,omitempty"`
	Skipped         bool       `json:"skipped,omitempty"`
	ItemTimeout     bool       `json:"item_timeout,omitempty"`
	TsClient        *time.Time `json:"ts_client,omitempty"`
	UserAgent       string     `json:"user_agent,omitempty"`
}

type SessionFinishRequest struct {
	SessionID      string `json:"session_id"`
	TotalElapsedMs *int64 `json:"total_elapsed_ms,omitempty"`
}

// Response types

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type SessionItem struct {
	ImageID    string `json:"image_id"`
	Filename   string `json:"filename"`
	Title      string `json:"title"`
	OrderIndex int    `json:"order_index"`
	SubsetID   string `json:"subset_id"`
	StageIndex int    `json:"stage_index"`
	ModeID     string `json:"mode_id"`
	URL        string `json:"url"`
}

// SessionStage carries the metadata shown for one stage of a session.
// On resume the ids and item count come from the stored item rows; label and
// markdown always come from the currently loaded config.
type SessionStage struct {
	StageIndex         int    `json:"stage_index"`
	SubsetID           string `json:"subset_id"`
	ModeID             string `json:"mode_id"`
	Label              string `json:"label,omitempty"`
	ModeName           string `json:"mode_name"`
	TaskMarkdown       string `json:"task_markdown"`
	GuidelinesMarkdown string `json:"guidelines_markdown"`
	Randomize          bool   `json:"randomize"`
	AIEnabled          bool   `json:"ai_enabled"`
	PerItemSeconds     int    `json:"per_item_seconds"`
	ItemCount          int    `json:"item_count"`
}

type SessionStartResponse struct {
	SessionID       string         `json:"session_id"`
	BatchID         string         `json:"batch_id"`
	GroupID         string         `json:"group_id"`
	ParticipantID   string         `json:"participant_id"`
	ParticipantRole string         `json:"participant_role,omitempty"`
	AllowResume     bool           `json:"allow_resume"`
	Resumed         bool           `json:"resumed"`
	Stages          []SessionStage `json:"stages"`
	Items           []SessionItem  `json:"items"`
}

type ConfigStage struct {
	SubsetID string `json:"subset_id"`
	ModeID   string `json:"mode_id"`
	Label    string `json:"label,omitempty"`
}

type ConfigGroup struct {
	GroupID        string        `json:"group_id"`
	Name           string        `json:"name"`
	PerItemSeconds *int          `json:"per_item_seconds,omitempty"`
	HardTimeout    bool          `json:"hard_timeout"`
	SoftTimeout    bool          `json:"soft_timeout"`
	Quota          *int          `json:"quota,omitempty"`
	Sequence       []ConfigStage `json:"sequence"`
}

type ConfigMode struct {
	ModeID             string `json:"mode_id"`
	Name               string `json:"name"`
	TaskMarkdown       string `json:"task_markdown"`
	GuidelinesMarkdown string `json:"guidelines_markdown"`
	Randomize          bool   `json:"randomize"`
	AIEnabled          bool   `json:"ai_enabled"`
	PerItemSeconds     *int   `json:"per_item_seconds,omitempty"`
}

type ConfigSubset struct {
	SubsetID    string         `json:"subset_id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	CaseCounts  map[string]int `json:"case_counts"`
}

type ConfigResponse struct {
	BatchID               string         `json:"batch_id"`
	DefaultPerItemSeconds int            `json:"default_per_item_seconds"`
	AllowResume           bool           `json:"allow_resume"`
	ParticipantRoles      []string       `json:"participant_roles"`
	Groups                []ConfigGroup  `json:"groups"`
	Modes                 []ConfigMode   `json:"modes"`
	Subsets               []ConfigSubset `json:"subsets"`
}

// Domain types

type Session struct {
	SessionID       string     `json:"session_id"`
	ParticipantID   string     `json:"participant_id"`
	GroupID         string     `json:"group_id"`
	ParticipantRole *string    `json:"participant_role,omitempty"`
	BatchID         string     `json:"batch_id"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	UserAgent       *string    `json:"-"` // Never expose in JSON
	IPHash          *string    `json:"-"` // Never expose in JSON
	TotalElapsedMs  *int64     `json:"total_elapsed_ms,omitempty"`
}

type Item struct {
	SessionID  string `json:"session_id"`
	ImageID    string `json:"image_id"`
	Filename   string `json:"filename"`
	OrderIndex int    `json:"order_index"`
	SubsetID   string `json:"subset_id"`
	StageIndex int    `json:"stage_index"`
	ModeID     string `json:"mode_id"`
}

type Record struct {
	SessionID       string     `json:"session_id"`
	ImageID         string     `json:"image_id"`
	Answer          string     `json:"answer"`
	OrderIndex      *int       `json:"order_index,omitempty"`
	ElapsedMsItem   *int64     `json:"elapsed_ms_item,omitempty"`
	ElapsedMsGlobal *int64     `json:"elapsed_ms_global,omitempty"`
	Skipped         bool       `json:"skipped"`
	ItemTimeout     bool       `json:"item_timeout"`
	TsServer        time.Time  `json:"ts_server"`
	TsClient        *time.Time `json:"ts_client,omitempty"`
	UserAgent       *string    `json:"-"` // Never expose in JSON
	IPHash          *string    `json:"-"` // Never expose in JSON
	SubsetID        *string    `json:"subset_id,omitempty"`
	StageIndex      *int       `json:"stage_index,omitempty"`
	ModeID          *string    `json:"mode_id,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
