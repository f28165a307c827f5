package experiment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Stage is one (subset, mode) pairing within a group's sequence.
type Stage struct {
	SubsetID string `json:"subset_id"`
	ModeID   string `json:"mode_id"`
	Label    string `json:"label,omitempty"`
}

type GroupConfig struct {
	Name           string  `json:"name"`
	PerItemSeconds *int    `json:"per_item_seconds,omitempty"`
	HardTimeout    bool    `json:"hard_timeout"`
	SoftTimeout    bool    `json:"soft_timeout"`
	Quota          *int    `json:"quota,omitempty"`
	Sequence       []Stage `json:"sequence"`
}

func (g *GroupConfig) UnmarshalJSON(data []byte) error {
	type alias GroupConfig
	tmp := alias{SoftTimeout: true}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*g = GroupConfig(tmp)
	return nil
}

type ModeConfig struct {
	Name               string `json:"name"`
	TaskMarkdown       string `json:"task_markdown"`
	GuidelinesMarkdown string `json:"guidelines_markdown"`
	Randomize          bool   `json:"randomize"`
	AIEnabled          bool   `json:"ai_enabled"`
	PerItemSeconds     *int   `json:"per_item_seconds,omitempty"`
}

func (m *ModeConfig) UnmarshalJSON(data []byte) error {
	type alias ModeConfig
	tmp := alias{Randomize: true}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*m = ModeConfig(tmp)
	return nil
}

type SubsetConfig struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	ImageDirs   map[string]ImageDirSpec `json:"image_dirs"`
}

// Config is the experiment definition loaded from the JSON document.
type Config struct {
	BatchID               string                  `json:"batch_id"`
	Groups                map[string]GroupConfig  `json:"groups"`
	Modes                 map[string]ModeConfig   `json:"modes"`
	Subsets               map[string]SubsetConfig `json:"subsets"`
	DefaultPerItemSeconds int                     `json:"default_per_item_seconds"`
	AllowResume           bool                    `json:"allow_resume"`
	ParticipantRoles      []string                `json:"participant_roles,omitempty"`
}

func (c *Config) UnmarshalJSON(data []byte) error {
	type alias Config
	tmp := alias{DefaultPerItemSeconds: 60, AllowResume: true}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*c = Config(tmp)
	return nil
}

// Parse decodes and validates an experiment config document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid experiment config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid experiment config: %w", err)
	}
	return &cfg, nil
}

// Validate enforces the cross-reference invariant: every stage of every
// group must point at a configured mode and subset.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BatchID) == "" {
		return errors.New("batch_id is required")
	}
	if c.DefaultPerItemSeconds < 1 {
		return errors.New("default_per_item_seconds must be at least 1")
	}
	for groupID, group := range c.Groups {
		for i, stage := range group.Sequence {
			if _, ok := c.Modes[stage.ModeID]; !ok {
				return fmt.Errorf("group %q stage %d references unknown mode %q", groupID, i, stage.ModeID)
			}
			if _, ok := c.Subsets[stage.SubsetID]; !ok {
				return fmt.Errorf("group %q stage %d references unknown subset %q", groupID, i, stage.SubsetID)
			}
		}
	}
	return nil
}

// HasRole reports whether role is one of the configured participant roles.
func (c *Config) HasRole(role string) bool {
	for _, r := range c.ParticipantRoles {
		if r == role {
			return true
		}
	}
	return false
}

// PerItemSecondsFor resolves the per-item duration for a stage: mode
// override, then group override, then the experiment default.
func (c *Config) PerItemSecondsFor(group GroupConfig, mode ModeConfig) int {
	if mode.PerItemSeconds != nil {
		return *mode.PerItemSeconds
	}
	if group.PerItemSeconds != nil {
		return *group.PerItemSeconds
	}
	return c.DefaultPerItemSeconds
}
