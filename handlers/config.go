package handlers

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/peisong-zhang/Human-AI-comparison/experiment"
	"github.com/peisong-zhang/Human-AI-comparison/middleware"
	"github.com/peisong-zhang/Human-AI-comparison/models"
)

type ConfigHandler struct {
	loader *experiment.Loader
}

func NewConfigHandler(loader *experiment.Loader) *ConfigHandler {
	return &ConfigHandler{loader: loader}
}

// GetConfig handles GET /api/config
// Returns the full experiment definition: groups with stage sequences, modes,
// subsets with per-mode case counts, and participant roles.
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	expCfg, err := h.loader.Load()
	if err != nil {
		slog.Error("failed to load experiment config", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Experiment config unavailable")
		return
	}

	lang := middleware.RequestLanguage(r)
	root := h.loader.ProjectRoot()

	groups := make([]models.ConfigGroup, 0, len(expCfg.Groups))
	for groupID, group := range expCfg.Groups {
		sequence := make([]models.ConfigStage, 0, len(group.Sequence))
		for _, stage := range group.Sequence {
			sequence = append(sequence, models.ConfigStage{
				SubsetID: stage.SubsetID,
				ModeID:   stage.ModeID,
				Label:    stage.Label,
			})
		}
		groups = append(groups, models.ConfigGroup{
			GroupID:        groupID,
			Name:           group.Name,
			PerItemSeconds: group.PerItemSeconds,
			HardTimeout:    group.HardTimeout,
			SoftTimeout:    group.SoftTimeout,
			Quota:          group.Quota,
			Sequence:       sequence,
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].GroupID < groups[j].GroupID })

	modes := make([]models.ConfigMode, 0, len(expCfg.Modes))
	for modeID, mode := range expCfg.Modes {
		modes = append(modes, models.ConfigMode{
			ModeID:             modeID,
			Name:               mode.Name,
			TaskMarkdown:       mode.TaskMarkdown,
			GuidelinesMarkdown: mode.GuidelinesMarkdown,
			Randomize:          mode.Randomize,
			AIEnabled:          mode.AIEnabled,
			PerItemSeconds:     mode.PerItemSeconds,
		})
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i].ModeID < modes[j].ModeID })

	subsets := make([]models.ConfigSubset, 0, len(expCfg.Subsets))
	for subsetID, subset := range expCfg.Subsets {
		counts := make(map[string]int, len(subset.ImageDirs))
		for modeID := range subset.ImageDirs {
			dir, err := expCfg.ImageDir(subsetID, modeID, lang, root)
			if err != nil {
				counts[modeID] = 0
				continue
			}
			entries, err := experiment.ListImages(dir, subsetID, modeID)
			if err != nil {
				slog.Warn("failed to list subset images", "subset_id", subsetID, "mode_id", modeID, "error", err)
				counts[modeID] = 0
				continue
			}
			counts[modeID] = len(entries)
		}
		subsets = append(subsets, models.ConfigSubset{
			SubsetID:    subsetID,
			Name:        subset.Name,
			Description: subset.Description,
			CaseCounts:  counts,
		})
	}
	sort.Slice(subsets, func(i, j int) bool { return subsets[i].SubsetID < subsets[j].SubsetID })

	roles := expCfg.ParticipantRoles
	if roles == nil {
		roles = []string{}
	}

	middleware.JSONResponse(w, http.StatusOK, models.ConfigResponse{
		BatchID:               expCfg.BatchID,
		DefaultPerItemSeconds: expCfg.DefaultPerItemSeconds,
		AllowResume:           expCfg.AllowResume,
		ParticipantRoles:      roles,
		Groups:                groups,
		Modes:                 modes,
		Subsets:               subsets,
	})
}
