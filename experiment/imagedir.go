package experiment

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
)

// ErrNoImageDir is returned when a subset has no image directory entry for a
// requested mode.
var ErrNoImageDir = errors.New("no image directory configured")

// ImageDirSpec is a tagged variant: either a single directory path or a map
// of language code to directory. In JSON it is written as a plain string or
// as an object.
type ImageDirSpec struct {
	Path       string
	ByLanguage map[string]string
}

func (s *ImageDirSpec) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		s.Path = single
		s.ByLanguage = nil
		return nil
	}
	var byLang map[string]string
	if err := json.Unmarshal(data, &byLang); err != nil {
		return fmt.Errorf("image dir must be a path or a language map: %w", err)
	}
	if len(byLang) == 0 {
		return errors.New("image dir language map must not be empty")
	}
	s.Path = ""
	s.ByLanguage = byLang
	return nil
}

func (s ImageDirSpec) MarshalJSON() ([]byte, error) {
	if s.ByLanguage == nil {
		return json.Marshal(s.Path)
	}
	return json.Marshal(s.ByLanguage)
}

// Resolve picks the directory for a language: exact match, then "en", then
// the first key in sorted order. Single-path specs ignore the language.
func (s ImageDirSpec) Resolve(lang string) string {
	if s.ByLanguage == nil {
		return s.Path
	}
	if lang != "" {
		if dir, ok := s.ByLanguage[lang]; ok {
			return dir
		}
	}
	if dir, ok := s.ByLanguage["en"]; ok {
		return dir
	}
	keys := make([]string, 0, len(s.ByLanguage))
	for k := range s.ByLanguage {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return s.ByLanguage[keys[0]]
}

// ImageDir resolves the on-disk image directory for a (subset, mode) pair.
// Relative paths are joined onto root; absolute paths are used verbatim.
func (c *Config) ImageDir(subsetID, modeID, lang, root string) (string, error) {
	subset, ok := c.Subsets[subsetID]
	if !ok {
		return "", fmt.Errorf("unknown subset %q", subsetID)
	}
	spec, ok := subset.ImageDirs[modeID]
	if !ok {
		return "", fmt.Errorf("%w: subset %q mode %q", ErrNoImageDir, subsetID, modeID)
	}
	dir := spec.Resolve(lang)
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir), nil
	}
	return filepath.Join(root, dir), nil
}
