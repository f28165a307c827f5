package experiment

import (
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// ItemEntry is one catalog entry for a (subset, mode) directory.
type ItemEntry struct {
	ImageID  string
	Filename string
	Title    string
	URL      string
}

// ListImages enumerates the image files under dir, recursively, sorted by
// relative path. The directory is created if absent, so a misconfigured path
// yields an empty catalog rather than a hard failure. An empty result is not
// an error; callers decide whether an empty stage is acceptable.
func ListImages(dir, subsetID, modeID string) ([]ItemEntry, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}

	entries := []ItemEntry{}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		entries = append(entries, ItemEntry{
			ImageID:  strings.TrimSuffix(rel, path.Ext(rel)),
			Filename: rel,
			Title:    TitleFromPath(rel),
			URL:      "/images/subsets/" + subsetID + "/" + modeID + "/" + rel,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk image dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Filename < entries[j].Filename })
	return entries, nil
}

// ShuffleEntries permutes entries in place with a Fisher-Yates shuffle seeded
// by seed. The same seed always produces the same permutation.
func ShuffleEntries(entries []ItemEntry, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(entries), func(i, j int) {
		entries[i], entries[j] = entries[j], entries[i]
	})
}

// TitleFromPath turns "chest/case_04.png" into "Case 04".
func TitleFromPath(rel string) string {
	stem := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	words := strings.Fields(strings.ReplaceAll(stem, "_", " "))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
