package flashcard

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/lukamv/studysuite/internal/models"
)

var deckFileRe = regexp.MustCompile(`^ch_(\d+)\.json$`)

// DeckFile is a chapter deck found on disk.
type DeckFile struct {
	Chapter int
	Path    string
}

// FindDeckFiles lists chapter decks (ch_NN.json) in a directory,
// ordered by chapter number.
func FindDeckFiles(dir string) ([]DeckFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []DeckFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := deckFileRe.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		chapter, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		files = append(files, DeckFile{Chapter: chapter, Path: filepath.Join(dir, entry.Name())})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Chapter < files[j].Chapter })
	return files, nil
}

type cardJSON struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// LoadDeckFile parses a chapter deck. Cards with an empty question are
// skipped rather than failing the whole deck.
func LoadDeckFile(path string) ([]models.Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []cardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse deck %s: %w", filepath.Base(path), err)
	}
	var cards []models.Card
	for _, c := range raw {
		if c.Question == "" {
			continue
		}
		cards = append(cards, models.Card{Front: c.Question, Back: c.Answer})
	}
	return cards, nil
}

// LoadTitles reads the optional titles.json chapter-title map. A missing
// or unreadable file yields an empty map.
func LoadTitles(dir string) map[int]string {
	data, err := os.ReadFile(filepath.Join(dir, "titles.json"))
	if err != nil {
		return map[int]string{}
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return map[int]string{}
	}
	titles := make(map[int]string, len(raw))
	for k, v := range raw {
		if n, err := strconv.Atoi(k); err == nil {
			titles[n] = v
		}
	}
	return titles
}

// DeckTitle formats a chapter heading, using the title map when it has
// an entry for the chapter.
func DeckTitle(titles map[int]string, chapter int) string {
	if t, ok := titles[chapter]; ok && t != "" {
		return fmt.Sprintf("Chapter %d - %s", chapter, t)
	}
	return fmt.Sprintf("Chapter %d", chapter)
}
