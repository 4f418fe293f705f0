package flashcard_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukamv/studysuite/internal/flashcard"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestFindDeckFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ch_03.json", "[]")
	writeFile(t, dir, "ch_01.json", "[]")
	writeFile(t, dir, "ch_12.json", "[]")
	writeFile(t, dir, "titles.json", "{}")
	writeFile(t, dir, "notes.txt", "skip")

	files, err := flashcard.FindDeckFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, 1, files[0].Chapter)
	assert.Equal(t, 3, files[1].Chapter)
	assert.Equal(t, 12, files[2].Chapter)
}

func TestLoadDeckFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ch_01.json", `[
		{"question": "What is a lien?", "answer": "A charge against property."},
		{"question": "", "answer": "orphan answer"},
		{"question": "Define equity.", "answer": "Fairness-based remedies."}
	]`)

	cards, err := flashcard.LoadDeckFile(filepath.Join(dir, "ch_01.json"))
	require.NoError(t, err)
	require.Len(t, cards, 2, "cards without a question are dropped")
	assert.Equal(t, "What is a lien?", cards[0].Front)
	assert.Equal(t, "A charge against property.", cards[0].Back)
}

func TestLoadDeckFileMalformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ch_01.json", `{"not": "a list"}`)

	_, err := flashcard.LoadDeckFile(filepath.Join(dir, "ch_01.json"))
	assert.Error(t, err)
}

func TestDeckTitles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "titles.json", `{"1": "Introduction", "4": "Title Registration"}`)

	titles := flashcard.LoadTitles(dir)
	assert.Equal(t, "Chapter 1 - Introduction", flashcard.DeckTitle(titles, 1))
	assert.Equal(t, "Chapter 4 - Title Registration", flashcard.DeckTitle(titles, 4))
	assert.Equal(t, "Chapter 2", flashcard.DeckTitle(titles, 2))
}

func TestLoadTitlesMissingFile(t *testing.T) {
	titles := flashcard.LoadTitles(t.TempDir())
	assert.Empty(t, titles)
	assert.Equal(t, "Chapter 7", flashcard.DeckTitle(titles, 7))
}
