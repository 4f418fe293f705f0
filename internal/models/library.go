package models

import "time"

// LibraryFile describes one PDF in the library with its extracted metadata.
// A file that could not be parsed still appears, with Error set and zero
// pages, so a single bad upload never hides the rest of the shelf.
type LibraryFile struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	Pages   int       `json:"pages"`
	Title   string    `json:"title,omitempty"`
	Excerpt string    `json:"excerpt,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// MindmapChapter is one extracted mindmap page.
type MindmapChapter struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	File  string `json:"-"`
}
