package mindmap

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/lukamv/studysuite/internal/errors"
	"github.com/lukamv/studysuite/internal/logger"
	"github.com/lukamv/studysuite/internal/models"
)

var (
	titleRe  = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	numberRe = regexp.MustCompile(`\d+`)
)

// Gallery serves interactive mindmap pages shipped as a zip of HTML
// files, one per chapter. The archive is unpacked once into a cache
// directory and chapter metadata is kept in memory.
type Gallery struct {
	zipPath  string
	cacheDir string
	log      *logger.Logger

	mu       sync.RWMutex
	chapters []models.MindmapChapter
}

func NewGallery(zipPath, cacheDir string) *Gallery {
	return &Gallery{
		zipPath:  zipPath,
		cacheDir: cacheDir,
		log:      logger.Default().WithPrefix("mindmap"),
	}
}

// Refresh unpacks the archive and rebuilds the chapter index.
func (g *Gallery) Refresh(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("mindmap")
	log.Debug("refreshing mindmap gallery from %s", g.zipPath)

	if err := os.MkdirAll(g.cacheDir, 0o755); err != nil {
		return fmt.Errorf("create mindmap cache dir: %w", err)
	}

	reader, err := zip.OpenReader(g.zipPath)
	if err != nil {
		log.Error("failed to open mindmap archive: %v", err)
		return err
	}
	defer reader.Close()

	var chapters []models.MindmapChapter
	for _, entry := range reader.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := filepath.Base(entry.Name)
		if entry.FileInfo().IsDir() || !strings.EqualFold(filepath.Ext(name), ".html") {
			continue
		}
		body, err := readZipEntry(entry)
		if err != nil {
			log.Warn("skipping unreadable archive entry %s: %v", entry.Name, err)
			continue
		}
		dest := filepath.Join(g.cacheDir, name)
		if err := os.WriteFile(dest, body, 0o644); err != nil {
			log.Error("failed to write %s: %v", dest, err)
			return err
		}
		chapters = append(chapters, models.MindmapChapter{
			Index: chapterIndex(name),
			Title: chapterTitle(name, body),
			File:  name,
		})
	}

	sort.Slice(chapters, func(i, j int) bool {
		if chapters[i].Index != chapters[j].Index {
			return chapters[i].Index < chapters[j].Index
		}
		return chapters[i].File < chapters[j].File
	})

	g.mu.Lock()
	g.chapters = chapters
	g.mu.Unlock()

	log.Info("mindmap gallery ready: %d chapters", len(chapters))
	return nil
}

// Chapters returns the chapter index, unpacking the archive on first use.
func (g *Gallery) Chapters(ctx context.Context) ([]models.MindmapChapter, error) {
	g.mu.RLock()
	cached := g.chapters
	g.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	if err := g.Refresh(ctx); err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.chapters, nil
}

// Open returns the unpacked HTML page for a chapter.
func (g *Gallery) Open(ctx context.Context, index int) (*os.File, error) {
	chapters, err := g.Chapters(ctx)
	if err != nil {
		return nil, err
	}
	for _, ch := range chapters {
		if ch.Index == index {
			return os.Open(filepath.Join(g.cacheDir, ch.File))
		}
	}
	return nil, errors.NewNotFoundError("mindmap chapter", index)
}

func readZipEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// chapterIndex pulls the first run of digits out of the file name.
// Files without a number sort last.
func chapterIndex(name string) int {
	m := numberRe.FindString(name)
	if m == "" {
		return 1 << 20
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 1 << 20
	}
	return n
}

// chapterTitle prefers the HTML <title> tag, falling back to a
// prettified file name.
func chapterTitle(name string, body []byte) string {
	if m := titleRe.FindSubmatch(body); m != nil {
		if title := strings.TrimSpace(string(m[1])); title != "" {
			return title
		}
	}
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.TrimSpace(base)
}
