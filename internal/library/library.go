package library

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/lukamv/studysuite/internal/errors"
	"github.com/lukamv/studysuite/internal/logger"
	"github.com/lukamv/studysuite/internal/models"
)

const maxExcerptLen = 400

// Store manages the PDF shelf on disk. Metadata extracted from the
// documents is cached in memory and refreshed by background scans.
type Store struct {
	dir string
	log *logger.Logger

	mu   sync.RWMutex
	meta map[string]models.LibraryFile
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}
	return &Store{
		dir:  dir,
		log:  logger.Default().WithPrefix("library"),
		meta: make(map[string]models.LibraryFile),
	}, nil
}

// resolve validates a client-supplied file name and maps it to a path
// inside the library directory. Path separators and dotfiles are rejected.
func (s *Store) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", errors.NewValidationError("name", "invalid file name")
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return "", errors.NewValidationError("name", "only .pdf files are accepted")
	}
	return filepath.Join(s.dir, name), nil
}

// List returns the shelf contents ordered by name. Cached metadata is
// attached when a scan has already processed the file.
func (s *Store) List(ctx context.Context) ([]models.LibraryFile, error) {
	log := logger.FromContext(ctx).WithPrefix("library")

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		log.Error("failed to read library dir: %v", err)
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var files []models.LibraryFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		f := models.LibraryFile{Name: entry.Name(), Size: info.Size(), ModTime: info.ModTime()}
		if cached, ok := s.meta[entry.Name()]; ok {
			f.Pages = cached.Pages
			f.Title = cached.Title
			f.Excerpt = cached.Excerpt
			f.Error = cached.Error
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	log.Debug("listed %d library files", len(files))
	return files, nil
}

// Save writes an uploaded document to the shelf. When the name is already
// taken, a short random suffix keeps both copies.
func (s *Store) Save(ctx context.Context, name string, r io.Reader) (models.LibraryFile, error) {
	log := logger.FromContext(ctx).WithPrefix("library")

	path, err := s.resolve(name)
	if err != nil {
		return models.LibraryFile{}, err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		name = fmt.Sprintf("%s-%s.pdf", base, uuid.NewString()[:8])
		path = filepath.Join(s.dir, name)
		log.Debug("name collision, storing as %s", name)
	}

	f, err := os.Create(path)
	if err != nil {
		log.Error("failed to create file: %v", err)
		return models.LibraryFile{}, err
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		log.Error("failed to store upload: %v", err)
		return models.LibraryFile{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return models.LibraryFile{}, err
	}
	log.Info("stored library file: name=%s, size=%d", name, size)
	return models.LibraryFile{Name: name, Size: size, ModTime: info.ModTime()}, nil
}

// SaveArchive stores every PDF member of a zip archive on the shelf.
// Entry paths are flattened to their base name. Archives with no PDF
// members are rejected.
func (s *Store) SaveArchive(ctx context.Context, r io.ReaderAt, size int64) ([]models.LibraryFile, error) {
	log := logger.FromContext(ctx).WithPrefix("library")

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.NewValidationError("file", "not a valid zip archive")
	}

	var saved []models.LibraryFile
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		name := filepath.Base(entry.Name)
		if !strings.EqualFold(filepath.Ext(name), ".pdf") || strings.HasPrefix(name, ".") {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			log.Warn("skipping archive member %s: %v", entry.Name, err)
			continue
		}
		f, err := s.Save(ctx, name, rc)
		rc.Close()
		if err != nil {
			return saved, err
		}
		saved = append(saved, f)
	}
	if len(saved) == 0 {
		return nil, errors.NewValidationError("file", "archive contains no PDF documents")
	}
	log.Info("stored %d documents from archive", len(saved))
	return saved, nil
}

// Open returns a reader over a stored document for download or inline viewing.
func (s *Store) Open(ctx context.Context, name string) (*os.File, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("library file", name)
		}
		return nil, err
	}
	return f, nil
}

// Delete removes a document from the shelf and drops its cached metadata.
func (s *Store) Delete(ctx context.Context, name string) error {
	log := logger.FromContext(ctx).WithPrefix("library")

	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("library file", name)
		}
		log.Error("failed to delete file: %v", err)
		return err
	}

	s.mu.Lock()
	delete(s.meta, name)
	s.mu.Unlock()

	log.Info("deleted library file: name=%s", name)
	return nil
}

// Info extracts page count, document title and a first-page excerpt,
// caching the result. Extraction failures are recorded on the entry
// rather than returned, so a broken PDF still shows up on the shelf.
func (s *Store) Info(ctx context.Context, name string) (models.LibraryFile, error) {
	log := logger.FromContext(ctx).WithPrefix("library")

	path, err := s.resolve(name)
	if err != nil {
		return models.LibraryFile{}, err
	}
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.LibraryFile{}, errors.NewNotFoundError("library file", name)
		}
		return models.LibraryFile{}, err
	}

	file := models.LibraryFile{Name: name, Size: stat.Size(), ModTime: stat.ModTime()}
	pages, title, excerpt, err := extractMetadata(path)
	if err != nil {
		log.Warn("metadata extraction failed for %s: %v", name, err)
		file.Error = err.Error()
	} else {
		file.Pages = pages
		file.Title = title
		file.Excerpt = excerpt
	}

	s.mu.Lock()
	s.meta[name] = file
	s.mu.Unlock()

	return file, nil
}

// Scan refreshes cached metadata for every document on the shelf.
// Intended to run on a background worker.
func (s *Store) Scan(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("library")
	log.Debug("scanning library")

	files, err := s.List(ctx)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.Info(ctx, f.Name); err != nil {
			log.Warn("scan skipped %s: %v", f.Name, err)
		}
	}
	log.Info("library scan complete: %d files", len(files))
	return nil
}

// extractMetadata reads the PDF structure. The parser can panic on
// malformed documents, so the whole extraction runs behind a recover.
func extractMetadata(path string) (pages int, title, excerpt string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return 0, "", "", err
	}
	defer f.Close()

	pages = reader.NumPage()

	info := reader.Trailer().Key("Info")
	if !info.IsNull() {
		title = strings.TrimSpace(info.Key("Title").Text())
	}

	if pages > 0 {
		page := reader.Page(1)
		if !page.V.IsNull() {
			text, perr := page.GetPlainText(nil)
			if perr == nil {
				excerpt = firstExcerpt(text)
			}
		}
	}
	return pages, title, excerpt, nil
}

func firstExcerpt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > maxExcerptLen {
		cut := strings.LastIndex(text[:maxExcerptLen], " ")
		if cut <= 0 {
			cut = maxExcerptLen
		}
		text = text[:cut] + "…"
	}
	return text
}
