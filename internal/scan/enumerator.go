package scan

import (
	"os"
	"path/filepath"
	"strings"

	"dupescan/internal/models"
	"dupescan/internal/providers"
	"dupescan/internal/structures"
)

// Enumerator walks the include roots and reconciles every candidate file
// into the catalog. Per-file I/O errors are logged and skipped; they
// never abort the walk.
type Enumerator struct {
	conf    *structures.Config
	catalog *models.Catalog
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewEnumerator(conf *structures.Config, catalog *models.Catalog, logger providers.Logger, metrics providers.MetricsProviderInterface) *Enumerator {
	return &Enumerator{conf: conf, catalog: catalog, logger: logger, metrics: metrics}
}

// Run returns the records reconciled during this enumeration, i.e. the
// scan list for the build phase.
func (e *Enumerator) Run(tokens *Tokens) []*models.FileRecord {
	var found []*models.FileRecord
	for _, root := range e.conf.Scan.IncludeList {
		if tokens.Canceled() {
			break
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			e.logger.Warnf(providers.TypeScan, "Skipping include root %s: %s", root, err)
			continue
		}
		found = e.walkDir(abs, 0, tokens, found)
	}
	return found
}

func (e *Enumerator) walkDir(dir string, depth int, tokens *Tokens, found []*models.FileRecord) []*models.FileRecord {
	if tokens.Canceled() {
		return found
	}
	if e.skipDir(dir, depth) {
		return found
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		e.logger.Warnf(providers.TypeScan, "Cannot read directory %s: %s", dir, err)
		return found
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			// Without includeSubdirectories only the root's own files
			// are considered.
			if e.conf.Scan.IncludeSubdirectories {
				found = e.walkDir(path, depth+1, tokens, found)
			}
			continue
		}
		if entry.Type()&os.ModeSymlink != 0 && e.conf.Scan.IgnoreReparsePoints {
			continue
		}
		if !e.wantedExtension(path) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			e.logger.Warnf(providers.TypeScan, "Cannot stat %s: %s", path, err)
			continue
		}

		created, modified := fileDates(info)
		candidate := models.NewFileRecord(path, info.Size(), created, modified)
		record := e.catalog.InsertOrReconcile(candidate)
		found = append(found, record)
		e.metrics.IncFilesEnumerated()
	}
	return found
}

func (e *Enumerator) skipDir(dir string, depth int) bool {
	if depth > 0 && e.conf.Scan.IgnoreReparsePoints {
		if fi, err := os.Lstat(dir); err == nil && fi.Mode()&os.ModeSymlink != 0 {
			return true
		}
	}
	if e.conf.Scan.IgnoreReadOnlyFolders {
		if fi, err := os.Stat(dir); err == nil && fi.Mode().Perm()&0222 == 0 {
			return true
		}
	}
	for _, black := range e.conf.Scan.Blacklist {
		if FolderMatches(black, dir) {
			return true
		}
	}
	return false
}

func (e *Enumerator) wantedExtension(path string) bool {
	if models.IsVideoPath(path) {
		return true
	}
	return e.conf.Scan.IncludeImages && models.IsImagePath(path)
}

// FolderMatches reports whether path equals folder or lies beneath it,
// with a proper path-component boundary: "/a/bc" is not under "/a/b".
func FolderMatches(folder, path string) bool {
	if folder == "" {
		return false
	}
	if folder == path {
		return true
	}
	rel, err := filepath.Rel(folder, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
