package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"dupescan/internal/models"
	"dupescan/internal/providers"
	"dupescan/internal/scan/interfaces"
	"dupescan/internal/structures"
)

const (
	catalogFileName = "catalog.db.zst"
	catalogVersion  = 1
)

// Fingerprint keys are float seconds, which JSON objects cannot key, so
// the snapshot stores fingerprints as a position/vector list.
type snapshotFingerprint struct {
	Position float64 `json:"position"`
	Gray     []byte  `json:"gray"`
}

type snapshotRecord struct {
	Path         string                `json:"path"`
	FileSize     int64                 `json:"fileSize"`
	DateCreated  time.Time             `json:"dateCreated"`
	DateModified time.Time             `json:"dateModified"`
	IsImage      bool                  `json:"isImage"`
	MediaInfo    *models.MediaInfo     `json:"mediaInfo,omitempty"`
	Flags        uint32                `json:"flags,omitempty"`
	Fingerprints []snapshotFingerprint `json:"fingerprints,omitempty"`
}

type catalogSnapshot struct {
	Version int              `json:"version"`
	Files   []snapshotRecord `json:"files"`
}

// CatalogFile persists the catalog as a zstd-compressed, versioned JSON
// snapshot with an atomic replace, so a crash mid-save never loses the
// previous snapshot.
type CatalogFile struct {
	catalog    *models.Catalog
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	path       string
}

func NewCatalogFile(conf *structures.Config, catalog *models.Catalog, compressor interfaces.CompressorInterface, logger providers.Logger) *CatalogFile {
	return &CatalogFile{
		catalog:    catalog,
		compressor: compressor,
		logger:     logger,
		path:       filepath.Join(conf.Persistence.DatabaseFolder, catalogFileName),
	}
}

func (f *CatalogFile) Path() string { return f.path }

func (f *CatalogFile) Save() error {
	snapshot := catalogSnapshot{Version: catalogVersion}
	for _, r := range f.catalog.Records() {
		sr := snapshotRecord{
			Path:         r.Path,
			FileSize:     r.FileSize,
			DateCreated:  r.DateCreated,
			DateModified: r.DateModified,
			IsImage:      r.IsImage,
			MediaInfo:    r.MediaInfo,
			Flags:        uint32(r.Flags),
		}
		for pos, gray := range r.Fingerprints {
			if gray == nil {
				continue
			}
			sr.Fingerprints = append(sr.Fingerprints, snapshotFingerprint{Position: pos, Gray: gray})
		}
		snapshot.Files = append(snapshot.Files, sr)
	}

	jsonData, err := json.Marshal(&snapshot)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}

	tmpFile := f.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, f.path)
}

// Load reads the snapshot into the catalog. A missing file is a fresh
// start, not an error.
func (f *CatalogFile) Load() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return fmt.Errorf("corrupt catalog snapshot: %w", err)
	}

	var snapshot catalogSnapshot
	if err := json.Unmarshal(decompressedData, &snapshot); err != nil {
		return fmt.Errorf("corrupt catalog snapshot: %w", err)
	}
	if snapshot.Version > catalogVersion {
		return fmt.Errorf("catalog snapshot version %d is newer than supported %d", snapshot.Version, catalogVersion)
	}

	records := make([]*models.FileRecord, 0, len(snapshot.Files))
	for _, sr := range snapshot.Files {
		r := models.NewFileRecord(sr.Path, sr.FileSize, sr.DateCreated, sr.DateModified)
		r.IsImage = sr.IsImage
		r.MediaInfo = sr.MediaInfo
		r.Flags = models.RecordFlags(sr.Flags)
		for _, fp := range sr.Fingerprints {
			r.SetFingerprint(fp.Position, fp.Gray)
		}
		records = append(records, r)
	}
	f.catalog.Replace(records)

	f.logger.Infof(providers.TypeApp, "Loaded %d records from %s", len(records), f.path)
	return nil
}

func (f *CatalogFile) Close() {
	f.compressor.Close()
}
