// Package mirror copies shared Drive folders into the local layout.
package mirror

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/couchcryptid/snowfall-setup/internal/domain"
	"github.com/couchcryptid/snowfall-setup/internal/observability"
	"github.com/couchcryptid/snowfall-setup/internal/workspace"
)

// DriveSource lists folder children and downloads file content.
type DriveSource interface {
	ListChildren(ctx context.Context, folderID string) ([]domain.DriveItem, error)
	Download(ctx context.Context, fileID, dest string) (int64, error)
}

// Report totals one mirror pass.
type Report struct {
	Downloaded int
	Existing   int
	Documents  int
	Failed     int
	Bytes      int64
	Artifacts  []domain.ArtifactEvent
}

func (r *Report) add(o Report) {
	r.Downloaded += o.Downloaded
	r.Existing += o.Existing
	r.Documents += o.Documents
	r.Failed += o.Failed
	r.Bytes += o.Bytes
	r.Artifacts = append(r.Artifacts, o.Artifacts...)
}

// Mirror recursively downloads Drive folders. Existing local files are
// never overwritten.
type Mirror struct {
	src     DriveSource
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates a Mirror backed by src.
func New(src DriveSource, metrics *observability.Metrics, logger *slog.Logger) *Mirror {
	return &Mirror{src: src, metrics: metrics, logger: logger}
}

// FetchAll mirrors each configured folder into <home>/<name>, in order.
// Per-item failures are counted in the report; the returned error is
// non-nil only when ctx is cancelled.
func (m *Mirror) FetchAll(ctx context.Context, layout workspace.Layout, folders []domain.DriveFolder) (Report, error) {
	m.logger.Info("starting drive downloads", "folders", len(folders))
	var total Report
	for _, f := range folders {
		local := layout.Folder(f.Name)
		m.logger.Info("mirroring drive folder", "folder", f.Name, "folder_id", f.ID, "path", local)
		r, err := m.MirrorFolder(ctx, f.ID, local)
		total.add(r)
		if err != nil {
			return total, err
		}
	}
	m.logger.Info("drive downloads complete",
		"downloaded", total.Downloaded,
		"existing", total.Existing,
		"failed", total.Failed,
		"bytes", total.Bytes,
	)
	return total, nil
}

// MirrorFolder copies folderID into localPath, recursing into subfolders.
func (m *Mirror) MirrorFolder(ctx context.Context, folderID, localPath string) (Report, error) {
	var r Report
	if err := ctx.Err(); err != nil {
		return r, err
	}

	if _, err := workspace.EnsureDir(localPath, m.logger); err != nil {
		m.logger.Error("cannot create local folder", "path", localPath, "error", err)
		r.Failed++
		return r, nil
	}

	items, err := m.src.ListChildren(ctx, folderID)
	if err != nil {
		if ctx.Err() != nil {
			return r, ctx.Err()
		}
		m.logger.Error("list drive folder failed", "folder_id", folderID, "error", err)
		r.Failed++
		return r, nil
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return r, err
		}

		name, err := workspace.SafeName(item.Name)
		if err != nil {
			m.logger.Warn("skipping drive item with unusable name", "id", item.ID, "error", err)
			m.metrics.DriveFiles.WithLabelValues("error").Inc()
			r.Failed++
			continue
		}
		itemPath := filepath.Join(localPath, name)

		switch {
		case item.IsFolder():
			sub, err := m.MirrorFolder(ctx, item.ID, itemPath)
			r.add(sub)
			if err != nil {
				return r, err
			}
		case item.IsWorkspaceDocument():
			m.logger.Warn("skipping workspace document, no downloadable content",
				"name", item.Name, "mime_type", item.MimeType)
			m.metrics.DriveFiles.WithLabelValues("document").Inc()
			r.Documents++
		case workspace.Exists(itemPath):
			m.logger.Info("file already exists, skipping download", "path", itemPath)
			m.metrics.DriveFiles.WithLabelValues("exists").Inc()
			r.Existing++
		default:
			m.downloadFile(ctx, item, itemPath, &r)
		}
	}
	return r, nil
}

func (m *Mirror) downloadFile(ctx context.Context, item domain.DriveItem, dest string, r *Report) {
	m.logger.Info("downloading file", "name", item.Name, "path", dest)
	n, err := m.src.Download(ctx, item.ID, dest)
	if err != nil {
		m.logger.Error("download failed", "name", item.Name, "id", item.ID, "error", err)
		m.metrics.DriveFiles.WithLabelValues("error").Inc()
		r.Failed++
		return
	}
	m.metrics.DriveFiles.WithLabelValues("downloaded").Inc()
	m.metrics.DriveBytes.Add(float64(n))
	r.Downloaded++
	r.Bytes += n
	r.Artifacts = append(r.Artifacts, domain.NewArtifactEvent(domain.KindDriveFile, item.Name, dest, item.ID, n))
	m.logger.Info("download complete", "name", item.Name, "bytes", n)
}
