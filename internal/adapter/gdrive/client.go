package gdrive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/snowfall-setup/internal/domain"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const pageSize = 1000

// Client lists and downloads publicly shared Drive items with an API key.
type Client struct {
	svc    *drive.Service
	logger *slog.Logger
}

// NewClient creates a Drive client. endpoint overrides the API base URL
// when non-empty.
func NewClient(ctx context.Context, apiKey, endpoint string, logger *slog.Logger) (*Client, error) {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Client{svc: svc, logger: logger}, nil
}

// ListChildren returns every non-trashed item directly inside folderID,
// following pagination.
func (c *Client) ListChildren(ctx context.Context, folderID string) ([]domain.DriveItem, error) {
	call := c.svc.Files.List().
		Q(childrenQuery(folderID)).
		Fields("nextPageToken, files(id, name, mimeType, size)").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		PageSize(pageSize)

	var items []domain.DriveItem
	err := call.Pages(ctx, func(page *drive.FileList) error {
		for _, f := range page.Files {
			items = append(items, domain.DriveItem{
				ID:       f.Id,
				Name:     f.Name,
				MimeType: f.MimeType,
				Size:     f.Size,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list drive folder %s: %w", folderID, err)
	}
	c.logger.Debug("listed drive folder", "folder_id", folderID, "items", len(items))
	return items, nil
}

// Download streams a file's content to dest and returns the bytes written.
// Content lands in a temporary file next to dest and is renamed into
// place only after the transfer completes.
func (c *Client) Download(ctx context.Context, fileID, dest string) (int64, error) {
	resp, err := c.svc.Files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return 0, fmt.Errorf("download drive file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".part-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("write %s: %w", dest, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("rename into %s: %w", dest, err)
	}
	return n, nil
}

func childrenQuery(folderID string) string {
	id := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(folderID)
	return fmt.Sprintf("'%s' in parents and trashed=false", id)
}
