// Package drive implements the remote object store on the Google Drive v3
// API. The ledger file lives in the appDataFolder space: private to the
// application, invisible in the user's Drive UI.
package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"

	"zakat/internal/remote"
)

// DefaultFileName is the fixed name of the ledger file within the
// application-data space.
const DefaultFileName = "zakat-app-data.json"

const appDataSpace = "appDataFolder"

type Client struct {
	svc      *gdrive.Service
	fileName string
}

var _ remote.ObjectStore = (*Client)(nil)

// New builds a Drive client on the given token source. The source is
// consulted per request, so a token refreshed mid-session is picked up
// without rebuilding the client.
func New(ctx context.Context, ts oauth2.TokenSource, fileName string) (*Client, error) {
	if fileName == "" {
		fileName = DefaultFileName
	}
	svc, err := gdrive.NewService(ctx,
		goption.WithTokenSource(ts),
		goption.WithScopes(gdrive.DriveAppdataScope))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Client{svc: svc, fileName: fileName}, nil
}

func (c *Client) Find(ctx context.Context) (*remote.FileHandle, error) {
	list, err := c.svc.Files.List().
		Spaces(appDataSpace).
		Q(fmt.Sprintf("name = '%s'", c.fileName)).
		Fields("files(id, modifiedTime)").
		PageSize(1).
		Context(ctx).Do()
	if err != nil {
		return nil, mapErr("find", err)
	}
	if len(list.Files) == 0 {
		return nil, nil
	}
	f := list.Files[0]
	return &remote.FileHandle{ID: f.Id, Modified: parseModified(ctx, f.ModifiedTime)}, nil
}

func (c *Client) Upload(ctx context.Context, handle *remote.FileHandle, payload []byte) (*remote.FileHandle, error) {
	media := bytes.NewReader(payload)
	contentType := googleapi.ContentType("application/json")

	var f *gdrive.File
	var err error
	if handle != nil {
		// In-place content replace, id preserved.
		f, err = c.svc.Files.Update(handle.ID, &gdrive.File{}).
			Media(media, contentType).
			Fields("id, modifiedTime").
			Context(ctx).Do()
	} else {
		f, err = c.svc.Files.Create(&gdrive.File{
			Name:    c.fileName,
			Parents: []string{appDataSpace},
		}).
			Media(media, contentType).
			Fields("id, modifiedTime").
			Context(ctx).Do()
	}
	if err != nil {
		return nil, mapErr("upload", err)
	}
	return &remote.FileHandle{ID: f.Id, Modified: parseModified(ctx, f.ModifiedTime)}, nil
}

func (c *Client) Download(ctx context.Context, handle *remote.FileHandle) ([]byte, error) {
	if handle == nil {
		return nil, remote.ErrNoRemoteFile
	}
	resp, err := c.svc.Files.Get(handle.ID).Context(ctx).Download()
	if err != nil {
		return nil, mapErr("download", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", remote.ErrUnavailable, err)
	}
	return data, nil
}

// mapErr translates transport failures into the remote error taxonomy:
// HTTP statuses become StatusError, everything else is ErrUnavailable.
func mapErr(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return fmt.Errorf("%s: %w", op, &remote.StatusError{Status: gerr.Code})
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%s: %w: %v", op, remote.ErrUnavailable, err)
}

// parseModified decodes Drive's RFC 3339 modifiedTime. A malformed value
// yields the zero time, which makes the local copy win the timestamp
// comparison instead of prompting the user over garbage.
func parseModified(ctx context.Context, value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		slog.WarnContext(ctx, "Unparseable remote modification time", "value", value)
		return time.Time{}
	}
	return t
}
