package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Format is an export file format offered by the server.
type Format string

const (
	// Excel exports a spreadsheet.
	Excel Format = "excel"
	// PDF exports a document.
	PDF Format = "pdf"
)

// ParseFormat maps a user-supplied name to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case Excel, PDF:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Ext returns the conventional file extension for f.
func (f Format) Ext() string {
	if f == Excel {
		return ".xlsx"
	}
	return ".pdf"
}

// Export streams the export of kind in format f into w and returns the
// number of bytes written. The payload is opaque.
func (c *Client) Export(ctx context.Context, kind Kind, f Format, w io.Writer) (int64, error) {
	if _, err := ParseFormat(string(f)); err != nil {
		return 0, err
	}
	resp, err := c.send(ctx, http.MethodGet, kind.collectionPath()+"/export/"+string(f), nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download %s export: %w", kind.Name, err)
	}
	return n, nil
}

// ExportFile saves the export of kind to path. A partial file is removed
// on failure.
func (c *Client) ExportFile(ctx context.Context, kind Kind, f Format, path string) (int64, error) {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	n, err := c.Export(ctx, kind, f, out)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", path, cerr)
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, err
	}
	return n, nil
}
