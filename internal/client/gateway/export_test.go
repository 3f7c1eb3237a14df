package gateway

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/taskdock/internal/apitest"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("excel")
	require.NoError(t, err)
	assert.Equal(t, Excel, f)
	assert.Equal(t, ".xlsx", f.Ext())

	f, err = ParseFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, ".pdf", f.Ext())

	_, err = ParseFormat("csv")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExport_Streams(t *testing.T) {
	_, c := newGateway(t)

	var buf bytes.Buffer
	n, err := c.Export(context.Background(), Todos, Excel, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(apitest.ExcelPayload)), n)
	assert.Equal(t, apitest.ExcelPayload, buf.Bytes())
}

func TestExport_RejectsUnknownFormat(t *testing.T) {
	_, c := newGateway(t)
	_, err := c.Export(context.Background(), Tasks, Format("csv"), &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExportFile_Saves(t *testing.T) {
	_, c := newGateway(t)
	path := filepath.Join(t.TempDir(), "tasks.pdf")

	n, err := c.ExportFile(context.Background(), Tasks, PDF, path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(apitest.PDFPayload)), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, apitest.PDFPayload, data)
}

func TestExportFile_RemovesPartialFileOnError(t *testing.T) {
	api, c := newGateway(t)
	api.FailNext("todos", http.StatusInternalServerError, "export failed")
	path := filepath.Join(t.TempDir(), "todos.xlsx")

	_, err := c.ExportFile(context.Background(), Todos, Excel, path)
	assert.Equal(t, "export failed", ServerMessage(err))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "expected partial file to be removed")
}
