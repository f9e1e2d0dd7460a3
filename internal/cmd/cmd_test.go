package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasbasham/cli-runtime/iooption"

	"billtrack/internal/dto"
)

type fakeServer struct {
	mu sync.Mutex

	storageStatus int
	stored        map[string][]byte
	storedType    string
	created       []dto.CreateBillRequest
	bills         []dto.BillWithURLResponse
}

func (f *fakeServer) handler(base func() string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", func(w http.ResponseWriter, r *http.Request) {
		var req dto.UploadURLRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(dto.UploadURLResponse{
			Key: "bills/1.pdf",
			URL: base() + "/storage/bills/1.pdf",
		})
	})
	mux.HandleFunc("PUT /storage/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.storageStatus != 0 {
			w.WriteHeader(f.storageStatus)
			return
		}
		data, _ := io.ReadAll(r.Body)
		f.stored[r.URL.Path] = data
		f.storedType = r.Header.Get("Content-Type")
	})
	mux.HandleFunc("POST /bills", func(w http.ResponseWriter, r *http.Request) {
		var req dto.CreateBillRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.created = append(f.created, req)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(dto.CreateBillResponse{
			Message: "Bill saved successfully",
			Bill:    dto.BillResponse{ID: "b-1", Title: req.Title, S3Key: req.S3Key},
		})
	})
	mux.HandleFunc("GET /bills", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(dto.ListBillsResponse{Bills: f.bills})
	})
	return mux
}

func startServer(t *testing.T, f *fakeServer) *httptest.Server {
	t.Helper()
	f.stored = map[string][]byte{}
	var srv *httptest.Server
	srv = httptest.NewServer(f.handler(func() string { return srv.URL }))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	root := NewRootCommandWithArgs(NewBillctlOptions(iooption.IOStreams{
		In:     &bytes.Buffer{},
		Out:    out,
		ErrOut: errOut,
	}))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestUpload(t *testing.T) {
	f := &fakeServer{}
	srv := startServer(t, f)
	path := writeFile(t, "bill.pdf", []byte("%PDF-1.7 test"))

	out, progress, err := execute(t, "upload", path,
		"--server", srv.URL,
		"--title", "Electricity",
		"--amount", "42.50",
		"--date", "2024-01-15",
		"--public-url-base", "https://cdn.example.com/",
		"--close-delay", "0s",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "Bill uploaded successfully!")
	assert.Contains(t, out, "id: b-1")
	assert.Contains(t, progress, "requesting-credential...")
	assert.Contains(t, progress, "registering-metadata...")

	assert.Equal(t, []byte("%PDF-1.7 test"), f.stored["/storage/bills/1.pdf"])
	assert.Equal(t, "application/pdf", f.storedType)
	require.Len(t, f.created, 1)
	assert.Equal(t, "Electricity", f.created[0].Title)
	assert.Equal(t, 42.5, f.created[0].Amount)
	assert.Equal(t, "bills/1.pdf", f.created[0].S3Key)
	assert.Equal(t, "https://cdn.example.com/bills/1.pdf", f.created[0].S3URL)
}

func TestUpload_StorageRejectsStopsBeforeMetadata(t *testing.T) {
	f := &fakeServer{storageStatus: http.StatusForbidden}
	srv := startServer(t, f)
	path := writeFile(t, "bill.png", []byte("\x89PNG\r\n\x1a\n"))

	_, _, err := execute(t, "upload", path,
		"--server", srv.URL,
		"-t", "Water", "-a", "10", "-d", "2024-01-15",
		"--public-url-base", "https://cdn.example.com",
	)
	require.EqualError(t, err, "Failed to upload file to storage")
	assert.Empty(t, f.created)
}

func TestUpload_MissingFields(t *testing.T) {
	f := &fakeServer{}
	srv := startServer(t, f)
	path := writeFile(t, "bill.pdf", []byte("%PDF"))

	_, _, err := execute(t, "upload", path,
		"--server", srv.URL,
		"--title", "Water",
		"--public-url-base", "https://cdn.example.com",
	)
	require.EqualError(t, err, "Please fill in all fields and select a file")
	assert.Empty(t, f.stored)
}

func TestUpload_RequiresFile(t *testing.T) {
	_, _, err := execute(t, "upload", "--public-url-base", "https://cdn.example.com")
	require.EqualError(t, err, "FILE is required")

	_, _, err = execute(t, "upload", filepath.Join(t.TempDir(), "missing.pdf"),
		"--public-url-base", "https://cdn.example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestList(t *testing.T) {
	f := &fakeServer{bills: []dto.BillWithURLResponse{
		{BillResponse: dto.BillResponse{ID: "2", Title: "Electricity", Amount: 42.5, Date: "2024-01-15", CreatedAt: "2024-01-16T10:00:00Z"}, S3URL: "https://s/get/2"},
		{BillResponse: dto.BillResponse{ID: "1", Title: "Water", Amount: 10, Date: "2024-01-01", CreatedAt: "2024-01-02T10:00:00Z"}},
	}}
	srv := startServer(t, f)

	out, _, err := execute(t, "list", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Electricity")
	assert.Contains(t, out, "42.50")
	assert.Contains(t, out, "https://s/get/2")
	assert.Contains(t, out, "Water")

	out, _, err = execute(t, "ls", "--server", srv.URL, "--filter", "WATER")
	require.NoError(t, err)
	assert.Contains(t, out, "Water")
	assert.NotContains(t, out, "Electricity")
}

func TestList_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Error: "Failed to fetch bills"})
	}))
	defer srv.Close()

	_, _, err := execute(t, "list", "--server", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to fetch bills")
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", detectContentType("bill.PDF", nil))
	assert.Equal(t, "image/png", detectContentType("scan.png", nil))
	assert.Equal(t, "image/jpeg", detectContentType("scan.jpg", nil))
	assert.Equal(t, "image/png", detectContentType("scan", []byte("\x89PNG\r\n\x1a\n")))
	assert.Equal(t, "text/plain", detectContentType("notes", []byte("hello")))
}
