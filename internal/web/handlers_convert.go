package web

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/ffl2sqlite/internal/core"
	"github.com/JonMunkholm/ffl2sqlite/internal/handler"
	"github.com/JonMunkholm/ffl2sqlite/internal/logging"
	"github.com/JonMunkholm/ffl2sqlite/internal/store/sqlite"
	"github.com/google/uuid"
)

// ContentTypeSQLite is the media type of the returned database.
const ContentTypeSQLite = "application/vnd.sqlite3"

// multipartMemory is the part of an upload kept in memory; the rest spills
// to temporary files.
const multipartMemory = 8 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Limiter().Status())
}

// uploadedFile parses the multipart request and returns the "file" part.
// On failure it writes the error response and returns ok=false.
func (s *Server) uploadedFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	maxSize := s.cfg.Upload.MaxFileSize
	if r.ContentLength > maxSize {
		respondError(w, r, errFileTooLarge, http.StatusRequestEntityTooLarge, "")
		return nil, nil, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, r, errFileTooLarge, http.StatusRequestEntityTooLarge, "")
			return nil, nil, false
		}
		respondError(w, r, fmt.Errorf("%w: %v", errNoFile, err), http.StatusBadRequest, "")
		return nil, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		r.MultipartForm.RemoveAll()
		respondError(w, r, errNoFile, http.StatusBadRequest, "")
		return nil, nil, false
	}
	return file, header, true
}

// handlePreview analyzes an uploaded file without converting it.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	file, _, ok := s.uploadedFile(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()
	defer file.Close()

	resp, err := s.service.Preview(r.Context(), file)
	if err != nil {
		respondError(w, r, err, statusFor(err), "")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleConvert converts an uploaded file and streams the database back.
// The database only lives in the work dir for the duration of the request.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	file, header, ok := s.uploadedFile(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()
	defer file.Close()

	ctx := r.Context()
	limiter := s.service.Limiter()
	if err := limiter.Acquire(ctx); err != nil {
		respondError(w, r, err, statusFor(err), "")
		return
	}
	defer limiter.Release()

	workDir := s.cfg.Upload.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		respondError(w, r, fmt.Errorf("create work dir: %w", err), http.StatusInternalServerError, "")
		return
	}

	out := filepath.Join(workDir, uuid.NewString()+".db")
	defer sqlite.Remove(out)

	log := logging.WithFields(ctx, "upload", header.Filename, "output", out)
	result, err := handler.ConvertReader(ctx, file, header.Size, handler.SQLiteOpener(out), handler.Options{
		Service: s.service,
		Logger:  log,
	})
	if err != nil {
		respondError(w, r, err, statusFor(err), result.RunID)
		return
	}
	if result.Status == core.StatusEmpty {
		respondError(w, r, core.ErrNoEntries, http.StatusUnprocessableEntity, result.RunID)
		return
	}

	db, err := os.Open(out)
	if err != nil {
		respondError(w, r, fmt.Errorf("open result: %w", err), http.StatusInternalServerError, result.RunID)
		return
	}
	defer db.Close()

	info, err := db.Stat()
	if err != nil {
		respondError(w, r, fmt.Errorf("stat result: %w", err), http.StatusInternalServerError, result.RunID)
		return
	}

	w.Header().Set("Content-Type", ContentTypeSQLite)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": downloadName(header.Filename),
	}))
	w.Header().Set("X-Run-ID", result.RunID)
	w.Header().Set("X-Rows-Written", strconv.Itoa(result.RowsWritten))
	http.ServeContent(w, r, "", info.ModTime(), db)
}

// downloadName derives "<name>.db" from the uploaded file name.
func downloadName(upload string) string {
	base := filepath.Base(strings.ReplaceAll(upload, "\\", "/"))
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." || name == "/" {
		return "output.db"
	}
	return name + ".db"
}
