package dealer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/revomotors/api-leads/internal/auth"
	"github.com/revomotors/api-leads/internal/blob"
	"github.com/revomotors/api-leads/internal/models"
	"github.com/revomotors/api-leads/internal/utils"
	"gorm.io/gorm"
)

const maxDocumentBytes = 10 << 20

type documentRequest struct {
	DocumentType string `json:"document_type" validate:"required,max=50"`
	DocumentName string `json:"document_name" validate:"required,max=255"`
	FileURL      string `json:"file_url" validate:"required,max=500"`
	ExpiresAt    string `json:"expires_at"`
}

func parseExpiry(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("expires_at must be a date in YYYY-MM-DD format")
	}
	return &t, nil
}

// GET /api/dealers/documents
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	d, _ := auth.DealerFromContext(r.Context())
	docs, err := h.Repository.Documents(h.DB.WithContext(r.Context()), d.ID)
	if err != nil {
		utils.InternalError(w, r, "list documents", err)
		return
	}
	out := DocumentListResponse{Total: len(docs), Documents: make([]DocumentDTO, 0, len(docs))}
	for _, doc := range docs {
		out.Documents = append(out.Documents, toDocument(doc))
	}
	utils.JSON(w, http.StatusOK, out)
}

// POST /api/dealers/documents registers a document hosted elsewhere.
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	d, _ := auth.DealerFromContext(r.Context())
	var req documentRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.Validate(req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	expires, err := parseExpiry(req.ExpiresAt)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	doc := models.DealerDocument{
		DealerID:     d.ID,
		DocumentType: req.DocumentType,
		DocumentName: req.DocumentName,
		FileURL:      req.FileURL,
		ExpiresAt:    expires,
	}
	if err := h.Repository.CreateDocument(h.DB.WithContext(r.Context()), &doc); err != nil {
		utils.InternalError(w, r, "create document", err)
		return
	}
	utils.JSON(w, http.StatusCreated, ActionResponse{Success: true, Message: "Document uploaded successfully", DocumentID: doc.ID})
}

// POST /api/dealers/documents/upload takes a multipart form with a "file"
// part plus document_type, document_name and optional expires_at fields.
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	d, _ := auth.DealerFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentBytes+1<<20)
	if err := r.ParseMultipartForm(maxDocumentBytes); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	docType := strings.TrimSpace(r.FormValue("document_type"))
	if docType == "" {
		utils.Error(w, http.StatusBadRequest, "document_type is required")
		return
	}
	name := strings.TrimSpace(r.FormValue("document_name"))
	if name == "" {
		name = header.Filename
	}
	expires, err := parseExpiry(r.FormValue("expires_at"))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	body, err := io.ReadAll(io.LimitReader(file, maxDocumentBytes+1))
	if err != nil {
		utils.InternalError(w, r, "read upload", err)
		return
	}
	if len(body) > maxDocumentBytes {
		utils.Error(w, http.StatusRequestEntityTooLarge, "file exceeds 10MB")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}

	key := blob.DocumentKey(d.ID, header.Filename)
	if err := h.Blobs.Put(r.Context(), key, contentType, body); err != nil {
		utils.InternalError(w, r, "store document", err)
		return
	}

	doc := models.DealerDocument{
		DealerID:     d.ID,
		DocumentType: docType,
		DocumentName: name,
		StorageKey:   key,
		ContentType:  contentType,
		ExpiresAt:    expires,
	}
	err = h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := h.Repository.CreateDocument(tx, &doc); err != nil {
			return err
		}
		doc.FileURL = fmt.Sprintf("/api/dealers/documents/%d/file", doc.ID)
		return tx.Model(&doc).Update("file_url", doc.FileURL).Error
	})
	if err != nil {
		if derr := h.Blobs.Delete(r.Context(), key); derr != nil {
			slog.Warn("orphaned document blob", "key", key, "error", derr)
		}
		utils.InternalError(w, r, "create document", err)
		return
	}
	utils.JSON(w, http.StatusCreated, ActionResponse{Success: true, Message: "Document uploaded successfully", DocumentID: doc.ID})
}

// GET /api/dealers/documents/{id}/file
func (h *Handler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadDocument(w, r)
	if !ok {
		return
	}
	if doc.StorageKey == "" {
		utils.Error(w, http.StatusNotFound, "Document file not found")
		return
	}
	data, err := h.Blobs.Get(r.Context(), doc.StorageKey)
	if errors.Is(err, blob.ErrNotFound) {
		utils.Error(w, http.StatusNotFound, "Document file not found")
		return
	}
	if err != nil {
		utils.InternalError(w, r, "read document", err)
		return
	}
	ct := doc.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.DocumentName}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// DELETE /api/dealers/documents/{id}
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadDocument(w, r)
	if !ok {
		return
	}
	if err := h.Repository.DeleteDocument(h.DB.WithContext(r.Context()), doc); err != nil {
		utils.InternalError(w, r, "delete document", err)
		return
	}
	if doc.StorageKey != "" {
		if err := h.Blobs.Delete(r.Context(), doc.StorageKey); err != nil {
			slog.Warn("delete document blob", "key", doc.StorageKey, "error", err)
		}
	}
	utils.JSON(w, http.StatusOK, ActionResponse{Success: true, Message: "Document deleted successfully"})
}

func (h *Handler) loadDocument(w http.ResponseWriter, r *http.Request) (*models.DealerDocument, bool) {
	d, _ := auth.DealerFromContext(r.Context())
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Document not found")
		return nil, false
	}
	doc, err := h.Repository.FindDocument(h.DB.WithContext(r.Context()), d.ID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(w, http.StatusNotFound, "Document not found")
		return nil, false
	}
	if err != nil {
		utils.InternalError(w, r, "load document", err)
		return nil, false
	}
	return doc, true
}
