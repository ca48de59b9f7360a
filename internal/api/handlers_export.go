package api

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/rs/zerolog/log"

	respond "github.com/taxwise/taxwise-server/internal/api/respond"
	"github.com/taxwise/taxwise-server/internal/api/validate"
	"github.com/taxwise/taxwise-server/internal/model"
)

const zipDataURLPrefix = "data:application/zip;base64,"

// PackageAssembler builds export packages (export.Assembler in production).
type PackageAssembler interface {
	Assemble(ctx context.Context, req model.ExportRequest) (*model.ExportResult, error)
}

type ExportHandler struct {
	assembler PackageAssembler
	maxBytes  int64
}

func NewExportHandler(a PackageAssembler, maxBytes int64) *ExportHandler {
	return &ExportHandler{assembler: a, maxBytes: maxBytes}
}

type exportPackageRequest struct {
	UserID        string           `json:"userId"`
	UserName      string           `json:"userName"`
	Category      string           `json:"category"`
	UserDocuments []model.UserFile `json:"userDocuments"`
}

type exportPackageResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	DownloadURL string `json:"downloadUrl"`
	Filename    string `json:"filename"`
}

// ExportPackage POST /api/export-package
// Partial fetch failures still answer 200 with success=false; 500 is reserved
// for requests that cannot produce a package at all.
func (h *ExportHandler) ExportPackage(w http.ResponseWriter, r *http.Request) {
	var in exportPackageRequest
	if err := decodeJSON(w, r, h.maxBytes, &in); err != nil {
		h.fail(w, err)
		return
	}
	if err := validate.ExportPackage(in.UserID, in.UserName, len(in.UserDocuments)); err != nil {
		h.fail(w, err)
		return
	}

	// The assembler owns category parsing so rejected categories are audited.
	res, err := h.assembler.Assemble(r.Context(), model.ExportRequest{
		ActorID:   in.UserID,
		ActorName: in.UserName,
		Category:  model.Category(in.Category),
		UserFiles: in.UserDocuments,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, exportPackageResponse{
		Success:     res.Success,
		Message:     res.Message,
		DownloadURL: zipDataURLPrefix + base64.StdEncoding.EncodeToString(res.Archive),
		Filename:    res.Filename,
	})
}

func (h *ExportHandler) fail(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("export package request failed")
	respond.WriteFailure(w, http.StatusInternalServerError, "Server error: "+err.Error())
}
