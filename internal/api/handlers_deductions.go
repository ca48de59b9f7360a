package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	respond "github.com/taxwise/taxwise-server/internal/api/respond"
	"github.com/taxwise/taxwise-server/internal/api/validate"
	"github.com/taxwise/taxwise-server/internal/deductions"
	"github.com/taxwise/taxwise-server/internal/model"
)

// Suggester produces deduction suggestions (deductions.Service in production).
type Suggester interface {
	Suggest(ctx context.Context, req deductions.Request) (*model.DeductionSuggestions, error)
}

type DeductionsHandler struct {
	svc      Suggester
	maxBytes int64
}

func NewDeductionsHandler(svc Suggester, maxBytes int64) *DeductionsHandler {
	return &DeductionsHandler{svc: svc, maxBytes: maxBytes}
}

// Suggest POST /api/deductions/suggestions
func (h *DeductionsHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID        string              `json:"userId"`
		UserName      string              `json:"userName"`
		FinancialData model.FinancialData `json:"financialData"`
		Documents     []string            `json:"documents"`
	}
	if err := decodeJSON(w, r, h.maxBytes, &in); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.SuggestionRequest(in.UserID, in.UserName, len(in.Documents)); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	out, err := h.svc.Suggest(r.Context(), deductions.Request{
		ActorID:       in.UserID,
		ActorName:     in.UserName,
		FinancialData: in.FinancialData,
		Documents:     in.Documents,
	})
	if err != nil {
		var genErr *deductions.GenerationError
		switch {
		case model.IsValidationError(err):
			respond.WriteBadRequest(w, err.Error())
		case errors.As(err, &genErr):
			respond.WriteError(w, http.StatusBadGateway, "Failed to get deduction suggestions: "+genErr.Err.Error()+". Please try again.")
		default:
			log.Error().Err(err).Msg("deduction suggestions failed")
			respond.WriteInternalError(w, err.Error())
		}
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
