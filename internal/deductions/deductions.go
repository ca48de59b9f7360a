// Package deductions asks a generative model for tax deductions a user may be
// eligible for, given their declared finances and uploaded documents.
package deductions

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/taxwise/taxwise-server/internal/model"
)

// Attachment is a decoded document sent alongside the prompt.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Generator produces the raw model response (expected to be JSON) for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, attachments []Attachment) (string, error)
}

// Auditor records the outcome of each suggestion request.
type Auditor interface {
	Record(ctx context.Context, actorID, actorName string, action model.AuditAction, details string)
}

// Request is one suggestion call. Documents are data URLs.
type Request struct {
	ActorID       string
	ActorName     string
	FinancialData model.FinancialData
	Documents     []string
}

// GenerationError wraps a failure of the underlying model call.
type GenerationError struct{ Err error }

func (e *GenerationError) Error() string { return "generate suggestions: " + e.Err.Error() }
func (e *GenerationError) Unwrap() error { return e.Err }

// Fallback is returned when the model answers with nothing usable.
var Fallback = model.DeductionSuggestions{
	SuggestedDeductions: []string{"Error: AI failed to generate suggestions. Please check logs."},
	Summary:             "An error occurred while trying to generate deduction suggestions.",
}

// fixed by the IncomeData / ExpenseData shapes
const (
	incomeFields  = 5
	expenseFields = 5
)

type Service struct {
	gen     Generator
	auditor Auditor
	log     zerolog.Logger
}

func NewService(gen Generator, auditor Auditor, log zerolog.Logger) *Service {
	return &Service{gen: gen, auditor: auditor, log: log}
}

// Suggest validates req, calls the generator and validates its output.
// Invalid input yields a model.ValidationError; a failed model call yields a
// *GenerationError. Unusable model output is replaced by Fallback.
func (s *Service) Suggest(ctx context.Context, req Request) (*model.DeductionSuggestions, error) {
	if err := validateFinancialData(req.FinancialData); err != nil {
		return nil, err
	}
	attachments := make([]Attachment, 0, len(req.Documents))
	for i, d := range req.Documents {
		a, err := ParseDataURL(d)
		if err != nil {
			return nil, model.NewValidationError(fmt.Sprintf("documents[%d]", i), err.Error())
		}
		attachments = append(attachments, a)
	}

	prompt := BuildPrompt(FinancialSummary(req.FinancialData), len(attachments))
	raw, err := s.gen.Generate(ctx, prompt, attachments)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", req.ActorID).Msg("deduction suggestion generation failed")
		s.record(ctx, req, "Error: "+err.Error())
		return nil, &GenerationError{Err: err}
	}

	out, ok := parseSuggestions(raw)
	if !ok {
		s.log.Error().Str("user_id", req.ActorID).Int("response_bytes", len(raw)).Msg("model did not return valid suggestions")
		fb := Fallback
		fb.SuggestedDeductions = append([]string(nil), Fallback.SuggestedDeductions...)
		out = &fb
	}
	s.record(ctx, req, fmt.Sprintf("Input categories: %d income, %d expenses. Documents: %d", incomeFields, expenseFields, len(attachments)))
	return out, nil
}

func (s *Service) record(ctx context.Context, req Request, details string) {
	if s.auditor != nil {
		s.auditor.Record(ctx, req.ActorID, req.ActorName, model.ActionSuggestionsRequested, details)
	}
}

// parseSuggestions accepts a JSON object with a suggestion list and a
// non-empty summary. An empty list is a valid "nothing applies" answer.
func parseSuggestions(raw string) (*model.DeductionSuggestions, bool) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(raw, "```")), "```")
	if raw == "" {
		return nil, false
	}
	var out model.DeductionSuggestions
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, false
	}
	if out.SuggestedDeductions == nil {
		return nil, false
	}
	kept := make([]string, 0, len(out.SuggestedDeductions))
	for _, d := range out.SuggestedDeductions {
		if d = strings.TrimSpace(d); d != "" {
			kept = append(kept, d)
		}
	}
	out.SuggestedDeductions = kept
	out.Summary = strings.TrimSpace(out.Summary)
	if out.Summary == "" {
		return nil, false
	}
	return &out, true
}

func validateFinancialData(fd model.FinancialData) error {
	amounts := []struct {
		field string
		amt   model.MonetaryAmount
	}{
		{"income.job", fd.Income.Job},
		{"income.investments", fd.Income.Investments},
		{"income.propertyIncome", fd.Income.PropertyIncome},
		{"income.credits", fd.Income.Credits},
		{"expenses.medical", fd.Expenses.Medical},
		{"expenses.educational", fd.Expenses.Educational},
		{"expenses.social", fd.Expenses.Social},
		{"expenses.property", fd.Expenses.Property},
	}
	for _, a := range amounts {
		if !a.amt.Currency.Valid() {
			return model.NewValidationError(a.field+".currency", fmt.Sprintf("unsupported currency %q", a.amt.Currency))
		}
		if a.amt.Value < 0 || math.IsNaN(a.amt.Value) || math.IsInf(a.amt.Value, 0) {
			return model.NewValidationError(a.field+".value", "must be a non-negative number")
		}
	}
	return nil
}
