package model

import (
	"fmt"
	"strconv"
	"time"
)

// Category selects the tax-deduction area an export package is built for.
type Category string

const (
	CategoryMedical     Category = "medical"
	CategoryEducational Category = "educational"
	CategoryProperty    Category = "property"
	CategorySocial      Category = "social"
	CategoryInvestments Category = "investments"
	CategoryGeneral     Category = "general"
)

// Categories returns every supported category in display order.
func Categories() []Category {
	return []Category{
		CategoryMedical,
		CategoryEducational,
		CategoryProperty,
		CategorySocial,
		CategoryInvestments,
		CategoryGeneral,
	}
}

// ParseCategory maps a wire value to a Category.
func ParseCategory(v string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == v {
			return c, nil
		}
	}
	return "", NewValidationError("category", fmt.Sprintf("unsupported category %q", v))
}

// UserFile is one user-owned document reachable through a short-lived URL.
type UserFile struct {
	Filename  string `json:"filename"`
	AccessURL string `json:"signedUrl"`
}

// ExportRequest describes a single export call. It lives for one request only.
type ExportRequest struct {
	ActorID   string
	ActorName string
	Category  Category
	UserFiles []UserFile
}

// ExportResult is the outcome of assembling an export package.
// Success is false when any single fetch failed; Archive is still populated.
type ExportResult struct {
	Success  bool
	Archive  []byte
	Filename string
	Message  string
	Issues   []string
}

// AuditAction names the kind of action recorded in the audit log.
type AuditAction string

const (
	ActionLoginSuccess         AuditAction = "Login Success"
	ActionUserRegistered       AuditAction = "User Registered"
	ActionProfileUpdated       AuditAction = "Profile Updated"
	ActionAvatarChanged        AuditAction = "Avatar Changed"
	ActionSettingsSaved        AuditAction = "Settings Saved"
	ActionFinancialDataSaved   AuditAction = "Financial Data Saved"
	ActionDocumentUploaded     AuditAction = "Document Uploaded"
	ActionDocumentRemoved      AuditAction = "Document Removed"
	ActionSuggestionsRequested AuditAction = "AI Suggestions Requested"
	ActionUserCreatedByAdmin   AuditAction = "User Created by Admin"
	ActionUserRoleChanged      AuditAction = "User Role Changed by Admin"
	ActionUserDeletedByAdmin   AuditAction = "User Deleted by Admin"
	ActionGroupCreated         AuditAction = "Group Created"
	ActionDocumentExported     AuditAction = "Document Exported"
	ActionPasswordResetRequest AuditAction = "Password Reset Requested"
	ActionAllDataCleared       AuditAction = "All Data Cleared"
)

const (
	SystemUserID   = "system"
	SystemUserName = "System"
)

// AuditEntry is an immutable audit record. Timestamp is assigned by the store.
type AuditEntry struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	UserID    string      `json:"userId"`
	UserName  string      `json:"userName"`
	Action    AuditAction `json:"action"`
	Details   string      `json:"details,omitempty"`
}

// Normalize fills the system actor for entries recorded without one.
func (e *AuditEntry) Normalize() {
	if e.UserID == "" {
		e.UserID = SystemUserID
	}
	if e.UserName == "" {
		e.UserName = SystemUserName
	}
}

// Currency is a supported display/input currency.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyRUB Currency = "RUB"
)

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyRUB:
		return true
	}
	return false
}

type MonetaryAmount struct {
	Value    float64  `json:"value"`
	Currency Currency `json:"currency"`
}

func (m MonetaryAmount) String() string {
	return strconv.FormatFloat(m.Value, 'f', -1, 64) + " " + string(m.Currency)
}

type IncomeData struct {
	Job                MonetaryAmount `json:"job"`
	Investments        MonetaryAmount `json:"investments"`
	PropertyIncome     MonetaryAmount `json:"propertyIncome"`
	Credits            MonetaryAmount `json:"credits"`
	OtherIncomeDetails string         `json:"otherIncomeDetails"`
}

type ExpenseData struct {
	Medical              MonetaryAmount `json:"medical"`
	Educational          MonetaryAmount `json:"educational"`
	Social               MonetaryAmount `json:"social"`
	Property             MonetaryAmount `json:"property"`
	OtherExpensesDetails string         `json:"otherExpensesDetails"`
}

// FinancialData is the user's declared income and expenses.
type FinancialData struct {
	Income   IncomeData  `json:"income"`
	Expenses ExpenseData `json:"expenses"`
}

// DeductionSuggestions is the validated output of the suggestion model.
type DeductionSuggestions struct {
	SuggestedDeductions []string `json:"suggestedDeductions"`
	Summary             string   `json:"summary"`
}
