package deductions

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxwise/taxwise-server/internal/model"
)

type fakeGenerator struct {
	out         string
	err         error
	prompt      string
	attachments []Attachment
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string, attachments []Attachment) (string, error) {
	g.prompt, g.attachments = prompt, attachments
	return g.out, g.err
}

type recorded struct {
	actorID, actorName string
	action             model.AuditAction
	details            string
}

type fakeAuditor struct{ calls []recorded }

func (a *fakeAuditor) Record(ctx context.Context, actorID, actorName string, action model.AuditAction, details string) {
	a.calls = append(a.calls, recorded{actorID, actorName, action, details})
}

func usd(v float64) model.MonetaryAmount { return model.MonetaryAmount{Value: v, Currency: model.CurrencyUSD} }

func sampleData() model.FinancialData {
	return model.FinancialData{
		Income: model.IncomeData{
			Job:            usd(85000),
			Investments:    usd(1200.5),
			PropertyIncome: usd(0),
			Credits:        model.MonetaryAmount{Value: 300, Currency: model.CurrencyEUR},
		},
		Expenses: model.ExpenseData{
			Medical:              usd(4200),
			Educational:          model.MonetaryAmount{Value: 95000, Currency: model.CurrencyRUB},
			Social:               usd(0),
			Property:             usd(0),
			OtherExpensesDetails: "Daycare",
		},
	}
}

func TestFinancialSummary(t *testing.T) {
	want := "Income:\n" +
		"  Job: 85000 USD\n" +
		"  Investments: 1200.5 USD\n" +
		"  Property Income: 0 USD\n" +
		"  Credits: 300 EUR\n" +
		"  Other Income Details: None\n" +
		"Expenses:\n" +
		"  Medical: 4200 USD\n" +
		"  Educational: 95000 RUB\n" +
		"  Social: 0 USD\n" +
		"  Property: 0 USD\n" +
		"  Other Expenses Details: Daycare"
	assert.Equal(t, want, FinancialSummary(sampleData()))
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("Income: ...", 2)
	assert.Contains(t, p, "You are an expert tax advisor.")
	assert.Contains(t, p, "Financial Data: Income: ...\n")
	assert.Contains(t, p, "- attached document 1\n- attached document 2\n")
	assert.Contains(t, p, `"suggestedDeductions"`)

	assert.Contains(t, BuildPrompt("x", 0), "Uploaded Documents:\n- none\n")
}

func TestParseDataURL(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("%PDF-1.7"))

	a, err := ParseDataURL("data:application/PDF;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", a.MIMEType)
	assert.Equal(t, []byte("%PDF-1.7"), a.Data)

	for _, bad := range []string{
		"https://example.com/a.pdf",
		"data:application/pdf;base64",
		"data:application/pdf," + payload,
		"data:;base64," + payload,
		"data:image/png;base64,!!!",
		"data:image/png;base64,",
	} {
		_, err := ParseDataURL(bad)
		assert.Error(t, err, bad)
	}
}

func TestSuggest_ValidOutput(t *testing.T) {
	gen := &fakeGenerator{out: "```json\n{\"suggestedDeductions\":[\"Medical expenses\",\"  \",\"Education credit\"],\"summary\":\" Two areas. \"}\n```"}
	aud := &fakeAuditor{}
	svc := NewService(gen, aud, zerolog.Nop())

	doc := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff})
	out, err := svc.Suggest(context.Background(), Request{
		ActorID:       "u1",
		ActorName:     "Ada",
		FinancialData: sampleData(),
		Documents:     []string{doc},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Medical expenses", "Education credit"}, out.SuggestedDeductions)
	assert.Equal(t, "Two areas.", out.Summary)
	require.Len(t, gen.attachments, 1)
	assert.Equal(t, "image/jpeg", gen.attachments[0].MIMEType)
	assert.Contains(t, gen.prompt, "Medical: 4200 USD")

	require.Len(t, aud.calls, 1)
	assert.Equal(t, recorded{"u1", "Ada", model.ActionSuggestionsRequested, "Input categories: 5 income, 5 expenses. Documents: 1"}, aud.calls[0])
}

func TestSuggest_EmptySuggestionListPassesThrough(t *testing.T) {
	gen := &fakeGenerator{out: `{"suggestedDeductions":[],"summary":"No deductions apply to this profile."}`}

	out, err := NewService(gen, nil, zerolog.Nop()).Suggest(context.Background(), Request{FinancialData: sampleData()})
	require.NoError(t, err)
	assert.Empty(t, out.SuggestedDeductions)
	assert.NotNil(t, out.SuggestedDeductions)
	assert.Equal(t, "No deductions apply to this profile.", out.Summary)
}

func TestSuggest_UnusableOutputFallsBack(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":       "",
		"not json":    "I think you should deduct medical bills.",
		"no summary":  `{"suggestedDeductions":["a"]}`,
		"no list":     `{"summary":"s"}`,
		"wrong types": `{"suggestedDeductions":"a","summary":"s"}`,
	} {
		t.Run(name, func(t *testing.T) {
			out, err := NewService(&fakeGenerator{out: raw}, nil, zerolog.Nop()).Suggest(context.Background(), Request{FinancialData: sampleData()})
			require.NoError(t, err)
			assert.Equal(t, Fallback, *out)
		})
	}
}

func TestSuggest_GeneratorError(t *testing.T) {
	aud := &fakeAuditor{}
	svc := NewService(&fakeGenerator{err: errors.New("quota exceeded")}, aud, zerolog.Nop())

	_, err := svc.Suggest(context.Background(), Request{ActorID: "u1", FinancialData: sampleData()})
	require.Error(t, err)
	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	assert.EqualError(t, ge.Err, "quota exceeded")

	require.Len(t, aud.calls, 1)
	assert.Equal(t, "Error: quota exceeded", aud.calls[0].details)
}

func TestSuggest_RejectsInvalidInput(t *testing.T) {
	gen := &fakeGenerator{out: `{"suggestedDeductions":["a"],"summary":"s"}`}
	svc := NewService(gen, nil, zerolog.Nop())

	bad := sampleData()
	bad.Expenses.Social.Currency = "GBP"
	_, err := svc.Suggest(context.Background(), Request{FinancialData: bad})
	assert.True(t, model.IsValidationError(err))

	bad = sampleData()
	bad.Income.Job.Value = -1
	_, err = svc.Suggest(context.Background(), Request{FinancialData: bad})
	assert.True(t, model.IsValidationError(err))

	_, err = svc.Suggest(context.Background(), Request{FinancialData: sampleData(), Documents: []string{"not-a-data-url"}})
	assert.True(t, model.IsValidationError(err))
	assert.Empty(t, gen.prompt, "generator must not be called for invalid input")
}
