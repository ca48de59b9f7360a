package deductions

import (
	"fmt"
	"strings"

	"github.com/taxwise/taxwise-server/internal/model"
)

const exampleOutput = `{
  "suggestedDeductions": [
    "Example Deduction 1: e.g., Home office expenses if criteria are met.",
    "Example Deduction 2: e.g., Portion of medical bills exceeding AGI threshold."
  ],
  "summary": "This is a sample summary. Based on the provided information, these are potential areas for tax deductions. Further review by a tax professional is recommended."
}`

// FinancialSummary renders fd as the indented text block fed to the model.
func FinancialSummary(fd model.FinancialData) string {
	var b strings.Builder
	line := func(indent int, label, value string) {
		fmt.Fprintf(&b, "%s%s: %s\n", strings.Repeat("  ", indent), label, value)
	}
	b.WriteString("Income:\n")
	line(1, "Job", fd.Income.Job.String())
	line(1, "Investments", fd.Income.Investments.String())
	line(1, "Property Income", fd.Income.PropertyIncome.String())
	line(1, "Credits", fd.Income.Credits.String())
	line(1, "Other Income Details", orNone(fd.Income.OtherIncomeDetails))
	b.WriteString("Expenses:\n")
	line(1, "Medical", fd.Expenses.Medical.String())
	line(1, "Educational", fd.Expenses.Educational.String())
	line(1, "Social", fd.Expenses.Social.String())
	line(1, "Property", fd.Expenses.Property.String())
	line(1, "Other Expenses Details", orNone(fd.Expenses.OtherExpensesDetails))
	return strings.TrimSpace(b.String())
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}

// BuildPrompt returns the advisor prompt. Attached documents travel as
// separate parts; the prompt only refers to them by position.
func BuildPrompt(financialSummary string, documents int) string {
	var b strings.Builder
	b.WriteString("You are an expert tax advisor. Analyze the following financial data and uploaded documents to suggest potential tax deductions the user might be eligible for.\n\n")
	fmt.Fprintf(&b, "Financial Data: %s\n\n", financialSummary)
	b.WriteString("Uploaded Documents:\n")
	if documents == 0 {
		b.WriteString("- none\n")
	}
	for i := 1; i <= documents; i++ {
		fmt.Fprintf(&b, "- attached document %d\n", i)
	}
	b.WriteString("\nBased on this information, provide a list of potential tax deductions and a summary of your analysis.\n\n")
	b.WriteString("Format your response as a JSON object. Here is an example of the expected structure:\n")
	b.WriteString(exampleOutput)
	return b.String()
}
