package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/taxwise/taxwise-server/internal/model"
)

// isoMillis matches the millisecond UTC form used across the product.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type summary struct {
	actorID   string
	category  model.Category
	exported  time.Time
	attempted int
	refPath   string
	issues    []string
}

func (s summary) String() string {
	var b strings.Builder
	refPath := s.refPath
	if refPath == "" {
		refPath = "None for this category"
	}
	b.WriteString("TaxWise Export Summary\n")
	fmt.Fprintf(&b, "User ID: %s\n", s.actorID)
	fmt.Fprintf(&b, "Category: %s\n", s.category)
	fmt.Fprintf(&b, "Export Date: %s\n", s.exported.UTC().Format(isoMillis))
	fmt.Fprintf(&b, "Number of user documents attempted: %d\n", s.attempted)
	fmt.Fprintf(&b, "Sample document attempted (path in storage): %s\n", refPath)
	if len(s.issues) > 0 {
		// issue texts carry their own trailing newlines
		fmt.Fprintf(&b, "\n--- Issues Encountered ---\n%s\n--- End Issues ---\n", strings.Join(s.issues, ""))
	}
	b.WriteString("\nNote: If documents are missing, check for ERROR_FETCHING_...txt files in the ZIP folders for details.")
	return b.String()
}
