package export

import "github.com/taxwise/taxwise-server/internal/model"

// ReferenceKind tags how the reference slot of a package is filled.
type ReferenceKind int

const (
	// ReferenceNone adds an informational note and never fails.
	ReferenceNone ReferenceKind = iota
	// ReferenceDocument is fetched from the object store by StoragePath.
	ReferenceDocument
	// ReferenceGuide is static text written as EntryName.
	ReferenceGuide
)

const sampleDir = "app_resources/sample_documents/"

// Reference is the fixed sample material bundled with a category's package.
type Reference struct {
	Kind        ReferenceKind
	StoragePath string
	EntryName   string
	Text        string
}

// ReferenceFor returns the reference material for c.
func ReferenceFor(c model.Category) Reference {
	switch c {
	case model.CategoryMedical:
		// the stored object really carries a doubled extension
		return document("medical_KND1151156.pdf.pdf", "sample_medical_KND1151156.pdf")
	case model.CategoryEducational:
		return document("educational_KND1151158.pdf", "sample_educational_KND1151158.pdf")
	case model.CategoryProperty:
		return document("property_KND1150117.pdf", "sample_property_KND1150117.pdf")
	case model.CategorySocial:
		return document("social_KND1150130.pdf", "sample_social_KND1150130.pdf")
	case model.CategoryInvestments:
		return document("investments_KND1150145.pdf", "sample_investments_KND1150145.pdf")
	case model.CategoryGeneral:
		return Reference{Kind: ReferenceGuide, EntryName: "sample_general_guide.txt", Text: generalGuide}
	}
	return Reference{Kind: ReferenceNone}
}

func document(object, entry string) Reference {
	return Reference{Kind: ReferenceDocument, StoragePath: sampleDir + object, EntryName: entry}
}

const generalGuide = `TaxWise general export guide

This package was generated for the "general" category, which has no single
official sample form. Use it as a collection of supporting documents.

What to check before filing:
- every receipt or statement in user_documents/ belongs to the tax year you are filing for;
- amounts in the documents match the amounts you declared in TaxWise;
- documents issued by organisations carry their registration details and a stamp or signature.

Category-specific packages (medical, educational, property, social,
investments) include the matching official sample declaration form in
sample_documents/.
`
