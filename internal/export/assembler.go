// Package export assembles the downloadable tax package for one category:
// the user's documents, the category's reference material and a summary,
// bundled as a ZIP archive.
package export

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/taxwise/taxwise-server/internal/model"
	"github.com/taxwise/taxwise-server/internal/objectstore"
)

const (
	maxMarkerStem = 50

	missingFileIssue = "Skipped a user document due to missing URL/filename.\n"
	noUserDocsEntry  = "INFO_NO_USER_DOCS.txt"
	noUserDocsText   = "No user documents were specified for this export or the list was empty."
)

// Auditor receives the single audit record written per export.
type Auditor interface {
	Record(ctx context.Context, actorID, actorName string, action model.AuditAction, details string)
}

// Options tunes an Assembler. Zero values select defaults.
type Options struct {
	// Prefix starts every archive filename; defaults to "taxwise".
	Prefix string
	// Concurrency bounds in-flight fetches; defaults to 4.
	Concurrency int
	// FetchTimeout bounds each individual fetch; defaults to 30s.
	FetchTimeout time.Duration
	Now          func() time.Time
}

// Assembler builds export packages. It is safe for concurrent use.
type Assembler struct {
	fetcher objectstore.Fetcher
	auditor Auditor
	opts    Options
	log     zerolog.Logger
}

func NewAssembler(f objectstore.Fetcher, a Auditor, log zerolog.Logger, opts Options) *Assembler {
	if opts.Prefix == "" {
		opts.Prefix = "taxwise"
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 4
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Assembler{fetcher: f, auditor: a, opts: opts, log: log}
}

// fetchResult is owned by exactly one fetch goroutine until Wait returns.
type fetchResult struct {
	entry string
	data  []byte
	err   error
	skip  bool
}

// Assemble builds the package for req. Individual fetch failures are reported
// inside the archive and in the result; an error is returned only when the
// request is unusable or the archive cannot be written.
func (a *Assembler) Assemble(ctx context.Context, req model.ExportRequest) (*model.ExportResult, error) {
	if strings.TrimSpace(req.ActorID) == "" {
		return nil, model.NewValidationError("userId", "is required")
	}
	res, err := a.assemble(ctx, req)
	if err != nil {
		a.record(ctx, req, fmt.Sprintf("Failed. Category: %s, Error: %s", req.Category, err))
		return nil, err
	}
	return res, nil
}

func (a *Assembler) assemble(ctx context.Context, req model.ExportRequest) (*model.ExportResult, error) {
	category, err := model.ParseCategory(string(req.Category))
	if err != nil {
		return nil, err
	}

	now := a.opts.Now()
	ref := ReferenceFor(category)
	log := a.log.With().Str("user_id", req.ActorID).Str("category", string(category)).Logger()
	log.Info().Int("user_documents", len(req.UserFiles)).Msg("assembling export package")

	userResults := make([]fetchResult, len(req.UserFiles))
	var refResult fetchResult

	var g errgroup.Group
	g.SetLimit(a.opts.Concurrency)
	for i, f := range req.UserFiles {
		entry, ok := userEntryName(f.Filename)
		if !ok || f.AccessURL == "" {
			userResults[i].skip = true
			continue
		}
		userResults[i].entry = entry
		g.Go(func() error {
			userResults[i].data, userResults[i].err = a.fetch(ctx, func(fctx context.Context) ([]byte, error) {
				return a.fetcher.FetchURL(fctx, f.AccessURL)
			})
			return nil
		})
	}
	if ref.Kind == ReferenceDocument {
		g.Go(func() error {
			refResult.data, refResult.err = a.fetch(ctx, func(fctx context.Context) ([]byte, error) {
				return a.fetcher.FetchBytes(fctx, ref.StoragePath)
			})
			return nil
		})
	}
	_ = g.Wait()

	ar := newArchive(now)
	success := true
	var issues []string

	if err := ar.dir(userSection); err != nil {
		return nil, fmt.Errorf("write archive: %w", err)
	}
	if err := ar.dir(sampleSection); err != nil {
		return nil, fmt.Errorf("write archive: %w", err)
	}

	written := make(map[string]bool, len(userResults))
	for i, r := range userResults {
		name := req.UserFiles[i].Filename
		switch {
		case r.skip:
			log.Warn().Int("index", i).Msg("user document without filename or URL skipped")
			issues = append(issues, missingFileIssue)
			success = false
		case r.err != nil:
			log.Warn().Err(r.err).Str("filename", name).Msg("user document fetch failed")
			msg := fmt.Sprintf("Could not fetch user document: %s\nError: %s\nVerify the signed URL was valid and accessible.\n\n", name, r.err)
			if err := ar.addText(userSection+uniqueName(written, errorMarkerName(name)), msg); err != nil {
				return nil, fmt.Errorf("write archive: %w", err)
			}
			issues = append(issues, msg)
			success = false
		default:
			if err := ar.add(userSection+r.entry, r.data); err != nil {
				return nil, fmt.Errorf("write archive: %w", err)
			}
			written[r.entry] = true
		}
	}
	if len(req.UserFiles) == 0 {
		if err := ar.addText(userSection+noUserDocsEntry, noUserDocsText); err != nil {
			return nil, fmt.Errorf("write archive: %w", err)
		}
	}

	var refErr error
	switch ref.Kind {
	case ReferenceDocument:
		if refResult.err != nil {
			log.Warn().Err(refResult.err).Str("path", ref.StoragePath).Msg("reference document fetch failed")
			msg := fmt.Sprintf("Could not fetch sample document from storage: %s\nError: %s\n\nVerify that the file exists at this exact path in the storage bucket and that read access is allowed. Check for typos and case sensitivity in the path.", ref.StoragePath, refResult.err)
			refErr = ar.addText(sampleSection+"ERROR_FETCHING_SAMPLE_"+string(category)+".txt", msg)
			issues = append(issues, msg)
			success = false
		} else {
			refErr = ar.add(sampleSection+ref.EntryName, refResult.data)
		}
	case ReferenceGuide:
		refErr = ar.addText(sampleSection+ref.EntryName, ref.Text)
	case ReferenceNone:
		refErr = ar.addText(sampleSection+"INFO_NO_SAMPLE_FOR_CATEGORY_"+string(category)+".txt",
			fmt.Sprintf("No specific sample document is configured to be included for the category '%s'. This might be normal for some categories.", category))
	}
	if refErr != nil {
		return nil, fmt.Errorf("write archive: %w", refErr)
	}

	sum := summary{
		actorID:   req.ActorID,
		category:  category,
		exported:  now,
		attempted: len(req.UserFiles),
		refPath:   ref.StoragePath,
		issues:    issues,
	}
	if err := ar.addText(summaryEntry, sum.String()); err != nil {
		return nil, fmt.Errorf("write archive: %w", err)
	}
	data, err := ar.bytes()
	if err != nil {
		return nil, fmt.Errorf("finalise archive: %w", err)
	}

	res := &model.ExportResult{
		Success:  success,
		Archive:  data,
		Filename: fmt.Sprintf("%s_export_%s_%s_%d.zip", a.opts.Prefix, category, truncate(req.ActorID, 8), now.UnixMilli()),
		Issues:   issues,
	}
	details := fmt.Sprintf("Success. Category: %s, Filename: %s", category, res.Filename)
	if success {
		res.Message = fmt.Sprintf("Package for category '%s' generated successfully.", category)
	} else {
		res.Message = fmt.Sprintf("Package for category '%s' generated with some issues. Please check summary.txt and any error files in the ZIP.", category)
		details = fmt.Sprintf("Failed. Category: %s, Filename: %s, Issues: %d", category, res.Filename, len(issues))
	}
	a.record(ctx, req, details)

	log.Info().
		Bool("success", success).
		Int("issues", len(issues)).
		Int("bytes", len(data)).
		Str("filename", res.Filename).
		Msg("export package assembled")
	return res, nil
}

func (a *Assembler) record(ctx context.Context, req model.ExportRequest, details string) {
	if a.auditor != nil {
		a.auditor.Record(ctx, req.ActorID, req.ActorName, model.ActionDocumentExported, details)
	}
}

func (a *Assembler) fetch(ctx context.Context, do func(context.Context) ([]byte, error)) ([]byte, error) {
	fctx, cancel := context.WithTimeout(ctx, a.opts.FetchTimeout)
	defer cancel()
	return do(fctx)
}

// userEntryName returns the cleaned name of a user document inside its
// section, rejecting names that are empty or would leave the section.
func userEntryName(filename string) (string, bool) {
	if strings.TrimSpace(filename) == "" {
		return "", false
	}
	clean := path.Clean(strings.ReplaceAll(filename, "\\", "/"))
	if path.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	return clean, true
}

// errorMarkerName maps a filename to ERROR_FETCHING_<stem>.txt where the stem
// keeps only [A-Za-z0-9.] (everything else becomes "_") and is cut to 50 chars.
func errorMarkerName(filename string) string {
	var b strings.Builder
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return "ERROR_FETCHING_" + truncate(b.String(), maxMarkerStem) + ".txt"
}

// uniqueName claims name in used, appending _2, _3, ... before the extension
// when an earlier entry already took it.
func uniqueName(used map[string]bool, name string) string {
	candidate := name
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 2; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s_%d%s", stem, n, ext)
	}
	used[candidate] = true
	return candidate
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
