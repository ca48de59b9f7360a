package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const zipDataURLPrefix = "data:application/zip;base64,"

type exportResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	DownloadURL string `json:"downloadUrl"`
	Filename    string `json:"filename"`
}

type userDocument struct {
	Filename  string `json:"filename"`
	SignedURL string `json:"signedUrl"`
}

func newExportCmd() *cobra.Command {
	var (
		userID, userName, category, outDir string
		docs                               []string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build an export package and save the ZIP",
		RunE: func(cmd *cobra.Command, args []string) error {
			documents, err := parseDocs(docs)
			if err != nil {
				return err
			}
			res, err := runExport(userID, userName, category, documents)
			if err != nil {
				return err
			}
			path, err := saveArchive(outDir, res)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			if !res.Success {
				return fmt.Errorf("package has issues; see summary.txt in %s", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID (required)")
	cmd.Flags().StringVarP(&userName, "name", "n", "", "User display name for the audit log")
	cmd.Flags().StringVarP(&category, "category", "c", "general", "Tax category (medical, educational, property, social, investments, general)")
	cmd.Flags().StringArrayVar(&docs, "doc", nil, "User document as filename=signedURL (repeatable)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory to write the ZIP into")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// parseDocs splits filename=url pairs on the first "=" (signed URLs contain more).
func parseDocs(raw []string) ([]userDocument, error) {
	out := make([]userDocument, 0, len(raw))
	for _, d := range raw {
		name, url, ok := strings.Cut(d, "=")
		if !ok || name == "" || url == "" {
			return nil, fmt.Errorf("--doc %q must be filename=url", d)
		}
		out = append(out, userDocument{Filename: name, SignedURL: url})
	}
	return out, nil
}

func runExport(userID, userName, category string, docs []userDocument) (*exportResult, error) {
	var res exportResult
	resp, err := newClient().R().
		SetBody(map[string]interface{}{
			"userId":        userID,
			"userName":      userName,
			"category":      category,
			"userDocuments": docs,
		}).
		SetResult(&res).
		SetError(&res).
		Post("/api/export-package")
	if err != nil {
		return nil, err
	}
	log.Debug().Int("status", resp.StatusCode()).Str("filename", res.Filename).Msg("export response")
	if resp.IsError() {
		if res.Message != "" {
			return nil, fmt.Errorf("http %d: %s", resp.StatusCode(), res.Message)
		}
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	return &res, nil
}

func saveArchive(dir string, res *exportResult) (string, error) {
	payload, ok := strings.CutPrefix(res.DownloadURL, zipDataURLPrefix)
	if !ok {
		return "", fmt.Errorf("unexpected downloadUrl format")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decode archive: %w", err)
	}
	name := filepath.Base(res.Filename)
	if name == "." || name == string(filepath.Separator) {
		name = "taxwise_export.zip"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
