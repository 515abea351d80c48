package clientcli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sagarc03/b2files"
)

// Formatter formats results for output.
type Formatter interface {
	FormatUpload(w io.Writer, results []UploadResult) error
	FormatList(w io.Writer, result *ListResult) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error
	FormatProfileChecks(w io.Writer, checks []ProfileCheck) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatUpload formats upload results as human-readable text.
func (f *HumanFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.LocalPath, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Uploaded: %s (%s)\n", r.FileName, formatSize(r.Size))
			_, _ = fmt.Fprintf(w, "  File ID: %s\n", r.FileID)
			_, _ = fmt.Fprintf(w, "  SHA1:    %s\n", r.ContentSHA1)
		}
	}
	return nil
}

// FormatList formats list results as human-readable text.
func (f *HumanFormatter) FormatList(w io.Writer, result *ListResult) error {
	if len(result.Files) == 0 {
		_, _ = fmt.Fprintln(w, "No files found")
		return nil
	}

	if f.Quiet {
		for i := range result.Files {
			_, _ = fmt.Fprintln(w, result.Files[i].FileName)
		}
		return nil
	}

	maxNameLen := 4 // "NAME"
	for i := range result.Files {
		if len(result.Files[i].FileName) > maxNameLen {
			maxNameLen = len(result.Files[i].FileName)
		}
	}
	if maxNameLen > 60 {
		maxNameLen = 60
	}

	_, _ = fmt.Fprintf(w, "%-*s  %10s  %s\n", maxNameLen, "NAME", "SIZE", "UPLOADED")
	_, _ = fmt.Fprintf(w, "%s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", 10), strings.Repeat("-", 19))

	for i := range result.Files {
		file := &result.Files[i]
		name := file.FileName
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}
		_, _ = fmt.Fprintf(w, "%-*s  %10s  %s\n",
			maxNameLen,
			name,
			formatSize(file.Size),
			file.UploadedAt.Format("2006-01-02 15:04:05"),
		)
	}

	_, _ = fmt.Fprintf(w, "\n%d file(s) (%s total)\n", len(result.Files), formatSize(result.TotalSize()))

	if result.NextFileName != "" {
		_, _ = fmt.Fprintf(w, "Next page: use --start %q\n", result.NextFileName)
	}

	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatUpload formats upload results as JSON.
func (f *JSONFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	type jsonResult struct {
		LocalPath   string `json:"local_path"`
		FileName    string `json:"file_name"`
		FileID      string `json:"file_id,omitempty"`
		BucketID    string `json:"bucket_id,omitempty"`
		ContentType string `json:"content_type,omitempty"`
		ContentSHA1 string `json:"content_sha1,omitempty"`
		Size        int64  `json:"size_bytes,omitempty"`
		UploadedAt  string `json:"uploaded_at,omitempty"`
		Error       string `json:"error,omitempty"`
	}

	output := make([]jsonResult, len(results))
	for i := range results {
		r := &results[i]
		jr := jsonResult{
			LocalPath: r.LocalPath,
			FileName:  r.FileName,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		} else {
			jr.FileID = r.FileID
			jr.BucketID = r.BucketID
			jr.ContentType = r.ContentType
			jr.ContentSHA1 = r.ContentSHA1
			jr.Size = r.Size
			jr.UploadedAt = r.UploadedAt.Format(time.RFC3339)
		}
		output[i] = jr
	}

	return writeJSON(w, output)
}

// FormatList formats list results as JSON.
func (f *JSONFormatter) FormatList(w io.Writer, result *ListResult) error {
	return writeJSON(w, result)
}

// FormatError formats an error as JSON. Service errors keep their status and code.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error  string `json:"error"`
		Status int    `json:"status,omitempty"`
		Code   string `json:"code,omitempty"`
	}{
		Error: err.Error(),
	}

	var svcErr *b2files.ServiceError
	if errors.As(err, &svcErr) {
		output.Status = svcErr.Status
		output.Code = svcErr.Code
	}

	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	maxNameLen := 4     // "NAME"
	maxEndpointLen := 8 // "ENDPOINT"
	for i := range profiles {
		maxNameLen = max(maxNameLen, len(profiles[i].Name))
		maxEndpointLen = max(maxEndpointLen, len(profiles[i].Endpoint))
	}
	maxNameLen = min(maxNameLen, 20)
	maxEndpointLen = min(maxEndpointLen, 50)

	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %-20s  %s\n", maxNameLen, "NAME", maxEndpointLen, "ENDPOINT", "KEY ID", "BUCKET")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", maxEndpointLen), strings.Repeat("-", 20), strings.Repeat("-", 10))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		name := p.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		endpoint := p.Endpoint
		if len(endpoint) > maxEndpointLen {
			endpoint = endpoint[:maxEndpointLen-3] + "..."
		}

		bucket := p.BucketID
		if bucket == "" {
			bucket = "-"
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %-*s  %-20s  %s\n", marker, maxNameLen, name, maxEndpointLen, endpoint, maskSecret(p.KeyID, showSecrets), bucket)
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	_, _ = fmt.Fprintf(w, "Name:     %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Endpoint: %s\n", profile.Endpoint)
	_, _ = fmt.Fprintf(w, "Key ID:   %s\n", maskSecret(profile.KeyID, showSecrets))
	_, _ = fmt.Fprintf(w, "Key:      %s\n", maskSecret(profile.Key, showSecrets))
	if profile.BucketID != "" {
		_, _ = fmt.Fprintf(w, "Bucket:   %s\n", profile.BucketID)
	}
	return nil
}

type jsonProfile struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
	KeyID    string `json:"key_id"`
	Key      string `json:"key"`
	BucketID string `json:"bucket_id,omitempty"`
	Default  bool   `json:"default"`
}

func toJSONProfile(p Profile, isDefault, showSecrets bool) jsonProfile {
	return jsonProfile{
		Name:     p.Name,
		Endpoint: p.Endpoint,
		KeyID:    maskSecret(p.KeyID, showSecrets),
		Key:      maskSecret(p.Key, showSecrets),
		BucketID: p.BucketID,
		Default:  isDefault,
	}
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		output.Profiles[i] = toJSONProfile(profiles[i], profiles[i].Name == defaultName, showSecrets)
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	return writeJSON(w, toJSONProfile(profile, isDefault, showSecrets))
}

// FormatProfileChecks prints one line per profile: the account and bucket
// scope on success, the failure otherwise.
func (f *HumanFormatter) FormatProfileChecks(w io.Writer, checks []ProfileCheck) error {
	for _, c := range checks {
		if !c.OK() {
			_, _ = fmt.Fprintf(w, "FAIL  %s  %s: %v\n", c.Profile, c.Endpoint, c.Err)
			continue
		}
		if f.Quiet {
			_, _ = fmt.Fprintf(w, "OK    %s\n", c.Profile)
			continue
		}

		scope := "all buckets"
		if c.AllowedBucket != "" {
			scope = "bucket " + c.AllowedBucket
			if c.AllowedName != "" {
				scope += " (" + c.AllowedName + ")"
			}
		}
		_, _ = fmt.Fprintf(w, "OK    %s  account %s  %s  api %s\n", c.Profile, c.AccountID, scope, c.APIURL)
	}
	return nil
}

type jsonProfileCheck struct {
	ProfileCheck
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// FormatProfileChecks formats check outcomes as a JSON array.
func (f *JSONFormatter) FormatProfileChecks(w io.Writer, checks []ProfileCheck) error {
	out := make([]jsonProfileCheck, len(checks))
	for i, c := range checks {
		out[i] = jsonProfileCheck{ProfileCheck: c, OK: c.OK()}
		if c.Err != nil {
			out[i].Error = c.Err.Error()
		}
	}
	return writeJSON(w, out)
}

// maskSecret masks a secret string, showing only first 4 and last 4 characters.
// If showSecrets is true, returns the original value.
// If the secret is too short, returns all asterisks.
func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
