package output

import (
	"encoding/json"
	"fmt"

	"github.com/patchset-tools/merge-report/internal/git"
	"github.com/patchset-tools/merge-report/internal/report"
)

// JSONMergeWriter writes merge reports as a single JSON document.
type JSONMergeWriter struct{}

// JSONMergeReport is the JSON output structure for a merge report.
type JSONMergeReport struct {
	Metadata  JSONMergeMetadata `json:"metadata"`
	Patchsets []JSONPatchset    `json:"patchsets"`
}

// JSONMergeMetadata describes the query the report answers.
type JSONMergeMetadata struct {
	TargetFile    string `json:"target_file"`
	StartRef      string `json:"start_ref"`
	EndRef        string `json:"end_ref"`
	PatchsetCount int    `json:"patchset_count"`
}

// JSONPatchset is one qualifying merge with its contributed commits.
type JSONPatchset struct {
	MergeHash    string       `json:"merge_hash"`
	MergeSubject string       `json:"merge_subject"`
	MergeBody    string       `json:"merge_body"`
	MergeAuthor  string       `json:"merge_author"`
	MergeDate    string       `json:"merge_date"`
	Commits      []JSONCommit `json:"commits"`
}

// JSONCommit is the detail view of a single commit.
type JSONCommit struct {
	Hash          string   `json:"hash"`
	Subject       string   `json:"subject"`
	Message       string   `json:"message"`
	Author        string   `json:"author"`
	Date          string   `json:"date"`
	ModifiedFiles []string `json:"modified_files"`
}

// Write outputs the merge report as JSON.
func (w *JSONMergeWriter) Write(rep *report.Report, options Options) error {
	doc := JSONMergeReport{
		Metadata: JSONMergeMetadata{
			TargetFile:    rep.PathGlob,
			StartRef:      rep.FromRef,
			EndRef:        rep.ToRef,
			PatchsetCount: len(rep.Patchsets),
		},
		Patchsets: make([]JSONPatchset, 0, len(rep.Patchsets)),
	}

	for _, ps := range rep.Patchsets {
		jp := JSONPatchset{
			MergeHash:    ps.MergeHash,
			MergeSubject: ps.Subject,
			MergeBody:    ps.Body,
			MergeAuthor:  ps.Author,
			MergeDate:    ps.Date,
			Commits:      make([]JSONCommit, 0, len(ps.Commits)),
		}
		for i, c := range ps.Commits {
			jc := JSONCommit{Hash: c.Hash, Subject: c.Subject}
			if i < len(ps.Details) {
				jc = jsonCommitFromDetail(ps.Details[i])
			}
			jp.Commits = append(jp.Commits, jc)
		}
		doc.Patchsets = append(doc.Patchsets, jp)
	}

	return writeJSON(doc, options)
}

// JSONFileHistoryWriter writes file history reports as JSON.
type JSONFileHistoryWriter struct{}

// JSONFileHistoryReport is the JSON output structure for file history.
type JSONFileHistoryReport struct {
	Metadata JSONFileHistoryMetadata `json:"metadata"`
	Commits  []JSONCommit            `json:"commits"`
}

// JSONFileHistoryMetadata describes the query the history answers.
type JSONFileHistoryMetadata struct {
	TargetFile  string `json:"target_file"`
	StartRef    string `json:"start_ref"`
	EndRef      string `json:"end_ref"`
	CommitCount int    `json:"commit_count"`
}

// Write outputs the file history report as JSON.
func (w *JSONFileHistoryWriter) Write(hist *report.FileHistory, options Options) error {
	doc := JSONFileHistoryReport{
		Metadata: JSONFileHistoryMetadata{
			TargetFile:  hist.PathGlob,
			StartRef:    hist.FromRef,
			EndRef:      hist.ToRef,
			CommitCount: len(hist.Commits),
		},
		Commits: make([]JSONCommit, 0, len(hist.Commits)),
	}

	for i, c := range hist.Commits {
		jc := JSONCommit{Hash: c.Hash, Subject: c.Subject}
		if i < len(hist.Details) {
			jc = jsonCommitFromDetail(hist.Details[i])
		}
		doc.Commits = append(doc.Commits, jc)
	}

	return writeJSON(doc, options)
}

func jsonCommitFromDetail(d git.CommitDetail) JSONCommit {
	return JSONCommit{
		Hash:          d.Hash,
		Subject:       d.Subject,
		Message:       d.Message(),
		Author:        d.Author,
		Date:          d.Date,
		ModifiedFiles: d.ModifiedFiles,
	}
}

func writeJSON(v any, options Options) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return closeOutputFile(file)
}
