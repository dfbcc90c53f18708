// Package report persists the set of failing example paths between runs
// to support "rerun only previously failing" workflows.
//
// The report is a small versioned JSON document. Reading is deliberately
// forgiving: a missing file, invalid JSON, or a document that does not
// match the embedded schema all yield an empty set, so the feature
// degrades to "run everything" instead of failing the run.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"

	"github.com/abdul-hamid-achik/bspec/packages/core/spec"
)

// DefaultPath is where the failure report is written unless configured
// otherwise.
const DefaultPath = ".bspec/failures.json"

// Version identifies the report document format.
const Version = 1

// Record is one persisted failure.
type Record struct {
	Groups      []string `json:"groups"`
	Requirement string   `json:"requirement"`
	Detail      string   `json:"detail,omitempty"`
}

type document struct {
	Version   int      `json:"version"`
	WrittenAt string   `json:"writtenAt"`
	Failures  []Record `json:"failures"`
}

const schema = `{
  "type": "object",
  "required": ["version", "failures"],
  "properties": {
    "version": {"type": "integer"},
    "writtenAt": {"type": "string"},
    "failures": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["groups", "requirement"],
        "properties": {
          "groups": {"type": "array", "items": {"type": "string"}},
          "requirement": {"type": "string"},
          "detail": {"type": "string"}
        }
      }
    }
  }
}`

// Write serializes the failure records to path, creating parent
// directories as needed.
func Write(path string, records []Record) error {
	doc := document{
		Version:   Version,
		WrittenAt: time.Now().UTC().Format(time.RFC3339),
		Failures:  records,
	}
	if doc.Failures == nil {
		doc.Failures = []Record{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding failure report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing failure report: %w", err)
	}
	return nil
}

// Read loads the failure records from path. Any read, parse, or schema
// problem yields an empty slice, never an error.
func Read(path string) []Record {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	if !gjson.ValidBytes(data) {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil || !result.Valid() {
		return nil
	}

	if gjson.GetBytes(data, "version").Int() != Version {
		return nil
	}

	var records []Record
	gjson.GetBytes(data, "failures").ForEach(func(_, failure gjson.Result) bool {
		rec := Record{
			Requirement: failure.Get("requirement").String(),
			Detail:      failure.Get("detail").String(),
		}
		failure.Get("groups").ForEach(func(_, g gjson.Result) bool {
			rec.Groups = append(rec.Groups, g.String())
			return true
		})
		records = append(records, rec)
		return true
	})
	return records
}

// Paths converts records to spec paths.
func Paths(records []Record) []spec.Path {
	paths := make([]spec.Path, 0, len(records))
	for _, rec := range records {
		paths = append(paths, spec.Path{Groups: rec.Groups, Requirement: rec.Requirement})
	}
	return paths
}

// Predicate builds a filter keeping only paths present in the records.
// An empty record set keeps everything, so a missing or corrupt report
// degrades to a full run.
func Predicate(records []Record) spec.Predicate {
	if len(records) == 0 {
		return func(spec.Path) bool { return true }
	}
	set := make(map[string]struct{}, len(records))
	for _, p := range Paths(records) {
		set[p.Key()] = struct{}{}
	}
	return func(path spec.Path) bool {
		_, ok := set[path.Key()]
		return ok
	}
}
