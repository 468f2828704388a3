// Package settings resolves the per-repository sync configuration. It
// merges the repo-local document with the process-wide defaults, validates
// the result, and classifies every failure as a user-fixable error that
// the bridge reports back on the issue instead of failing the event.
package settings

import (
	"gopkg.in/yaml.v3"

	"github.com/issuebridge/issuebridge/pkg/models"
)

// ConfigPath is the fixed in-repo location of the sync configuration file.
const ConfigPath = ".github/.jira_sync_config.yaml"

// Resolve parses the repo-local configuration document, merges the defaults
// into it (local keys win) and validates the required fields. A nil raw
// document means the repo has no configuration file.
//
// Resolve is a pure function over its inputs; defaults is never mutated.
func Resolve(raw []byte, defaults map[string]any) (*models.Settings, error) {
	if raw == nil {
		return nil, &Error{Code: ErrorCodeMissing}
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, &Error{Code: ErrorCodeInvalid, Err: err}
	}
	if doc == nil {
		doc = map[string]any{}
	}

	merged := Merge(doc, defaults)

	section, ok := asMap(merged["settings"])
	if !ok {
		return nil, &Error{Code: ErrorCodeIncomplete, MissingField: "settings"}
	}

	parsed, err := decodeSettings(section)
	if err != nil {
		return nil, &Error{Code: ErrorCodeInvalid, Err: err}
	}

	if parsed.JiraProjectKey == "" {
		return nil, &Error{Code: ErrorCodeIncomplete, MissingField: "jira_project_key"}
	}
	if parsed.StatusMapping.Opened == "" || parsed.StatusMapping.Closed == "" {
		return nil, &Error{Code: ErrorCodeIncomplete, MissingField: "status_mapping"}
	}

	return parsed, nil
}

// decodeSettings converts the merged settings mapping into the typed record
// by round-tripping through YAML, which tolerates both YAML- and
// JSON-shaped values.
func decodeSettings(section map[string]any) (*models.Settings, error) {
	encoded, err := yaml.Marshal(section)
	if err != nil {
		return nil, err
	}

	var parsed models.Settings
	if err := yaml.Unmarshal(encoded, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}
