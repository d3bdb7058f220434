package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
)

// modificationSchemaJSON is the structural contract every proposed
// modification element must satisfy before per-kind rules run.
const modificationSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$defs": {
    "entry": {
      "type": ["object", "null"],
      "properties": {
        "id": {"type": "string"},
        "subject": {"type": "string"},
        "faculty": {"type": "string"},
        "classroom": {"type": "string"},
        "day": {"type": "string"},
        "startTime": {"type": "string"},
        "endTime": {"type": "string"},
        "status": {"type": "string"}
      }
    }
  },
  "type": "object",
  "required": ["id", "type", "description", "originalData", "newData"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "type": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "affected": {"type": "array", "items": {"type": "string"}},
    "originalData": {"$ref": "#/$defs/entry"},
    "newData": {"$ref": "#/$defs/entry"}
  }
}`

var modificationSchema = jsonschema.MustCompileString("modification.schema.json", modificationSchemaJSON)

type rawModificationSet struct {
	Response      string            `json:"response"`
	Modifications []json.RawMessage `json:"modifications"`
	Conflicts     []string          `json:"conflicts"`
	Warnings      []string          `json:"warnings"`
}

// ParseModificationSet turns raw assistant output into a validated set.
// Invalid elements are dropped with a warning while valid siblings survive.
// The second return value reports degraded mode: nothing decodable was
// found, and the set carries the raw text as its response with empty lists.
func ParseModificationSet(raw string) (models.ModificationSet, bool) {
	envelope, ok := decodeEnvelope(raw)
	if !ok {
		return models.ModificationSet{
			Response:      strings.TrimSpace(raw),
			Modifications: []models.Modification{},
			Conflicts:     []string{},
			Warnings:      []string{},
		}, true
	}

	set := models.ModificationSet{
		Response:      strings.TrimSpace(envelope.Response),
		Modifications: make([]models.Modification, 0, len(envelope.Modifications)),
		Conflicts:     envelope.Conflicts,
		Warnings:      envelope.Warnings,
	}
	if set.Conflicts == nil {
		set.Conflicts = []string{}
	}
	if set.Warnings == nil {
		set.Warnings = []string{}
	}

	for i, element := range envelope.Modifications {
		mod, err := decodeModification(element)
		if err != nil {
			set.Warnings = append(set.Warnings, fmt.Sprintf("dropped modification %d: %v", i+1, err))
			continue
		}
		set.Modifications = append(set.Modifications, mod)
	}

	return set, false
}

// decodeEnvelope tries the raw text, then a fence-stripped variant, then the
// outermost brace-delimited substring. Models wrap JSON in markdown fences
// or prose often enough that all three tiers earn their keep.
func decodeEnvelope(raw string) (rawModificationSet, bool) {
	for _, candidate := range jsonCandidates(raw) {
		var envelope rawModificationSet
		if err := json.Unmarshal([]byte(candidate), &envelope); err == nil {
			return envelope, true
		}
	}
	return rawModificationSet{}, false
}

func jsonCandidates(raw string) []string {
	trimmed := strings.TrimSpace(raw)

	candidates := make([]string, 0, 3)
	appendCandidate := func(s string) {
		if strings.HasPrefix(s, "{") {
			candidates = append(candidates, s)
		}
	}

	appendCandidate(trimmed)
	if stripped := stripCodeFences(trimmed); stripped != trimmed {
		appendCandidate(stripped)
	}
	if substring, ok := extractObjectSubstring(trimmed); ok && substring != trimmed {
		appendCandidate(substring)
	}

	return candidates
}

func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}

	return strings.TrimSpace(trimmed)
}

func extractObjectSubstring(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func decodeModification(raw json.RawMessage) (models.Modification, error) {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return models.Modification{}, fmt.Errorf("invalid json: %w", err)
	}

	if err := modificationSchema.Validate(value); err != nil {
		return models.Modification{}, errors.New(schemaSummary(err))
	}

	var mod models.Modification
	if err := json.Unmarshal(raw, &mod); err != nil {
		return models.Modification{}, err
	}

	mod.Type = models.ModificationType(strings.ToLower(strings.TrimSpace(string(mod.Type))))
	if mod.Affected == nil {
		mod.Affected = []string{}
	}

	if err := validateModificationShape(&mod); err != nil {
		return models.Modification{}, err
	}

	if mod.Type == models.ModificationAdd && mod.NewData.ID == "" {
		// minted here so a later undo of the applied add can address the row
		mod.NewData.ID = uuid.NewString()
	}

	return mod, nil
}

// validateModificationShape enforces the per-kind data rules shared by the
// parser and the applier. An empty entry object is normalised to nil first.
func validateModificationShape(mod *models.Modification) error {
	if !mod.Type.Valid() {
		return fmt.Errorf("unsupported type %q", mod.Type)
	}

	if mod.OriginalData != nil && *mod.OriginalData == (models.EntryData{}) {
		mod.OriginalData = nil
	}
	if mod.NewData != nil && *mod.NewData == (models.EntryData{}) {
		mod.NewData = nil
	}

	switch mod.Type {
	case models.ModificationAdd:
		if mod.OriginalData != nil {
			return errors.New("add must not carry originalData")
		}
		if mod.NewData == nil {
			return errors.New("add requires newData")
		}
		if err := requireEntryFields(*mod.NewData); err != nil {
			return err
		}

	case models.ModificationCancel:
		if mod.OriginalData == nil || mod.OriginalData.ID == "" {
			return errors.New("cancel requires originalData with an id")
		}
		if mod.NewData != nil {
			return errors.New("cancel must not carry newData")
		}

	case models.ModificationMove, models.ModificationUpdate:
		if mod.OriginalData == nil || mod.OriginalData.ID == "" {
			return fmt.Errorf("%s requires originalData with an id", mod.Type)
		}
		if mod.NewData == nil {
			return fmt.Errorf("%s requires newData", mod.Type)
		}
		if mod.NewData.ID != "" && mod.NewData.ID != mod.OriginalData.ID {
			return errors.New("newData id does not match originalData id")
		}
	}

	if err := validateTimePair(mod.NewData); err != nil {
		return err
	}

	return nil
}

func requireEntryFields(data models.EntryData) error {
	missing := make([]string, 0, 6)
	if data.Subject == "" {
		missing = append(missing, "subject")
	}
	if data.Faculty == "" {
		missing = append(missing, "faculty")
	}
	if data.Classroom == "" {
		missing = append(missing, "classroom")
	}
	if data.Day == "" {
		missing = append(missing, "day")
	}
	if data.StartTime == "" {
		missing = append(missing, "startTime")
	}
	if data.EndTime == "" {
		missing = append(missing, "endTime")
	}

	if len(missing) > 0 {
		return fmt.Errorf("add is missing entry fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// validateTimePair checks the clock pair when both ends are stated. A single
// changed end is validated against the stored entry at apply time.
func validateTimePair(data *models.EntryData) error {
	if data == nil {
		return nil
	}
	if data.StartTime == "" && data.EndTime == "" {
		return nil
	}
	if data.StartTime != "" && data.EndTime != "" {
		if !models.ValidTimeRange(data.StartTime, data.EndTime) {
			return fmt.Errorf("invalid time range %s-%s", data.StartTime, data.EndTime)
		}
		return nil
	}

	single := data.StartTime + data.EndTime
	if _, ok := models.ParseClock(single); !ok {
		return fmt.Errorf("invalid clock value %q", single)
	}
	return nil
}

func schemaSummary(err error) string {
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		cause := validationErr
		for len(cause.Causes) > 0 {
			cause = cause.Causes[0]
		}
		location := strings.TrimPrefix(cause.InstanceLocation, "/")
		if location == "" {
			return cause.Message
		}
		return fmt.Sprintf("%s: %s", location, cause.Message)
	}
	return err.Error()
}
