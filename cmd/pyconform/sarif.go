package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"pyconform/internal/report"
	"pyconform/internal/rules"
)

// SARIF 2.1.0 schema types
// See: https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-v2.1.0.html

// SARIFReport is the top-level SARIF document.
type SARIFReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun represents a single analysis run.
type SARIFRun struct {
	Tool    SARIFTool     `json:"tool"`
	Results []SARIFResult `json:"results"`
}

// SARIFTool describes the analysis tool.
type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

// SARIFDriver describes the primary analysis component.
type SARIFDriver struct {
	Name            string      `json:"name"`
	Version         string      `json:"version,omitempty"`
	SemanticVersion string      `json:"semanticVersion,omitempty"`
	Rules           []SARIFRule `json:"rules,omitempty"`
}

// SARIFRule describes a rule that detected an issue.
type SARIFRule struct {
	ID                   string                  `json:"id"`
	Name                 string                  `json:"name,omitempty"`
	ShortDescription     *SARIFMessage           `json:"shortDescription,omitempty"`
	FullDescription      *SARIFMessage           `json:"fullDescription,omitempty"`
	DefaultConfiguration *SARIFRuleConfiguration `json:"defaultConfiguration,omitempty"`
}

// SARIFRuleConfiguration describes the default configuration for a rule.
type SARIFRuleConfiguration struct {
	Level string `json:"level,omitempty"` // error, warning, note, none
}

// SARIFResult represents a single finding.
type SARIFResult struct {
	RuleID              string            `json:"ruleId"`
	RuleIndex           int               `json:"ruleIndex"`
	Level               string            `json:"level,omitempty"`
	Message             SARIFMessage      `json:"message"`
	Locations           []SARIFLocation   `json:"locations,omitempty"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
}

// SARIFMessage contains text in various formats.
type SARIFMessage struct {
	Text string `json:"text,omitempty"`
}

// SARIFLocation describes where a result was found.
type SARIFLocation struct {
	PhysicalLocation *SARIFPhysicalLocation `json:"physicalLocation,omitempty"`
}

// SARIFPhysicalLocation identifies a file and region.
type SARIFPhysicalLocation struct {
	ArtifactLocation *SARIFArtifactLocation `json:"artifactLocation,omitempty"`
	Region           *SARIFRegion           `json:"region,omitempty"`
}

// SARIFArtifactLocation identifies a file.
type SARIFArtifactLocation struct {
	URI       string `json:"uri,omitempty"`
	URIBaseID string `json:"uriBaseId,omitempty"`
}

// SARIFRegion identifies a region within a file.
type SARIFRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

// FormatReportAsSARIF converts a run report to SARIF format. Only rules
// that actually fired appear in the driver's rules array; both it and the
// results follow the report's violation order, so the document is as
// deterministic as the report itself.
func FormatReportAsSARIF(rep *report.Report, version string) (string, error) {
	var ruleList []SARIFRule
	ruleIndex := make(map[string]int)

	for _, v := range rep.Violations {
		if _, exists := ruleIndex[v.RuleID]; exists {
			continue
		}
		rule := SARIFRule{ID: v.RuleID}
		if md, ok := rules.MetadataFor(v.RuleID); ok {
			rule.Name = md.Title
			rule.ShortDescription = &SARIFMessage{Text: md.Description}
			if md.Rationale != "" {
				rule.FullDescription = &SARIFMessage{Text: md.Rationale}
			}
			rule.DefaultConfiguration = &SARIFRuleConfiguration{
				Level: severityToSARIFLevel(md.Severity),
			}
		}
		ruleIndex[v.RuleID] = len(ruleList)
		ruleList = append(ruleList, rule)
	}

	results := make([]SARIFResult, 0, len(rep.Violations))
	for _, v := range rep.Violations {
		text := v.Message
		if v.Symbol != "" {
			text = fmt.Sprintf("%s: %s", v.Symbol, v.Message)
		}

		result := SARIFResult{
			RuleID:    v.RuleID,
			RuleIndex: ruleIndex[v.RuleID],
			Level:     severityToSARIFLevel(string(v.Severity)),
			Message:   SARIFMessage{Text: text},
			PartialFingerprints: map[string]string{
				"pyconform/v1": violationFingerprint(v),
			},
		}

		// Layout findings use "." as the file marker and carry no region.
		if v.File != "." {
			result.Locations = []SARIFLocation{
				{
					PhysicalLocation: &SARIFPhysicalLocation{
						ArtifactLocation: &SARIFArtifactLocation{
							URI:       v.File,
							URIBaseID: "%SRCROOT%",
						},
						Region: &SARIFRegion{
							StartLine:   v.Line,
							StartColumn: v.Column,
						},
					},
				},
			}
		}
		results = append(results, result)
	}

	doc := SARIFReport{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []SARIFRun{
			{
				Tool: SARIFTool{
					Driver: SARIFDriver{
						Name:            "pyconform",
						Version:         version,
						SemanticVersion: version,
						Rules:           ruleList,
					},
				},
				Results: results,
			},
		},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal SARIF: %w", err)
	}
	return string(data), nil
}

// severityToSARIFLevel converts a report severity to a SARIF level.
func severityToSARIFLevel(s string) string {
	switch s {
	case string(rules.SeverityError):
		return "error"
	case string(rules.SeverityWarning):
		return "warning"
	case string(rules.SeverityInfo):
		return "note"
	default:
		return "warning"
	}
}

// violationFingerprint creates a stable fingerprint for deduplication by
// SARIF consumers across runs.
func violationFingerprint(v rules.Violation) string {
	data := fmt.Sprintf("%s:%d:%d:%s", v.File, v.Line, v.Column, v.RuleID)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:16]
}
