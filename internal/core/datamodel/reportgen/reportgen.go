package reportgen

import "errors"

// GenerateRequest is the payload sent to the external text-generation API.
type GenerateRequest struct {
	Prompt       string                 `json:"prompt"`
	ResponseJSON map[string]interface{} `json:"response_json_schema,omitempty"`
}

func (r *GenerateRequest) Validate() error {
	if r.Prompt == "" {
		return errors.New("prompt is required")
	}
	return nil
}

// Narrative is the structured report text the generation service returns.
type Narrative struct {
	Title            string   `json:"title"`
	ExecutiveSummary string   `json:"executive_summary"`
	KeyFindings      []string `json:"key_findings"`
	Recommendations  []string `json:"recommendations"`
	Conclusion       string   `json:"conclusion"`
}
