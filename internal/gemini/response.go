package gemini

import (
	"encoding/json"
	"strings"
)

// Response is the subset of a generateContent response the CLI reads.
// The relay itself never decodes success bodies.
type Response struct {
	Candidates []Candidate `json:"candidates"`
}

// Candidate is one generated answer.
type Candidate struct {
	Content struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"content"`
	FinishReason string `json:"finishReason,omitempty"`
}

// Text joins the text parts of the first candidate.
func (r *Response) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// InlineData is the attachment shape the provider accepts as a part.
// The relay forwards inlineData opaquely; this type is for building one.
type InlineData struct {
	InlineData Blob `json:"inlineData"`
}

// Blob is base64 data with its MIME type.
type Blob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// ParseResponse decodes a success body.
func ParseResponse(body []byte) (*Response, error) {
	var r Response
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
