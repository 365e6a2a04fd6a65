package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"wine-cellar-be/pkg/sommelier"
)

type generatePart struct {
	Text     string           `json:"text,omitempty"`
	FileData *generateFileRef `json:"file_data,omitempty"`
}

type generateFileRef struct {
	MimeType string `json:"mime_type"`
	FileURI  string `json:"file_uri"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
	Role  string         `json:"role,omitempty"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

// statusError carries a non-200 response for classification.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("gemini: status %d: %s", e.code, e.body)
}

func (c *Client) buildRequest(prompt, imageRef string) generateRequest {
	parts := []generatePart{{Text: prompt}}
	if imageRef != "" {
		parts = append(parts, generatePart{FileData: &generateFileRef{
			MimeType: "image/jpeg",
			FileURI:  imageRef,
		}})
	}
	return generateRequest{Contents: []generateContent{{Parts: parts, Role: "user"}}}
}

// stream POSTs to the SSE endpoint and invokes onChunk with the text
// accumulated so far after every chunk. Returns the full text.
func (c *Client) stream(ctx context.Context, prompt, imageRef string, onChunk func(accumulated string, emitted map[string]bool)) (string, error) {
	payload, err := json.Marshal(c.buildRequest(prompt, imageRef))
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s:streamGenerateContent?alt=sse", baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", &statusError{code: res.StatusCode, body: string(body)}
	}

	var accumulated strings.Builder
	emitted := make(map[string]bool)
	scanner := bufio.NewScanner(res.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}
		var chunk generateResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		for _, cand := range chunk.Candidates {
			for _, part := range cand.Content.Parts {
				accumulated.WriteString(part.Text)
			}
		}
		if onChunk != nil {
			onChunk(accumulated.String(), emitted)
		}
	}
	if err := scanner.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", err
	}
	return accumulated.String(), nil
}

// generate is the non-streaming variant for one-shot completions.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(c.buildRequest(prompt, ""))
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s:generateContent", baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if res.StatusCode != http.StatusOK {
		return "", &statusError{code: res.StatusCode, body: string(body)}
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: empty candidate set")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// completedFieldRe matches a string field whose value is fully closed,
// so partially streamed values are never emitted.
var completedFieldRe = regexp.MustCompile(`"([a-z_]+)"\s*:\s*"((?:[^"\\]|\\.)*)"\s*[,}\n]`)

// completedStringFields extracts the closed string fields from a
// partially streamed JSON object.
func completedStringFields(accumulated string) map[string]string {
	out := make(map[string]string)
	for _, m := range completedFieldRe.FindAllStringSubmatch(accumulated, -1) {
		var value string
		if err := json.Unmarshal([]byte(`"`+m[2]+`"`), &value); err != nil {
			continue
		}
		if value != "" {
			out[m[1]] = value
		}
	}
	return out
}

// stripFences removes markdown code fences models like to wrap JSON in.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

type identifyPayload struct {
	Producer       string   `json:"producer"`
	WineName       string   `json:"wine_name"`
	Vintage        string   `json:"vintage"`
	Region         string   `json:"region"`
	Country        string   `json:"country"`
	WineType       string   `json:"wine_type"`
	GrapeVarieties []string `json:"grape_varieties"`
	Confidence     float64  `json:"confidence"`
}

func parseIdentifyPayload(text string) (*sommelier.IdentifyResult, error) {
	var p identifyPayload
	if err := json.Unmarshal([]byte(stripFences(text)), &p); err != nil {
		return nil, err
	}
	if p.Confidence < 0 {
		p.Confidence = 0
	}
	if p.Confidence > 100 {
		p.Confidence = 100
	}
	return &sommelier.IdentifyResult{
		Producer:       p.Producer,
		WineName:       p.WineName,
		Vintage:        p.Vintage,
		Region:         p.Region,
		Country:        p.Country,
		WineType:       p.WineType,
		GrapeVarieties: p.GrapeVarieties,
		Confidence:     p.Confidence,
	}, nil
}

type enrichPayload struct {
	Overview         string             `json:"overview"`
	GrapeComposition map[string]float64 `json:"grape_composition"`
	StyleProfile     string             `json:"style_profile"`
	CriticScores     []struct {
		Critic string `json:"critic"`
		Score  int    `json:"score"`
		Scale  int    `json:"scale"`
	} `json:"critic_scores"`
	DrinkWindow *struct {
		From int `json:"from"`
		To   int `json:"to"`
	} `json:"drink_window"`
	TastingNotes string `json:"tasting_notes"`
	PairingNotes string `json:"pairing_notes"`
}

func parseEnrichPayload(text string) (*sommelier.EnrichResult, error) {
	var p enrichPayload
	if err := json.Unmarshal([]byte(stripFences(text)), &p); err != nil {
		return nil, err
	}
	out := &sommelier.EnrichResult{
		Overview:         p.Overview,
		GrapeComposition: p.GrapeComposition,
		StyleProfile:     p.StyleProfile,
		TastingNotes:     p.TastingNotes,
		PairingNotes:     p.PairingNotes,
	}
	for _, cs := range p.CriticScores {
		if cs.Critic == "" {
			continue
		}
		out.CriticScores = append(out.CriticScores, sommelier.CriticScore{
			Critic: cs.Critic, Score: cs.Score, Scale: cs.Scale,
		})
	}
	if p.DrinkWindow != nil && p.DrinkWindow.From > 0 {
		out.DrinkWindow = &sommelier.DrinkWindow{From: p.DrinkWindow.From, To: p.DrinkWindow.To}
	}
	return out, nil
}
