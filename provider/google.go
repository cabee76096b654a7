package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"resty.dev/v3"

	"github.com/motorplaza/lingocache"
)

const (
	translateEndpoint = "https://translation.googleapis.com/v3"
	translateScope    = "https://www.googleapis.com/auth/cloud-translation"

	// DefaultLocation is the processing region used when none is
	// configured.
	DefaultLocation = "global"

	// DefaultFallbackLocation is tried when a glossary call fails at
	// the primary location for reasons other than the glossary being
	// absent.
	DefaultFallbackLocation = "us-central1"
)

// GoogleConfig holds configuration for the Google Cloud Translation
// provider. Credentials are a service-account JSON document (client
// email, private key, project id).
type GoogleConfig struct {
	CredentialsJSON  []byte
	ProjectID        string // Defaults to the credentials' project_id
	Location         string // Processing region (default "global")
	FallbackLocation string
	Glossary         string // Glossary id, enables glossary-aware calls
	BaseURL          string // Override for tests
}

// GoogleProvider implements Provider over the Cloud Translation v3
// REST API.
type GoogleProvider struct {
	client      *resty.Client
	tokenSource oauth2.TokenSource
	baseURL     string
	projectID   string
	location    string
	fallbackLoc string
	glossary    string
}

// NewGoogleProvider creates a Google Cloud Translation provider.
// Missing or malformed credentials fail fast here.
func NewGoogleProvider(cfg GoogleConfig) (*GoogleProvider, error) {
	if len(cfg.CredentialsJSON) == 0 {
		return nil, &lingocache.ConfigError{Field: "google.credentials", Message: "service-account JSON is required"}
	}

	jwtCfg, err := google.JWTConfigFromJSON(cfg.CredentialsJSON, translateScope)
	if err != nil {
		return nil, &lingocache.ConfigError{Field: "google.credentials", Message: fmt.Sprintf("malformed service-account JSON: %v", err)}
	}

	projectID := cfg.ProjectID
	if projectID == "" {
		var creds struct {
			ProjectID string `json:"project_id"`
		}
		if err := json.Unmarshal(cfg.CredentialsJSON, &creds); err == nil {
			projectID = creds.ProjectID
		}
	}
	if projectID == "" {
		return nil, &lingocache.ConfigError{Field: "google.project_id", Message: "project id is required"}
	}

	location := cfg.Location
	if location == "" {
		location = DefaultLocation
	}
	fallbackLoc := cfg.FallbackLocation
	if fallbackLoc == "" {
		fallbackLoc = DefaultFallbackLocation
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = translateEndpoint
	}

	return &GoogleProvider{
		client:      resty.New().SetHeader("User-Agent", lingocache.UserAgent()),
		tokenSource: jwtCfg.TokenSource(context.Background()),
		baseURL:     baseURL,
		projectID:   projectID,
		location:    location,
		fallbackLoc: fallbackLoc,
		glossary:    cfg.Glossary,
	}, nil
}

type translateTextRequest struct {
	Contents           []string        `json:"contents"`
	MimeType           string          `json:"mimeType,omitempty"`
	SourceLanguageCode string          `json:"sourceLanguageCode,omitempty"`
	TargetLanguageCode string          `json:"targetLanguageCode"`
	GlossaryConfig     *glossaryConfig `json:"glossaryConfig,omitempty"`
}

type glossaryConfig struct {
	Glossary string `json:"glossary"`
}

type translation struct {
	TranslatedText string `json:"translatedText"`
}

type translateTextResponse struct {
	Translations         []translation `json:"translations"`
	GlossaryTranslations []translation `json:"glossaryTranslations"`
}

type googleErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Translate implements Provider. Glossary-aware requests that fail at
// the primary location for reasons unrelated to the glossary being
// absent are retried once against the fallback location; a missing
// glossary surfaces as GlossaryNotFoundError so the caller can retry
// the chunk without glossary.
func (p *GoogleProvider) Translate(ctx context.Context, req Request) (*Result, error) {
	if len(req.Contents) == 0 {
		return &Result{Translations: []string{}}, nil
	}

	useGlossary := req.UseGlossary && p.glossary != ""

	result, err := p.translateAt(ctx, req, p.location, useGlossary)
	if err != nil && useGlossary && !isGlossaryNotFound(err) {
		lingocache.Debugf("glossary call failed at %s, retrying at %s: %v", p.location, p.fallbackLoc, err)
		result, err = p.translateAt(ctx, req, p.fallbackLoc, true)
	}
	if err != nil {
		if isGlossaryNotFound(err) {
			return nil, &lingocache.GlossaryNotFoundError{Glossary: p.glossary, Cause: err}
		}
		return nil, err
	}
	return result, nil
}

// translateAt issues one translateText call against a location.
func (p *GoogleProvider) translateAt(ctx context.Context, req Request, location string, useGlossary bool) (*Result, error) {
	token, err := p.tokenSource.Token()
	if err != nil {
		return nil, &lingocache.ProviderError{Message: "fetching access token", Cause: err, Retryable: true}
	}

	body := translateTextRequest{
		Contents:           req.Contents,
		MimeType:           req.MimeType,
		SourceLanguageCode: req.SourceLanguageCode,
		TargetLanguageCode: req.TargetLanguageCode,
	}
	if useGlossary {
		body.GlossaryConfig = &glossaryConfig{
			Glossary: fmt.Sprintf("projects/%s/locations/%s/glossaries/%s", p.projectID, location, p.glossary),
		}
	}

	var parsed translateTextResponse
	url := fmt.Sprintf("%s/projects/%s/locations/%s:translateText", p.baseURL, p.projectID, location)

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&parsed).
		Post(url)
	if err != nil {
		return nil, &lingocache.ProviderError{Message: "translateText call failed", Cause: err, Retryable: true}
	}
	if resp.IsError() {
		return nil, newGoogleAPIError(resp)
	}

	// Glossary-aware responses carry the glossary output in a parallel
	// array; prefer it when present.
	source := parsed.Translations
	glossaryApplied := false
	if useGlossary && len(parsed.GlossaryTranslations) == len(req.Contents) {
		source = parsed.GlossaryTranslations
		glossaryApplied = true
	}
	if len(source) != len(req.Contents) {
		return nil, &lingocache.CountMismatchError{Expected: len(req.Contents), Got: len(source)}
	}

	out := make([]string, len(source))
	for i, t := range source {
		out[i] = t.TranslatedText
	}
	return &Result{Translations: out, GlossaryApplied: glossaryApplied}, nil
}

// newGoogleAPIError maps an HTTP error response to the provider error
// taxonomy.
func newGoogleAPIError(resp *resty.Response) error {
	status := resp.StatusCode()
	var body googleErrorBody
	_ = json.Unmarshal([]byte(resp.String()), &body)

	message := body.Error.Message
	if message == "" {
		message = resp.Status()
	}

	if (status == 404 || body.Error.Status == "NOT_FOUND") && strings.Contains(strings.ToLower(message), "glossar") {
		return &lingocache.GlossaryNotFoundError{Cause: fmt.Errorf("%s", message)}
	}

	return &lingocache.ProviderError{
		Message:     fmt.Sprintf("translateText returned %d: %s", status, message),
		Retryable:   status == 429 || status >= 500,
		RateLimited: status == 429,
	}
}

// isGlossaryNotFound reports whether err is a missing-glossary
// condition, as opposed to a generic API failure.
func isGlossaryNotFound(err error) bool {
	var gnf *lingocache.GlossaryNotFoundError
	return errors.As(err, &gnf)
}

// Verify GoogleProvider implements Provider.
var _ Provider = (*GoogleProvider)(nil)
