package publish

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"

	"micrositepilot/pkg/config"
	"micrositepilot/pkg/models"
)

const userAgent = "MicrositePilot-Deployer"

// netlifyDeployer drives the provider's content-addressed digest
// protocol: create site, declare the file digest, upload only if the
// provider asks for it, then read the deploy status once.
type netlifyDeployer struct {
	token   string
	apiBase string
	client  *http.Client
}

func newNetlifyDeployer(cfg config.DeployConfig) *netlifyDeployer {
	return &netlifyDeployer{
		token:   cfg.AccessToken,
		apiBase: strings.TrimRight(cfg.APIBase, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type siteResponse struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	AdminURL string `json:"admin_url"`
}

type deployResponse struct {
	ID        string   `json:"id"`
	Required  []string `json:"required"`
	DeployURL string   `json:"deploy_url"`
	State     string   `json:"state"`
}

// Deploy publishes the HTML file at path under a site named after
// title. Failures of any kind are folded into the returned
// DeploymentResult; this method never returns an error to the caller.
func (p *Publisher) Deploy(ctx context.Context, title, htmlPath string) models.DeploymentResult {
	d := p.deployer
	failed := func(err error) models.DeploymentResult {
		p.log.WithError(err).WithField("title", title).Error("Deployment failed")
		return models.DeploymentResult{
			Success: false,
			Error:   err.Error(),
			Message: fmt.Sprintf("Failed to deploy %s", title),
		}
	}

	if d.token == "" {
		return failed(fmt.Errorf("no hosting access token configured"))
	}

	content, err := os.ReadFile(htmlPath)
	if err != nil {
		return failed(fmt.Errorf("reading %s: %w", htmlPath, err))
	}

	// Step 1: create the site under a collision-avoiding name.
	siteName := fmt.Sprintf("%s-%s", slugify(title), uuid.New().String()[:8])
	var site siteResponse
	err = d.postJSON(ctx, d.apiBase+"/sites", map[string]interface{}{
		"name":                siteName,
		"processing_settings": map[string]interface{}{"html": map[string]bool{"pretty_urls": true}},
	}, &site)
	if err != nil {
		return failed(fmt.Errorf("creating site: %w", err))
	}

	// Step 2: declare the content digest for /index.html.
	digest := fmt.Sprintf("%x", sha1.Sum(content))
	var deploy deployResponse
	err = d.postJSON(ctx, fmt.Sprintf("%s/sites/%s/deploys", d.apiBase, site.ID),
		map[string]interface{}{"files": map[string]string{"/index.html": digest}}, &deploy)
	if err != nil {
		return failed(fmt.Errorf("creating deploy: %w", err))
	}

	// Step 3: upload only if the provider does not already hold this
	// exact content.
	if contains(deploy.Required, digest) {
		if err := d.uploadFile(ctx, deploy.ID, content); err != nil {
			return failed(fmt.Errorf("uploading file: %w", err))
		}
		p.log.WithField("site", siteName).Info("File uploaded to hosting provider")
	} else {
		p.log.WithField("site", siteName).Info("File already on hosting provider, upload skipped")
	}

	// Step 4: read the final deploy state once. No poll loop; the
	// provider may still report a processing state here.
	var status deployResponse
	if err := d.getJSON(ctx, fmt.Sprintf("%s/deploys/%s", d.apiBase, deploy.ID), &status); err != nil {
		return failed(fmt.Errorf("reading deploy status: %w", err))
	}

	p.log.WithFields(map[string]interface{}{
		"site":  siteName,
		"url":   site.URL,
		"state": status.State,
	}).Info("Deployment completed")

	return models.DeploymentResult{
		Success:  true,
		SiteID:   site.ID,
		SiteName: siteName,
		URL:      site.URL,
		AdminURL: site.AdminURL,
	}
}

func (d *netlifyDeployer) postJSON(ctx context.Context, url string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return d.do(req, out)
}

func (d *netlifyDeployer) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return d.do(req, out)
}

func (d *netlifyDeployer) uploadFile(ctx context.Context, deployID string, content []byte) error {
	url := fmt.Sprintf("%s/deploys/%s/files/index.html", d.apiBase, deployID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(content))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/html")
	return d.do(req, nil)
}

func (d *netlifyDeployer) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+d.token)
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s returned %d: %s", req.Method, req.URL.Path, resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func slugify(title string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(title)), " ", "-")
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
