package publish

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"micrositepilot/pkg/config"
)

// ErrWrite tags filesystem failures while persisting a rendered site.
// Unlike deployment failures, these are raised to the caller.
var ErrWrite = fmt.Errorf("site write failed")

// Publisher persists rendered microsites to disk and deploys them to
// the hosting provider. The two responsibilities are independent:
// Persist always runs, Deploy is one-shot and never retried.
type Publisher struct {
	sitesDir string
	deployer *netlifyDeployer
	log      *logrus.Logger
}

func New(sitesDir string, deployCfg config.DeployConfig, log *logrus.Logger) *Publisher {
	return &Publisher{
		sitesDir: sitesDir,
		deployer: newNetlifyDeployer(deployCfg),
		log:      log,
	}
}

// DeployEnabled reports whether an access token for the hosting
// provider is configured.
func (p *Publisher) DeployEnabled() bool {
	return p.deployer.token != ""
}

// Persist writes site content to a uniquely named file inside the
// sites directory, creating the directory if needed, and returns the
// full path.
func (p *Publisher) Persist(content string) (string, error) {
	if err := os.MkdirAll(p.sitesDir, 0755); err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", ErrWrite, p.sitesDir, err)
	}

	name := fmt.Sprintf("demo_%s.html", time.Now().Format("20060102_150405.000000"))
	path := filepath.Join(p.sitesDir, name)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("%w: writing %s: %v", ErrWrite, path, err)
	}

	p.log.WithField("path", path).Info("Microsite persisted to disk")
	return path, nil
}
