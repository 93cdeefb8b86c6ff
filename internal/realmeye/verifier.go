// Package realmeye verifies profile ownership against the public realmeye.com
// player pages. A claimant proves control of a name by pasting a one-time
// code into the profile description; the verifier polls the page until the
// code shows up or the deadline passes.
package realmeye

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	scrape "github.com/yhat/scrape"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	appLogger "github.com/arklim/realmeye-identity/internal/infra/logger"
)

const (
	defaultBaseURL      = "https://www.realmeye.com"
	defaultTimeout      = 10 * time.Second
	defaultPollInterval = time.Second

	// Realmeye serves an empty shell to unknown agents, so the request
	// presents a browser-like identity.
	userAgent = "Chrome/114.0.0.0"

	descriptionClass = "description-line"
	entityNameClass  = "entity-name"
)

var verifyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "identity",
	Subsystem: "realmeye",
	Name:      "verify_duration_seconds",
	Help:      "Time spent polling realmeye for a verification code.",
	Buckets:   prometheus.DefBuckets,
})

// Config tunes the polling behavior of the verifier.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	PollInterval time.Duration
}

// Verifier polls realmeye player profiles for one-time codes. The profile
// frequently updates a little after the user saves it, so a single fetch
// would false-negative; bounded polling trades latency for correctness
// while the deadline guarantees termination.
type Verifier struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewVerifier constructs a Verifier, applying defaults for unset fields.
func NewVerifier(cfg Config, logger *zap.Logger) *Verifier {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Verifier{
		cfg:    cfg,
		client: cleanhttp.DefaultPooledClient(),
		logger: logger,
	}
}

// VerifyCode reports whether the code is currently visible on the profile
// of name, and on success returns the name exactly as the profile heading
// spells it. It keeps fetching until the code appears or the configured
// deadline elapses; fetch failures count as "not yet" because realmeye is
// occasionally unreachable while the code is perfectly valid. A deadline
// miss returns ("", false, nil); only parent-context cancellation surfaces
// as an error. In-flight requests carry the polling context, so nothing
// keeps running once the deadline fires.
func (v *Verifier) VerifyCode(ctx context.Context, name, code string) (string, bool, error) {
	if name == "" || code == "" {
		return "", false, nil
	}

	start := time.Now()
	defer func() { verifyDuration.Observe(time.Since(start).Seconds()) }()

	pollCtx, cancel := context.WithTimeout(ctx, v.cfg.Timeout)
	defer cancel()

	ticker := time.NewTicker(v.cfg.PollInterval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		exactName, found, err := v.scanProfile(pollCtx, name, code)
		if err != nil {
			v.logger.Debug("profile fetch failed, retrying",
				zap.String("name", name),
				zap.String("code", appLogger.MaskString(code)),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		if found {
			return exactName, true, nil
		}

		select {
		case <-pollCtx.Done():
			if ctx.Err() != nil {
				return "", false, ctx.Err()
			}
			return "", false, nil
		case <-ticker.C:
		}
	}
}

// scanProfile fetches the player page once and scans it for the code. The
// code must appear inside a description line and the page must carry the
// profile heading; a bare error page contains neither. The heading also
// yields the canonical spelling of the name, since the lookup itself is
// case-insensitive on realmeye's side.
func (v *Verifier) scanProfile(ctx context.Context, name, code string) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.playerURL(name), nil)
	if err != nil {
		return "", false, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := v.client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("fetch profile: unexpected status %d", resp.StatusCode)
	}

	root, err := html.Parse(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("parse profile: %w", err)
	}

	hasCode := false
	for _, node := range scrape.FindAll(root, scrape.ByClass(descriptionClass)) {
		if strings.Contains(scrape.Text(node), code) {
			hasCode = true
			break
		}
	}
	if !hasCode {
		return "", false, nil
	}

	heading, ok := scrape.Find(root, scrape.ByClass(entityNameClass))
	if !ok {
		return "", false, nil
	}

	return strings.TrimSpace(scrape.Text(heading)), true, nil
}

func (v *Verifier) playerURL(name string) string {
	return v.cfg.BaseURL + "/player/" + url.PathEscape(name)
}
