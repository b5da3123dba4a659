package navigation

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/hammamikhairi/springbreak/internal/domain"
	"github.com/hammamikhairi/springbreak/internal/logger"
)

// Compile-time interface check.
var _ domain.MapViewer = (*OSViewer)(nil)

// DefaultURLTemplate opens a map search for "lat,lon". %s is replaced with
// the query-escaped coordinate.
const DefaultURLTemplate = "https://www.google.com/maps/search/?api=1&query=%s"

// GeoTemplate hands the coordinate to whatever handles geo: URIs.
const GeoTemplate = "geo:0,0?q=%s"

// ViewerOption configures the OSViewer.
type ViewerOption func(*OSViewer)

// WithURLTemplate sets the map URL template.
func WithURLTemplate(tmpl string) ViewerOption {
	return func(v *OSViewer) { v.template = tmpl }
}

// WithOpener replaces the function that hands a URL to the OS. Used by tests.
func WithOpener(fn func(ctx context.Context, url string) error) ViewerOption {
	return func(v *OSViewer) { v.open = fn }
}

// OSViewer opens coordinates in the desktop's default map handler.
type OSViewer struct {
	template string
	open     func(ctx context.Context, url string) error
	log      *logger.Logger
}

// NewOSViewer creates a viewer using the platform's URL opener.
func NewOSViewer(log *logger.Logger, opts ...ViewerOption) *OSViewer {
	v := &OSViewer{
		template: DefaultURLTemplate,
		open:     openURL,
		log:      log,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// URL renders the map URL for c.
func (v *OSViewer) URL(c domain.Coordinate) string {
	q := c.Query()
	if !strings.HasPrefix(v.template, "geo:") {
		q = url.QueryEscape(q)
	}
	return fmt.Sprintf(v.template, q)
}

// Open implements domain.MapViewer.
func (v *OSViewer) Open(ctx context.Context, c domain.Coordinate) error {
	if !c.Valid() {
		return fmt.Errorf("opening %v: %w", c, domain.ErrInvalidCoordinate)
	}
	u := v.URL(c)
	v.log.Info("opening map: %s", u)
	return v.open(ctx, u)
}

// openURL starts the platform opener without waiting for it.
func openURL(ctx context.Context, u string) error {
	var name string
	var args []string
	switch runtime.GOOS {
	case "darwin":
		name = "open"
	case "windows":
		name, args = "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		name = "xdg-open"
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%s: %w", name, domain.ErrMapViewerMissing)
	}
	cmd := exec.CommandContext(ctx, path, append(args, u)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", name, err)
	}
	go cmd.Wait()
	return nil
}
