// Package naturalearth downloads the public-domain Natural Earth shapefiles
// the map renderer uses for land, coastlines and borders.
package naturalearth

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/sea-ice-etl/internal/fsutil"
)

// Layer is one Natural Earth dataset, published as <category>/<name>.zip.
type Layer struct {
	Name     string
	Category string
}

// The 110m layers drawn on the map.
var (
	Land      = Layer{Name: "ne_110m_land", Category: "physical"}
	Coastline = Layer{Name: "ne_110m_coastline", Category: "physical"}
	Borders   = Layer{Name: "ne_110m_admin_0_boundary_lines_land", Category: "cultural"}
)

// Target pairs a layer with the .shp path it should be installed at. The
// sidecar files (.shx, .dbf, .prj, .cpg) are written next to it.
type Target struct {
	Layer Layer
	Path  string
}

// sidecars are the archive members kept; everything else is ignored.
var sidecars = []string{".shp", ".shx", ".dbf", ".prj", ".cpg"}

// maxArchiveBytes bounds a download. The 110m archives are well under 1 MiB.
const maxArchiveBytes = 64 << 20

// Client fetches layer archives over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a client for the archive tree rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// Install downloads every target whose shapefile is missing, or all of them
// when force is set. It returns the .shp paths written.
func (c *Client) Install(ctx context.Context, targets []Target, force bool) ([]string, error) {
	var written []string
	for _, t := range targets {
		if t.Path == "" {
			c.logger.Debug("basemap layer disabled, not downloading", "layer", t.Layer.Name)
			continue
		}
		if !force {
			if _, err := os.Stat(t.Path); err == nil {
				c.logger.Info("basemap layer already present", "layer", t.Layer.Name, "path", t.Path)
				continue
			} else if !errors.Is(err, fs.ErrNotExist) {
				return written, fmt.Errorf("stat %s: %w", t.Path, err)
			}
		}
		if err := c.install(ctx, t); err != nil {
			return written, err
		}
		written = append(written, t.Path)
	}
	return written, nil
}

func (c *Client) install(ctx context.Context, t Target) error {
	archive, err := c.download(ctx, t.Layer)
	if err != nil {
		return err
	}
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return fmt.Errorf("open %s archive: %w", t.Layer.Name, err)
	}

	stem := strings.TrimSuffix(t.Path, ".shp")
	var haveShp bool
	for _, f := range zr.File {
		// Only the base name is trusted; archive directories are ignored.
		base := path.Base(f.Name)
		ext := strings.ToLower(path.Ext(base))
		if strings.TrimSuffix(base, path.Ext(base)) != t.Layer.Name || !slices.Contains(sidecars, ext) {
			continue
		}
		if err := extract(f, stem+ext); err != nil {
			return fmt.Errorf("extract %s: %w", base, err)
		}
		haveShp = haveShp || ext == ".shp"
	}
	if !haveShp {
		return fmt.Errorf("%s archive has no %s.shp", t.Layer.Name, t.Layer.Name)
	}
	c.logger.Info("basemap layer installed", "layer", t.Layer.Name, "path", t.Path)
	return nil
}

func (c *Client) download(ctx context.Context, l Layer) ([]byte, error) {
	u := fmt.Sprintf("%s/%s/%s.zip", c.baseURL, l.Category, l.Name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", l.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("download %s: status %d: %s", l.Name, resp.StatusCode, body)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.Name, err)
	}
	if len(data) > maxArchiveBytes {
		return nil, fmt.Errorf("download %s: archive exceeds %d bytes", l.Name, maxArchiveBytes)
	}
	return data, nil
}

func extract(f *zip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = fsutil.WriteAtomic(dst, func(w io.Writer) error {
		_, err := io.Copy(w, io.LimitReader(rc, maxArchiveBytes))
		return err
	})
	return err
}
