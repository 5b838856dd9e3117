package naturalearth

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/sea-ice-etl/internal/adapter/render"
)

type landRecord struct {
	geom.Polygon
	Name string `shp:"name"`
}

// landArchive zips a one-polygon shapefile the way Natural Earth publishes
// it, plus a README and a member with a directory prefix.
func landArchive(t *testing.T) []byte {
	t.Helper()
	dir := t.TempDir()
	stem := filepath.Join(dir, Land.Name)
	enc, err := shp.NewEncoder(stem+".shp", landRecord{})
	require.NoError(t, err)
	require.NoError(t, enc.Encode(landRecord{Name: "greenland", Polygon: geom.Polygon{{
		{X: -55, Y: 65}, {X: -25, Y: 65}, {X: -25, Y: 80}, {X: -55, Y: 80}, {X: -55, Y: 65},
	}}}))
	enc.Close()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	add := func(name string, data []byte) {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		data, err := os.ReadFile(stem + ext)
		require.NoError(t, err)
		add(Land.Name+ext, data)
	}
	add("ne_110m_land/"+Land.Name+".prj", []byte(`GEOGCS["WGS 84"]`))
	add(Land.Name+".README.html", []byte("<html></html>"))
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_Install(t *testing.T) {
	archive := landArchive(t)
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "/physical/ne_110m_land.zip", r.URL.Path)
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "naturalearth")
	target := Target{Layer: Land, Path: filepath.Join(dir, "land.shp")}
	c := testClient(srv.URL + "/")

	written, err := c.Install(context.Background(), []Target{target}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{target.Path}, written)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"land.shp", "land.shx", "land.dbf", "land.prj"}, names)

	layer, err := render.LoadShapefile(target.Path, render.FillLayer, render.NewPolarStereographic(0), 60)
	require.NoError(t, err)
	assert.Len(t, layer.Polygons, 1)

	// Present layers are not downloaded again unless forced.
	written, err = c.Install(context.Background(), []Target{target}, false)
	require.NoError(t, err)
	assert.Empty(t, written)
	assert.EqualValues(t, 1, requests.Load())

	_, err = c.Install(context.Background(), []Target{target}, true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, requests.Load())
}

func TestClient_InstallSkipsDisabledLayers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	}))
	defer srv.Close()

	written, err := testClient(srv.URL).Install(context.Background(), []Target{{Layer: Borders}}, true)
	require.NoError(t, err)
	assert.Empty(t, written)
}

func TestClient_InstallErrors(t *testing.T) {
	emptyZip := func() []byte {
		var buf bytes.Buffer
		require.NoError(t, zip.NewWriter(&buf).Close())
		return buf.Bytes()
	}()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "missing", http.StatusNotFound)
			},
			want: "status 404",
		},
		{
			name: "not a zip",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<html>maintenance</html>"))
			},
			want: "open ne_110m_coastline archive",
		},
		{
			name: "no shapefile inside",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write(emptyZip)
			},
			want: "has no ne_110m_coastline.shp",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			path := filepath.Join(t.TempDir(), "coast.shp")
			_, err := testClient(srv.URL).Install(context.Background(), []Target{{Layer: Coastline, Path: path}}, false)
			require.ErrorContains(t, err, tt.want)
			assert.NoFileExists(t, path)
		})
	}
}
