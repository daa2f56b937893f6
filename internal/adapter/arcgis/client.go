package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/snowfall-setup/internal/domain"
	"github.com/couchcryptid/snowfall-setup/internal/observability"
)

// ZoneField is the attribute that carries the zone identifier.
const ZoneField = "zone"

// Query is a MapServer layer query. Empty fields are omitted from the request.
type Query struct {
	Where          string
	OutFields      string
	ReturnGeometry bool
	GeometryType   string
}

// Client queries one layer of an ArcGIS REST MapServer.
type Client struct {
	httpClient *http.Client
	queryURL   string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a client for {baseURL}/{layer}/query.
func NewClient(baseURL string, layer int, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		queryURL:   fmt.Sprintf("%s/%d/query", baseURL, layer),
		metrics:    metrics,
		logger:     logger,
	}
}

// Query runs a layer query and decodes the ESRI JSON feature set.
func (c *Client) Query(ctx context.Context, q Query) (domain.FeatureSet, error) {
	start := time.Now()
	fs, err := c.doRequest(ctx, q)
	c.metrics.MapServerDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.MapServerRequests.WithLabelValues("error").Inc()
		return domain.FeatureSet{}, err
	}
	c.metrics.MapServerRequests.WithLabelValues("success").Inc()
	c.logger.Debug("mapserver query", "where", q.Where, "features", len(fs.Features))
	return fs, nil
}

// ZoneIDs returns the distinct zone attributes of the features matching
// where, in first-seen order. A zone split across several features (island
// parts) is reported once. Features without a zone attribute are skipped.
func (c *Client) ZoneIDs(ctx context.Context, where string) ([]string, error) {
	fs, err := c.Query(ctx, Query{Where: where, OutFields: ZoneField})
	if err != nil {
		return nil, err
	}
	zones := make([]string, 0, len(fs.Features))
	seen := make(map[string]bool, len(fs.Features))
	for _, f := range fs.Features {
		z, ok := f.StringAttribute(ZoneField)
		if !ok || z == "" {
			c.logger.Warn("feature without zone attribute", "where", where)
			continue
		}
		if seen[z] {
			continue
		}
		seen[z] = true
		zones = append(zones, z)
	}
	return zones, nil
}

func (c *Client) doRequest(ctx context.Context, q Query) (domain.FeatureSet, error) {
	params := url.Values{"where": {q.Where}, "f": {"json"}}
	if q.OutFields != "" {
		params.Set("outFields", q.OutFields)
	}
	if q.ReturnGeometry {
		params.Set("returnGeometry", strconv.FormatBool(q.ReturnGeometry))
	}
	if q.GeometryType != "" {
		params.Set("geometryType", q.GeometryType)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.queryURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.FeatureSet{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.FeatureSet{}, fmt.Errorf("mapserver query %q: %w", q.Where, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.FeatureSet{}, fmt.Errorf("mapserver API error: status %d: %s", resp.StatusCode, body)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return domain.FeatureSet{}, fmt.Errorf("decode response: %w", err)
	}
	// ArcGIS reports query errors with HTTP 200 and an error envelope.
	if r.Error != nil {
		return domain.FeatureSet{}, fmt.Errorf("mapserver API error: code %d: %s", r.Error.Code, r.Error.Message)
	}
	return r.FeatureSet, nil
}

// ArcGIS REST response types.

type response struct {
	domain.FeatureSet
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
