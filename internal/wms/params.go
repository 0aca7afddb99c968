// Package wms builds WMS request URLs and fetches from the upstream server.
package wms

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/evhagen/aoiview/internal/core/model"
)

const srs = "EPSG:4326"

// FeatureInfoParams encodes a WMS 1.1.1 GetFeatureInfo request for the
// clicked pixel within the rendered map window.
func FeatureInfoParams(q model.FeatureQuery) url.Values {
	params := url.Values{}
	params.Set("service", "WMS")
	params.Set("version", "1.1.1")
	params.Set("request", "GetFeatureInfo")
	params.Set("layers", strings.Join(q.Layers, ","))
	params.Set("query_layers", strings.Join(q.Layers, ","))
	params.Set("styles", "")
	params.Set("srs", srs)
	params.Set("bbox", q.BBox.String())
	params.Set("width", strconv.Itoa(q.Width))
	params.Set("height", strconv.Itoa(q.Height))
	params.Set("x", strconv.Itoa(q.X))
	params.Set("y", strconv.Itoa(q.Y))
	params.Set("info_format", "application/json")
	params.Set("feature_count", "10")
	return params
}

func CapabilitiesParams() url.Values {
	params := url.Values{}
	params.Set("service", "WMS")
	params.Set("version", "1.1.1")
	params.Set("request", "GetCapabilities")
	return params
}
