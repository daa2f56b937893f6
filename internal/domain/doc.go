// Package domain models the data exchanged with the NWS reference map
// service and the shared Google Drive that feed the snowfall analysis.
//
// # Zone Data Source
//
// Forecast zones come from the NWS reference map MapServer, layer 8
// ("Public Forecast Zones"), queried through the ArcGIS REST query
// endpoint:
//
//	https://mapservices.weather.noaa.gov/static/rest/services/nws_reference_maps/nws_reference_map/MapServer/8/query
//
// Responses use ESRI JSON rather than GeoJSON. A response is a feature set:
//
//	{
//	  "geometryType": "esriGeometryPolygon",
//	  "spatialReference": {"wkid": 4326},
//	  "fields": [{"name": "zone", "type": "esriFieldTypeString", "length": 6}],
//	  "features": [{"attributes": {"zone": "AKZ101"}, "geometry": {"rings": [[[x, y], ...]]}}]
//	}
//
// Each ring is a closed list of [x, y] (lon, lat) positions, optionally
// followed by z/m values. Outer rings run clockwise and holes
// counter-clockwise, the same convention shapefiles use, so rings map
// one-to-one onto shapefile polygon parts. See [FeatureSet].
//
// # Zone Conventions
//
// Zone identifiers look like "AKZ101": state, the letter Z, and a
// three-digit number. Each zone belongs to exactly one County Warning Area
// (CWA), identified by the three-letter code of its forecast office
// (AFC Anchorage, AJK Juneau, AFG Fairbanks). Where clauses are built by
// [StateWhere], [ZoneWhere], [CWAWhere] and [ZonesInWhere].
//
// # Drive Conventions
//
// Staged inputs live in public Drive folders. Children of a folder are
// listed with the query "'<id>' in parents and trashed=false". Folders carry
// the MIME type [FolderMimeType]; every other "application/vnd.google-apps.*"
// type is a native Workspace document that has no downloadable bytes.
//
// # Artifacts
//
// Every shapefile written and every Drive file downloaded is described by
// an [ArtifactEvent] so downstream consumers can pick up fresh inputs.
package domain
