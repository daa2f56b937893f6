package shapefile

const (
	wgs84Geogcs = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`
	nad83Geogcs = `GEOGCS["GCS_North_American_1983",DATUM["D_North_American_1983",SPHEROID["GRS_1980",6378137.0,298.257222101]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`
	webMercator = `PROJCS["WGS_1984_Web_Mercator_Auxiliary_Sphere",` + wgs84Geogcs +
		`,PROJECTION["Mercator_Auxiliary_Sphere"],PARAMETER["False_Easting",0.0],PARAMETER["False_Northing",0.0],` +
		`PARAMETER["Central_Meridian",0.0],PARAMETER["Standard_Parallel_1",0.0],PARAMETER["Auxiliary_Sphere_Type",0.0],UNIT["Meter",1.0]]`
)

// projections holds ESRI WKT for the spatial references the NWS map
// service returns. Unknown WKIDs get no .prj file.
var projections = map[int]string{
	4326:   wgs84Geogcs,
	4269:   nad83Geogcs,
	3857:   webMercator,
	102100: webMercator,
}
