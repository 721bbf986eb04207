// Package georef converts ingested mesh vertices from their source
// coordinate reference system into ECEF, the frame OGC 3D Tiles requires
// for a tile's root transform. It generalizes the teacher's
// converters.CoordinateConverter (originally a point-cloud SRID-to-SRID
// reprojection used ahead of cesium tiling) to mesh vertices and to the
// WGS84-geographic-to-ECEF step 3D Tiles specifically needs.
package georef

import (
	"fmt"
	"math"

	proj4 "github.com/xeonx/proj4"
)

// wgs84Def is the PROJ.4 definition string for geographic WGS84, the CRS
// every source SRID is reprojected through on its way to ECEF.
const wgs84Def = "+proj=longlat +datum=WGS84 +no_defs"

// Pipeline reprojects source-SRID coordinates to ECEF, applying an
// elevation correction in between, mirroring the order of operations the
// teacher's GridTree.getPointFromRawData used (reproject -> correct
// elevation -> reproject again) but targeting ECEF instead of EPSG:3395.
type Pipeline struct {
	sourceSRID int
	sourceProj *proj4.Proj
	wgs84Proj  *proj4.Proj
	corrector  ElevationCorrector
}

// NewPipeline builds a Pipeline reprojecting from sourceSRID (an EPSG code)
// to ECEF via WGS84 geographic coordinates.
func NewPipeline(sourceSRID int, corrector ElevationCorrector) (*Pipeline, error) {
	src, err := proj4.InitPlus(fmt.Sprintf("+init=epsg:%d", sourceSRID))
	if err != nil {
		return nil, fmt.Errorf("georef: init source srid %d: %w", sourceSRID, err)
	}
	wgs84, err := proj4.InitPlus(wgs84Def)
	if err != nil {
		return nil, fmt.Errorf("georef: init wgs84: %w", err)
	}
	if corrector == nil {
		corrector = NoopElevationCorrector{}
	}
	return &Pipeline{sourceSRID: sourceSRID, sourceProj: src, wgs84Proj: wgs84, corrector: corrector}, nil
}

// Close releases the underlying PROJ.4 contexts.
func (p *Pipeline) Close() {
	if p.sourceProj != nil {
		p.sourceProj.Close()
	}
	if p.wgs84Proj != nil {
		p.wgs84Proj.Close()
	}
}

// ToECEF reprojects a single source-SRID vertex (x, y, z) to ECEF meters.
func (p *Pipeline) ToECEF(x, y, z float64) ([3]float64, error) {
	lon, lat, h := x, y, z
	if err := proj4.TransformRaw(p.sourceProj, p.wgs84Proj, []float64{lon}, []float64{lat}, []float64{h}); err != nil {
		return [3]float64{}, fmt.Errorf("georef: reproject to wgs84: %w", err)
	}
	h = p.corrector.CorrectElevation(lon, lat, h)
	return GeographicToECEF(lon, lat, h), nil
}

// ToECEFBatch reprojects many vertices in place, amortizing the PROJ.4 call
// overhead the way a per-tile mesh (tens of thousands of vertices) needs to.
func (p *Pipeline) ToECEFBatch(positions [][3]float64) ([][3]float64, error) {
	n := len(positions)
	lons := make([]float64, n)
	lats := make([]float64, n)
	hs := make([]float64, n)
	for i, pos := range positions {
		lons[i], lats[i], hs[i] = pos[0], pos[1], pos[2]
	}
	if err := proj4.TransformRaw(p.sourceProj, p.wgs84Proj, lons, lats, hs); err != nil {
		return nil, fmt.Errorf("georef: reproject batch to wgs84: %w", err)
	}
	out := make([][3]float64, n)
	for i := range out {
		h := p.corrector.CorrectElevation(lons[i], lats[i], hs[i])
		out[i] = GeographicToECEF(lons[i], lats[i], h)
	}
	return out, nil
}

// ToLocalENU reprojects positions from the source SRID into a local East-
// North-Up frame centered on their centroid, returning the converted
// positions alongside the ENU-to-ECEF matrix a tileset root needs to place
// them back on the globe. Authoring tile content in this local frame keeps
// vertex coordinates numerically well-conditioned (meters from a nearby
// origin rather than ECEF's ~6.3e6 meter magnitudes), the same reason the
// teacher's GridTree worked in a locally-reprojected frame before its final
// Cesium export step.
func (p *Pipeline) ToLocalENU(positions [][3]float64) ([][3]float64, [16]float64, error) {
	ecef, err := p.ToECEFBatch(positions)
	if err != nil {
		return nil, [16]float64{}, err
	}
	if len(ecef) == 0 {
		return ecef, [16]float64{}, nil
	}

	lon, lat, h, err := p.centroidWGS84(positions)
	if err != nil {
		return nil, [16]float64{}, err
	}

	transform := ENUToECEFMatrix(lon, lat, h)
	rot := [3][3]float64{
		{transform[0], transform[1], transform[2]},
		{transform[4], transform[5], transform[6]},
		{transform[8], transform[9], transform[10]},
	}
	origin := [3]float64{transform[12], transform[13], transform[14]}

	local := make([][3]float64, len(ecef))
	for i, p := range ecef {
		d := [3]float64{p[0] - origin[0], p[1] - origin[1], p[2] - origin[2]}
		// rot is orthonormal (its rows are unit basis vectors), so its
		// transpose is its inverse: project d onto each ENU basis row.
		local[i] = [3]float64{
			rot[0][0]*d[0] + rot[0][1]*d[1] + rot[0][2]*d[2],
			rot[1][0]*d[0] + rot[1][1]*d[1] + rot[1][2]*d[2],
			rot[2][0]*d[0] + rot[2][1]*d[1] + rot[2][2]*d[2],
		}
	}
	return local, transform, nil
}

// centroidWGS84 returns the WGS84 lon/lat/h centroid of positions, the ENU
// frame origin ToLocalENU centers on.
func (p *Pipeline) centroidWGS84(positions [][3]float64) (float64, float64, float64, error) {
	n := len(positions)
	lons := make([]float64, n)
	lats := make([]float64, n)
	hs := make([]float64, n)
	for i, pos := range positions {
		lons[i], lats[i], hs[i] = pos[0], pos[1], pos[2]
	}
	if err := proj4.TransformRaw(p.sourceProj, p.wgs84Proj, lons, lats, hs); err != nil {
		return 0, 0, 0, fmt.Errorf("georef: reproject centroid to wgs84: %w", err)
	}
	var lon, lat, h float64
	for i := range lons {
		lon += lons[i]
		lat += lats[i]
		h += p.corrector.CorrectElevation(lons[i], lats[i], hs[i])
	}
	return lon / float64(n), lat / float64(n), h / float64(n), nil
}

// WGS84 ellipsoid constants (semi-major axis and first eccentricity squared).
const (
	wgs84A  = 6378137.0
	wgs84F  = 1 / 298.257223563
	wgs84E2 = wgs84F * (2 - wgs84F)
)

// GeographicToECEF converts lon/lat (degrees) + ellipsoidal height (meters)
// to Earth-Centered-Earth-Fixed Cartesian coordinates, the standard
// geodetic formula 3D Tiles' tileset root transform assumes.
func GeographicToECEF(lonDeg, latDeg, h float64) [3]float64 {
	lon := lonDeg * math.Pi / 180
	lat := latDeg * math.Pi / 180

	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	sinLon, cosLon := math.Sin(lon), math.Cos(lon)

	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	x := (n + h) * cosLat * cosLon
	y := (n + h) * cosLat * sinLon
	z := (n*(1-wgs84E2) + h) * sinLat

	return [3]float64{x, y, z}
}

// ENUToECEFMatrix returns the 4x4 (column-major) transform from a local
// East-North-Up frame centered at lon/lat/h to ECEF, the matrix 3D Tiles
// stores as a tile's root "transform" so content can be authored in local,
// numerically well-conditioned coordinates.
func ENUToECEFMatrix(lonDeg, latDeg, h float64) [16]float64 {
	lon := lonDeg * math.Pi / 180
	lat := latDeg * math.Pi / 180
	sinLon, cosLon := math.Sin(lon), math.Cos(lon)
	sinLat, cosLat := math.Sin(lat), math.Cos(lat)

	origin := GeographicToECEF(lonDeg, latDeg, h)

	// columns are the East, North, Up basis vectors expressed in ECEF
	east := [3]float64{-sinLon, cosLon, 0}
	north := [3]float64{-sinLat * cosLon, -sinLat * sinLon, cosLat}
	up := [3]float64{cosLat * cosLon, cosLat * sinLon, sinLat}

	// column-major, matching glTF/3D Tiles matrix convention: each group of
	// 4 is one column (east, north, up, origin).
	return [16]float64{
		east[0], east[1], east[2], 0,
		north[0], north[1], north[2], 0,
		up[0], up[1], up[2], 0,
		origin[0], origin[1], origin[2], 1,
	}
}
