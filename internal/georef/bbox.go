package georef

import (
	"fmt"

	"github.com/xeonx/geom"
	proj4 "github.com/xeonx/proj4"
)

// FootprintWGS84 reprojects positions (source-SRID x/y/z) and returns their
// 2D lon/lat envelope, using the pack's xeonx/geom envelope type rather than
// hand-rolling a min/max accumulator — the same summary the teacher's
// CoordinateConverter.Convert2DBoundingboxToWGS84Region produced alongside
// its point conversions, here surfaced for the CLI's end-of-run log line.
func (p *Pipeline) FootprintWGS84(positions [][3]float64) (geom.Envelope, error) {
	n := len(positions)
	lons := make([]float64, n)
	lats := make([]float64, n)
	hs := make([]float64, n)
	for i, pos := range positions {
		lons[i], lats[i], hs[i] = pos[0], pos[1], pos[2]
	}
	if err := proj4.TransformRaw(p.sourceProj, p.wgs84Proj, lons, lats, hs); err != nil {
		return geom.Envelope{}, fmt.Errorf("georef: reproject footprint to wgs84: %w", err)
	}

	bbox := geom.NewEnvelope()
	for i := range lons {
		bbox.ExtendPoint(geom.Point{X: lons[i], Y: lats[i]})
	}
	return *bbox, nil
}
