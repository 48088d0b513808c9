package geometry

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/tracknav/internal/monitoring"
)

// SurfaceArray is a phi x z binned lookup grid over the sensitive surfaces of
// a cylindrical layer. Surfaces are binned by their center; a bin may hold
// several surfaces where modules overlap.
type SurfaceArray struct {
	PhiBins int
	ZBins   int
	HalfZ   float64
	bins    [][]Surface
}

// NewSurfaceArray bins surfaces into a phiBins x zBins grid spanning the full
// azimuth and |z| <= halfZ.
func NewSurfaceArray(surfaces []Surface, phiBins, zBins int, halfZ float64) *SurfaceArray {
	a := &SurfaceArray{
		PhiBins: phiBins,
		ZBins:   zBins,
		HalfZ:   halfZ,
		bins:    make([][]Surface, phiBins*zBins),
	}
	for _, s := range surfaces {
		ip, iz, ok := a.binOf(s.Center())
		if !ok {
			continue
		}
		idx := ip*zBins + iz
		a.bins[idx] = append(a.bins[idx], s)
	}
	return a
}

// At returns the surfaces in bin (phiIdx, zIdx), or nil when out of range.
func (a *SurfaceArray) At(phiIdx, zIdx int) []Surface {
	if phiIdx < 0 || phiIdx >= a.PhiBins || zIdx < 0 || zIdx >= a.ZBins {
		return nil
	}
	return a.bins[phiIdx*a.ZBins+zIdx]
}

// AtPosition returns the surfaces in the bin containing pos, or nil when pos
// falls outside the grid.
func (a *SurfaceArray) AtPosition(pos r3.Vec) []Surface {
	ip, iz, ok := a.binOf(pos)
	if !ok {
		return nil
	}
	return a.bins[ip*a.ZBins+iz]
}

func (a *SurfaceArray) binOf(pos r3.Vec) (phiIdx, zIdx int, ok bool) {
	if math.Abs(pos.Z) > a.HalfZ {
		return 0, 0, false
	}
	phi := Phi(pos)
	phiIdx = int((phi + math.Pi) / (2 * math.Pi) * float64(a.PhiBins))
	if phiIdx == a.PhiBins { // phi == +pi wraps to the first bin edge
		phiIdx = a.PhiBins - 1
	}
	zIdx = int((pos.Z + a.HalfZ) / (2 * a.HalfZ) * float64(a.ZBins))
	if zIdx == a.ZBins {
		zIdx = a.ZBins - 1
	}
	return phiIdx, zIdx, true
}

// CheckBinning validates that every sensitive surface is actually accessible
// through the binning: each must map to at least one non-empty bin. This is a
// geometry-construction check; a surface missing from the grid would be
// silently skipped by navigation, so assembly must fail instead.
func (a *SurfaceArray) CheckBinning(sensitives []Surface) error {
	accessible := make(map[Surface]bool)
	emptyBins := 0
	for _, bin := range a.bins {
		if len(bin) == 0 {
			emptyBins++
			continue
		}
		for _, s := range bin {
			accessible[s] = true
		}
	}

	var missing []string
	for _, s := range sensitives {
		if !s.Sensitive() {
			continue
		}
		if !accessible[s] {
			missing = append(missing, s.Name())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("surface binning misses %d sensitive surface(s): %s",
			len(missing), strings.Join(missing, ", "))
	}
	if emptyBins > 0 {
		monitoring.Logf("surface array has %d empty bin(s) of %d", emptyBins, len(a.bins))
	}
	return nil
}
