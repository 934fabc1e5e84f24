package meshcache

import "fmt"

// QuadKey identifies a map tile at a specific level of detail using the
// XYZ tiling scheme. It is comparable and usable as a map key; the cache
// tracks in-flight writes keyed by QuadKey.
type QuadKey struct {
	X             uint32
	Y             uint32
	LevelOfDetail uint32
}

// Valid reports whether the coordinates fit the tile grid at this level.
func (k QuadKey) Valid() bool {
	return k.LevelOfDetail > 0 && k.LevelOfDetail < 32 &&
		k.X < (1<<k.LevelOfDetail) && k.Y < (1<<k.LevelOfDetail)
}

// String returns the canonical base-4 quadkey digits, one per level,
// most significant first. This is the form used as a cache file name.
func (k QuadKey) String() string {
	buf := make([]byte, 0, k.LevelOfDetail)
	for i := k.LevelOfDetail; i > 0; i-- {
		digit := byte('0')
		mask := uint32(1) << (i - 1)
		if k.X&mask != 0 {
			digit++
		}
		if k.Y&mask != 0 {
			digit += 2
		}
		buf = append(buf, digit)
	}
	return string(buf)
}

// ParseQuadKey converts base-4 quadkey digits back into tile coordinates.
func ParseQuadKey(s string) (QuadKey, error) {
	if len(s) == 0 || len(s) >= 32 {
		return QuadKey{}, fmt.Errorf("meshcache: quadkey length %d out of range", len(s))
	}
	k := QuadKey{LevelOfDetail: uint32(len(s))}
	for i := 0; i < len(s); i++ {
		mask := uint32(1) << (k.LevelOfDetail - uint32(i) - 1)
		switch s[i] {
		case '0':
		case '1':
			k.X |= mask
		case '2':
			k.Y |= mask
		case '3':
			k.X |= mask
			k.Y |= mask
		default:
			return QuadKey{}, fmt.Errorf("meshcache: invalid quadkey digit %q", s[i])
		}
	}
	return k, nil
}
