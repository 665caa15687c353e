package rangecoder

const (
	kTop          uint32 = 1 << 24
	kBot          uint32 = 1 << 16
	kInitialRange uint32 = 0xFFFFFFFF
)

const (
	kNumPrimingBytes   = 4
	kNumFlushBytes     = 4
	kMaxRenormSteps    = 4
	kMaxScale          = kBot
	kMaxShift          = 16
	kMinWindowSize     = 1 << 12
	kDefaultWindowSize = 1 << 16
	kMaxWindowSize     = 1 << 30
)

// SubRange is the slice [LowCount, HighCount) out of Scale owned by one
// symbol in the caller's cumulative frequency table.
type SubRange struct {
	LowCount  uint32
	HighCount uint32
	Scale     uint32
}

func (sr SubRange) valid() bool {
	return sr.LowCount < sr.HighCount && sr.HighCount <= sr.Scale
}

func validScale(scale uint32) bool {
	return scale != 0 && scale <= kMaxScale
}

// isCarryFree reports whether the top byte of low is already determined,
// that is low and low+rng agree on it.
func isCarryFree(low, rng uint32) bool {
	return low^(low+rng) < kTop
}

// needsRenorm reports whether another renormalization step is due and
// returns the range to shift. A range that fell below kBot is clamped to
// the next kBot boundary of low so no carry can cross the current byte.
func needsRenorm(low, rng uint32) (uint32, bool) {
	if isCarryFree(low, rng) {
		return rng, true
	}
	if rng < kBot {
		return -low & (kBot - 1), true
	}
	return rng, false
}
