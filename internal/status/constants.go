// internal/status/constants.go
package status

// Agent Status Block layout constants.
// These values define the register protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerSensor is the fixed number of registers per sensor block.
const SlotsPerSensor = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the agent health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the code of the last failed read.
const SlotLastErrorCode = 1

// SlotSecondsInError holds how long (in seconds) reads have been failing.
const SlotSecondsInError = 2

// SlotAlertFlags holds the latched alert flags (FlagHigh, FlagLow).
const SlotAlertFlags = 3

// SlotAverage holds the last average in tenths of a degree, as int16.
const SlotAverage = 4

// ---- RESERVED RANGE ----

// Slots 5-10 are reserved.
const SlotReservedStart = 5
const SlotReservedEnd = 10

// ---- SENSOR NAME ----

// SlotNameStart is the first slot used for the sensor id.
// The name is always placed at the END of the block.
const SlotNameStart = 11

// SlotNameSlots is the number of slots reserved for the sensor id.
const SlotNameSlots = 8

// SlotNameEnd is the last slot used for the sensor id (inclusive).
const SlotNameEnd = SlotNameStart + SlotNameSlots - 1

// NameMaxChars is the maximum number of ASCII characters stored.
const NameMaxChars = 16

// ---- HEALTH CODES ----

const (
	HealthUnknown uint16 = 0 // no cycle observed yet
	HealthOK      uint16 = 1
	HealthError   uint16 = 2 // last read failed
	HealthStale   uint16 = 3 // no cycle within the stale window
)

// ---- ERROR CODES ----

const (
	ErrorNone uint16 = 0
	ErrorRead uint16 = 1
	ErrorPEC  uint16 = 2
)

// ---- ALERT FLAGS ----

const (
	FlagHigh uint16 = 1 << 0
	FlagLow  uint16 = 1 << 1
)

// HealthName is the human form of a health code.
func HealthName(code uint16) string {
	switch code {
	case HealthOK:
		return "ok"
	case HealthError:
		return "error"
	case HealthStale:
		return "stale"
	default:
		return "unknown"
	}
}
