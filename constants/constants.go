package constants

// Section headers, compared trimmed and case-insensitively.
const (
	SectionGeneral      = "General"
	SectionMetadata     = "Metadata"
	SectionDifficulty   = "Difficulty"
	SectionTimingPoints = "TimingPoints"
	SectionHitObjects   = "HitObjects"
)

// Scroll speed bounds used by the normalizer and the visual assist pass.
const (
	DefaultSvMin = 0.01
	DefaultSvMax = 10.0

	// Range the engine itself renders; scroll markers outside it are clamped
	// when timing is written back out.
	EngineSvMin = 0.1
	EngineSvMax = 10.0

	// Two tempo markers this close are treated as the same instant.
	TimeToleranceMs = 0.5

	// Upper bound for power-of-two tempo multipliers.
	MaxMultiplier = 1 << 30
)

// Timing model normalization.
const (
	DefaultTempoBeatLength = 500.0 // 120 BPM
	SlowestTempoBeatLength = 60000.0
	FastestTempoBeatLength = 1.0

	SlowestScrollBeatLength = -1000.0 // SV 0.1
	FastestScrollBeatLength = -10.0   // SV 10

	Epsilon = 1e-9

	// Tempo markers above this are treated as garbage by the strict parser.
	MaxTempoBeatLength = 1e12
)

// Engine constants. They are single precision in the engine and must be
// widened from float32 to reproduce its rounding.
const (
	VelocityMultiplier  float32 = 1.4
	BaseScoringDistance float32 = 100
)

const (
	DefaultSliderMultiplier = 1.4
	DefaultSliderTickRate   = 1.0
	DefaultFormatVersion    = 14
)

// Sanitizer bounds.
const (
	BeatLengthFloatMax         = 1.0e7
	BeatLengthFloatMinPositive = 1.0e-30

	LazerMinBeatLength   = 6.0
	LazerMaxBeatLength   = 60000.0
	LazerMaxSliderLength = 65536.0

	ExtremeSliderLength        = 50000.0
	ExtremeSliderControlPoints = 200

	PlayfieldWidth  = 512
	PlayfieldHeight = 384

	// Pixel length written for sliders whose length was unusable.
	RescuedPixelLength = "0.1"
)

// Hit object type bits.
const (
	TypeCircle  = 1
	TypeSlider  = 2
	TypeSpinner = 8
	TypeHold    = 128
)

// Hit event placement for decomposed sliders.
const (
	HitX = 256
	HitY = 192

	DefaultHitExtras = "0:0:0:0:"

	// Guard against degenerate tick spacing producing an unbounded number of
	// events; such sliders are kept whole.
	MaxHitsPerSlider = 1 << 16
)

// Comment markers written into [TimingPoints].
const (
	ClampLogPrefix  = "// [ConstantSpeed] SV clamped"
	ClampLogSummary = ClampLogPrefix + " (summary)"

	SvaMarkerPrefix = "// [SVA] applied"
	SvaMarkerHeader = SvaMarkerPrefix + " markers"
)

// Difficulty name suffixes.
const (
	TaikoConvertSuffix          = " (taiko convert)"
	ConstantSpeedSuffix         = " (constant speed)"
	ConstantSpeedAdjustedSuffix = " (constant speed adjusted)"
)

const (
	LazerFormatVersion  = 128
	StableFormatVersion = 14
)

const (
	SampleLimitLongObjects = 5
	SampleLimitEffects     = 6
	SampleLimitSanitizer   = 8
)

// [General] Mode: values.
const (
	ModeStandard = 0
	ModeTaiko    = 1
)
