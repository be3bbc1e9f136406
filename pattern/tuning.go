package pattern

// ZoneTuning holds per-zone hit count rules. Counts are expressed as
// divisors of the bar length so they scale with 16/24/32/64 step bars.
type ZoneTuning struct {
	MinHits    int `json:"minHits"`
	TypicalDiv int `json:"typicalDiv"` // typical = length / TypicalDiv
	MaxDiv     int `json:"maxDiv"`     // max = length / MaxDiv
	MinSpacing int `json:"minSpacing"`
	MaxGap     int `json:"maxGap"` // longest anchor silence in steps, 0 = no limit

	EuclidScale    float64 `json:"euclidScale"`
	AuxDiv         int     `json:"auxDiv"` // 0 = no aux base
	ShimmerRun     int     `json:"shimmerRun"`
	SwingCap       float64 `json:"swingCap"`
	StrongDownbeat bool    `json:"strongDownbeat"` // step 0 required for downbeat genres
}

// GenreTuning holds per-genre constants
type GenreTuning struct {
	EuclidMax float64 `json:"euclidMax"` // ratio at axisX = 0
	EuclidMin float64 `json:"euclidMin"` // ratio at axisX = 1

	SwingBase float64 `json:"swingBase"` // fraction of a step
	Jitter    float64 `json:"jitter"`
	Downbeat  bool    `json:"downbeat"`
	Backbeat  bool    `json:"backbeat"`
}

// PhaseTuning is one segment of the build arc
type PhaseTuning struct {
	Start        float64 `json:"start"` // phrase progress where the phase begins
	DensityFrom  float64 `json:"densityFrom"`
	DensityTo    float64 `json:"densityTo"`
	VelocityFrom float64 `json:"velocityFrom"`
	VelocityTo   float64 `json:"velocityTo"`
}

// Tuning is every constant the generator reads. Pass it explicitly so
// sweeps can override values per run.
type Tuning struct {
	ZoneThresholds [3]float64 `json:"zoneThresholds"`

	EuclidFadeStart float64 `json:"euclidFadeStart"`
	EuclidFadeEnd   float64 `json:"euclidFadeEnd"`
	SyncCenter      float64 `json:"syncCenter"`
	SyncWidth       float64 `json:"syncWidth"`
	RandomFadeStart float64 `json:"randomFadeStart"`
	RandomFadeEnd   float64 `json:"randomFadeEnd"`

	// Perturb is the amplitude of the per-step hash nudge
	Perturb float64 `json:"perturb"`

	AxisXStrength float64 `json:"axisXStrength"`
	AxisYStrength float64 `json:"axisYStrength"`

	Zones  [NumZones]ZoneTuning   `json:"zones"`
	Genres [NumGenres]GenreTuning `json:"genres"`

	ShimmerRatioMax  float64                  `json:"shimmerRatioMax"`
	AuxDensity       [NumAuxDensities]float64 `json:"auxDensity"`
	AuxCap           float64                  `json:"auxCap"` // fraction of length
	AuxCollision     float64                  `json:"auxCollision"`
	PhasedComplement bool                     `json:"phasedComplement"`
	Phases           [4]PhaseTuning           `json:"phases"`
	ForceAccentBuild float64                  `json:"forceAccentBuild"`
	AccentMasks      [NumVoices]Mask          `json:"accentMasks"`
	Velocity         VelocityTuning           `json:"velocity"`
	Burst            BurstTuning              `json:"burst"`
	Salts            [NumVoices]uint32        `json:"salts"`
	EuclidSalt       uint32                   `json:"euclidSalt"`
}

// BurstTuning shapes the aux burst played through a phrase's fill
type BurstTuning struct {
	MinHits       int     `json:"minHits"` // at energy 0
	MaxHits       int     `json:"maxHits"` // at energy 1
	EvenBelow     float64 `json:"evenBelow"`
	EuclidBelow   float64 `json:"euclidBelow"`
	Jitter        float64 `json:"jitter"` // steps of jitter at the top of the euclid range
	Velocity      float64 `json:"velocity"`
	VelocityBonus float64 `json:"velocityBonus"`
	Duck          float64 `json:"duck"` // velocity scale next to a main hit
	Salt          uint32  `json:"salt"`
}

// VelocityTuning maps accent in [0,1] onto velocity shaping
type VelocityTuning struct {
	FloorAt0     float64 `json:"floorAt0"`
	FloorAt1     float64 `json:"floorAt1"`
	CeilAt0      float64 `json:"ceilAt0"`
	CeilAt1      float64 `json:"ceilAt1"`
	VariationAt0 float64 `json:"variationAt0"`
	VariationAt1 float64 `json:"variationAt1"`
	ProbAt0      float64 `json:"probAt0"`
	ProbAt1      float64 `json:"probAt1"`
	BoostAt0     float64 `json:"boostAt0"`
	BoostAt1     float64 `json:"boostAt1"`
	Min          float64 `json:"min"`
}

// DefaultTuning returns the shipped tables
func DefaultTuning() *Tuning {
	return &Tuning{
		ZoneThresholds: [3]float64{0.20, 0.50, 0.75},

		EuclidFadeStart: 0.30,
		EuclidFadeEnd:   0.70,
		SyncCenter:      0.50,
		SyncWidth:       0.30,
		RandomFadeStart: 0.50,
		RandomFadeEnd:   0.90,
		Perturb:         0.05,

		AxisXStrength: 0.45,
		AxisYStrength: 0.50,

		Zones: [NumZones]ZoneTuning{
			ZoneMinimal: {MinHits: 1, TypicalDiv: 16, MaxDiv: 8, MinSpacing: 4, MaxGap: 0, EuclidScale: 1, AuxDiv: 0, ShimmerRun: 2, SwingCap: 0.20, StrongDownbeat: true},
			ZoneGroove:  {MinHits: 3, TypicalDiv: 6, MaxDiv: 4, MinSpacing: 2, MaxGap: 8, EuclidScale: 1, AuxDiv: 8, ShimmerRun: 4, SwingCap: 0.25, StrongDownbeat: true},
			ZoneBuild:   {MinHits: 4, TypicalDiv: 4, MaxDiv: 3, MinSpacing: 1, MaxGap: 6, EuclidScale: 0.5, AuxDiv: 4, ShimmerRun: 6, SwingCap: 0.20},
			ZonePeak:    {MinHits: 6, TypicalDiv: 3, MaxDiv: 2, MinSpacing: 1, MaxGap: 4, EuclidScale: 0.25, AuxDiv: 2, ShimmerRun: 8, SwingCap: 0.15},
		},
		Genres: [NumGenres]GenreTuning{
			Techno: {EuclidMax: 1.0, EuclidMin: 0.7, SwingBase: 0.04, Downbeat: true, Backbeat: true},
			Tribal: {EuclidMax: 0.6, EuclidMin: 0.4, SwingBase: 0.12, Downbeat: true},
			IDM:    {EuclidMax: 0.3, EuclidMin: 0.1, SwingBase: 0.08, Jitter: 0.03},
		},

		ShimmerRatioMax:  1.5,
		AuxDensity:       [NumAuxDensities]float64{0.5, 1.0, 1.5, 2.0},
		AuxCap:           2.0 / 3.0,
		AuxCollision:     0.3,
		PhasedComplement: true,
		Phases: [4]PhaseTuning{
			PhaseGroove:  {Start: 0, DensityFrom: 1, DensityTo: 1},
			PhaseBuild:   {Start: 0.5, DensityFrom: 1, DensityTo: 1.25, VelocityFrom: 0, VelocityTo: 0.05},
			PhaseTension: {Start: 0.75, DensityFrom: 1.25, DensityTo: 1.40, VelocityFrom: 0.05, VelocityTo: 0.10},
			PhaseFill:    {Start: 0.875, DensityFrom: 1.40, DensityTo: 1.60, VelocityFrom: 0.10, VelocityTo: 0.15},
		},
		ForceAccentBuild: 0.6,
		AccentMasks: [NumVoices]Mask{
			Anchor:  0x1111111111111111,
			Shimmer: 0x0101010101010101 << 4,
			Aux:     0x4444444444444444,
		},
		Velocity: VelocityTuning{
			FloorAt0: 0.80, FloorAt1: 0.30,
			CeilAt0: 0.88, CeilAt1: 1.00,
			VariationAt0: 0.02, VariationAt1: 0.07,
			ProbAt0: 0.10, ProbAt1: 0.60,
			BoostAt0: 0.04, BoostAt1: 0.20,
			Min: 0.30,
		},
		Burst: BurstTuning{
			MinHits: 2, MaxHits: 12,
			EvenBelow: 0.30, EuclidBelow: 0.70, Jitter: 2.5,
			Velocity: 0.65, VelocityBonus: 0.35, Duck: 0.30,
			Salt: 0xB5257,
		},
		Salts:      [NumVoices]uint32{0, 0x12345, 0x67890},
		EuclidSalt: 0xE0C1,
	}
}

// Zone returns the tuning row for z
func (t *Tuning) Zone(z EnergyZone) *ZoneTuning {
	return &t.Zones[z]
}

// Genre returns the tuning row for g
func (t *Tuning) Genre(g Genre) *GenreTuning {
	return &t.Genres[g]
}
