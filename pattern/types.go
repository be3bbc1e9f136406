package pattern

import (
	"fmt"
	"math/bits"
	"strings"
)

// MaxSteps is the widest supported bar
const MaxSteps = 64

// Supported bar lengths in steps
var Lengths = [...]int{16, 24, 32, 64}

// Mask is a set of steps, bit N = step N
type Mask uint64

func (m Mask) Has(step int) bool { return m&(1<<uint(step)) != 0 }

func (m Mask) Set(step int) Mask { return m | 1<<uint(step) }

func (m Mask) Clear(step int) Mask { return m &^ (1 << uint(step)) }

func (m Mask) Count() int { return bits.OnesCount64(uint64(m)) }

// String renders the first 16 steps as x/. for debugging
func (m Mask) String() string {
	return m.Grid(16)
}

// Grid renders length steps as x/.
func (m Mask) Grid(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		if m.Has(i) {
			b.WriteByte('x')
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// Steps lists the hit steps below length in order
func (m Mask) Steps(length int) []int {
	steps := make([]int, 0, m.Count())
	for i := 0; i < length; i++ {
		if m.Has(i) {
			steps = append(steps, i)
		}
	}
	return steps
}

// LengthMask has the low length bits set
func LengthMask(length int) Mask {
	if length >= MaxSteps {
		return ^Mask(0)
	}
	if length <= 0 {
		return 0
	}
	return Mask(1)<<uint(length) - 1
}

// RotateLeft moves every hit n steps later, wrapping within length
func RotateLeft(m Mask, n, length int) Mask {
	if length <= 0 {
		return 0
	}
	n %= length
	if n < 0 {
		n += length
	}
	m &= LengthMask(length)
	if n == 0 {
		return m
	}
	return ((m << uint(n)) | (m >> uint(length-n))) & LengthMask(length)
}

// Voice identifies one of the three trigger outputs
type Voice int

const (
	Anchor Voice = iota
	Shimmer
	Aux
	NumVoices
)

func (v Voice) String() string {
	switch v {
	case Anchor:
		return "anchor"
	case Shimmer:
		return "shimmer"
	case Aux:
		return "aux"
	}
	return fmt.Sprintf("voice(%d)", int(v))
}

// EnergyZone is the density regime derived from energy
type EnergyZone int

const (
	ZoneMinimal EnergyZone = iota
	ZoneGroove
	ZoneBuild
	ZonePeak
	NumZones
)

func (z EnergyZone) String() string {
	switch z {
	case ZoneMinimal:
		return "MINIMAL"
	case ZoneGroove:
		return "GROOVE"
	case ZoneBuild:
		return "BUILD"
	case ZonePeak:
		return "PEAK"
	}
	return fmt.Sprintf("zone(%d)", int(z))
}

// Genre selects euclidean blend and base swing
type Genre int

const (
	Techno Genre = iota
	Tribal
	IDM
	NumGenres
)

func (g Genre) String() string {
	switch g {
	case Techno:
		return "techno"
	case Tribal:
		return "tribal"
	case IDM:
		return "idm"
	}
	return fmt.Sprintf("genre(%d)", int(g))
}

// ParseGenre accepts the String form, case-insensitive
func ParseGenre(s string) (Genre, bool) {
	for g := Genre(0); g < NumGenres; g++ {
		if strings.EqualFold(s, g.String()) {
			return g, true
		}
	}
	return Techno, false
}

// Coupling selects how shimmer is derived from anchor.
// Independent is the complementary gap-filling policy.
type Coupling int

const (
	Independent Coupling = iota
	Interlock
	Shadow
	NumCouplings
)

func (c Coupling) String() string {
	switch c {
	case Independent:
		return "independent"
	case Interlock:
		return "interlock"
	case Shadow:
		return "shadow"
	}
	return fmt.Sprintf("coupling(%d)", int(c))
}

// ParseCoupling accepts the String form and "complement" as an alias of independent
func ParseCoupling(s string) (Coupling, bool) {
	if strings.EqualFold(s, "complement") {
		return Independent, true
	}
	for c := Coupling(0); c < NumCouplings; c++ {
		if strings.EqualFold(s, c.String()) {
			return c, true
		}
	}
	return Independent, false
}

// AuxDensity scales the aux voice budget
type AuxDensity int

const (
	AuxSparse AuxDensity = iota
	AuxNormal
	AuxDense
	AuxBusy
	NumAuxDensities
)

func (d AuxDensity) String() string {
	switch d {
	case AuxSparse:
		return "sparse"
	case AuxNormal:
		return "normal"
	case AuxDense:
		return "dense"
	case AuxBusy:
		return "busy"
	}
	return fmt.Sprintf("auxdensity(%d)", int(d))
}

func ParseAuxDensity(s string) (AuxDensity, bool) {
	for d := AuxDensity(0); d < NumAuxDensities; d++ {
		if strings.EqualFold(s, d.String()) {
			return d, true
		}
	}
	return AuxNormal, false
}

// BuildPhase is the position in the phrase arc
type BuildPhase int

const (
	PhaseGroove BuildPhase = iota
	PhaseBuild
	PhaseTension
	PhaseFill
)

func (p BuildPhase) String() string {
	switch p {
	case PhaseGroove:
		return "GROOVE"
	case PhaseBuild:
		return "BUILD"
	case PhaseTension:
		return "TENSION"
	case PhaseFill:
		return "FILL"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Params is everything one generation call depends on
type Params struct {
	Shape  float64 `json:"shape"`
	Energy float64 `json:"energy"`
	AxisX  float64 `json:"axisX"`
	AxisY  float64 `json:"axisY"`
	Drift  float64 `json:"drift"`
	Accent float64 `json:"accent"`

	Balance        float64 `json:"balance"`
	Build          float64 `json:"build"`
	PhraseProgress float64 `json:"phraseProgress"`
	Swing          float64 `json:"swing"`

	Seed       uint32 `json:"seed"`
	PhraseSeed uint32 `json:"phraseSeed"` // 0 = same as Seed
	Length     int    `json:"length"`

	// FillSteps is how many steps at the end of the bar fall in the
	// phrase's fill zone
	FillSteps int `json:"fillSteps"`

	Genre      Genre      `json:"genre"`
	Coupling   Coupling   `json:"coupling"`
	AuxDensity AuxDensity `json:"auxDensity"`
}

// DefaultParams is a mid-energy techno groove
func DefaultParams() Params {
	return Params{
		Shape:      0.3,
		Energy:     0.4,
		AxisX:      0.5,
		AxisY:      0.5,
		Accent:     0.5,
		Balance:    0.5,
		Seed:       0x12345678,
		Length:     32,
		Genre:      Techno,
		Coupling:   Independent,
		AuxDensity: AuxNormal,
	}
}

// Clamp pins continuous fields to [0,1], snaps Length and fixes out-of-range enums
func (p Params) Clamp() Params {
	p.Shape = clamp01(p.Shape)
	p.Energy = clamp01(p.Energy)
	p.AxisX = clamp01(p.AxisX)
	p.AxisY = clamp01(p.AxisY)
	p.Drift = clamp01(p.Drift)
	p.Accent = clamp01(p.Accent)
	p.Balance = clamp01(p.Balance)
	p.Build = clamp01(p.Build)
	p.PhraseProgress = clamp01(p.PhraseProgress)
	p.Swing = clamp01(p.Swing)
	p.Length = SnapLength(p.Length)
	if p.FillSteps < 0 {
		p.FillSteps = 0
	} else if p.FillSteps > p.Length {
		p.FillSteps = p.Length
	}
	if p.Genre < 0 || p.Genre >= NumGenres {
		p.Genre = Techno
	}
	if p.Coupling < 0 || p.Coupling >= NumCouplings {
		p.Coupling = Independent
	}
	if p.AuxDensity < 0 || p.AuxDensity >= NumAuxDensities {
		p.AuxDensity = AuxNormal
	}
	return p
}

// SnapLength returns the supported length nearest to n (ties go shorter)
func SnapLength(n int) int {
	best := Lengths[0]
	bestDist := abs(n - best)
	for _, l := range Lengths[1:] {
		if d := abs(n - l); d < bestDist {
			best, bestDist = l, d
		}
	}
	return best
}

// Budget is the hit count per voice for one bar
type Budget struct {
	Zone       EnergyZone `json:"zone"`
	Anchor     int        `json:"anchor"`
	Shimmer    int        `json:"shimmer"`
	Aux        int        `json:"aux"`
	MinSpacing int        `json:"minSpacing"`
}

// Weights holds one weight per step
type Weights [MaxSteps]float64

// Result is one generated bar. It is a fixed-size value and never grows.
type Result struct {
	Length int        `json:"length"`
	Zone   EnergyZone `json:"zone"`
	Phase  BuildPhase `json:"phase"`
	Budget Budget     `json:"budget"`

	Masks    [NumVoices]Mask              `json:"masks"`
	Accents  [NumVoices]Mask              `json:"accents"`
	Velocity [NumVoices][MaxSteps]float32 `json:"-"`

	// Timing is the trigger delay per step as a fraction of a step
	Timing [MaxSteps]float32 `json:"-"`
	Swing  float32           `json:"swing"`
}

// Fires reports whether voice v has a hit on step
func (r *Result) Fires(v Voice, step int) bool {
	return r.Masks[v].Has(step)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	if x != x {
		return 0
	}
	return x
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
