package model

// Waypoint is a named navigation fix with its measured magnetic field
// intensity. Anchor and Phase are derived from the name by the ring mapping
// when the waypoint enters the knowledge base.
type Waypoint struct {
	Name    string  `json:"name" db:"name"`
	Lat     float64 `json:"lat" db:"lat"`
	Lon     float64 `json:"lon" db:"lon"`
	FieldNT float64 `json:"field_nt" db:"field_nt"` // total magnetic field intensity, nanotesla

	Anchor int `json:"anchor" db:"-"`
	Phase  int `json:"phase" db:"-"`
}

// RouteSolution is the full outcome of solving a route between two waypoints.
// All fields are finite for valid inputs.
type RouteSolution struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`

	DistanceNM       float64 `json:"distance_nm"`
	InitialCourseDeg float64 `json:"initial_course_deg"`
	CorrectionDeg    float64 `json:"wind_correction_deg"`
	TrueHeadingDeg   float64 `json:"true_heading_deg"`
	GroundSpeedKt    float64 `json:"ground_speed_kt"`
	TimeHours        float64 `json:"time_hours"`
	FuelRequiredGal  float64 `json:"fuel_required_gal,omitempty"`
	FuelEnduranceHrs float64 `json:"fuel_endurance_hours,omitempty"`
	FuelRangeNM      float64 `json:"fuel_range_nm,omitempty"`

	PhaseHarmony       float64 `json:"phase_harmony"`
	Confidence         float64 `json:"confidence"`
	RingDistance       int     `json:"ring_distance"`
	FieldGradientNT    float64 `json:"field_gradient_nt_per_nm"`
	MagneticEfficiency float64 `json:"magnetic_efficiency_factor"`

	DrawerIndex int `json:"drawer_index"`
	DrawerPhase int `json:"drawer_phase"`
}

// Corridor is a waypoint pairing whose shared phase pushes harmony above the
// neutral value.
type Corridor struct {
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	Harmony      float64 `json:"phase_harmony"`
	Confidence   float64 `json:"confidence"`
	RingDistance int     `json:"ring_distance"`
}
