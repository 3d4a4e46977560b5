package profile

// ProfileID identifier type
type ProfileID string

// Course is a single class on the academic record
type Course struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"` // regular | honors | ap | ib
	Grade string `json:"grade,omitempty"`
}

// Academics holds the academic-record slice of a profile
type Academics struct {
	GPA       float64  `json:"gpa"`
	GPAScale  float64  `json:"gpa_scale,omitempty"`
	ClassRank int      `json:"class_rank,omitempty"`
	ClassSize int      `json:"class_size,omitempty"`
	Courses   []Course `json:"courses,omitempty"`
}

// TestScores holds standardized-test results
type TestScores struct {
	SATMath   int            `json:"sat_math,omitempty"`
	SATVerbal int            `json:"sat_verbal,omitempty"`
	ACT       int            `json:"act,omitempty"`
	TOEFL     int            `json:"toefl,omitempty"`
	IELTS     float64        `json:"ielts,omitempty"`
	APScores  map[string]int `json:"ap_scores,omitempty"`
}

// Extracurricular is one activity entry
type Extracurricular struct {
	Name         string `json:"name"`
	Role         string `json:"role,omitempty"`
	Years        int    `json:"years,omitempty"`
	HoursPerWeek int    `json:"hours_per_week,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Award is one honor/award entry
type Award struct {
	Title string `json:"title"`
	Level string `json:"level,omitempty"` // school | regional | national | international
	Year  int    `json:"year,omitempty"`
}

// Essay is one application essay
type Essay struct {
	Prompt  string `json:"prompt,omitempty"`
	Content string `json:"content"`
}

// Context carries non-scored profile context: it shapes the narrative parts
// of an analysis but never receives a score of its own.
type Context struct {
	IntendedMajors   []string `json:"intended_majors,omitempty"`
	Nationality      string   `json:"nationality,omitempty"`
	FinancialNeedUSD float64  `json:"financial_need_usd,omitempty"`
}

// Profile is the full analysis input supplied by the caller on every request.
// The service never loads it from storage; only analysis results are cached.
type Profile struct {
	Academics        Academics         `json:"academics"`
	TestScores       TestScores        `json:"test_scores"`
	Extracurriculars []Extracurricular `json:"extracurriculars,omitempty"`
	Awards           []Award           `json:"awards,omitempty"`
	Essays           []Essay           `json:"essays,omitempty"`
	Context          Context           `json:"context"`
}
