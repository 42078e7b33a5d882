package sweep

import "time"

// Config holds configuration for a sweep run.
type Config struct {
	BaseURL string        // Base URL of the service
	Steps   int           // Zoom levels between MinK and MaxK
	Pans    int           // Translations per zoom level
	MinK    float64       // First zoom level
	MaxK    float64       // Last zoom level
	Width   float64       // Canvas width
	Height  float64       // Canvas height
	Workers int           // Number of concurrent workers
	Timeout time.Duration // HTTP request timeout
	Verbose bool          // Log every violation
}

// View is one transform and canvas to request.
type View struct {
	K      float64
	X      float64
	Width  float64
	Height float64
}

// Entry mirrors one bar of a /layout response.
type Entry struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Lane       int     `json:"lane"`
	StartX     float64 `json:"startX"`
	EndX       float64 `json:"endX"`
	Label      string  `json:"label"`
	BirthYear  int     `json:"birthYear"`
	DeathYear  *int    `json:"deathYear"`
	Prominence int     `json:"prominence"`
}

// Layout mirrors a /layout response.
type Layout struct {
	K             float64 `json:"k"`
	X             float64 `json:"x"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Threshold     int     `json:"threshold"`
	BaseThreshold int     `json:"baseThreshold"`
	VisibleStart  float64 `json:"visibleStart"`
	VisibleEnd    float64 `json:"visibleEnd"`
	Lanes         int     `json:"lanes"`
	Candidates    int     `json:"candidates"`
	RowBudget     int     `json:"rowBudget"`
	Entries       []Entry `json:"entries"`
}

// Violation is one broken layout property.
type Violation struct {
	View   View
	Kind   string
	Detail string
}

// Stats holds sweep statistics.
type Stats struct {
	Views       int
	Requests    int
	Failed      int
	Entries     int
	Violations  []Violation
	ByKind      map[string]int
	MaxLatency  time.Duration
	MeanLatency time.Duration
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}
