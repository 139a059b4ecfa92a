package model

// Analysis is the JSON report returned for an analyzed page.
type Analysis struct {
	TotalCO2 float64 `json:"total_co2"`
	Metrics  Metrics `json:"metrics"`

	// Source describes the fetch behind the report. It is logged, never
	// serialized.
	Source Source `json:"-"`
}

// Metrics holds the size and resource counts derived from the page.
type Metrics struct {
	PageSize       float64 `json:"pageSize"`
	JSCount        int     `json:"jsCount"`
	CSSCount       int     `json:"cssCount"`
	ImageCount     int     `json:"imageCount"`
	ServerLocation string  `json:"serverLocation"`
	Caching        string  `json:"caching"`
	CDNUsage       bool    `json:"cdnUsage"`
}

// Source records where the analyzed body came from.
type Source struct {
	URL        string
	FinalURL   string
	StatusCode int
	Bytes      int
}

// Status is the liveness payload served at the API root.
type Status struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the JSON shape returned on failure.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
