package models

// Record is one catalog entry extracted from a store item page. Wire names
// are shared by the JSON file, the import endpoint and stored documents.
type Record struct {
	ID          string  `json:"app_id" bson:"app_id"`
	Name        string  `json:"app_name" bson:"app_name"`
	ImageURL    string  `json:"app_image_url" bson:"app_image_url"`
	Rating      float64 `json:"ratings" bson:"ratings"`
	ReviewCount int     `json:"num_reviews" bson:"num_reviews"`
	Description string  `json:"description" bson:"description"`
	Category    string  `json:"category" bson:"category"`
	SourceURL   string  `json:"source_url" bson:"source_url"`
}

// BatchMode tells whether a batch came from the live site or from the
// built-in demo data.
type BatchMode string

const (
	ModeExtracted    BatchMode = "extracted"
	ModeFallbackDemo BatchMode = "fallback_demo"
)

// Batch is the result of a full orchestrated run.
type Batch struct {
	Records []*Record
	Mode    BatchMode
}

// IsDemo reports whether the batch holds synthetic records.
func (b *Batch) IsDemo() bool {
	return b.Mode == ModeFallbackDemo
}

// LinkStage names the discovery stage that produced a set of item links.
type LinkStage string

const (
	StagePrimary  LinkStage = "primary"
	StageFallback LinkStage = "fallback"
	StageSeed     LinkStage = "seed"
)

// Links is the ordered, deduplicated output of listing discovery.
type Links struct {
	URLs  []string
	Stage LinkStage
}

// CatalogSummary holds the computed overview of a scraped batch.
type CatalogSummary struct {
	TotalRecords      int
	Mode              BatchMode
	RatedRecords      int
	AverageRating     float64
	TotalReviews      int
	MostReviewed      *Record
	TopRated          []*Record
	RecordsByCategory map[string]int
}
