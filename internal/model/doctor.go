package model

// Doctor is a directory record. Records are loaded once and never mutated.
type Doctor struct {
	ID            string  `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	Specialty     string  `json:"specialty" yaml:"specialty"`
	Experience    string  `json:"experience" yaml:"experience"`
	Hospital      string  `json:"hospital" yaml:"hospital"`
	Distance      float64 `json:"distance" yaml:"distance"`
	Rating        float64 `json:"rating" yaml:"rating"`
	NextSlot      string  `json:"next_slot" yaml:"next_slot"`
	ImageURL      string  `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	ContactNumber string  `json:"contact_number,omitempty" yaml:"contact_number,omitempty"`
	Email         string  `json:"email,omitempty" yaml:"email,omitempty"`
}

// SortKey selects the ordering of a directory view.
type SortKey string

const (
	SortNone     SortKey = ""
	SortDistance SortKey = "distance"
	SortRating   SortKey = "rating"
	SortName     SortKey = "name"
)

// SearchCriteria are the three inputs of a directory view.
type SearchCriteria struct {
	Query     string  `json:"query" form:"q"`
	Specialty string  `json:"specialty" form:"specialty"`
	Sort      SortKey `json:"sort" form:"sort"`
}
