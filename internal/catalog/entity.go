package catalog

type Category string

const (
	CategoryDayTours         Category = "Day Tours"
	CategoryNileCruises      Category = "Nile Cruises"
	CategoryShoreExcursions  Category = "Shore Excursions"
	CategoryMultiDayPackages Category = "Multi-Day Packages"
	CategoryDesertSafari     Category = "Desert Safari"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryDayTours, CategoryNileCruises, CategoryShoreExcursions, CategoryMultiDayPackages, CategoryDesertSafari:
		return true
	default:
		return false
	}
}

type Tour struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	Duration      string   `json:"duration"`
	Image         string   `json:"image"`
	Category      Category `json:"category"`
	Rating        float64  `json:"rating"`
	Reviews       int      `json:"reviews"`
	Tags          []string `json:"tags"`
	DestinationID *string  `json:"destinationId"`
}

// TourInput is the full replacement body for create and update. ID is only
// honoured on create and is generated when empty.
type TourInput struct {
	ID            string   `json:"id,omitempty"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	Duration      string   `json:"duration"`
	Image         string   `json:"image"`
	Category      Category `json:"category"`
	Rating        float64  `json:"rating"`
	Reviews       int      `json:"reviews"`
	Tags          []string `json:"tags"`
	DestinationID *string  `json:"destinationId"`
}

type Destination struct {
	ID          string  `json:"id"`
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	HeaderImage *string `json:"headerImage"`
	Content     *string `json:"content"`
	TourCount   int     `json:"tourCount"`
	Tours       []*Tour `json:"tours,omitempty"`
}

type DestinationInput struct {
	ID          string  `json:"id,omitempty"`
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	HeaderImage *string `json:"headerImage"`
	Content     *string `json:"content"`
}

type TourFilter struct {
	Category Category
}
