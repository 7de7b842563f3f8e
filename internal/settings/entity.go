package settings

const (
	KeyTestimonials        = "testimonials"
	KeyPopularDestinations = "popularDestinations"
	KeyHeroTitle           = "heroTitle"
	KeyHeroSubtitle        = "heroSubtitle"
	KeyHeroImage           = "heroImage"
	KeyAddress             = "address"
	KeyPhone               = "phone"
	KeyEmail               = "email"
	KeyPageAbout           = "page_about"
	KeyPageFAQ             = "page_faq"
	KeyPagePrivacy         = "page_privacy"
	KeyPageTerms           = "page_terms"
)

type Testimonial struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Quote   string `json:"quote"`
	Rating  int    `json:"rating"`
}

type PopularDestination struct {
	Name  string `json:"name"`
	Count string `json:"count"`
	Img   string `json:"img"`
}

type Hero struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Image    string `json:"image"`
}

type Contact struct {
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Pages hold HTML as entered by admins. Escaping is left to the renderer.
type Pages struct {
	About   string `json:"about"`
	FAQ     string `json:"faq"`
	Privacy string `json:"privacy"`
	Terms   string `json:"terms"`
}

// Site is the typed view of the settings table used by the public pages.
type Site struct {
	Hero                Hero                 `json:"hero"`
	Contact             Contact              `json:"contact"`
	Testimonials        []Testimonial        `json:"testimonials"`
	PopularDestinations []PopularDestination `json:"popularDestinations"`
	Pages               Pages                `json:"pages"`
}
