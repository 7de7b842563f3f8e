package migration

import (
	"strconv"

	"github.com/avstrong/discovertours/internal/catalog"
)

const unsplash = "https://images.unsplash.com/"

func img(id string, width int) string {
	return unsplash + id + "?q=80&w=" + strconv.Itoa(width) + "&auto=format&fit=crop"
}

func ptr(s string) *string {
	return &s
}

var destinations = []catalog.DestinationInput{
	{
		ID:          "cairo",
		Slug:        "cairo",
		Name:        "Cairo",
		Description: "The City of a Thousand Minarets, Cairo is a chaotic, charming, and historic metropolis. Home to the Giza Pyramids, the Sphinx, and the Egyptian Museum, it is the starting point of most Egyptian adventures.",
		Image:       img("photo-1553913861-c0fddf2619ee", 800),
		HeaderImage: ptr(img("photo-1572252009286-268acec5ca0a", 1920)),
		Content: ptr(`<h2>The Heart of Egypt</h2>
<p>Cairo is more than just a gateway to the Pyramids; it's a vibrant city pulsating with life.</p>
<h3>Highlights</h3>
<ul>
<li><strong>Giza Plateau:</strong> The Great Pyramids and the Sphinx.</li>
<li><strong>Egyptian Museum:</strong> Home to Tutankhamun's treasures.</li>
<li><strong>Khan el-Khalili:</strong> A historic bazaar perfect for souvenir shopping.</li>
<li><strong>Citadel of Saladin:</strong> Offering panoramic views of the city.</li>
</ul>`),
	},
	{
		ID:          "luxor",
		Slug:        "luxor",
		Name:        "Luxor",
		Description: "Often called the world's greatest open-air museum, Luxor is built on the site of ancient Thebes, divided by the Nile into the East Bank and the West Bank.",
		Image:       img("photo-1599108600124-b6389f913d8c", 800),
		HeaderImage: ptr(img("photo-1560130958-809099863219", 1920)),
		Content: ptr(`<h2>The Ancient Capital</h2>
<p>Luxor offers an unparalleled window into ancient Egyptian civilization.</p>
<h3>Highlights</h3>
<ul>
<li><strong>Valley of the Kings:</strong> Royal tombs, including Tutankhamun.</li>
<li><strong>Karnak Temple:</strong> A vast temple complex dedicated to Amun-Ra.</li>
<li><strong>Luxor Temple:</strong> Beautifully illuminated at night.</li>
</ul>`),
	},
	{
		ID:          "aswan",
		Slug:        "aswan",
		Name:        "Aswan",
		Description: "Egypt's sunniest southern city and ancient frontier town, with a laid-back atmosphere and significant Nubian influence.",
		Image:       img("photo-1544644181-1484b3fdfc62", 800),
		HeaderImage: ptr(img("photo-1568322422622-f321c77acfaf", 1920)),
		Content: ptr(`<h2>Nubian Splendor</h2>
<p>Aswan is the place to relax and watch the feluccas sail by. It's also the gateway to Abu Simbel.</p>
<h3>Highlights</h3>
<ul>
<li><strong>Philae Temple:</strong> Dedicated to the goddess Isis.</li>
<li><strong>Nubian Village:</strong> Colorful houses and rich culture.</li>
</ul>`),
	},
	{
		ID:          "hurghada",
		Slug:        "hurghada",
		Name:        "Hurghada",
		Description: "A beach resort town stretching some 40km along Egypt's Red Sea coast, famous for diving and coral reefs.",
		Image:       img("photo-1510414842594-a61c69b5ae57", 800),
		HeaderImage: ptr(img("photo-1500530855697-b586d89ba3ee", 1920)),
		Content: ptr(`<h2>Red Sea Paradise</h2>
<p>The Red Sea offers some of the best diving in the world.</p>`),
	},
	{
		ID:          "alexandria",
		Slug:        "alexandria",
		Name:        "Alexandria",
		Description: "The Pearl of the Mediterranean. Founded by Alexander the Great, it was once the intellectual capital of the world.",
		Image:       img("photo-1552832230-c0197dd311b5", 800),
		HeaderImage: ptr(img("photo-1558235222-29b1d3d63d6f", 1920)),
		Content: ptr(`<h2>Mediterranean Elegance</h2>
<p>A cooler, more cosmopolitan vibe than Cairo, with a rich Greco-Roman history.</p>`),
	},
}

var tours = []catalog.TourInput{
	{
		ID:            "1",
		Title:         "Giza Pyramids & Sphinx Half-Day Tour",
		Description:   "Explore the only remaining Wonder of the Ancient World. Professional Egyptologist guide included.",
		Price:         45,
		Duration:      "4-5 Hours",
		Image:         img("photo-1503177119275-0aa32b3a9368", 800),
		Category:      catalog.CategoryDayTours,
		Rating:        4.9,
		Reviews:       1250,
		Tags:          []string{"History", "Must See", "Cairo"},
		DestinationID: ptr("cairo"),
	},
	{
		ID:            "2",
		Title:         "5-Day Nile Cruise: Luxor to Aswan",
		Description:   "Experience the magic of the Nile on a 5-star cruise ship. Visits to Valley of the Kings and Karnak Temple.",
		Price:         650,
		Duration:      "5 Days",
		Image:         img("photo-1544644181-1484b3fdfc62", 800),
		Category:      catalog.CategoryNileCruises,
		Rating:        4.8,
		Reviews:       430,
		Tags:          []string{"Luxury", "Nile", "Luxor", "Aswan"},
		DestinationID: ptr("luxor"),
	},
	{
		ID:            "3",
		Title:         "Cairo Egyptian Museum & Khan el-Khalili",
		Description:   "Dive into the rich history of Tutankhamun and shop in the world-famous bazaar.",
		Price:         35,
		Duration:      "6 Hours",
		Image:         img("photo-1572252009286-268acec5ca0a", 800),
		Category:      catalog.CategoryDayTours,
		Rating:        4.7,
		Reviews:       890,
		Tags:          []string{"Culture", "Shopping", "Museum"},
		DestinationID: ptr("cairo"),
	},
	{
		ID:            "4",
		Title:         "Alexandria Shore Excursion",
		Description:   "Perfect for cruise passengers. Visit the Citadel of Qaitbay and the Library of Alexandria.",
		Price:         95,
		Duration:      "8 Hours",
		Image:         img("photo-1552832230-c0197dd311b5", 800),
		Category:      catalog.CategoryShoreExcursions,
		Rating:        4.9,
		Reviews:       156,
		Tags:          []string{"Alexandria", "Seaside", "History"},
		DestinationID: ptr("alexandria"),
	},
	{
		ID:          "5",
		Title:       "White Desert Overnight Safari",
		Description: "Sleep under the stars in the surreal landscapes of the Bahariya Oasis.",
		Price:       220,
		Duration:    "2 Days",
		Image:       img("photo-1501785888041-af3ef285b470", 800),
		Category:    catalog.CategoryDesertSafari,
		Rating:      5.0,
		Reviews:     88,
		Tags:        []string{"Adventure", "Camping", "Nature"},
	},
	{
		ID:            "6",
		Title:         "Abu Simbel Private Flight Tour",
		Description:   "Fly from Aswan to witness the magnificent sun temples of Ramses II.",
		Price:         310,
		Duration:      "4 Hours",
		Image:         img("photo-1568322422622-f321c77acfaf", 800),
		Category:      catalog.CategoryMultiDayPackages,
		Rating:        4.9,
		Reviews:       212,
		Tags:          []string{"Private", "Aswan", "Ancient"},
		DestinationID: ptr("aswan"),
	},
	{
		ID:            "20",
		Title:         "3-Night Aswan to Luxor Cruise",
		Description:   "A shorter but equally mesmerizing journey past Philae Temple and Kom Ombo.",
		Price:         450,
		Duration:      "4 Days",
		Image:         img("photo-1599108600124-b6389f913d8c", 800),
		Category:      catalog.CategoryNileCruises,
		Rating:        4.7,
		Reviews:       215,
		Tags:          []string{"Classic", "Nile", "Aswan"},
		DestinationID: ptr("aswan"),
	},
	{
		ID:            "21",
		Title:         "Luxury Dahabiya Sailing Experience",
		Description:   "Sail the Nile on a traditional Dahabiya yacht, reaching islands and villages larger ships cannot.",
		Price:         950,
		Duration:      "6 Days",
		Image:         img("photo-1560130958-809099863219", 800),
		Category:      catalog.CategoryNileCruises,
		Rating:        4.9,
		Reviews:       89,
		Tags:          []string{"Luxury", "Private", "Yacht"},
		DestinationID: ptr("luxor"),
	},
}

var settings = map[string]string{
	"heroTitle":    "Discover the Wonders of Egypt",
	"heroSubtitle": "Handpicked tours, Nile cruises and desert adventures with local Egyptologists.",
	"heroImage":    img("photo-1503177119275-0aa32b3a9368", 1920),
	"address":      "26 July Street, Zamalek, Cairo, Egypt",
	"phone":        "+20 100 000 0000",
	"email":        "info@discovertours.example",
	"testimonials": `[{"id":1,"name":"Sarah J.","country":"United Kingdom","quote":"The Nile cruise was the highlight of our lives. Everything was handled perfectly.","rating":5},` +
		`{"id":2,"name":"Mark T.","country":"United States","quote":"Our guide was so knowledgeable about the Luxor temples. Unforgettable experience.","rating":5},` +
		`{"id":3,"name":"Elena R.","country":"Spain","quote":"Alexandria was beautiful and our driver was very professional. Highly recommend.","rating":5}]`,
	"popularDestinations": `[{"name":"Cairo","count":"12 Tours","img":"` + img("photo-1553913861-c0fddf2619ee", 800) + `"},` +
		`{"name":"Luxor","count":"8 Tours","img":"` + img("photo-1599108600124-b6389f913d8c", 800) + `"},` +
		`{"name":"Red Sea","count":"15 Tours","img":"` + img("photo-1510414842594-a61c69b5ae57", 800) + `"},` +
		`{"name":"Aswan","count":"6 Tours","img":"` + img("photo-1544644181-1484b3fdfc62", 800) + `"}]`,
}
