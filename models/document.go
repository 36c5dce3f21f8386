package models

// Margins are page margins in millimetres.
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// PageGeometry is the page contract handed to renderers.
type PageGeometry struct {
	Size            string
	WidthMM         float64
	HeightMM        float64
	Margins         Margins
	PrintBackground bool
}

// A4Portrait is the geometry every invoice is printed with.
var A4Portrait = PageGeometry{
	Size:            "A4",
	WidthMM:         210,
	HeightMM:        297,
	Margins:         Margins{Top: 18, Right: 16, Bottom: 20, Left: 16},
	PrintBackground: true,
}

// Document is a self-contained printable layout: HTML markup with an embedded
// stylesheet plus the geometry it was laid out for.
type Document struct {
	Title string
	HTML  string
	Page  PageGeometry
}
