/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package acuity

// StylistProfile is a statically configured stylist shown when the API cannot be reached.
type StylistProfile struct {
	ID         int    `mapstructure:"id"`
	Name       string `mapstructure:"name"`
	Image      string `mapstructure:"image"`
	Role       string `mapstructure:"role"`
	BookingURL string `mapstructure:"bookingUrl"`
}

// Stylist converts the profile into the view-model served by the API.
// The booking URL defaults to the calendar page and the image to the placeholder.
func (p StylistProfile) Stylist() Stylist {
	s := Stylist{ID: p.ID, Name: p.Name, Image: p.Image, Description: p.Role, BookingURL: p.BookingURL}
	if s.Image == "" {
		s.Image = PlaceholderStylistImage
	}
	if s.BookingURL == "" {
		s.BookingURL = BookingURLForCalendar(p.ID)
	}
	return s
}

// FallbackStylists converts configured profiles into stylists. The result is never nil.
func FallbackStylists(profiles []StylistProfile) []Stylist {
	stylists := make([]Stylist, 0, len(profiles))
	for _, p := range profiles {
		stylists = append(stylists, p.Stylist())
	}
	return stylists
}

type fallbackService struct {
	id       int
	name     string
	price    string
	duration int
}

var fallbackServicesByCategory = []struct {
	category string
	services []fallbackService
}{
	{CategoryHaircuts, []fallbackService{
		{1, "Women's Haircut", "$50", 45},
		{2, "Men's Haircut", "$25+", 30},
		{3, "Children's Cut (10 & under)", "$30", 30},
		{4, "Blowdry Style", "$45+", 30},
	}},
	{CategoryColor, []fallbackService{
		{5, "Root Touch Up", "$95+", 90},
		{6, "All Over Color", "$125+", 90},
		{7, "Halo Foil", "$130+", 90},
		{8, "Partial Foil", "$150+", 90},
		{9, "Full Foil", "$180+", 120},
		{10, "Color/Foil Combination", "$200+", 120},
		{11, "Glaze (Toner)", "$75+", 60},
	}},
	{CategoryExtras, []fallbackService{
		{12, "Brazilian Blowout", "$325+", 120},
		{13, "Eyebrow Tint", "$45", 15},
		{14, "Eyebrow Wax", "$20", 15},
		{15, "Lip Wax", "$25", 15},
		{16, "Chin Wax", "$25", 15},
	}},
}

// FallbackServices returns the static service menu served when the API cannot be reached.
// Each service links to the booking page of its category. A fresh copy is returned on every call.
func FallbackServices() []ServiceCategory {
	categories := make([]ServiceCategory, 0, len(fallbackServicesByCategory))
	for _, group := range fallbackServicesByCategory {
		bookingURL := BookingURLForCategory(group.category)
		services := make([]Service, 0, len(group.services))
		for _, s := range group.services {
			services = append(services, Service{
				ID:          s.id,
				Name:        s.name,
				Duration:    s.duration,
				Price:       s.price,
				Category:    group.category,
				BookingURL:  bookingURL,
				CalendarIDs: []int{},
			})
		}
		categories = append(categories, ServiceCategory{
			Name: group.category, Slug: categorySlug(group.category), Services: services,
		})
	}
	return categories
}
