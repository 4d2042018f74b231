/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package acuity

import (
	"regexp"
	"strings"
)

// PlaceholderStylistImage is shown for stylists without a photo.
const PlaceholderStylistImage = "/images/placeholder-stylist.svg"

// Canonical service categories shown on the site.
const (
	CategoryHaircuts     = "Haircuts"
	CategoryColor        = "Color"
	CategoryExtras       = "Extras"
	CategoryOther        = "Other"
	CategoryConsultation = "Consultation"
)

// PriceConsultation replaces the price of appointment types without one.
const PriceConsultation = "Consultation"

var canonicalCategories = []string{
	CategoryHaircuts, CategoryColor, CategoryExtras, CategoryOther, CategoryConsultation,
}

// Categories listed first, in this order. The rest follow in first-seen order.
var preferredCategoryOrder = []string{CategoryHaircuts, CategoryColor, CategoryExtras, CategoryOther}

var canonicalCategoryWordRegExps = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(canonicalCategories))
	for i, c := range canonicalCategories {
		res[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(c) + `\b`)
	}
	return res
}()

var (
	whitespaceRegExp   = regexp.MustCompile(`\s+`)
	nonSlugCharsRegExp = regexp.MustCompile(`[^\w\s-]`)
)

// Stylist is the site view-model of an Acuity calendar.
type Stylist struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Description string `json:"description"`
	BookingURL  string `json:"bookingUrl"`
}

// Service is the site view-model of an Acuity appointment type.
type Service struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	BookingURL  string `json:"bookingUrl"`
	CalendarIDs []int  `json:"calendarIds"`
}

// ServiceCategory is a named group of services.
type ServiceCategory struct {
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	Services []Service `json:"services"`
}

// TransformCalendar converts an Acuity calendar into a Stylist.
func TransformCalendar(calendar Calendar) Stylist {
	image := string(calendar.Image)
	if image == "false" {
		image = ""
	}
	if strings.HasPrefix(image, "//") {
		image = "https:" + image
	}
	if image == "" {
		image = PlaceholderStylistImage
	}
	return Stylist{
		ID:          calendar.ID,
		Name:        calendar.Name,
		Image:       image,
		Description: calendar.Description,
		BookingURL:  BookingURLForCalendar(calendar.ID),
	}
}

// TransformCalendars converts every calendar into a Stylist. The result is never nil.
func TransformCalendars(calendars []Calendar) []Stylist {
	stylists := make([]Stylist, 0, len(calendars))
	for _, c := range calendars {
		stylists = append(stylists, TransformCalendar(c))
	}
	return stylists
}

// TransformAppointmentType converts an Acuity appointment type into a Service.
func TransformAppointmentType(apt AppointmentType) Service {
	price := PriceConsultation
	if apt.Price != "" {
		price = "$" + string(apt.Price)
	}
	bookingURL := apt.SchedulingURL
	if bookingURL == "" {
		bookingURL = BookingURLForAppointmentType(apt.ID)
	}
	calendarIDs := apt.CalendarIDs
	if calendarIDs == nil {
		calendarIDs = []int{}
	}
	return Service{
		ID:          apt.ID,
		Name:        collapseWhitespace(apt.Name),
		Description: apt.Description,
		Duration:    apt.Duration,
		Price:       price,
		Category:    NormalizeCategory(apt.Category),
		BookingURL:  bookingURL,
		CalendarIDs: calendarIDs,
	}
}

// ActiveServices keeps the appointment types that are active and publicly bookable.
func ActiveServices(types []AppointmentType) []AppointmentType {
	res := make([]AppointmentType, 0, len(types))
	for _, t := range types {
		if t.Active && !t.Private {
			res = append(res, t)
		}
	}
	return res
}

// BuildServiceCatalog filters, converts and groups appointment types the way the services route serves them.
func BuildServiceCatalog(types []AppointmentType) []ServiceCategory {
	active := ActiveServices(types)
	services := make([]Service, 0, len(active))
	for _, t := range active {
		services = append(services, TransformAppointmentType(t))
	}
	return GroupServicesByCategory(services)
}

// NormalizeCategory maps an Acuity category to one of the canonical names when possible.
// Categories such as "Alyssa Color" (stylist prefix left over from a migration) become "Color".
// Unknown categories are returned with collapsed whitespace; an empty one becomes "Other".
func NormalizeCategory(category string) string {
	raw := collapseWhitespace(category)
	if raw == "" {
		return CategoryOther
	}
	for _, c := range canonicalCategories {
		if strings.EqualFold(c, raw) {
			return c
		}
	}
	for i, re := range canonicalCategoryWordRegExps {
		if re.MatchString(raw) {
			return canonicalCategories[i]
		}
	}
	return raw
}

// GroupServicesByCategory groups services keeping their relative order.
// Haircuts, Color, Extras and Other come first, then other categories in first-seen order.
func GroupServicesByCategory(services []Service) []ServiceCategory {
	byName := make(map[string][]Service)
	var seen []string
	for _, s := range services {
		if _, ok := byName[s.Category]; !ok {
			seen = append(seen, s.Category)
		}
		byName[s.Category] = append(byName[s.Category], s)
	}

	categories := make([]ServiceCategory, 0, len(byName))
	appendCategory := func(name string) {
		if list, ok := byName[name]; ok && len(list) != 0 {
			categories = append(categories, ServiceCategory{Name: name, Slug: categorySlug(name), Services: list})
			delete(byName, name)
		}
	}
	for _, name := range preferredCategoryOrder {
		appendCategory(name)
	}
	for _, name := range seen {
		appendCategory(name)
	}
	return categories
}

// Slugify makes a URL fragment from text: lower case, punctuation dropped, whitespace runs replaced by "-".
func Slugify(text string) string {
	s := nonSlugCharsRegExp.ReplaceAllString(strings.ToLower(text), "")
	return whitespaceRegExp.ReplaceAllString(s, "-")
}

func categorySlug(name string) string {
	return whitespaceRegExp.ReplaceAllString(strings.ToLower(name), "-")
}

func collapseWhitespace(s string) string {
	return whitespaceRegExp.ReplaceAllString(strings.TrimSpace(s), " ")
}
