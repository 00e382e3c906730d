package domain

import "strings"

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Categories is the fixed set of market categories offered for consultation.
var Categories = []Category{
	{ID: "home", Name: "Home", Description: "Residential audio-visual solutions for your living space", Icon: "Home"},
	{ID: "business", Name: "Business", Description: "Corporate meeting rooms and presentation systems", Icon: "Building2"},
	{ID: "restaurant", Name: "Restaurant", Description: "Dining ambiance and entertainment systems", Icon: "Utensils"},
	{ID: "gym", Name: "Gym", Description: "Fitness center audio and display solutions", Icon: "Dumbbell"},
	{ID: "worship", Name: "Worship", Description: "House of worship sound and visual systems", Icon: "Church"},
	{ID: "education", Name: "Education", Description: "Classroom and training facility solutions", Icon: "GraduationCap"},
	{ID: "club", Name: "Club", Description: "Entertainment venue and nightlife systems", Icon: "Music"},
}

func CategoryByID(id string) (Category, bool) {
	for _, c := range Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

func CategoryByName(name string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Category{}, false
}
