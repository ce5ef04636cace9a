package domain

type Tag struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Item is one venue row. Optional text columns are nil when NULL.
type Item struct {
	ID            int64   `db:"id"`
	Name          string  `db:"name"`
	Description   *string `db:"description"`
	Image         []byte  `db:"image"`
	DirectionLink *string `db:"direction_link"`
	OpenHours     *string `db:"open_hours"`
	CreatedAt     string  `db:"created_at"`
	Tags          []Tag   `db:"-"`
}

func (it Item) HasImage() bool { return len(it.Image) > 0 }

// NewItem is the validated input for creating an item.
type NewItem struct {
	Name          string   `validate:"required"`
	Description   string   `validate:"max=4000"`
	Image         []byte   `validate:"-"`
	DirectionLink string   `validate:"max=2048"`
	OpenHours     string   `validate:"max=500"`
	Tags          []string `validate:"dive,required,max=50"`
}

// ItemView is the JSON shape returned by the API.
type ItemView struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	Image         any     `json:"image"`
	DirectionLink *string `json:"directionLink"`
	OpenHours     *string `json:"openHours"`
	CreatedAt     string  `json:"createdAt,omitempty"`
	Tags          *[]Tag  `json:"tags,omitempty"`
}

// View converts an item into its JSON form using the category's image encoding.
func (c Category) View(it Item) ItemView {
	v := ItemView{
		ID:            it.ID,
		Name:          it.Name,
		Description:   it.Description,
		DirectionLink: it.DirectionLink,
		OpenHours:     it.OpenHours,
		CreatedAt:     it.CreatedAt,
	}
	if c.HasTags {
		tags := it.Tags
		if tags == nil {
			tags = []Tag{}
		}
		v.Tags = &tags
	}
	if it.Image != nil {
		switch c.Images {
		case ImageByteArray:
			vals := make([]int, len(it.Image))
			for i, b := range it.Image {
				vals[i] = int(b)
			}
			v.Image = vals
		default:
			v.Image = it.Image
		}
	}
	return v
}

func (c Category) Views(items []Item) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, it := range items {
		out = append(out, c.View(it))
	}
	return out
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (it Item) DescriptionText() string { return deref(it.Description) }
func (it Item) DirectionURL() string    { return deref(it.DirectionLink) }
func (it Item) OpenHoursText() string   { return deref(it.OpenHours) }
