package domain

import "encoding/json"

// MissingMarker is rendered for a field whose source element is absent
const MissingMarker = "missing"

// Field is a scraped value that distinguishes "absent in source" from
// "present but empty"
type Field struct {
	Value   string
	Present bool
}

// Text wraps a value found in the markup
func Text(value string) Field {
	return Field{Value: value, Present: true}
}

// Missing is the field value for an absent source element
func Missing() Field {
	return Field{}
}

func (f Field) String() string {
	if !f.Present {
		return MissingMarker
	}
	return f.Value
}

// MarshalJSON encodes an absent field as null
func (f Field) MarshalJSON() ([]byte, error) {
	if !f.Present {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// UnmarshalJSON decodes null as an absent field
func (f *Field) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Missing()
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*f = Text(value)
	return nil
}

// ProductRecord is one product entry of a listing page, stamped with the
// category path it was crawled under. Records are never mutated once emitted
type ProductRecord struct {
	PrimaryCategory   string `json:"pri_cat"`
	SecondaryCategory string `json:"sec_cat"`
	TertiaryCategory  string `json:"ter_cat"`
	CategoryURL       string `json:"cate_url"`

	Product      Field `json:"product"`
	Brand        Field `json:"brand"`
	Price        Field `json:"price"`
	Release      Field `json:"release"`
	CommentCount Field `json:"comment_counts"`
	Rating       Field `json:"evaluation"`
	PointCount   Field `json:"pt_counts"`
	ImageURL     Field `json:"img_url"`
	ProductURL   Field `json:"pdct_url"`
}

// WithPath returns a copy of the record stamped with the category path
func (r ProductRecord) WithPath(path CategoryPath) ProductRecord {
	r.PrimaryCategory = path.Primary
	r.SecondaryCategory = path.Secondary.DisplayName()
	r.TertiaryCategory = path.Tertiary.DisplayName()
	r.CategoryURL = path.CategoryURL
	return r
}
