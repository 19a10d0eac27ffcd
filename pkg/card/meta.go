package card

import (
	"bytes"
	"encoding/json"
)

// Meta is the type-specific configuration of a node. It is a closed union:
// exactly one variant exists per TypeID and [DecodeMeta] picks it.
type Meta interface {
	// Kind returns the TypeID this variant belongs to.
	Kind() TypeID
	// Base returns the fields shared by all variants.
	Base() Common
}

// Common holds the metadata every parameter kind understands.
type Common struct {
	Required    bool   `json:"required,omitempty"`
	Description string `json:"description,omitempty"`
}

// Base returns c itself; embedding Common satisfies half of Meta.
func (c Common) Base() Common { return c }

type IntegerMeta struct {
	Common
	Min  *int64 `json:"min,omitempty"`
	Max  *int64 `json:"max,omitempty"`
	Step int64  `json:"step,omitempty"`
}

type FloatMeta struct {
	Common
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Step      float64  `json:"step,omitempty"`
	Precision int      `json:"precision,omitempty"`
}

type StringMeta struct {
	Common
	Pattern   string `json:"pattern,omitempty"`
	MinLength int    `json:"minLength,omitempty"`
	MaxLength int    `json:"maxLength,omitempty"`
	Multiline bool   `json:"multiline,omitempty"`
}

// EnumMeta lists the selectable options of an enum field.
type EnumMeta struct {
	Common
	Options  []EnumOption `json:"options"`
	Multiple bool         `json:"multiple,omitempty"`
}

// Option returns the option with the given technical id.
func (m EnumMeta) Option(id string) (EnumOption, bool) {
	for _, o := range m.Options {
		if o.ID == id {
			return o, true
		}
	}
	return EnumOption{}, false
}

type DateMeta struct {
	Common
	Min    string `json:"min,omitempty"`
	Max    string `json:"max,omitempty"`
	Format string `json:"format,omitempty"`
}

type BooleanMeta struct {
	Common
	Default bool `json:"default,omitempty"`
}

// ReferenceMeta points a field at an external entity (e.g. a subject).
type ReferenceMeta struct {
	Common
	Entity string `json:"entity,omitempty"`
}

type RangeMeta struct {
	Common
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step,omitempty"`
}

type ColorMeta struct {
	Common
	Palette []string `json:"palette,omitempty"`
}

type IconMeta struct {
	Common
	Set string `json:"set,omitempty"`
}

func (IntegerMeta) Kind() TypeID   { return TypeInteger }
func (FloatMeta) Kind() TypeID     { return TypeFloat }
func (StringMeta) Kind() TypeID    { return TypeString }
func (EnumMeta) Kind() TypeID      { return TypeEnum }
func (DateMeta) Kind() TypeID      { return TypeDate }
func (BooleanMeta) Kind() TypeID   { return TypeBoolean }
func (ReferenceMeta) Kind() TypeID { return TypeReference }
func (RangeMeta) Kind() TypeID     { return TypeRange }
func (ColorMeta) Kind() TypeID     { return TypeColor }
func (IconMeta) Kind() TypeID      { return TypeIcon }

// EnumOption is one choice of an enum field. ID is the technical key used
// inside conditions; Value, when set, overrides it as the stored value.
type EnumOption struct {
	ID    string            `json:"id"`
	Label map[string]string `json:"labelJson,omitempty"`
	Value string            `json:"value,omitempty"`
}

// TechnicalValue returns the value written to form data for this option.
func (o EnumOption) TechnicalValue() string {
	if o.Value != "" {
		return o.Value
	}
	return o.ID
}

// LabelFor returns the label in lang, falling back to "en", then to any
// label, then to the id.
func (o EnumOption) LabelFor(lang string) string {
	if l, ok := o.Label[lang]; ok && l != "" {
		return l
	}
	if l, ok := o.Label["en"]; ok && l != "" {
		return l
	}
	best := ""
	for k, l := range o.Label {
		if l != "" && (best == "" || k < best) {
			best = k
		}
	}
	if best != "" {
		return o.Label[best]
	}
	return o.ID
}

// EmptyMeta returns the zero variant for t, or nil for an unknown type.
func EmptyMeta(t TypeID) Meta {
	switch t {
	case TypeInteger:
		return IntegerMeta{}
	case TypeFloat:
		return FloatMeta{}
	case TypeString:
		return StringMeta{}
	case TypeEnum:
		return EnumMeta{}
	case TypeDate:
		return DateMeta{}
	case TypeBoolean:
		return BooleanMeta{}
	case TypeReference:
		return ReferenceMeta{}
	case TypeRange:
		return RangeMeta{}
	case TypeColor:
		return ColorMeta{}
	case TypeIcon:
		return IconMeta{}
	}
	return nil
}

// DecodeMeta decodes raw metaJson into the variant selected by t. Empty or
// null input yields the zero variant. Extra keys are ignored.
func DecodeMeta(t TypeID, raw json.RawMessage) (Meta, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return EmptyMeta(t), nil
	}
	switch t {
	case TypeInteger:
		return decodeInto[IntegerMeta](raw)
	case TypeFloat:
		return decodeInto[FloatMeta](raw)
	case TypeString:
		return decodeInto[StringMeta](raw)
	case TypeEnum:
		return decodeInto[EnumMeta](raw)
	case TypeDate:
		return decodeInto[DateMeta](raw)
	case TypeBoolean:
		return decodeInto[BooleanMeta](raw)
	case TypeReference:
		return decodeInto[ReferenceMeta](raw)
	case TypeRange:
		return decodeInto[RangeMeta](raw)
	case TypeColor:
		return decodeInto[ColorMeta](raw)
	case TypeIcon:
		return decodeInto[IconMeta](raw)
	}
	return nil, ErrUnknownType
}

func decodeInto[T Meta](raw json.RawMessage) (Meta, error) {
	var m T
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
