package catalog

// Option 表示键盘上的一个可选项，Label 为展示文本，Value 为渲染时使用的值。
type Option struct {
	Label string `json:"label" toml:"label"`
	Value string `json:"value" toml:"value"`
}

// 颜色与字体选项中的特殊取值。
const (
	ValueRandom = "random"
	ValueCustom = "custom"
)

// Kind 区分三类选项。
type Kind string

const (
	KindTemplate Kind = "template"
	KindColor    Kind = "color"
	KindFont     Kind = "font"
)

// Catalog 聚合模板、配色与字体三组选项，顺序即键盘顺序。
type Catalog struct {
	Templates []Option `json:"templates" toml:"templates"`
	Colors    []Option `json:"colors" toml:"colors"`
	Fonts     []Option `json:"fonts" toml:"fonts"`
}

// Options 返回指定类别的选项列表。
func (c Catalog) Options(kind Kind) []Option {
	switch kind {
	case KindTemplate:
		return c.Templates
	case KindColor:
		return c.Colors
	case KindFont:
		return c.Fonts
	default:
		return nil
	}
}

// Default provides the built-in option set offered by the bot.
func Default() Catalog {
	return Catalog{
		Templates: []Option{
			{Label: "Style 1 - Default", Value: "default"},
			{Label: "Style 2 - Minimal", Value: "minimal"},
			{Label: "Style 3 - Elegant", Value: "elegant"},
			{Label: "Style 4 - Modern", Value: "modern"},
			{Label: "Style 5 - Vintage", Value: "vintage"},
			{Label: "Style 6 - Neon", Value: "neon"},
		},
		Colors: []Option{
			{Label: "Red", Value: "#FF0000"},
			{Label: "Blue", Value: "#0000FF"},
			{Label: "Green", Value: "#00FF00"},
			{Label: "Purple", Value: "#800080"},
			{Label: "Orange", Value: "#FFA500"},
			{Label: "Pink", Value: "#FFC0CB"},
			{Label: "Teal", Value: "#008080"},
			{Label: "Black", Value: "#000000"},
			{Label: "White", Value: "#FFFFFF"},
			{Label: "Gold", Value: "#FFD700"},
			{Label: "Silver", Value: "#C0C0C0"},
			{Label: "Random", Value: ValueRandom},
			{Label: "Custom", Value: ValueCustom},
		},
		Fonts: []Option{
			{Label: "Standard", Value: "arial.ttf"},
			{Label: "Bold", Value: "arialbd.ttf"},
			{Label: "Italic", Value: "ariali.ttf"},
			{Label: "Japanese", Value: "msmincho.ttf"},
			{Label: "Modern", Value: "modern.ttf"},
			{Label: "Custom", Value: ValueCustom},
		},
	}
}
