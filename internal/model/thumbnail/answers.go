package thumbnail

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIncompleteAnswers 表示答卷缺少渲染所需字段或字段越界。
var ErrIncompleteAnswers = errors.New("answer record incomplete")

// Answers 是一次会话收集到的全部答案，即渲染器的输入。
type Answers struct {
	Name           string `json:"name" yaml:"name"`
	Image          []byte `json:"-" yaml:"-"`
	Synopsis       string `json:"synopsis" yaml:"synopsis"`
	Percentage     *int   `json:"percentage,omitempty" yaml:"percentage"`
	Year           *int   `json:"year,omitempty" yaml:"year"`
	Author         string `json:"author" yaml:"author"`
	Template       string `json:"template" yaml:"template"`
	Color          string `json:"color" yaml:"color"`
	Font           string `json:"font" yaml:"font"`
	CustomFontPath string `json:"customFontPath,omitempty" yaml:"customFontPath,omitempty"`
	Branding       string `json:"branding" yaml:"branding"`
}

// Validate reports every missing or out-of-range field wrapped in ErrIncompleteAnswers.
func (a Answers) Validate() error {
	var missing []string
	if strings.TrimSpace(a.Name) == "" {
		missing = append(missing, "name")
	}
	if len(a.Image) == 0 {
		missing = append(missing, "image")
	}
	if strings.TrimSpace(a.Synopsis) == "" {
		missing = append(missing, "synopsis")
	}
	if a.Percentage == nil {
		missing = append(missing, "percentage")
	} else if *a.Percentage < 0 || *a.Percentage > 100 {
		return fmt.Errorf("%w: percentage %d outside [0,100]", ErrIncompleteAnswers, *a.Percentage)
	}
	if a.Year == nil {
		missing = append(missing, "year")
	}
	if strings.TrimSpace(a.Author) == "" {
		missing = append(missing, "author")
	}
	if a.Template == "" {
		missing = append(missing, "template")
	}
	if a.Color == "" {
		missing = append(missing, "color")
	}
	if a.Font == "" && a.CustomFontPath == "" {
		missing = append(missing, "font")
	}
	if a.Branding == "" {
		missing = append(missing, "branding")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteAnswers, strings.Join(missing, ", "))
	}
	return nil
}

// Summary renders the configuration recap shown before confirmation.
func (a Answers) Summary() string {
	font := a.Font
	if a.CustomFontPath != "" {
		font = "custom upload"
	}

	var b strings.Builder
	b.WriteString("Here's your manga thumbnail configuration:\n\n")
	fmt.Fprintf(&b, "Name: %s\n", a.Name)
	fmt.Fprintf(&b, "Author: %s\n", a.Author)
	fmt.Fprintf(&b, "Year: %s\n", formatOptionalInt(a.Year))
	fmt.Fprintf(&b, "Percentage: %s%%\n", formatOptionalInt(a.Percentage))
	fmt.Fprintf(&b, "Template: %s\n", a.Template)
	fmt.Fprintf(&b, "Color: %s\n", a.Color)
	fmt.Fprintf(&b, "Font: %s\n", font)
	fmt.Fprintf(&b, "Branding: %s\n\n", a.Branding)
	b.WriteString("Would you like to generate the thumbnail now? (yes/no)")
	return b.String()
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
