package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// LoadFile 从 TOML 文件读取选项目录。path 为空时返回内置目录；
// 文件中缺失的分组沿用内置默认值。
func LoadFile(path string) (Catalog, error) {
	catalog := Default()

	path = strings.TrimSpace(path)
	if path == "" {
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return catalog, fmt.Errorf("read catalog file: %w", err)
	}

	var override Catalog
	if err := toml.Unmarshal(data, &override); err != nil {
		return catalog, fmt.Errorf("decode catalog file %s: %w", path, err)
	}

	if len(override.Templates) > 0 {
		catalog.Templates = override.Templates
	}
	if len(override.Colors) > 0 {
		catalog.Colors = override.Colors
	}
	if len(override.Fonts) > 0 {
		catalog.Fonts = override.Fonts
	}

	if err := catalog.Validate(); err != nil {
		return Default(), fmt.Errorf("catalog file %s: %w", path, err)
	}
	return catalog, nil
}

// Validate checks that every option has a label and value and labels are unique per kind.
func (c Catalog) Validate() error {
	for _, kind := range []Kind{KindTemplate, KindColor, KindFont} {
		seen := make(map[string]struct{})
		for _, item := range c.Options(kind) {
			if strings.TrimSpace(item.Label) == "" || strings.TrimSpace(item.Value) == "" {
				return fmt.Errorf("%s option with empty label or value", kind)
			}
			if _, dup := seen[item.Label]; dup {
				return fmt.Errorf("duplicate %s label %q", kind, item.Label)
			}
			seen[item.Label] = struct{}{}
		}
		if len(seen) == 0 {
			return errors.New(string(kind) + " options are empty")
		}
	}
	return nil
}
