package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileMode is a permission mode written in octal in config files. Strings
// ("0644", "0o644", "644") are always octal; bare integers are taken as is,
// so TOML users write 0o644.
type FileMode uint32

// Perm returns the mode as an os.FileMode
func (m FileMode) Perm() os.FileMode {
	return os.FileMode(m).Perm()
}

func (m FileMode) String() string {
	return fmt.Sprintf("%04o", uint32(m))
}

// MarshalText writes the mode as an octal string
func (m FileMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalTOML accepts TOML integers and octal strings
func (m *FileMode) UnmarshalTOML(v any) error {
	switch val := v.(type) {
	case int64:
		if val < 0 {
			return fmt.Errorf("invalid mode %d", val)
		}
		*m = FileMode(val)
		return nil
	case string:
		return m.parse(val)
	default:
		return fmt.Errorf("invalid mode %v", v)
	}
}

// UnmarshalYAML accepts YAML integers (0o644 is octal in YAML 1.2) and octal strings
func (m *FileMode) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("invalid mode at line %d", node.Line)
	}
	if node.ShortTag() == "!!int" {
		var i int64
		if err := node.Decode(&i); err != nil {
			return err
		}
		return m.UnmarshalTOML(i)
	}
	return m.parse(node.Value)
}

func (m *FileMode) parse(s string) error {
	s = strings.TrimPrefix(strings.TrimSpace(strings.ToLower(s)), "0o")
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return fmt.Errorf("invalid octal mode %q", s)
	}
	*m = FileMode(v)
	return nil
}
