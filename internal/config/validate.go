package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/shlex"
	"gopkg.in/yaml.v3"
)

// ConfigError locates a problem in a config source. Line and Column are set
// for file problems, Key for problems with a single setting.
type ConfigError struct {
	Path    string
	Key     string
	Line    int
	Column  int
	Problem string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Problem)
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Problem)
	case e.Key != "":
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Key, e.Problem)
	default:
		return fmt.Sprintf("%s: %s", e.Path, e.Problem)
	}
}

// CheckYAMLFile reads path and runs CheckYAML on it. A missing file is not an
// error; the defaults apply.
func CheckYAMLFile(path string) error {
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return nil
	case os.IsPermission(err):
		return &ConfigError{Path: path, Problem: "permission denied"}
	case err != nil:
		return &ConfigError{Path: path, Problem: err.Error()}
	}
	return CheckYAML(data, path)
}

// CheckYAML reports syntax errors and unknown keys in a YAML config document.
// An empty document is valid.
func CheckYAML(data []byte, path string) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return syntaxError(err, path)
	}
	if len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return &ConfigError{Path: path, Line: root.Line, Column: root.Column, Problem: "top level must be a mapping of settings"}
	}
	return checkKeys(root, "", knownKeys(GetDefaults()), path)
}

// checkKeys walks a mapping node and rejects keys that are not settings.
func checkKeys(node *yaml.Node, prefix string, known map[string]bool, path string) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		name := prefix + key.Value
		if !known[name] {
			return &ConfigError{
				Path:    path,
				Line:    key.Line,
				Column:  key.Column,
				Problem: fmt.Sprintf("unknown setting %q", name),
			}
		}
		if value.Kind == yaml.MappingNode {
			if err := checkKeys(value, name+".", known, path); err != nil {
				return err
			}
		}
	}
	return nil
}

// knownKeys flattens defaults into dotted setting names.
func knownKeys(defaults map[string]interface{}) map[string]bool {
	known := make(map[string]bool)
	var walk func(prefix string, m map[string]interface{})
	walk = func(prefix string, m map[string]interface{}) {
		for k, v := range m {
			known[prefix+k] = true
			if sub, ok := v.(map[string]interface{}); ok {
				walk(prefix+k+".", sub)
			}
		}
	}
	walk("", defaults)
	return known
}

// yaml.v3 reports syntax errors as text only, e.g. "yaml: line 3: mapping
// values are not allowed in this context".
var yamlLine = regexp.MustCompile(`^yaml: line (\d+): (.*)$`)

func syntaxError(err error, path string) error {
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return &ConfigError{Path: path, Problem: strings.Join(typeErr.Errors, "; ")}
	}
	m := yamlLine.FindStringSubmatch(err.Error())
	if m == nil {
		return &ConfigError{Path: path, Problem: strings.TrimPrefix(err.Error(), "yaml: ")}
	}
	line, _ := strconv.Atoi(m[1])
	return &ConfigError{Path: path, Line: line, Problem: m[2]}
}

// settingsValidator names fields by their koanf key, so errors read
// "notifications.type" rather than "Notifications.Type".
var settingsValidator = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// CheckValues validates the loaded settings. Every invalid setting is
// reported, sorted by key.
func CheckValues(cfg *Configuration, source string) error {
	var problems []*ConfigError

	if err := settingsValidator.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return &ConfigError{Path: source, Problem: err.Error()}
		}
		for _, fe := range fieldErrs {
			problems = append(problems, &ConfigError{Path: source, Key: settingKey(fe), Problem: describe(fe)})
		}
	}

	if _, err := shlex.Split(cfg.GnatproveCmd); err != nil {
		problems = append(problems, &ConfigError{
			Path:    source,
			Key:     "gnatprove_cmd",
			Problem: fmt.Sprintf("cannot be split into arguments: %v", err),
		})
	}

	if len(problems) == 0 {
		return nil
	}
	sort.SliceStable(problems, func(i, j int) bool { return problems[i].Key < problems[j].Key })
	errs := make([]error, len(problems))
	for i, p := range problems {
		errs[i] = p
	}
	return errors.Join(errs...)
}

// settingKey drops the struct name from the validator namespace.
func settingKey(fe validator.FieldError) string {
	_, key, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}
	return key
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed validation: " + fe.Tag()
	}
}
