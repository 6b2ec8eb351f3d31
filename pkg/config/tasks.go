package config

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DefaultFormatterRef is the formatter value meaning "use the run's default formatter".
// In configuration files it is written as `formatter: true`.
const DefaultFormatterRef FormatterRef = "default"

// MirrorSuffix at the end of a src means: join the rest of src with dest.
const MirrorSuffix = "..."

// FormatterRef names a formatter. The empty value means no formatting (verbatim copy).
type FormatterRef string

func (f FormatterRef) IsSet() bool { return f != "" }

func (f *FormatterRef) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = fromBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("formatter must be true or a formatter name, got %s", string(data))
	}
	*f = FormatterRef(s)
	return nil
}

func (f FormatterRef) MarshalJSON() ([]byte, error) {
	if f == DefaultFormatterRef {
		return []byte("true"), nil
	}
	return json.Marshal(string(f))
}

func (f *FormatterRef) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!bool" {
		var b bool
		if err := value.Decode(&b); err != nil {
			return err
		}
		*f = fromBool(b)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("formatter must be true or a formatter name: %v", err)
	}
	*f = FormatterRef(s)
	return nil
}

func fromBool(b bool) FormatterRef {
	if b {
		return DefaultFormatterRef
	}
	return ""
}

// Task describes how to produce one destination, or one mirrored directory tree.
type Task struct {
	Dest      string        `json:"dest" yaml:"dest"`
	Src       string        `json:"src,omitempty" yaml:"src,omitempty"`
	Formatter FormatterRef  `json:"formatter,omitempty" yaml:"formatter,omitempty"`
	Concat    []ConcatEntry `json:"concat,omitempty" yaml:"concat,omitempty"`
}

type ConcatEntry struct {
	Src       string       `json:"src" yaml:"src"`
	Formatter FormatterRef `json:"formatter,omitempty" yaml:"formatter,omitempty"`
}

// DefaultTasks is the output layout of the learning-style web app:
// the entry script, one concatenated module bundle, lazily loaded service
// bundles, pages, styles and static assets.
func DefaultTasks() []Task {
	return []Task{
		{Dest: "main.js", Src: "dist/...", Formatter: DefaultFormatterRef},
		{
			Dest: "/modules/app.js",
			Concat: []ConcatEntry{
				{Src: "/dist/modules/constants.js"},
				{Src: "/dist/modules/utils"},
				{Src: "/dist/modules/data.js"},
				{Src: "/dist/modules/factory.js"},
				{Src: "/dist/modules/web.js"},
				{Src: "/dist/modules/components"},
				{Src: "/dist/modules/components/cards"},
				{Src: "/dist/modules/components/maps/country.js"},
				{Src: "/dist/modules/components/quizzes"},
				{Src: "/dist/modules/routes"},
				{Src: "/dist/modules/services/exercise.js"},
				{Src: "/dist/modules/app.js", Formatter: "js-skip-minify"},
			},
			Formatter: DefaultFormatterRef,
		},
		{Dest: "/modules/services/flashcards.js", Src: "dist...", Formatter: DefaultFormatterRef},
		{Dest: "/modules/services/quizzes.js", Src: "dist/...", Formatter: DefaultFormatterRef},
		{Dest: "/modules/services/maps.js", Src: "/dist...", Formatter: DefaultFormatterRef},
		{Dest: "/modules/components/maps/maps-de.js", Src: "/dist/..."},
		{Dest: "/modules/components/maps/maps-de-full.js", Src: "/dist/modules/components/maps/maps-de-full.js"},
		{Dest: "index.html", Formatter: "html"},
		{Dest: "login.html", Formatter: "html"},
		{Dest: "style.css", Formatter: "css"},
		{Dest: "/json"},
		{Dest: "/assets/fonts"},
		{Dest: "/assets/images/loaders"},
		{Dest: "/assets/images/award.svg"},
		{Dest: "favicon.ico"},
		{Dest: "README.md"},
		{Dest: "robots.txt"},
	}
}
