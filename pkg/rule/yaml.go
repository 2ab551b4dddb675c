package rule

// yamlRule is the intermediate struct for parsing the YAML rule format.
type yamlRule struct {
	ID               string       `yaml:"id"`
	Name             string       `yaml:"name"`
	Pattern          string       `yaml:"pattern"`
	Message          string       `yaml:"message"`
	Suggestion       string       `yaml:"suggestion,omitempty"`
	Description      string       `yaml:"description,omitempty"`
	Category         yamlCategory `yaml:"category"`
	Keywords         []string     `yaml:"keywords,omitempty"`
	Examples         []string     `yaml:"examples,omitempty"`
	NegativeExamples []string     `yaml:"negative_examples,omitempty"`
}

// yamlCategory mirrors the category block of a rule file.
type yamlCategory struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Color string `yaml:"color,omitempty"`
}

// yamlRulesFile is the top-level structure of a rules YAML file: a "rules"
// array.
type yamlRulesFile struct {
	Rules []yamlRule `yaml:"rules"`
}
