package models

// ContractTemplate is a base agreement with bracketed placeholders
type ContractTemplate struct {
	// Frontmatter fields
	ID            string   `yaml:"id" json:"id"`
	Name          string   `yaml:"name" json:"name"`
	Description   string   `yaml:"description" json:"description"`
	ContractTypes []string `yaml:"contract_types" json:"contractTypes"`
	Defaults      FieldMap `yaml:"defaults,omitempty" json:"defaults,omitempty"`
	Fallback      bool     `yaml:"fallback,omitempty" json:"fallback,omitempty"`

	// Content fields
	Content  string `yaml:"-" json:"content,omitempty"` // Template body after frontmatter
	FilePath string `yaml:"-" json:"-"`
}

// Serves reports whether the template is declared for contractType
func (t ContractTemplate) Serves(contractType string) bool {
	for _, ct := range t.ContractTypes {
		if ct == contractType {
			return true
		}
	}
	return false
}

// PrebuiltDraft is a ready-made agreement that seeds the matter form
type PrebuiltDraft struct {
	// Frontmatter fields
	ID           string   `yaml:"id" json:"id"`
	Name         string   `yaml:"name" json:"name"`
	Order        int      `yaml:"order,omitempty" json:"-"`
	Summary      string   `yaml:"summary" json:"summary"`
	Industry     string   `yaml:"industry" json:"industry"`
	Updated      string   `yaml:"updated" json:"updated"`
	Readiness    int      `yaml:"readiness" json:"readiness"`
	Highlights   []string `yaml:"highlights" json:"highlights"`
	FormDefaults FieldMap `yaml:"form_defaults" json:"formDefaults"`

	// Content fields
	Contract string `yaml:"-" json:"contract,omitempty"`
	FilePath string `yaml:"-" json:"-"`
}

// FilterValue returns the value used for filtering in lists
func (d PrebuiltDraft) FilterValue() string {
	return cleanString(d.Name + " " + d.Industry)
}

// Description is the picker subtitle
func (d PrebuiltDraft) Description() string {
	return truncate(cleanString(d.Industry+" • "+d.Updated), 100)
}

// ContractType is a selectable agreement family
type ContractType struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// NegotiationPosition compares the firm baseline with a counterparty redline
type NegotiationPosition struct {
	ID           string `yaml:"id" json:"id"`
	Clause       string `yaml:"clause" json:"clause"`
	ChangeType   string `yaml:"change_type" json:"changeType"`
	Baseline     string `yaml:"baseline" json:"baseline"`
	Counterparty string `yaml:"counterparty" json:"counterparty"`
	FirmPosition string `yaml:"firm_position" json:"firmPosition"`
	Note         string `yaml:"note" json:"note"`
}
