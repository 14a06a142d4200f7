package domain

// FrameworkDocument is the static compliance-framework catalog
type FrameworkDocument struct {
	Frameworks []Framework `json:"frameworks" yaml:"frameworks"`
}

// Framework is one compliance framework and its controls
type Framework struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Version     string    `json:"version,omitempty" yaml:"version,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Controls    []Control `json:"controls,omitempty" yaml:"controls,omitempty"`
}

// Control is a single requirement inside a framework
type Control struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Inventory is the exportable view of everything the store knows
type Inventory struct {
	Hosts   []Host       `json:"hosts" yaml:"hosts"`
	Scans   []ScanRecord `json:"scans" yaml:"scans"`
	Metrics Metrics      `json:"metrics" yaml:"metrics"`
}
