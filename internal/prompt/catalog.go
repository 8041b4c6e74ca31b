// Package prompt holds the static prompt catalog and the bootstrap
// instruction for the rating conversation.
package prompt

// Template pairs a human-readable label with its canned instruction text.
type Template struct {
	Label       string `json:"label"`
	Instruction string `json:"instruction"`
}

// Catalog is the static label→instruction mapping exposed to the
// presentation layer. Set at startup, never mutated.
type Catalog struct {
	order   []string
	entries map[string]string
}

// NewCatalog returns the built-in prompt catalog.
func NewCatalog() *Catalog {
	templates := []Template{
		{
			Label:       "Rating Analysis",
			Instruction: "Read and understand the uploaded PDRS then follow instructions and rate the report. Make sure to double check your calculations and findings.",
		},
		{
			Label:       "Negotiating and Settlement Demand",
			Instruction: "If an analysis has been run provide a settlement and negotiation demand, if not run a detailed rating using the uploaded PDRS and provide a settlement and negotiation demand.",
		},
		{
			Label:       "Impairment Calculation",
			Instruction: "Calculate the impairment percentage for each impairment mentioned in the medical reports.",
		},
		{
			Label:       "Settlement Estimation",
			Instruction: "Based on the medical reports, what would be a fair settlement amount?",
		},
		{
			Label:       "Treatment Recommendations",
			Instruction: "What additional treatments might be recommended based on the conditions in these medical reports?",
		},
		{
			Label:       "Negotiation and Settlement Demand",
			Instruction: "Run the medical reports and provide settlement demand based on the analysis.",
		},
		{
			Label:       "Simple Analysis",
			Instruction: "Read the PDRS and the report and provide only the rating strings and combined values and total PD with monetary values only, nothing else. Then ask the user if they would like a more detailed calculation with these numbers or if there is something they would like to edit.",
		},
	}

	c := &Catalog{entries: make(map[string]string, len(templates))}
	for _, t := range templates {
		c.order = append(c.order, t.Label)
		c.entries[t.Label] = t.Instruction
	}
	return c
}

// Labels returns the catalog labels in display order.
func (c *Catalog) Labels() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Get returns the instruction text for a label.
func (c *Catalog) Get(label string) (string, bool) {
	text, ok := c.entries[label]
	return text, ok
}

// Templates returns all entries in display order.
func (c *Catalog) Templates() []Template {
	out := make([]Template, 0, len(c.order))
	for _, label := range c.order {
		out = append(out, Template{Label: label, Instruction: c.entries[label]})
	}
	return out
}
