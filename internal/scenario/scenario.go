// Package scenario holds the catalog of guided learning scenarios. Each
// scenario maps a real-world workflow onto calls against the todo API.
package scenario

// Step is one request in a scenario walkthrough.
type Step struct {
	Number           int            `json:"number"`
	Title            string         `json:"title"`
	Method           string         `json:"method"`
	Endpoint         string         `json:"endpoint"`
	AuthType         string         `json:"auth_type"`
	Body             map[string]any `json:"body"`
	Explanation      string         `json:"explanation"`
	ExpectedResult   string         `json:"expected_result"`
	LearningPoint    string         `json:"learning_point"`
	RealWorldMapping string         `json:"real_world_mapping"`
}

// Scenario is a narrative multi-step workflow.
type Scenario struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Difficulty    string   `json:"difficulty"`
	Duration      string   `json:"duration"`
	LearningGoals []string `json:"learning_goals"`
	Steps         []Step   `json:"steps"`
}

// Summary is the listing view of a scenario, without its steps.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
	Duration    string `json:"duration"`
	StepCount   int    `json:"step_count"`
}

// Summary returns the listing view of s.
func (s *Scenario) Summary() Summary {
	return Summary{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Difficulty:  s.Difficulty,
		Duration:    s.Duration,
		StepCount:   len(s.Steps),
	}
}

// All returns every scenario in display order.
func All() []Scenario {
	return catalog
}

// Summaries returns the listing view of every scenario.
func Summaries() []Summary {
	out := make([]Summary, len(catalog))
	for i := range catalog {
		out[i] = catalog[i].Summary()
	}
	return out
}

// Get returns the scenario with the given id.
func Get(id string) (*Scenario, bool) {
	for i := range catalog {
		if catalog[i].ID == id {
			return &catalog[i], true
		}
	}
	return nil, false
}
