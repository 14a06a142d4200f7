package codec

import (
	"fmt"

	"sentinel/internal/domain"
)

// validateFrameworks rejects catalogs with missing or repeated ids
func validateFrameworks(doc *domain.FrameworkDocument) error {
	if len(doc.Frameworks) == 0 {
		return fmt.Errorf("document has no frameworks")
	}

	seen := make(map[string]bool, len(doc.Frameworks))
	for i, f := range doc.Frameworks {
		if f.ID == "" {
			return fmt.Errorf("framework %d has no id", i)
		}
		if seen[f.ID] {
			return fmt.Errorf("duplicate framework id %q", f.ID)
		}
		seen[f.ID] = true

		controls := make(map[string]bool, len(f.Controls))
		for _, c := range f.Controls {
			if c.ID == "" {
				return fmt.Errorf("framework %q has a control without id", f.ID)
			}
			if controls[c.ID] {
				return fmt.Errorf("framework %q repeats control %q", f.ID, c.ID)
			}
			controls[c.ID] = true
		}
	}
	return nil
}
