package sequence

import "github.com/nidhogg/animseq/internal/catalog"

// CheckTerminationByTrigger reports whether any trigger in history has been
// followed by at least TriggerElapsedSteps actions. The whole history is
// scanned on every call so repeated triggers are all considered.
func CheckTerminationByTrigger(history []catalog.ActionID, cat *catalog.Catalog) bool {
	for i, a := range history {
		if !cat.IsTerminationTrigger(a) {
			continue
		}
		if len(history)-i-1 >= TriggerElapsedSteps {
			return true
		}
	}
	return false
}
