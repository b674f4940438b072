package importer

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/prdsmith/internal/domain"
)

var validEfforts = map[string]bool{"": true, "S": true, "M": true, "L": true}

// ValidateDraftFile checks a draft file before conversion and returns every
// problem found, not just the first.
func ValidateDraftFile(file *DraftFile) []error {
	var errs []error

	if file.Version > CurrentVersion {
		errs = append(errs, fmt.Errorf("version %d is newer than supported version %d", file.Version, CurrentVersion))
	}
	errs = append(errs, validateBrief(&file.Brief)...)

	names := make(map[string]bool, len(file.Features))
	errs = append(errs, validateFeatures(file.Features, names)...)

	if file.PRD != nil {
		errs = append(errs, validatePRD(file.PRD, names)...)
	}

	return errs
}

func validateBrief(b *BriefImport) []error {
	var errs []error
	if strings.TrimSpace(b.Title) == "" {
		errs = append(errs, fmt.Errorf("brief.title is required"))
	}
	if len(strings.TrimSpace(b.Description)) < 10 {
		errs = append(errs, fmt.Errorf("brief.description must be at least 10 characters"))
	}
	return errs
}

func validateFeatures(features []FeatureImport, names map[string]bool) []error {
	var errs []error
	for i, f := range features {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("features[%d].name is required", i))
		} else {
			key := strings.ToLower(name)
			if names[key] {
				errs = append(errs, fmt.Errorf("features[%d].name %q is duplicated", i, f.Name))
			}
			names[key] = true
		}
		if !domain.ValidPriorities[f.Priority] {
			errs = append(errs, fmt.Errorf("features[%d].priority %q must be one of must, should, could, wont", i, f.Priority))
		}
		if !validEfforts[strings.ToUpper(f.Effort)] {
			errs = append(errs, fmt.Errorf("features[%d].effort %q must be S, M or L", i, f.Effort))
		}
	}
	return errs
}

// validatePRD requires the PRD's requirements to name features present in
// the file, when the file lists any.
func validatePRD(p *PRDImport, names map[string]bool) []error {
	var errs []error
	if p.Title == "" {
		errs = append(errs, fmt.Errorf("prd.title is required"))
	}
	if p.Overview == "" {
		errs = append(errs, fmt.Errorf("prd.overview is required"))
	}
	if len(p.Requirements) == 0 {
		errs = append(errs, fmt.Errorf("prd.requirements must not be empty"))
	}
	for i, r := range p.Requirements {
		switch {
		case r.Feature == "":
			errs = append(errs, fmt.Errorf("prd.requirements[%d].feature is required", i))
		case len(names) > 0 && !names[strings.ToLower(strings.TrimSpace(r.Feature))]:
			errs = append(errs, fmt.Errorf("prd.requirements[%d].feature %q not found in features", i, r.Feature))
		}
	}
	return errs
}
