package domain

// RecordKind labels a record for display. The data layer never branches on
// it and stores any value it is given.
type RecordKind string

const (
	KindBrief   RecordKind = "brief"
	KindFeature RecordKind = "feature"
	KindPRD     RecordKind = "prd"
)

// Priority is a MoSCoW bucket for a generated feature.
type Priority string

const (
	PriorityMust   Priority = "must"
	PriorityShould Priority = "should"
	PriorityCould  Priority = "could"
	PriorityWont   Priority = "wont"
)

// ValidPriorities is the canonical set of accepted priority strings.
var ValidPriorities = map[string]bool{
	"must": true, "should": true, "could": true, "wont": true,
}

// Rank orders priorities from most to least important. Unknown values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityMust:
		return 0
	case PriorityShould:
		return 1
	case PriorityCould:
		return 2
	case PriorityWont:
		return 3
	default:
		return 4
	}
}

type Effort string

const (
	EffortSmall  Effort = "S"
	EffortMedium Effort = "M"
	EffortLarge  Effort = "L"
)
