package triad

import "fmt"

// PolicyError reports a hop that is rejected before any collaborator call is
// made, mirroring the teacher's query.QueryError Kind/Message shape.
type PolicyError struct {
	Kind    string
	Message string
}

func (e PolicyError) Error() string {
	return fmt.Sprintf("triad policy error (%v): %v", e.Kind, e.Message)
}

const (
	KindFuzzyRelationMultiHop = "fuzzy_relation_multi_hop"
	KindVariableDepthNoFilter = "variable_depth_without_filter"
)
