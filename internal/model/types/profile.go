package types

import (
	"gopkg.in/guregu/null.v3"
)

// MatchRequest describes one application, either as a vector of characteristic values in
// feature order or as a map keyed by feature name. An empty value is a missing characteristic.
type MatchRequest struct {
	Values     []string          `json:"values" validate:"required_without=Attributes,max=7,dive,max=256,charvalue"`
	Attributes map[string]string `json:"attributes" validate:"required_without=Values,max=7,dive,keys,required,max=64,endkeys,max=256,charvalue"`
}

type BatchMatchRequest struct {
	Applications []MatchRequest `json:"applications" validate:"required,min=1,max=1000,dive"`
}

type ProfileTreeQuery struct {
	SnapshotID string `query:"snapshotId" validate:"omitempty,max=64,alphanum"`
}

type SnapshotsQuery struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

type RebuildRequest struct {
	// DatasetVersion overrides the configured dataset version for this rebuild.
	DatasetVersion null.String `json:"datasetVersion" validate:"max=64"`
}

type RebuildResponse struct {
	SnapshotID     string `json:"snapshotId"`
	DatasetVersion string `json:"datasetVersion"`
	ParameterHash  string `json:"parameterHash"`
	BuiltAt        string `json:"builtAt"`
	Nodes          int    `json:"nodes"`
	Leaves         int    `json:"leaves"`
	RootLabel      string `json:"rootLabel"`
}
