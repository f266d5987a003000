package jira

import (
	"net/url"
	"strconv"
)

// Preset narrows the cumulative flow query of a board to a set of swimlanes
// and columns.
type Preset struct {
	SwimlaneIDs []int `yaml:"swimlane_ids" mapstructure:"swimlane_ids"`
	ColumnIDs   []int `yaml:"column_ids" mapstructure:"column_ids"`
}

// DefaultPresets returns the built-in board presets.
func DefaultPresets() map[string]Preset {
	return map[string]Preset{
		"191": {
			SwimlaneIDs: []int{252, 253},
			ColumnIDs:   []int{796, 794, 793, 797, 798, 795},
		},
	}
}

func (p Preset) apply(q url.Values) {
	for _, id := range p.SwimlaneIDs {
		q.Add("swimlaneId", strconv.Itoa(id))
	}
	for _, id := range p.ColumnIDs {
		q.Add("columnId", strconv.Itoa(id))
	}
}
