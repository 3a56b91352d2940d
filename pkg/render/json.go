package render

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/matzehuels/netplot/pkg/collections"
)

type jsonRenderer struct{}

// NewJSON returns a renderer that exports the collections as indented JSON,
// ordered by z-order, so other tools can draw them.
func NewJSON() Renderer { return jsonRenderer{} }

type jsonOutput struct {
	Canvas      Canvas                    `json:"canvas"`
	Collections []*collections.Collection `json:"collections"`
}

func (jsonRenderer) Format() Format { return FormatJSON }

func (jsonRenderer) Render(ctx context.Context, cs []*collections.Collection, c Canvas) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ordered := slices.DeleteFunc(slices.Clone(cs), func(c *collections.Collection) bool { return c == nil })
	collections.SortByZOrder(ordered)
	if ordered == nil {
		ordered = []*collections.Collection{}
	}
	return json.MarshalIndent(jsonOutput{Canvas: c.WithDefaults(), Collections: ordered}, "", "  ")
}
