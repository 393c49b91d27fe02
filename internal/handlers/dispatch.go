package handlers

import (
	"sort"

	"github.com/pocketbase/pocketbase/core"
)

// Action handles one sub-action of an area.
type Action func(re *core.RequestEvent) error

// Dispatcher routes an area's requests on the sa query parameter. Unknown
// or missing sub-actions fall through to the default.
type Dispatcher struct {
	area    string
	def     string
	actions map[string]Action
}

func NewDispatcher(area, def string) *Dispatcher {
	return &Dispatcher{area: area, def: def, actions: map[string]Action{}}
}

// On registers fn for sa.
func (d *Dispatcher) On(sa string, fn Action) *Dispatcher {
	d.actions[sa] = fn
	return d
}

// Resolve returns the sub-action that handles sa and its name.
func (d *Dispatcher) Resolve(sa string) (string, Action) {
	if fn, ok := d.actions[sa]; ok {
		return sa, fn
	}
	return d.def, d.actions[d.def]
}

// Serve dispatches re.
func (d *Dispatcher) Serve(re *core.RequestEvent) error {
	_, fn := d.Resolve(re.Request.URL.Query().Get("sa"))
	return fn(re)
}

// Actions lists the registered sub-actions, sorted.
func (d *Dispatcher) Actions() []string {
	out := make([]string, 0, len(d.actions))
	for sa := range d.actions {
		out = append(out, sa)
	}
	sort.Strings(out)
	return out
}
