package schema

import "slices"

// Properties is a name-sorted map of property mappings with an explicit absent state.
// The zero value is absent: it is omitted on the wire, unlike a present empty map
// which serializes as {}.
type Properties struct {
	present bool
	names   []string
	items   map[string]*PropertyMapping
}

func NoProperties() Properties { return Properties{} }

// EmptyProperties is a present map without entries.
func EmptyProperties() Properties {
	return Properties{present: true, items: map[string]*PropertyMapping{}}
}

func (p Properties) IsSet() bool { return p.present }

func (p Properties) Len() int { return len(p.names) }

// Names returns the property names in sorted order.
func (p Properties) Names() []string { return slices.Clone(p.names) }

func (p Properties) Get(name string) (*PropertyMapping, bool) {
	pm, ok := p.items[name]
	return pm, ok
}

// Each visits entries in name order.
func (p Properties) Each(fn func(name string, pm *PropertyMapping) error) error {
	for _, n := range p.names {
		if err := fn(n, p.items[n]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Properties) put(name string, pm *PropertyMapping) {
	p.present = true
	if p.items == nil {
		p.items = map[string]*PropertyMapping{}
	}
	if _, exists := p.items[name]; !exists {
		i, _ := slices.BinarySearch(p.names, name)
		p.names = slices.Insert(p.names, i, name)
	}
	p.items[name] = pm
}

// remove drops name; removing the last entry resets the map to the absent state.
func (p *Properties) remove(name string) bool {
	if _, ok := p.items[name]; !ok {
		return false
	}
	delete(p.items, name)
	if i, found := slices.BinarySearch(p.names, name); found {
		p.names = slices.Delete(p.names, i, i+1)
	}
	if len(p.names) == 0 {
		*p = NoProperties()
	}
	return true
}
