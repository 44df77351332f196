package beanpod

import (
	"reflect"
	"sync"
)

// CapabilityIndex maps a capability to the concrete types declared to satisfy
// it, in declaration order. It is consulted only when no exact registration
// exists for a requested type.
type CapabilityIndex struct {
	impls map[reflect.Type][]reflect.Type
	mu    sync.RWMutex
}

// NewCapabilityIndex creates an empty index.
func NewCapabilityIndex() *CapabilityIndex {
	return &CapabilityIndex{
		impls: make(map[reflect.Type][]reflect.Type),
	}
}

// Satisfies records that concrete implements capability. Declaring the same
// pair twice keeps the first position. When capability is an interface the
// relationship is checked against the Go type system.
func (x *CapabilityIndex) Satisfies(concrete, capability reflect.Type) error {
	if concrete == nil || capability == nil {
		return newCapabilityError(concrete, capability)
	}

	if capability.Kind() == reflect.Interface && !concrete.Implements(capability) {
		return newCapabilityError(concrete, capability)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	for _, existing := range x.impls[capability] {
		if existing == concrete {
			return nil
		}
	}
	x.impls[capability] = append(x.impls[capability], concrete)

	return nil
}

// FindImplementations returns the concrete types declared for capability, in
// declaration order.
func (x *CapabilityIndex) FindImplementations(capability reflect.Type) []reflect.Type {
	x.mu.RLock()
	defer x.mu.RUnlock()

	impls := x.impls[capability]
	if len(impls) == 0 {
		return nil
	}

	return append([]reflect.Type(nil), impls...)
}

// clear forgets every declaration.
func (x *CapabilityIndex) clear() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.impls = make(map[reflect.Type][]reflect.Type)
}

// candidate is a registered implementation of a capability.
type candidate struct {
	typ  reflect.Type
	desc *descriptor
}

// selectCandidate applies the tie-break: the single primary wins, no primary
// means the first declared wins, several primaries is a configuration error.
// cands must not be empty.
func selectCandidate(capability reflect.Type, cands []candidate) (candidate, error) {
	var primaries []candidate
	for _, c := range cands {
		if c.desc.primary {
			primaries = append(primaries, c)
		}
	}

	switch len(primaries) {
	case 0:
		return cands[0], nil
	case 1:
		return primaries[0], nil
	default:
		types := make([]reflect.Type, len(primaries))
		for i, p := range primaries {
			types[i] = p.typ
		}
		return candidate{}, ErrAmbiguousCapability(capability, types)
	}
}
