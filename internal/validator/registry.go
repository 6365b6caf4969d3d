package validator

// Registry maps rule keys to Validator implementations and keeps
// registration order, which is the order issues are reported in.
type Registry struct {
	validators map[string]Validator
	order      []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{validators: make(map[string]Validator)}
}

// Register adds a validator to the registry. Registering an existing key
// replaces the validator in place.
func (r *Registry) Register(v Validator) {
	if _, ok := r.validators[v.RuleKey()]; !ok {
		r.order = append(r.order, v.RuleKey())
	}
	r.validators[v.RuleKey()] = v
}

// Get returns the validator for a given rule key, or nil if not found.
func (r *Registry) Get(key string) Validator {
	return r.validators[key]
}

// All returns all registered validators in registration order.
func (r *Registry) All() []Validator {
	out := make([]Validator, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.validators[k])
	}
	return out
}

// DefaultRegistry returns a registry holding the built-in estimate rules.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, v := range BuiltinValidators() {
		r.Register(v)
	}
	return r
}
