package policy

// AddMember returns a copy of p with member added under role, creating the
// role binding if absent. The input snapshot is never modified, so dry-run
// and apply share the same computation and diverge only at submit.
func AddMember(p *Policy, role, member string) *Policy {
	out := &Policy{Etag: p.Etag, Bindings: make([]Binding, len(p.Bindings))}
	for i, b := range p.Bindings {
		out.Bindings[i] = Binding{
			Role:    b.Role,
			Members: append([]string(nil), b.Members...),
		}
	}

	for i := range out.Bindings {
		if out.Bindings[i].Role != role {
			continue
		}
		if !contains(out.Bindings[i].Members, member) {
			out.Bindings[i].Members = append(out.Bindings[i].Members, member)
		}
		return out
	}

	out.Bindings = append(out.Bindings, Binding{Role: role, Members: []string{member}})
	return out
}

// HasMember reports whether member already holds role in p.
func HasMember(p *Policy, role, member string) bool {
	for _, b := range p.Bindings {
		if b.Role == role && contains(b.Members, member) {
			return true
		}
	}
	return false
}

func contains(members []string, member string) bool {
	for _, m := range members {
		if m == member {
			return true
		}
	}
	return false
}
