package parseas

// Partial returns a schema with the same name and fields as s whose
// validation treats every field as optional: absent fields are neither
// errors nor defaulted, present fields are still validated, and the
// unknown-key policy is unchanged. Only the top level is affected; nested
// objects keep their own rules. Refine hooks of a bound struct are not run
// on partial input.
//
// s is not modified. Partial of a partial schema is equivalent to it.
// Partial(nil) returns nil.
func Partial(s *Schema) *Schema {
	if s == nil {
		return nil
	}
	cfg := s.config
	cfg.Partial = true
	return &Schema{
		name:   s.name,
		fields: s.Fields(),
		config: cfg,
		plan:   s.plan.withConfig(cfg),
	}
}
