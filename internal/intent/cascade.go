package intent

// Cascade evaluates an ordered rule table; the first rule that matches wins.
type Cascade struct {
	rules []Rule
}

// NewCascade builds a cascade over rules, or over DefaultRules when none are given.
func NewCascade(rules ...Rule) *Cascade {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Cascade{rules: rules}
}

// Rules returns the table in evaluation order.
func (c *Cascade) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify returns the result of the first matching rule.
func (c *Cascade) Classify(in Input) Result {
	r, _ := c.Trace(in)
	return r
}

// Trace is Classify that also names the rule that decided.
func (c *Cascade) Trace(in Input) (Result, string) {
	for _, rule := range c.rules {
		if r, ok := rule.Match(in); ok {
			return r, rule.Name
		}
	}
	return Result{Kind: Unknown, Response: "Sorry, I didn't catch that. " + Hint(in.Snapshot)}, ""
}
