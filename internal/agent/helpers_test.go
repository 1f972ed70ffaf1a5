package agent

type nameSet map[string]bool

func (s nameSet) Has(name string) bool { return s[name] }
