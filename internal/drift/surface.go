package drift

import (
	"fmt"

	"docdrift/internal/analyzer"
)

// Surface gathers the public API records of every configured module,
// collected once per run so each check sees identical records. Import
// failures and stale ignore entries become warnings instead of errors.
type Surface struct {
	walker  *analyzer.Walker
	modules []string
	ignores []string

	collected bool
	apis      []analyzer.API
	warnings  []string
}

func NewSurface(walker *analyzer.Walker, modules, ignores []string) *Surface {
	return &Surface{
		walker:  walker,
		modules: modules,
		ignores: ignores,
	}
}

// APIs returns the combined public surface of all configured modules.
func (s *Surface) APIs() []analyzer.API {
	s.collect()
	return s.apis
}

// Warnings returns the non-fatal problems hit while collecting.
func (s *Surface) Warnings() []string {
	s.collect()
	return s.warnings
}

func (s *Surface) collect() {
	if s.collected {
		return
	}
	s.collected = true

	for _, module := range s.modules {
		apis, unmatched, err := s.walker.AllPublicAPIs(module, s.ignores)
		if err != nil {
			s.warnings = append(s.warnings, fmt.Sprintf("Could not import %s: %v", module, err))
			continue
		}
		s.apis = append(s.apis, apis...)
		for _, ig := range unmatched {
			s.warnings = append(s.warnings, fmt.Sprintf("Ignore entry %s did not match any submodule of %s", ig, module))
		}
	}
}
