package catalog

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

// staticSource implements Source using a fixed in-memory plan map.
type staticSource struct {
	plans map[string]Plan
}

// NewStaticSource returns a Source backed by a copy of the given plans.
func NewStaticSource(plans map[string]Plan) Source {
	return &staticSource{plans: maps.Clone(plans)}
}

// NewDefaultSource returns a Source with the built-in plan set.
func NewDefaultSource() Source {
	return NewStaticSource(DefaultPlans())
}

func (s *staticSource) Load(_ context.Context) (map[string]Plan, error) {
	return maps.Clone(s.plans), nil
}

// fileSource loads plans from a YAML file, keyed by plan id:
//
//	free:
//	  id: free
//	  name: Normal User
//	  max_courses: 1
//	  max_modules_per_course: 8
//	  price:
//	    amount: 0
//	    currency: USD
type fileSource struct {
	path string
}

// NewFileSource returns a Source that reads plan definitions from a YAML file.
// The file is read once per Load call; the catalog loads it once at startup.
func NewFileSource(path string) Source {
	return &fileSource{path: path}
}

func (s *fileSource) Load(_ context.Context) (map[string]Plan, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read plans file %s: %w", s.path, err)
	}

	plans := make(map[string]Plan)
	if err := yaml.Unmarshal(data, &plans); err != nil {
		return nil, errors.Join(ErrInvalidPlanConfiguration, err)
	}

	// Allow omitting the redundant id field inside each entry.
	for id, plan := range plans {
		if plan.ID == "" {
			plan.ID = id
			plans[id] = plan
		}
	}

	return plans, nil
}
