package rules

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/nstehr/quartermaster/model"
	"gopkg.in/yaml.v3"
)

// Plan is a named rule set loaded from a YAML build plan. When the file
// names a doctrine its compiled rules come first, followed by the file's
// own rules.
type Plan struct {
	Name     string
	Doctrine *Doctrine
	Rules    []*Rule
}

type planFile struct {
	Name     string    `yaml:"name" validate:"required"`
	Doctrine *Doctrine `yaml:"doctrine"`
	Rules    []ruleDef `yaml:"rules" validate:"dive"`
}

type ruleDef struct {
	Name      string    `yaml:"name" validate:"required"`
	Priority  int       `yaml:"priority"`
	Category  string    `yaml:"category" validate:"required"`
	Exclusive bool      `yaml:"exclusive"`
	Once      bool      `yaml:"once"`
	When      string    `yaml:"when" validate:"required"`
	Do        actionDef `yaml:"do"`
}

type requestDef struct {
	Type  string `yaml:"type" validate:"required"`
	Count int    `yaml:"count" validate:"min=1"`
}

type actionDef struct {
	Request  *requestDef    `yaml:"request"`
	Research string         `yaml:"research"`
	Upgrade  string         `yaml:"upgrade"`
	Collect  map[string]int `yaml:"collect" validate:"omitempty,dive,min=0,max=100"`
	Reserve  map[string]int `yaml:"reserve" validate:"omitempty,dive,min=0"`
	Sleep    int            `yaml:"sleep" validate:"min=0"`
}

var validate = validator.New()

// LoadPlan reads a build plan and resolves its idents against types.
func LoadPlan(path string, types model.TypeResolver) (*Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	p, err := ParsePlan(raw, types)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParsePlan decodes and checks a YAML build plan. The returned rules are
// compiled by NewEngine; a condition that fails to compile is reported
// here already.
func ParsePlan(raw []byte, types model.TypeResolver) (*Plan, error) {
	var f planFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}

	p := &Plan{Name: f.Name, Doctrine: f.Doctrine}
	if f.Doctrine != nil {
		p.Rules = CompileDoctrine(*f.Doctrine)
	}
	for _, d := range f.Rules {
		action, err := d.Do.resolve(types)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", d.Name, err)
		}
		p.Rules = append(p.Rules, &Rule{
			Name:         d.Name,
			Priority:     d.Priority,
			Category:     d.Category,
			Exclusive:    d.Exclusive,
			Once:         d.Once,
			ConditionSrc: d.When,
			Action:       action,
		})
	}
	if _, err := compileRules(p.Rules); err != nil {
		return nil, err
	}
	return p, nil
}

// resolve checks that exactly one action is set and that every name it
// uses exists.
func (a actionDef) resolve(types model.TypeResolver) (ActionFunc, error) {
	var actions []ActionFunc
	if a.Request != nil {
		if _, ok := types.UnitType(a.Request.Type); !ok {
			return nil, fmt.Errorf("unknown unit type %q", a.Request.Type)
		}
		actions = append(actions, Request(a.Request.Type, a.Request.Count))
	}
	if a.Research != "" {
		if _, ok := types.Upgrade(a.Research); !ok {
			return nil, fmt.Errorf("unknown upgrade %q", a.Research)
		}
		actions = append(actions, Research(a.Research))
	}
	if a.Upgrade != "" {
		if _, ok := types.UnitType(a.Upgrade); !ok {
			return nil, fmt.Errorf("unknown unit type %q", a.Upgrade)
		}
		actions = append(actions, UpgradeTo(a.Upgrade))
	}
	if a.Collect != nil {
		if _, err := costsOf(types, a.Collect); err != nil {
			return nil, err
		}
		actions = append(actions, Collect(a.Collect))
	}
	if a.Reserve != nil {
		if _, err := costsOf(types, a.Reserve); err != nil {
			return nil, err
		}
		actions = append(actions, Reserve(a.Reserve))
	}
	if a.Sleep > 0 {
		actions = append(actions, SleepFor(a.Sleep))
	}
	switch len(actions) {
	case 0:
		return nil, errors.New("no action")
	case 1:
		return actions[0], nil
	default:
		return nil, errors.New("more than one action")
	}
}
