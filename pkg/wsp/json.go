package wsp

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
)

type rawAuthorisation struct {
	User  int
	Steps []int
}

type rawAtMostK struct {
	K     int
	Steps []int
}

type rawOneTeam struct {
	Steps []int
	Teams [][]int
}

type rawCapacity struct {
	User     int
	Capacity int
}

type rawInstance struct {
	Steps            int
	Users            int
	Authorisations   []rawAuthorisation
	SeparationOfDuty [][]int
	BindingOfDuty    [][]int
	AtMostK          []rawAtMostK
	OneTeam          []rawOneTeam
	UserCapacity     []rawCapacity
}

// InstanceFromJSON loads a WSP instance from its JSON dialect. The
// document is decoded into a generic map first and mapped onto the
// raw shape, so unknown keys are tolerated the way the text dialect's
// header keys are.
func InstanceFromJSON(path string) (*Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading instance file (%s): %w", path, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing instance file (%s): %w", path, err)
	}

	// JSON numbers arrive as float64; weak typing converts them to
	// the int fields of the raw shape.
	var raw rawInstance
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &raw,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(doc); err != nil {
		return nil, fmt.Errorf("error decoding instance file (%s): %w", path, err)
	}

	inst := &Instance{Steps: raw.Steps, Users: raw.Users}
	for _, a := range raw.Authorisations {
		inst.Authorisations = append(inst.Authorisations, Authorisation(a))
	}
	for _, pair := range raw.SeparationOfDuty {
		if len(pair) != 2 {
			return nil, fmt.Errorf("separation-of-duty entries must hold two steps, got %v", pair)
		}
		inst.Separations = append(inst.Separations, SeparationOfDuty{S1: pair[0], S2: pair[1]})
	}
	for _, pair := range raw.BindingOfDuty {
		if len(pair) != 2 {
			return nil, fmt.Errorf("binding-of-duty entries must hold two steps, got %v", pair)
		}
		inst.Bindings = append(inst.Bindings, BindingOfDuty{S1: pair[0], S2: pair[1]})
	}
	for _, a := range raw.AtMostK {
		inst.AtMostKs = append(inst.AtMostKs, AtMostK(a))
	}
	for _, t := range raw.OneTeam {
		inst.OneTeams = append(inst.OneTeams, OneTeam(t))
	}
	for _, c := range raw.UserCapacity {
		inst.Capacities = append(inst.Capacities, UserCapacity(c))
	}

	if err := inst.checkBounds(); err != nil {
		return nil, fmt.Errorf("error validating instance file (%s): %w", path, err)
	}
	return inst, nil
}
