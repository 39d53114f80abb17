package vmodel

import (
	"fmt"
	"sort"

	"go.githedgehog.com/provisioner/pkg/vmodel/fsm"
)

// Names of the built in vendor model templates
const (
	TemplateHPGeneric     = "hp generic"
	TemplateHPGenericV2   = "hp generic v2"
	TemplateHuaweiGeneric = "huawei generic"
)

var (
	phaseFirmware = phaseSpec{phase: PhaseFirmware, state: "firmware", prefix: "firmware", label: "firmware update"}
	phaseILO      = phaseSpec{phase: PhaseBMC, state: "ilo", prefix: "ilo", label: "iLO configuration"}
	phaseIBMC     = phaseSpec{phase: PhaseBMC, state: "bmc", prefix: "bmc", label: "BMC configuration"}
	phaseRAID     = phaseSpec{phase: PhaseRAID, state: "raid", prefix: "raid", label: "RAID configuration"}
	phaseBIOS     = phaseSpec{phase: PhaseBIOS, state: "bios", prefix: "bios", label: "BIOS configuration"}
)

type hpGeneric struct {
	phasedFSM
}

// NewHPGeneric is the HP variant with `script` artifacts which configures
// firmware, iLO, RAID and BIOS in that order
func NewHPGeneric(svc Services) Template {
	return &hpGeneric{
		phasedFSM: newPhasedFSM(
			fsm.MustBuiltin(TemplateHPGeneric),
			SubActionScript,
			map[string]Phase{
				"firmware": PhaseFirmware,
				"bmc":      PhaseBMC,
				"ilo":      PhaseBMC,
				"raid":     PhaseRAID,
				"bios":     PhaseBIOS,
			},
			[]phaseSpec{phaseFirmware, phaseILO, phaseRAID, phaseBIOS},
			svc,
		),
	}
}

type hpGenericV2 struct {
	phasedFSM
}

// NewHPGenericV2 is the HP variant with `file` artifacts which configures
// RAID before iLO
func NewHPGenericV2(svc Services) Template {
	return &hpGenericV2{
		phasedFSM: newPhasedFSM(
			fsm.MustBuiltin(TemplateHPGenericV2),
			SubActionFile,
			map[string]Phase{
				"firmware": PhaseFirmware,
				"ilo":      PhaseBMC,
				"raid":     PhaseRAID,
				"bios":     PhaseBIOS,
			},
			[]phaseSpec{phaseFirmware, phaseRAID, phaseILO, phaseBIOS},
			svc,
		),
	}
}

type huaweiGeneric struct {
	phasedFSM
}

// NewHuaweiGeneric is the Huawei variant
func NewHuaweiGeneric(svc Services) Template {
	return &huaweiGeneric{
		phasedFSM: newPhasedFSM(
			fsm.MustBuiltin(TemplateHuaweiGeneric),
			SubActionScript,
			map[string]Phase{
				"firmware": PhaseFirmware,
				"bmc":      PhaseBMC,
				"raid":     PhaseRAID,
				"bios":     PhaseBIOS,
			},
			[]phaseSpec{phaseFirmware, phaseIBMC, phaseRAID, phaseBIOS},
			svc,
		),
	}
}

// Catalog holds all templates by name
type Catalog struct {
	templates map[string]Template
}

// NewCatalog creates the catalog of all built in templates
func NewCatalog(svc Services) *Catalog {
	return NewCatalogOf(
		NewHPGeneric(svc),
		NewHPGenericV2(svc),
		NewHuaweiGeneric(svc),
	)
}

// NewCatalogOf creates a catalog of `templates`
func NewCatalogOf(templates ...Template) *Catalog {
	c := &Catalog{templates: make(map[string]Template, len(templates))}
	for _, t := range templates {
		c.templates[t.Name()] = t
	}
	return c
}

// Get returns the template with name `name`
func (c *Catalog) Get(name string) (Template, error) {
	t, ok := c.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownTemplate, name)
	}
	return t, nil
}

// List returns all templates sorted by name
func (c *Catalog) List() []Template {
	ret := make([]Template, 0, len(c.templates))
	for _, t := range c.templates {
		ret = append(ret, t)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Name() < ret[j].Name() })
	return ret
}
