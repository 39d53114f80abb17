package vmodel

import "go.githedgehog.com/provisioner/pkg/vmodel/metadata"

// hardwareSpec declares the configuration of the phases in `order`
func hardwareSpec(order []phaseSpec) metadata.Spec {
	ret := make(metadata.Spec, 0, len(order))
	for _, s := range order {
		switch s.phase {
		case PhaseFirmware:
			ret = append(ret, metadata.Field{
				Key:         KeyFirmware,
				Default:     "false",
				Example:     "false",
				Required:    true,
				Boolean:     true,
				Description: "flag to indicate whether firmware need to be updated",
			})
		case PhaseBMC:
			ret = append(ret, metadata.Field{
				Key:         KeyBMC,
				Example:     `{"enabled":"true"}`,
				Required:    true,
				JSONEncoded: true,
				Description: "hash for " + s.label + " setting (JSON string)",
			})
		case PhaseRAID:
			ret = append(ret, metadata.Field{
				Key:         KeyRAID,
				Example:     `{"enabled":"true", "level":"raid1"}`,
				Required:    true,
				JSONEncoded: true,
				Description: "hash for RAID setting (JSON string)",
			})
		case PhaseBIOS:
			ret = append(ret, metadata.Field{
				Key:         KeyBIOS,
				Example:     `{"enabled":"true"}`,
				Required:    true,
				JSONEncoded: true,
				Description: "hash for BIOS setting (JSON string)",
			})
		}
	}
	return ret
}
