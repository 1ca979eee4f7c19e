package types

import "github.com/battcycle/battcycle/pkg/smc"

// SMCValue is one SMC key as served by the daemon.
type SMCValue struct {
	Key  string `json:"key"`
	Type string `json:"type"`
	Size uint32 `json:"size"`
	Hex  string `json:"hex"`
}

func NewSMCValue(v smc.Val) SMCValue {
	return SMCValue{
		Key:  v.Key,
		Type: v.TypeString(),
		Size: v.DataSize,
		Hex:  smc.EncodeHex(v.Payload()),
	}
}
