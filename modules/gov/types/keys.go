package types

import (
	"fmt"
)

const (
	// ModuleName defines the governance relay module name
	ModuleName = "photongov"

	// StoreKey is the store key string for the governance relay module
	StoreKey = ModuleName

	// ProtocolInfoKeyPrefix is the key prefix for per-protocol registry entries
	ProtocolInfoKeyPrefix = "protocolInfo"

	// ParamsKey is the store key under which module params are kept
	ParamsKey = "params"
)

// ProtocolInfoKey returns the store key under which the ProtocolInfo of the given
// protocol is stored.
func ProtocolInfoKey(protocolID ProtocolID) []byte {
	return []byte(fmt.Sprintf("%s/%s", ProtocolInfoKeyPrefix, protocolID.Hex()))
}

// ProtocolInfoPrefix returns the prefix shared by every ProtocolInfo key.
func ProtocolInfoPrefix() []byte {
	return []byte(ProtocolInfoKeyPrefix + "/")
}

// KeyParams returns the store key of the module params.
func KeyParams() []byte {
	return []byte(ParamsKey)
}
